/* utils.go
 * Helpers for parsing environment values
 */

package config

import (
	"fmt"
	"strings"
)

// convertStrToBool parses a true/false flag value
// Preconditions: Receives the raw variable, surrounding whitespace and case are ignored
// Postconditions: Returns the boolean, or an error for anything other than true or false
func convertStrToBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string %q", raw)
}
