/* utils_test.go
 * Contains unit tests for utils.go
 */

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStrToBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"TRUE", true},
		{"False", false},
		{"  true\t", true},
		{"\nfalse ", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := convertStrToBool(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertStrToBool_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "yes", "no", "1", "0", "truee", "t"} {
		t.Run(in, func(t *testing.T) {
			got, err := convertStrToBool(in)

			assert.Error(t, err)
			assert.False(t, got)
		})
	}
}
