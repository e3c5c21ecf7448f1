/* bot_test.go
 * Contains unit tests for the helper functions in bot.go
 */

package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region startsWith tests

// TestStartsWith_ExactMatch tests when input exactly matches the command
func TestStartsWith_ExactMatch(t *testing.T) {
	assert.True(t, startsWith("$list", "$list"))
}

// TestStartsWith_WithArguments tests a command followed by arguments
func TestStartsWith_WithArguments(t *testing.T) {
	assert.True(t, startsWith("$list zonas 2", "$list"))
	assert.True(t, startsWith("$list\nzonas", "$list"))
}

// TestStartsWith_LongerWord tests that a longer word is not the command
func TestStartsWith_LongerWord(t *testing.T) {
	assert.False(t, startsWith("$listing", "$list"))
}

// TestStartsWith_DoesNotStartWith tests when the command is present but not at the start
func TestStartsWith_DoesNotStartWith(t *testing.T) {
	assert.False(t, startsWith("please $list zonas", "$list"))
}

// TestStartsWith_EmptyInput tests with empty input string
func TestStartsWith_EmptyInput(t *testing.T) {
	assert.False(t, startsWith("", "$help"))
}

// TestStartsWith_EmptyCommand tests that an empty command matches everything
func TestStartsWith_EmptyCommand(t *testing.T) {
	assert.True(t, startsWith("hello", ""))
}

// TestStartsWith_CaseSensitive tests that function is case-sensitive
func TestStartsWith_CaseSensitive(t *testing.T) {
	assert.False(t, startsWith("$Help", "$help"))
}

// endregion

// region splitArgs tests

func TestSplitArgs_Quoted(t *testing.T) {
	args, err := splitArgs(`$save zonas nombre="Zona A"  abrev=ZA`)
	require.NoError(t, err)
	assert.Equal(t, []string{"$save", "zonas", "nombre=Zona A", "abrev=ZA"}, args)
}

func TestSplitArgs_CurlyQuotes(t *testing.T) {
	args, err := splitArgs("$delete equipos “Los Pumas”")
	require.NoError(t, err)
	assert.Equal(t, []string{"$delete", "equipos", "Los Pumas"}, args)
}

func TestSplitArgs_Unbalanced(t *testing.T) {
	_, err := splitArgs(`$save zonas nombre="Zona A`)
	assert.Error(t, err)
}

// endregion

func TestTruncate(t *testing.T) {
	short := "hola"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("ñ", maxMessageLength)
	out := truncate(long)
	assert.LessOrEqual(t, len(out), maxMessageLength)
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.True(t, strings.HasPrefix(out, "ñ"))
}
