/* bot.go
 * Contains the Bot struct used for administering resources from a discord channel. Requires a discord bot token and
 * the admin API, both of which are passed in from main.go
 */

package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"torneos-admin/api/admin"
	"torneos-admin/logging"

	"github.com/go-andiamo/splitter"
	"go.uber.org/zap"
)

// commandTimeout bounds the api calls made for one command
const commandTimeout = 30 * time.Second

// maxMessageLength is the discord limit for a single message
const maxMessageLength = 2000

type Bot struct {
	BotToken  string
	APIPtr    *admin.API
	ChannelID string // when set, messages from other channels are ignored
	logger    *zap.Logger
}

func NewBot(botToken string, apiPtr *admin.API, channelID string, logger *zap.Logger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if apiPtr == nil {
		return nil, fmt.Errorf("apiPtr is required but none was provided")
	}
	logger = logging.OrNop(logger)

	return &Bot{
		BotToken:  botToken,
		APIPtr:    apiPtr,
		ChannelID: channelID,
		logger:    logger.Named("bot"),
	}, nil
}

func (b *Bot) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// Helper function to check if a string starts with a given command. The command must be followed by whitespace or
// the end of the string, so "$list" does not match "$listing"
// Preconditions: Receives an input string and a command
// Postconditions: Returns true if the input starts with the command, else returns false
func startsWith(inputString string, command string) bool {
	if !strings.HasPrefix(inputString, command) {
		return false
	}
	rest := inputString[len(command):]
	return rest == "" || command == "" || strings.ContainsAny(rest[:1], " \t\n")
}

// splitArgs splits a command into its arguments. Arguments containing spaces are wrapped in double quotes
// (e.g. nombre="Zona A" or "Los Pumas")
func splitArgs(content string) ([]string, error) {
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = unquote(part); part != "" {
			args = append(args, part)
		}
	}
	return args, nil
}

// unquote removes straight and curly double quotes
func unquote(s string) string {
	s = strings.ReplaceAll(s, "\"", "")
	s = strings.ReplaceAll(s, "“", "")
	s = strings.ReplaceAll(s, "”", "")
	return s
}

// truncate keeps a reply within the discord message limit
func truncate(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	const suffix = "\n…"
	cut := maxMessageLength - len(suffix)
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
