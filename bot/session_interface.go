/* session_interface.go
 * The slice of the Discord session the command handlers talk to, and the reply helpers built on it
 */

package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DiscordSession is satisfied by *discordgo.Session and by the fake used in tests
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

var _ DiscordSession = (*discordgo.Session)(nil)

// reply sends content to the channel, cut to the Discord message limit. Failures are logged, the command has
// already run by the time a reply is sent so there is nothing to roll back
func (b *Bot) reply(session DiscordSession, channelID string, content string) {
	if _, err := session.ChannelMessageSend(channelID, truncate(content)); err != nil {
		b.logger.Warn("failed to send reply", zap.String("channel", channelID), zap.Error(err))
	}
}

// typing shows the typing indicator while a command waits on the api
func (b *Bot) typing(session DiscordSession, channelID string) {
	if err := session.ChannelTyping(channelID); err != nil {
		b.logger.Debug("failed to send typing indicator", zap.String("channel", channelID), zap.Error(err))
	}
}
