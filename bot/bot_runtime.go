/* bot_runtime.go
 * Runtime-only methods that need a live *discordgo.Session. Message handling is delegated to handlers.go
 */

package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Run connects to Discord and serves admin commands until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	discord, err := discordgo.New("Bot " + b.BotToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	discord.AddHandler(func(_ *discordgo.Session, ready *discordgo.Ready) {
		b.logger.Info("connected to discord", zap.String("user", ready.User.Username), zap.Int("guilds", len(ready.Guilds)))
	})
	discord.AddHandler(b.newMessage)

	if err := discord.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}
	defer discord.Close()

	if b.ChannelID != "" {
		b.logger.Info("admin bot restricted to channel", zap.String("channel", b.ChannelID))
	}
	<-ctx.Done()
	b.logger.Info("admin bot stopping")
	return nil
}

// newMessage adapts the discordgo callback to newMessageHandler
func (b *Bot) newMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {
	if discord.State == nil || discord.State.User == nil {
		return
	}
	b.newMessageHandler(discord, message, discord.State.User.ID)
}
