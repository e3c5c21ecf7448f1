/* fake_session_test.go
 * In-memory DiscordSession used by the handler tests
 */

package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// sentMessage is one reply captured by fakeSession
type sentMessage struct {
	ChannelID string
	Content   string
}

// fakeSession records replies and typing indicators instead of calling Discord
type fakeSession struct {
	Sent    []sentMessage
	Typing  []string
	SendErr error // returned by every ChannelMessageSend when set
}

func newFakeSession() *fakeSession {
	return &fakeSession{}
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.Sent = append(f.Sent, sentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	f.Typing = append(f.Typing, channelID)
	return nil
}

// last returns the most recent reply, or the zero value when nothing was sent
func (f *fakeSession) last() sentMessage {
	if len(f.Sent) == 0 {
		return sentMessage{}
	}
	return f.Sent[len(f.Sent)-1]
}

var errSendFailed = errors.New("discord unavailable")
