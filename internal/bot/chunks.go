package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageLength is Discord's limit on characters per message.
const MaxMessageLength = 2000

// Sender is the part of *discordgo.Session the bot talks back through.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// Paginate splits text into chunks of at most limit characters whose
// concatenation is text. A chunk ends after the last newline in its window
// when that newline falls in the window's second half.
func Paginate(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// SendChunks sends chunks in order, skipping blank ones, and stops at the
// first failure.
func SendChunks(s Sender, channelID string, chunks []string) error {
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			return err
		}
	}
	return nil
}
