package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	session    *discordgo.Session
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func New(ctx context.Context, token string, d *Dispatcher, logger *slog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	bb := &Bot{
		session:    dg,
		dispatcher: d,
		logger:     logger,
	}

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	dg.AddHandler(bb.onReady)
	dg.AddHandler(bb.onMessage(ctx))

	return bb, nil
}

// Start opens the gateway connection and blocks until ctx is done.
func (bb *Bot) Start(ctx context.Context) error {
	if err := bb.session.Open(); err != nil {
		return err
	}
	defer func() {
		if err := bb.session.Close(); err != nil {
			bb.logger.Error("closing discord session", "error", err)
		}
	}()

	bb.logger.Info("bot active")
	<-ctx.Done()
	return nil
}

// Sets the bot's status to 'Playing <status>'
func (bb *Bot) SetStatus(status string) {
	if status == "" {
		return
	}
	bb.session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		if err := s.UpdateGameStatus(0, status); err != nil {
			bb.logger.Warn("unable to set status", "error", err)
		}
	})
}

func (bb *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	bb.logger.Info("logged in", "user", event.User.Username, "guilds", len(event.Guilds))
}

func (bb *Bot) onMessage(ctx context.Context) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if isOwnMessage(s.State, m.Message) {
			return
		}
		bb.dispatcher.Handle(ctx, s, m.Message)
	}
}

func isOwnMessage(state *discordgo.State, m *discordgo.Message) bool {
	if m == nil || m.Author == nil {
		return true
	}
	if state == nil || state.User == nil {
		return false
	}
	return m.Author.ID == state.User.ID
}
