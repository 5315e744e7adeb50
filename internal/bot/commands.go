package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/pilegoblin/gembot/internal/gemini"
	"github.com/pilegoblin/gembot/internal/history"
	"github.com/pilegoblin/gembot/internal/logutil"
)

const (
	msgUnknownCommand = "I don't understand that command!"
	msgNotJSONFile    = "The given path does not refer to a JSON file, or it does not exist!"
	msgNeedJSONPath   = "You need to specify a JSON file path."
	msgOutsideDir     = "That path is outside the history directory."
	msgBadHistory     = "I couldn't read a conversation history from %s."
	msgLoaded         = "A new chat session was created with the messages loaded from %s!"
	msgSaved          = "The file %s, with our conversation, was saved successfully!"
	msgSaveFailed     = "I couldn't save our conversation to %s."
	msgSessionFailed  = "I couldn't start a new chat session, please try again."
	msgReset          = "Started a fresh chat session!"
	msgEmptyPrompt    = "Tell me what to ask, e.g. `%sprompt hello`."
	msgPromptFailed   = "Something went wrong while talking to the model, please try again."
	msgNoAnswer       = "The model had nothing to say to that."
)

// Conversation is the chat session the commands operate on.
type Conversation interface {
	Prompt(ctx context.Context, text string) (string, error)
	History() []history.Record
	Replace(ctx context.Context, records []history.Record) error
	Reset(ctx context.Context) error
}

// Request is one parsed command message.
type Request struct {
	Name      string
	Args      string
	Filename  string
	ChannelID string
}

type handlerFunc func(ctx context.Context, s Sender, req Request) error

type command struct {
	usage   string
	handler handlerFunc
}

// Dispatcher maps command names to handlers acting on one Conversation.
type Dispatcher struct {
	conv     Conversation
	prefix   string
	maxLen   int
	resolver history.Resolver
	logger   *slog.Logger
	now      func() time.Time
	typing   time.Duration
	commands map[string]command
}

type DispatcherOptions struct {
	Prefix           string
	MaxMessageLength int
	HistoryDir       string
	Logger           *slog.Logger
}

func NewDispatcher(conv Conversation, opts DispatcherOptions) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = MaxMessageLength
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dispatcher{
		conv:     conv,
		prefix:   opts.Prefix,
		maxLen:   opts.MaxMessageLength,
		resolver: history.NewResolver(opts.HistoryDir),
		logger:   opts.Logger,
		now:      time.Now,
		typing:   typingInterval,
	}
	d.commands = map[string]command{
		"prompt":       {usage: "prompt <text> - ask the model", handler: d.prompt},
		"load-history": {usage: "load-history <file.json> - start a new session from a saved conversation", handler: d.loadHistory},
		"save-history": {usage: "save-history [file.json] - save this conversation", handler: d.saveHistory},
		"reset":        {usage: "reset - start a fresh session", handler: d.reset},
		"help":         {usage: "help - list commands", handler: d.help},
	}
	return d
}

// Parse reads a command off a message. ok is false when content does not
// start with the prefix.
func (d *Dispatcher) Parse(content string) (req Request, ok bool) {
	if !strings.HasPrefix(content, d.prefix) {
		return Request{}, false
	}
	rest := content[len(d.prefix):]

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		end = len(rest)
	}
	req.Name = rest[:end]
	req.Args = strings.TrimSpace(rest[end:])
	req.Filename, _ = history.ExtractFilename(content)
	return req, true
}

// Handle runs the command in m, replying in m's channel.
func (d *Dispatcher) Handle(ctx context.Context, s Sender, m *discordgo.Message) {
	req, ok := d.Parse(m.Content)
	if !ok {
		return
	}
	req.ChannelID = m.ChannelID

	logger := d.logger.With(
		"request_id", uuid.NewString(),
		"command", req.Name,
		"channel_id", m.ChannelID,
	)
	if m.Author != nil {
		logger = logger.With("author_id", m.Author.ID)
	}
	ctx = logutil.WithLogger(ctx, logger)

	cmd, ok := d.commands[req.Name]
	if !ok {
		logger.Debug("unknown command")
		d.reply(ctx, s, req.ChannelID, msgUnknownCommand)
		return
	}

	start := time.Now()
	if err := cmd.handler(ctx, s, req); err != nil {
		logger.Error("command failed", "error", err, "elapsed", time.Since(start))
		return
	}
	logger.Info("command handled", "elapsed", time.Since(start))
}

func (d *Dispatcher) reply(ctx context.Context, s Sender, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		logutil.FromContext(ctx).Error("unable to send reply", "error", err)
	}
}

func (d *Dispatcher) prompt(ctx context.Context, s Sender, req Request) error {
	if req.Args == "" {
		d.reply(ctx, s, req.ChannelID, fmt.Sprintf(msgEmptyPrompt, d.prefix))
		return nil
	}

	stop := AsyncType(s, req.ChannelID, d.typing, logutil.FromContext(ctx))
	resp, err := d.conv.Prompt(ctx, req.Args)
	stop()
	if err != nil {
		if errors.Is(err, gemini.ErrEmptyResponse) {
			d.reply(ctx, s, req.ChannelID, msgNoAnswer)
			return nil
		}
		d.reply(ctx, s, req.ChannelID, msgPromptFailed)
		return err
	}

	if err := SendChunks(s, req.ChannelID, Paginate(resp, d.maxLen)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

func (d *Dispatcher) loadHistory(ctx context.Context, s Sender, req Request) error {
	if req.Filename == "" {
		d.reply(ctx, s, req.ChannelID, msgNotJSONFile)
		return nil
	}

	path, err := d.resolver.Resolve(req.Filename)
	if err != nil {
		d.reply(ctx, s, req.ChannelID, msgOutsideDir)
		return nil
	}

	records, err := history.Load(path)
	switch {
	case errors.Is(err, history.ErrNotJSONFile):
		d.reply(ctx, s, req.ChannelID, msgNotJSONFile)
		return nil
	case err != nil:
		d.reply(ctx, s, req.ChannelID, fmt.Sprintf(msgBadHistory, req.Filename))
		logutil.FromContext(ctx).Warn("invalid history file", "path", path, "error", err)
		return nil
	}

	if err := d.conv.Replace(ctx, records); err != nil {
		d.reply(ctx, s, req.ChannelID, msgSessionFailed)
		return err
	}

	logutil.FromContext(ctx).Info("history loaded", "path", path, "records", len(records))
	d.reply(ctx, s, req.ChannelID, fmt.Sprintf(msgLoaded, req.Filename))
	return nil
}

func (d *Dispatcher) saveHistory(ctx context.Context, s Sender, req Request) error {
	name := req.Filename
	if name == "" {
		if req.Args != "" {
			d.reply(ctx, s, req.ChannelID, msgNeedJSONPath)
			return nil
		}
		name = history.DefaultFilename(d.now())
	}
	if !history.IsJSONPath(name) {
		d.reply(ctx, s, req.ChannelID, msgNeedJSONPath)
		return nil
	}

	path, err := d.resolver.Resolve(name)
	if err != nil {
		d.reply(ctx, s, req.ChannelID, msgOutsideDir)
		return nil
	}

	records := d.conv.History()
	if err := history.Save(path, records); err != nil {
		d.reply(ctx, s, req.ChannelID, fmt.Sprintf(msgSaveFailed, name))
		return err
	}

	logutil.FromContext(ctx).Info("history saved", "path", path, "records", len(records))
	d.reply(ctx, s, req.ChannelID, fmt.Sprintf(msgSaved, name))
	return nil
}

func (d *Dispatcher) reset(ctx context.Context, s Sender, req Request) error {
	if err := d.conv.Reset(ctx); err != nil {
		d.reply(ctx, s, req.ChannelID, msgSessionFailed)
		return err
	}
	d.reply(ctx, s, req.ChannelID, msgReset)
	return nil
}

func (d *Dispatcher) help(ctx context.Context, s Sender, req Request) error {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "`%s%s`\n", d.prefix, d.commands[name].usage)
	}
	return SendChunks(s, req.ChannelID, Paginate(sb.String(), d.maxLen))
}
