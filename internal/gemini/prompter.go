package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pilegoblin/gembot/internal/history"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
)

var (
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrMissingAPIKey = errors.New("token for Google API not found")
)

// Options configures the chat sessions a Prompter creates.
type Options struct {
	APIKey            string
	Model             string
	SystemInstruction string
	ThinkingBudget    int32
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	History(curated bool) []*genai.Content
}

type sessionFactory func(ctx context.Context, seed []*genai.Content) (chatSession, error)

// Prompter holds the one chat session the bot talks to. Loading a history
// replaces the session wholesale.
type Prompter struct {
	client      *genai.Client
	opts        Options
	chatSession chatSession
	sessMutex   sync.Mutex
	newSession  sessionFactory
}

func NewPrompter(ctx context.Context, opts Options) (*Prompter, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	gp := &Prompter{client: client, opts: opts}
	gp.newSession = gp.createChatSession
	return gp, nil
}

// Prompt sends text to the current session, starting one if needed, and
// returns the full response text.
func (gp *Prompter) Prompt(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	gp.sessMutex.Lock()
	defer gp.sessMutex.Unlock()

	// Initialize chat session if not already created
	if gp.chatSession == nil {
		s, err := gp.newSession(ctx, nil)
		if err != nil {
			return "", err
		}
		gp.chatSession = s
	}

	resp, err := gp.chatSession.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// History returns the curated turns of the current session. A session that
// was never started has no history.
func (gp *Prompter) History() []history.Record {
	gp.sessMutex.Lock()
	defer gp.sessMutex.Unlock()

	if gp.chatSession == nil {
		return nil
	}
	return ToRecords(gp.chatSession.History(true))
}

// Replace starts a new session seeded with records and swaps it in. The old
// session is kept if the new one cannot be created.
func (gp *Prompter) Replace(ctx context.Context, records []history.Record) error {
	s, err := gp.newSession(ctx, ToContents(records))
	if err != nil {
		return err
	}

	gp.sessMutex.Lock()
	gp.chatSession = s
	gp.sessMutex.Unlock()
	return nil
}

func (gp *Prompter) Reset(ctx context.Context) error {
	return gp.Replace(ctx, nil)
}

func (gp *Prompter) createChatSession(ctx context.Context, seed []*genai.Content) (chatSession, error) {
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: &gp.opts.ThinkingBudget,
		},
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHarassment,
				Threshold: genai.HarmBlockThresholdOff,
			},
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: genai.HarmBlockThresholdOff,
			},
			{
				Category:  genai.HarmCategorySexuallyExplicit,
				Threshold: genai.HarmBlockThresholdOff,
			},
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdOff,
			},
		},
	}
	if gp.opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(gp.opts.SystemInstruction, genai.RoleUser)
	}

	chat, err := gp.client.Chats.Create(ctx, gp.opts.Model, config, seed)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return chat, nil
}
