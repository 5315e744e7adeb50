package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEMBOT_DISCORD_TOKEN", "discord-token")
	t.Setenv("GEMBOT_GEMINI_API_KEY", "gemini-key")
	t.Setenv("GEMBOT_GEMINI_MODEL", "gemini-test")
	t.Setenv("GEMBOT_HISTORY_DIR", "/var/lib/gembot")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Discord.Token != "discord-token" || cfg.Gemini.APIKey != "gemini-key" {
		t.Fatalf("unexpected credentials: %#v", cfg)
	}
	if cfg.Gemini.Model != "gemini-test" {
		t.Fatalf("unexpected model: %q", cfg.Gemini.Model)
	}
	if cfg.History.Dir != "/var/lib/gembot" {
		t.Fatalf("unexpected history dir: %q", cfg.History.Dir)
	}
	if cfg.Bot.Prefix != "!" || cfg.Bot.MaxMessageLength != 2000 {
		t.Fatalf("unexpected bot defaults: %#v", cfg.Bot)
	}
}

func TestLoadRequiresTokens(t *testing.T) {
	t.Setenv("GEMBOT_DISCORD_TOKEN", "")
	t.Setenv("GEMBOT_GEMINI_API_KEY", "gemini-key")
	if _, err := Load(newViper()); !errors.Is(err, ErrMissingDiscordToken) {
		t.Fatalf("expected ErrMissingDiscordToken, got %v", err)
	}

	t.Setenv("GEMBOT_DISCORD_TOKEN", "discord-token")
	t.Setenv("GEMBOT_GEMINI_API_KEY", "")
	if _, err := Load(newViper()); !errors.Is(err, ErrMissingGeminiKey) {
		t.Fatalf("expected ErrMissingGeminiKey, got %v", err)
	}
}

func TestLoadClampsMessageLength(t *testing.T) {
	t.Setenv("GEMBOT_DISCORD_TOKEN", "discord-token")
	t.Setenv("GEMBOT_GEMINI_API_KEY", "gemini-key")
	t.Setenv("GEMBOT_BOT_MAX_MESSAGE_LENGTH", "5000")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bot.MaxMessageLength != DefaultMaxMessageLength {
		t.Fatalf("expected clamp to %d, got %d", DefaultMaxMessageLength, cfg.Bot.MaxMessageLength)
	}
}
