// Package config loads the bot's settings from viper (environment, optional
// config file) with defaults.
package config

import (
	"errors"
	"strings"

	"github.com/pilegoblin/gembot/internal/gemini"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "GEMBOT"

	DefaultPrefix           = "!"
	DefaultMaxMessageLength = 2000
)

var (
	ErrMissingDiscordToken = errors.New("token for Discord API not found (set GEMBOT_DISCORD_TOKEN)")
	ErrMissingGeminiKey    = errors.New("token for Google API not found (set GEMBOT_GEMINI_API_KEY)")
)

type Config struct {
	Discord Discord
	Gemini  gemini.Options
	Bot     Bot
	History History
	Logging Logging
}

type Discord struct {
	Token string
}

type Bot struct {
	Prefix           string
	Status           string
	MaxMessageLength int
}

type History struct {
	Dir string
}

type Logging struct {
	Level     string
	Format    string
	AddSource bool
}

// SetDefaults registers default values and the environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("gemini.model", gemini.DefaultModel)
	v.SetDefault("gemini.thinking_budget", 0)
	v.SetDefault("bot.prefix", DefaultPrefix)
	v.SetDefault("bot.status", "with your history")
	v.SetDefault("bot.max_message_length", DefaultMaxMessageLength)
	v.SetDefault("history.dir", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("discord.token", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.system_instruction", "")
}

// Load builds a Config from v. SetDefaults must have been called on v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Discord: Discord{
			Token: strings.TrimSpace(v.GetString("discord.token")),
		},
		Gemini: gemini.Options{
			APIKey:            strings.TrimSpace(v.GetString("gemini.api_key")),
			Model:             strings.TrimSpace(v.GetString("gemini.model")),
			SystemInstruction: v.GetString("gemini.system_instruction"),
			ThinkingBudget:    v.GetInt32("gemini.thinking_budget"),
		},
		Bot: Bot{
			Prefix:           v.GetString("bot.prefix"),
			Status:           v.GetString("bot.status"),
			MaxMessageLength: v.GetInt("bot.max_message_length"),
		},
		History: History{
			Dir: v.GetString("history.dir"),
		},
		Logging: Logging{
			Level:     v.GetString("logging.level"),
			Format:    v.GetString("logging.format"),
			AddSource: v.GetBool("logging.add_source"),
		},
	}

	if cfg.Discord.Token == "" {
		return Config{}, ErrMissingDiscordToken
	}
	if cfg.Gemini.APIKey == "" {
		return Config{}, ErrMissingGeminiKey
	}
	if cfg.Bot.Prefix == "" {
		cfg.Bot.Prefix = DefaultPrefix
	}
	if cfg.Bot.MaxMessageLength <= 0 || cfg.Bot.MaxMessageLength > DefaultMaxMessageLength {
		cfg.Bot.MaxMessageLength = DefaultMaxMessageLength
	}
	return cfg, nil
}
