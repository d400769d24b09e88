package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the supported environment overrides. Unset variables
// leave the configuration untouched.
type envConfig struct {
	Stories      string        `env:"PREVIEWGO_STORIES"`
	Suffix       string        `env:"PREVIEWGO_SUFFIX"`
	Listen       string        `env:"PREVIEWGO_LISTEN"`
	Framework    string        `env:"PREVIEWGO_FRAMEWORK"`
	InitialStory string        `env:"PREVIEWGO_INITIAL_STORY"`
	Watch        *bool         `env:"PREVIEWGO_WATCH"`
	Hot          *bool         `env:"PREVIEWGO_HOT"`
	Debounce     time.Duration `env:"PREVIEWGO_DEBOUNCE"`
	StoryStoreV7 *bool         `env:"PREVIEWGO_STORY_STORE_V7"`
	LogFormat    string        `env:"PREVIEWGO_LOG_FORMAT"`
	LogLevel     string        `env:"PREVIEWGO_LOG_LEVEL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv applies PREVIEWGO_* variables on top of cfg.
func ApplyEnv(cfg *Config) error {
	var ec envConfig
	if err := ParseEnv(&ec); err != nil {
		return err
	}
	setString(&cfg.StoriesPath, ec.Stories)
	setString(&cfg.Suffix, ec.Suffix)
	setString(&cfg.Listen, ec.Listen)
	setString(&cfg.Framework, ec.Framework)
	setString(&cfg.InitialStory, ec.InitialStory)
	setString(&cfg.LogFormat, ec.LogFormat)
	setString(&cfg.LogLevel, ec.LogLevel)
	if ec.Watch != nil {
		cfg.Watch = *ec.Watch
	}
	if ec.Hot != nil {
		cfg.Hot = *ec.Hot
	}
	if ec.Debounce > 0 {
		cfg.Debounce = ec.Debounce
	}
	if ec.StoryStoreV7 != nil {
		cfg.StoryStoreV7 = *ec.StoryStoreV7
	}
	return nil
}
