package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultFileName is the project file looked up in the working directory.
const DefaultFileName = "previewgo.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	StoriesPath  string
	Suffix       string
	Listen       string
	Framework    string
	InitialStory string
	Watch        bool
	// Hot diffs each reload against the previous one. Without it every
	// cycle re-adds all modules and deleted files are unloaded by the watcher.
	Hot          bool
	Debounce     time.Duration
	StoryStoreV7 bool
	// CheckOnly validates the stories and exits.
	CheckOnly bool

	LogFormat string
	LogLevel  string

	// Parameters are project-wide story parameters from the project file.
	Parameters map[string]any
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		StoriesPath: ".",
		Suffix:      ".stories.hcl",
		Listen:      ":6006",
		Framework:   "text",
		Watch:       true,
		Hot:         true,
		Debounce:    50 * time.Millisecond,
		LogFormat:   "text",
		LogLevel:    "info",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.StoriesPath == "" {
		return errors.New("stories path is a required configuration field and cannot be empty")
	}
	if c.Suffix == "" {
		return errors.New("story file suffix cannot be empty")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("invalid debounce %v: must be positive", c.Debounce)
	}
	return nil
}
