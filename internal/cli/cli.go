package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/previewgo/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags override environment variables, which override the project file.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("previewgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
previewgo - A live story preview server.

Usage:
  previewgo [options] [STORIES_PATH]

Arguments:
  STORIES_PATH
    Path to a single .stories.hcl file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := config.Defaults()
	storiesFlag := flagSet.String("stories", "", "Path to the stories file or directory.")
	sFlag := flagSet.String("s", "", "Path to the stories file or directory (shorthand).")
	configFlag := flagSet.String("config", "", "Path to the project file. Defaults to ./"+config.DefaultFileName+" when present.")
	listenFlag := flagSet.String("listen", defaults.Listen, "Address of the HTTP server. Empty disables it.")
	frameworkFlag := flagSet.String("framework", defaults.Framework, "Framework name merged into the story parameters.")
	initialStoryFlag := flagSet.String("initial-story", "", "Story id selected on startup.")
	watchFlag := flagSet.Bool("watch", defaults.Watch, "Reload stories when files change.")
	hotFlag := flagSet.Bool("hot", defaults.Hot, "Diff each reload against the previous one instead of re-adding every module.")
	debounceFlag := flagSet.Duration("debounce", defaults.Debounce, "Quiet period before a burst of file changes is reloaded.")
	v7Flag := flagSet.Bool("story-store-v7", false, "Retire the client API; every client call fails.")
	checkFlag := flagSet.Bool("check", false, "Validate the stories and exit.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := config.Defaults()
	configPath, optional := *configFlag, false
	if configPath == "" {
		configPath, optional = config.DefaultFileName, true
	}
	if err := config.LoadFile(configPath, &cfg, optional); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyString := func(name string, dst *string, v string) {
		if set[name] {
			*dst = v
		}
	}
	applyString("listen", &cfg.Listen, *listenFlag)
	applyString("framework", &cfg.Framework, *frameworkFlag)
	applyString("initial-story", &cfg.InitialStory, *initialStoryFlag)
	applyString("log-format", &cfg.LogFormat, strings.ToLower(*logFormatFlag))
	applyString("log-level", &cfg.LogLevel, strings.ToLower(*logLevelFlag))
	if set["watch"] {
		cfg.Watch = *watchFlag
	}
	if set["hot"] {
		cfg.Hot = *hotFlag
	}
	if set["debounce"] {
		cfg.Debounce = *debounceFlag
	}
	if set["story-store-v7"] {
		cfg.StoryStoreV7 = *v7Flag
	}
	cfg.CheckOnly = *checkFlag

	if *storiesFlag != "" {
		cfg.StoriesPath = *storiesFlag
	} else if *sFlag != "" {
		cfg.StoriesPath = *sFlag
	} else if flagSet.NArg() > 0 {
		cfg.StoriesPath = flagSet.Arg(0)
	}
	slog.Debug("Stories path determined.", "path", cfg.StoriesPath)

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return &cfg, false, nil
}
