package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/cli"
	"github.com/specialistvlad/previewgo/internal/ctxlog"
)

// options holds the parsed command line.
type options struct {
	URL      string
	Timeout  time.Duration
	Wait     time.Duration
	Insecure bool
	Command  string
	StoryID  string
}

// main is the entrypoint for the previewctl host tool.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseArgs processes command-line arguments. It reports whether the
// program should exit cleanly after printing help.
func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	flagSet := flag.NewFlagSet("previewctl", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
previewctl - Control a running previewgo preview.

Usage:
  previewctl [options] rerender
  previewctl [options] select STORY_ID
  previewctl [options] events

Options:
`)
		flagSet.PrintDefaults()
	}

	o := &options{}
	flagSet.StringVar(&o.URL, "url", "http://localhost:6006/socket.io/", "socket.io endpoint of the preview.")
	flagSet.DurationVar(&o.Timeout, "timeout", channel.DefaultDialTimeout, "How long to wait for the connection.")
	flagSet.DurationVar(&o.Wait, "wait", 5*time.Second, "How long to wait for the preview to answer a command.")
	flagSet.BoolVar(&o.Insecure, "insecure", false, "Skip TLS certificate verification.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return nil, false, &cli.ExitError{Code: 2, Message: "a command is required: rerender, select or events"}
	}
	o.Command = rest[0]
	switch o.Command {
	case "rerender", "events":
		if len(rest) != 1 {
			return nil, false, &cli.ExitError{Code: 2, Message: fmt.Sprintf("%s takes no arguments", o.Command)}
		}
	case "select":
		if len(rest) != 2 || rest[1] == "" {
			return nil, false, &cli.ExitError{Code: 2, Message: "select requires exactly one STORY_ID"}
		}
		o.StoryID = rest[1]
	default:
		return nil, false, &cli.ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", o.Command)}
	}
	return o, false, nil
}

// run connects to the preview and executes one command.
func run(ctx context.Context, outW io.Writer, args []string) error {
	o, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	ctx = ctxlog.WithLogger(ctx, slog.Default())
	remote, err := channel.Dial(ctx, o.URL, channel.DialOptions{
		InsecureSkipVerify: o.Insecure,
		Timeout:            o.Timeout,
	})
	if err != nil {
		return err
	}
	defer remote.Close()

	switch o.Command {
	case "events":
		return streamEvents(ctx, outW, remote)
	case "select":
		return command(ctx, outW, remote, o.Wait,
			func() error { return remote.Emit(channel.EventSetCurrentStory, map[string]any{"storyId": o.StoryID}) })
	default:
		return command(ctx, outW, remote, o.Wait,
			func() error { return remote.Emit(channel.EventForceReRender) })
	}
}

// outcomeEvents end a command: the preview has finished the render it caused.
var outcomeEvents = []string{
	channel.EventStoryRendered,
	channel.EventStoryMissing,
	channel.EventStoryErrored,
	channel.EventStoryThrewException,
}

// command sends one request and prints the preview's answer.
func command(ctx context.Context, outW io.Writer, remote *channel.Remote, wait time.Duration, send func() error) error {
	done := make(chan []any, 1)
	for _, ev := range outcomeEvents {
		remote.On(ev, func(args ...any) {
			select {
			case done <- append([]any{ev}, args...):
			default:
			}
		})
	}

	if err := send(); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	select {
	case args := <-done:
		if err := printEvent(outW, args); err != nil {
			return err
		}
		if args[0] != channel.EventStoryRendered {
			return &cli.ExitError{Code: 1, Message: fmt.Sprintf("preview answered %s", args[0])}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return fmt.Errorf("no answer from the preview within %v", wait)
	}
}

// streamEvents prints every event until ctx is cancelled.
func streamEvents(ctx context.Context, outW io.Writer, remote *channel.Remote) error {
	lines := make(chan []any, 64)
	remote.OnAny(func(args ...any) {
		select {
		case lines <- args:
		default:
			slog.Warn("Dropping event, output is too slow.")
		}
	})
	for {
		select {
		case args := <-lines:
			if err := printEvent(outW, args); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// printEvent writes args as a single JSON line.
func printEvent(outW io.Writer, args []any) error {
	data, err := sonic.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = fmt.Fprintln(outW, string(data))
	return err
}
