package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/productdevbook/port-manager/internal/scanner"
)

// New returns a logger writing to w. Terminals get the console format,
// anything else gets JSON lines.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup returns the CLI logger on stderr
func Setup(debug bool) zerolog.Logger {
	return New(os.Stderr, debug)
}

// WrapRunner logs every command run through next at debug level
func WrapRunner(logger zerolog.Logger, next scanner.Runner) scanner.Runner {
	return scanner.RunnerFunc(func(ctx context.Context, name string, args ...string) (scanner.Output, error) {
		start := time.Now()
		out, err := next.Run(ctx, name, args...)

		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("tool", name).
			Str("args", strings.Join(args, " ")).
			Int("exit_code", out.ExitCode).
			Int("stdout_bytes", len(out.Stdout)).
			Dur("elapsed", time.Since(start)).
			Msg("ran external tool")

		return out, err
	})
}
