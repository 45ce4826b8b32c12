package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"corpusreduce/internal/logger"
)

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string) (CLIResult, error) {
	return RunWithIO(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO is Run with explicit standard streams. Help text goes to stdout,
// logs go to stderr.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (CLIResult, error) {
	inv, err := ParseInvocation(args, stdout)
	if errors.Is(err, ErrHelpRequested) {
		return CLIResult{ExitCode: ExitSuccess}, nil
	}
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(inv.Config.Log.Level),
		Output:     stderr,
		JSON:       inv.Config.Log.JSON,
		TimeFormat: logger.DefaultConfig().TimeFormat,
	})
	return Execute(logger.ContextWithLogger(ctx, log), inv, stdin)
}
