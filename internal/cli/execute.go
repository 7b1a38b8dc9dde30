package cli

import (
	"context"
	"errors"
	"io"

	"github.com/roach88/medivault/internal/ingest"
	"github.com/roach88/medivault/internal/store"
)

// errPartialFailure marks an ingest whose confirmed batch was only partly saved.
var errPartialFailure = errors.New("some events were not saved")

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr, as a JSON envelope when --format json.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if f.Format != "json" {
		f.Format = "text"
	}
	_ = f.Error(errorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// errorCode maps an error to the code reported in the error envelope.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ingest.ErrAnalysisFailed):
		return CodeAnalysisFailed
	case errors.Is(err, errPartialFailure):
		return CodePartialFailure
	case store.IsNotFound(err):
		return CodeNotFound
	default:
		return "COMMAND_ERROR"
	}
}
