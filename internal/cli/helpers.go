// Package cli contains the cobra commands of the dayof binary.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/dayof/internal/config"
	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/wire"
)

// reportedError is an error the user has already been notified about.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reported marks err as already shown to the user.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user, so the
// caller only needs to set the exit status.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// resolveEventID returns the event id argument, or the focused event from
// .dayof/config.json in the working directory.
func resolveEventID(args []string, idx int) (string, error) {
	if len(args) > idx {
		id := strings.TrimSpace(args[idx])
		if id != "" {
			if !event.ValidID(id) {
				return "", fmt.Errorf("invalid event id %q", id)
			}
			return id, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(cwd)
	if err == nil && event.ValidID(cfg.FocusEventID) {
		return cfg.FocusEventID, nil
	}
	return "", errors.New("no event specified: pass an event id or run 'dayof event focus <id>'")
}

// requireLogin restores the stored credential for this process.
func requireLogin(ctx context.Context) error {
	err := wire.AuthService().Restore(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return errors.New("not logged in: run 'dayof login' first")
	case errors.Is(err, apperrors.ErrSessionInvalid):
		return errors.New("your session has expired: run 'dayof login' again")
	}
	return err
}

// loggedIn wraps a RunE so it only runs with a restored credential.
func loggedIn(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(cmd.Context()); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

// readLine prompts on out and reads one trimmed line from in.
func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
