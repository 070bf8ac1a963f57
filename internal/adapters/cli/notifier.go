// Package cli contains the terminal output adapters.
package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/ports/secondary"
)

// Notifier implements secondary.Notifier by printing one line per message.
// Errors go to errOut, everything else to out.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// NewNotifier creates a Notifier writing to out and errOut.
func NewNotifier(out, errOut io.Writer) *Notifier {
	return &Notifier{out: out, errOut: errOut}
}

var _ secondary.Notifier = (*Notifier)(nil)

// Notify prints message styled by level.
func (n *Notifier) Notify(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch level {
	case effects.LevelSuccess:
		fmt.Fprintf(n.out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), message)
	case effects.LevelError:
		fmt.Fprintf(n.errOut, "%s %s\n", color.New(color.FgRed).Sprint("✗"), message)
	default:
		fmt.Fprintf(n.out, "%s %s\n", color.New(color.FgCyan).Sprint("•"), message)
	}
}
