package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// FormatDuration renders an average duration as "Hh Mm", "Mm Ss" or "Ss".
// A nil duration renders as "—".
func FormatDuration(d *time.Duration) string {
	if d == nil {
		return "—"
	}
	total := int64(*d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// mark renders a milestone checkbox.
func mark(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}

// formatDate renders an event date, or "-" when unknown.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("Jan 2, 2006")
}

func statusColor(status string) string {
	switch status {
	case "completed":
		return color.New(color.FgGreen).Sprint(status)
	case "cancelled":
		return color.New(color.FgRed).Sprint(status)
	case "pending":
		return color.New(color.FgYellow).Sprint(status)
	}
	return color.New(color.FgCyan).Sprint(status)
}
