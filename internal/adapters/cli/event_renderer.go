package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ports/primary"
)

// EventRenderer prints events, analytics and workflow boards.
type EventRenderer struct {
	out io.Writer
}

// NewEventRenderer creates a renderer writing to out.
func NewEventRenderer(out io.Writer) *EventRenderer {
	return &EventRenderer{out: out}
}

// List prints the event table with progress marks.
func (r *EventRenderer) List(resp *primary.ListEventsResponse) {
	if resp.Stale {
		fmt.Fprintf(r.out, "%s showing cached events from %s\n\n",
			color.New(color.FgYellow).Sprint("offline:"),
			resp.FetchedAt.Local().Format(time.RFC1123))
	}

	if len(resp.Events) == 0 {
		fmt.Fprintln(r.out, "No events yet.")
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Create your first event:")
		fmt.Fprintln(r.out, `  dayof event create --name "Harbor Wedding" --date 2026-07-04 --location "Pier 17" ...`)
		return
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tEVENT\tDATE\tSTATUS\tPROGRESS")
	fmt.Fprintln(w, "--\t-----\t----\t------\t--------")
	for _, s := range resp.Events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Event.ID,
			s.Event.EventName,
			formatDate(s.Event.EventDate),
			s.Event.Status,
			progressLine(s.Progress),
		)
	}
	w.Flush()
}

// progressLine renders the five milestones on one line.
func progressLine(p primary.Progress) string {
	return strings.Join([]string{
		mark(p.CheckedIn) + " Check-in",
		mark(p.StartVerified) + " Start OTP",
		fmt.Sprintf("%s Pre-Photos (%d)", mark(p.PrePhotos > 0), p.PrePhotos),
		fmt.Sprintf("%s Post-Photos (%d)", mark(p.PostPhotos > 0), p.PostPhotos),
		mark(p.Closed) + " Closing OTP",
	}, "  ")
}

// Show prints one event's details and progress.
func (r *EventRenderer) Show(s *primary.EventSummary) {
	e := s.Event
	fmt.Fprintf(r.out, "\nEvent: %s\n", e.ID)
	fmt.Fprintf(r.out, "Name:     %s\n", e.EventName)
	fmt.Fprintf(r.out, "Date:     %s\n", formatDate(e.EventDate))
	fmt.Fprintf(r.out, "Location: %s\n", e.Location)
	fmt.Fprintf(r.out, "Customer: %s <%s> %s\n", e.CustomerName, e.CustomerEmail, e.CustomerPhone)
	fmt.Fprintf(r.out, "Status:   %s\n", statusColor(string(e.Status)))
	fmt.Fprintf(r.out, "Progress: %s\n", progressLine(s.Progress))
	fmt.Fprintln(r.out)
}

// Analytics prints totals, status counts and average durations.
func (r *EventRenderer) Analytics(a *primary.Analytics) {
	fmt.Fprintln(r.out, "Totals")
	fmt.Fprintf(r.out, "  All:     %d\n", a.Total)
	fmt.Fprintf(r.out, "  Active:  %d\n", a.Active)
	fmt.Fprintf(r.out, "  Deleted: %d\n", a.Deleted)
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, "By status")
	if len(a.StatusCounts) == 0 {
		fmt.Fprintln(r.out, "  (none)")
	}
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, sc := range a.StatusCounts {
		fmt.Fprintf(w, "  %s\t%d\n", sc.Status, sc.Count)
	}
	w.Flush()
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, "Average durations")
	fmt.Fprintf(r.out, "  Check-in → Started:   %s\n", FormatDuration(a.CheckInToStarted))
	fmt.Fprintf(r.out, "  Started → Completed:  %s\n", FormatDuration(a.StartedToCompleted))
	fmt.Fprintf(r.out, "  Check-in → Completed: %s\n", FormatDuration(a.CheckInToCompleted))
}

// Board prints the step list with lock and completion marks, the selected
// step, and any OTP countdowns.
func (r *EventRenderer) Board(b primary.Board) {
	fmt.Fprintf(r.out, "\n%s  %s  [%s]\n\n", b.Event.EventName, formatDate(b.Event.EventDate), statusColor(string(b.Event.Status)))

	for _, s := range b.Steps {
		cursor := "  "
		if s.Selected {
			cursor = color.New(color.FgHiMagenta).Sprint("→ ")
		}
		state := ""
		switch {
		case s.Complete:
			state = color.New(color.FgGreen).Sprint("done")
		case s.Unlocked:
			state = color.New(color.FgCyan).Sprint("ready")
		default:
			state = color.New(color.FgHiBlack).Sprint("locked")
		}
		fmt.Fprintf(r.out, "%s%s %d. %s  %s\n", cursor, mark(s.Complete), s.Number, s.Title, state)
	}

	fmt.Fprintf(r.out, "\nSetup photos: pre %d, post %d\n", b.Setup.PreCount, b.Setup.PostCount)
	for _, o := range b.OTPs {
		fmt.Fprintf(r.out, "%s OTP: %s\n", o.Kind.Label(), otpLine(o.State, o.Remaining))
	}
	fmt.Fprintln(r.out)
}

// Tick prints one countdown update.
func (r *EventRenderer) Tick(t primary.Tick) {
	fmt.Fprintf(r.out, "%s OTP: %s\n", t.Kind.Label(), otpLine(t.State, t.Remaining))
}

func otpLine(state otp.State, remaining time.Duration) string {
	switch state {
	case otp.StatePending:
		return "expires in " + otp.FormatRemaining(remaining)
	case otp.StateVerified:
		return color.New(color.FgGreen).Sprint("verified")
	case otp.StateExpired:
		return color.New(color.FgRed).Sprint("expired, resend to get a new code")
	}
	return "not sent"
}
