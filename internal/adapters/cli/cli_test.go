package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/dayof/internal/core/effects"
	"github.com/example/dayof/internal/core/event"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/core/workflow"
	"github.com/example/dayof/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

func durPtr(d time.Duration) *time.Duration { return &d }

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   *time.Duration
		want string
	}{
		{"absent", nil, "—"},
		{"seconds", durPtr(42 * time.Second), "42s"},
		{"sub-second floors", durPtr(999 * time.Millisecond), "0s"},
		{"minutes", durPtr(5*time.Minute + 7*time.Second), "5m 7s"},
		{"hours drop seconds", durPtr(2*time.Hour + 3*time.Minute + 59*time.Second), "2h 3m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotifier_RoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	n := NewNotifier(&out, &errOut)

	n.Notify(effects.LevelSuccess, "Check-in successful!")
	n.Notify(effects.LevelInfo, "OTP sent to customer email")
	n.Notify(effects.LevelError, "Invalid OTP")

	if !strings.Contains(out.String(), "✓ Check-in successful!") {
		t.Errorf("expected success line, got %q", out.String())
	}
	if !strings.Contains(out.String(), "OTP sent to customer email") {
		t.Errorf("expected info line, got %q", out.String())
	}
	if errOut.String() != "✗ Invalid OTP\n" {
		t.Errorf("expected error line on errOut, got %q", errOut.String())
	}
}

func TestEventRenderer_List(t *testing.T) {
	date := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	r := NewEventRenderer(&buf)

	r.List(&primary.ListEventsResponse{
		Events: []*primary.EventSummary{{
			Event:    event.Event{ID: "evt-1", EventName: "Harbor Wedding", EventDate: &date, Status: event.StatusInProgress},
			Progress: primary.Progress{CheckedIn: true, StartVerified: true, PrePhotos: 2},
		}},
	})

	output := buf.String()
	for _, want := range []string{"evt-1", "Harbor Wedding", "Jul 4, 2026", "in-progress", "✅ Check-in", "✅ Start OTP", "✅ Pre-Photos (2)", "⬜ Post-Photos (0)", "⬜ Closing OTP"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestEventRenderer_ListEmptyAndStale(t *testing.T) {
	var buf bytes.Buffer
	NewEventRenderer(&buf).List(&primary.ListEventsResponse{Stale: true, FetchedAt: time.Now()})

	output := buf.String()
	if !strings.Contains(output, "offline:") {
		t.Errorf("expected stale banner, got:\n%s", output)
	}
	if !strings.Contains(output, "No events yet.") {
		t.Errorf("expected empty message, got:\n%s", output)
	}
}

func TestEventRenderer_Analytics(t *testing.T) {
	var buf bytes.Buffer
	NewEventRenderer(&buf).Analytics(&primary.Analytics{
		Total: 7, Active: 6, Deleted: 1,
		StatusCounts:     []primary.StatusCount{{Status: event.StatusPending, Count: 3}, {Status: event.StatusCompleted, Count: 2}},
		CheckInToStarted: durPtr(90 * time.Second),
	})

	output := buf.String()
	for _, want := range []string{"All:     7", "Deleted: 1", "pending", "completed", "Check-in → Started:   1m 30s", "Started → Completed:  —"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Index(output, "pending") > strings.Index(output, "completed") {
		t.Error("expected statuses in lifecycle order")
	}
}

func TestEventRenderer_Board(t *testing.T) {
	var buf bytes.Buffer
	NewEventRenderer(&buf).Board(primary.Board{
		Event: event.Event{EventName: "Harbor Wedding", Status: event.StatusCheckedIn},
		Steps: []primary.StepView{
			{Step: workflow.StepCheckIn, Title: "Check-in", Number: 1, Unlocked: true, Complete: true},
			{Step: workflow.StepStartVerify, Title: "Start OTP", Number: 2, Unlocked: true, Selected: true},
			{Step: workflow.StepSetup, Title: "Setup", Number: 3},
		},
		OTPs: []primary.OTPView{{Kind: otp.KindStart, State: otp.StatePending, Remaining: 5*time.Minute + 30*time.Second}},
	})

	output := buf.String()
	for _, want := range []string{"✅ 1. Check-in  done", "→ ⬜ 2. Start OTP  ready", "⬜ 3. Setup  locked", "expires in 05:30"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestEventRenderer_Tick(t *testing.T) {
	tests := []struct {
		tick primary.Tick
		want string
	}{
		{primary.Tick{Kind: otp.KindClosing, State: otp.StatePending, Remaining: 61 * time.Second}, "expires in 01:01"},
		{primary.Tick{Kind: otp.KindClosing, State: otp.StateExpired}, "expired, resend to get a new code"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		NewEventRenderer(&buf).Tick(tt.tick)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("expected %q, got %q", tt.want, buf.String())
		}
	}
}
