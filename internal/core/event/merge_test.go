package event

import (
	"encoding/json"
	"testing"
	"time"
)

var t0 = time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func populatedEvent() Event {
	checkedIn := t0
	return Event{
		ID:            "evt-1",
		EventName:     "Garden Wedding",
		Location:      "Rose Hall",
		CustomerName:  "Sam Rivera",
		CustomerEmail: "sam@example.com",
		CustomerPhone: "+1 555 0100",
		Status:        StatusStarted,
		CheckIn: CheckIn{
			Timestamp:    &checkedIn,
			ArrivalPhoto: "https://cdn.example.com/arrival.jpg",
			Location:     &Location{Latitude: 40.7, Longitude: -74.0},
		},
		EventSetup: Setup{
			PreSetupPhotos: []PhotoRef{{URL: "https://cdn.example.com/pre-1.jpg"}, {URL: "https://cdn.example.com/pre-2.jpg"}},
		},
	}
}

func TestMerge_NarrowResponseKeepsUnrelatedFields(t *testing.T) {
	prev := populatedEvent()
	sentAt := t0.Add(5 * time.Minute)
	verifiedAt := t0.Add(7 * time.Minute)

	next := Merge(prev, Patch{
		Status:   ptr(StatusInProgress),
		StartOTP: &OTP{SentAt: &sentAt, IsVerified: true, VerifiedAt: &verifiedAt},
	})

	if next.Status != StatusInProgress {
		t.Errorf("Status = %q, want %q", next.Status, StatusInProgress)
	}
	if !next.StartOTP.IsVerified {
		t.Error("StartOTP.IsVerified = false, want true")
	}
	if len(next.EventSetup.PreSetupPhotos) != 2 {
		t.Fatalf("PreSetupPhotos len = %d, want 2", len(next.EventSetup.PreSetupPhotos))
	}
	for i, p := range prev.EventSetup.PreSetupPhotos {
		if next.EventSetup.PreSetupPhotos[i] != p {
			t.Errorf("PreSetupPhotos[%d] = %+v, want %+v", i, next.EventSetup.PreSetupPhotos[i], p)
		}
	}
	if !next.CheckedIn() || next.CheckIn.ArrivalPhoto != prev.CheckIn.ArrivalPhoto {
		t.Error("check-in was lost by a narrow merge")
	}
	if next.CustomerEmail != prev.CustomerEmail {
		t.Errorf("CustomerEmail = %q, want %q", next.CustomerEmail, prev.CustomerEmail)
	}
}

func TestMerge_SuppliedFieldReplacesWholesale(t *testing.T) {
	prev := populatedEvent()
	prev.EventSetup.PreSetupNotes = "tables set"

	next := Merge(prev, Patch{
		EventSetup: &Setup{PostSetupPhotos: []PhotoRef{{URL: "https://cdn.example.com/post-1.jpg"}}},
	})

	if len(next.EventSetup.PreSetupPhotos) != 0 {
		t.Errorf("PreSetupPhotos len = %d, want 0 (shallow overlay replaces eventSetup)", len(next.EventSetup.PreSetupPhotos))
	}
	if next.EventSetup.PreSetupNotes != "" {
		t.Errorf("PreSetupNotes = %q, want empty", next.EventSetup.PreSetupNotes)
	}
	if len(next.EventSetup.PostSetupPhotos) != 1 {
		t.Errorf("PostSetupPhotos len = %d, want 1", len(next.EventSetup.PostSetupPhotos))
	}
}

func TestMerge_DoesNotMutateOrAliasInputs(t *testing.T) {
	prev := populatedEvent()
	patchSetup := &Setup{PreSetupPhotos: []PhotoRef{{URL: "a"}}}

	next := Merge(prev, Patch{EventSetup: patchSetup})
	patchSetup.PreSetupPhotos[0].URL = "mutated"
	next.CheckIn.Location.Latitude = 0

	if next.EventSetup.PreSetupPhotos[0].URL != "a" {
		t.Error("merged event aliases the patch's slice")
	}
	if prev.CheckIn.Location.Latitude != 40.7 {
		t.Error("merge result aliases the previous event's location")
	}
	if len(prev.EventSetup.PreSetupPhotos) != 2 {
		t.Error("previous event was modified")
	}
}

func TestMerge_EmptyPatchIsIdentity(t *testing.T) {
	prev := populatedEvent()
	next := Merge(prev, Patch{})

	if next.ID != prev.ID || next.Status != prev.Status || next.EventName != prev.EventName {
		t.Errorf("empty patch changed event: %+v", next)
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	prev := populatedEvent()
	first := Merge(prev, Patch{Status: ptr(StatusInProgress)})
	second := Merge(first, Patch{Status: ptr(StatusCompleted)})

	if second.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", second.Status, StatusCompleted)
	}
}

func TestPatch_DecodesPartialResponse(t *testing.T) {
	body := `{"_id":"evt-9","status":"started","startOTP":{"sentAt":"2026-06-14T09:05:00Z","isVerified":true}}`

	var p Patch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.Identity() != "evt-9" {
		t.Errorf("Identity() = %q, want evt-9", p.Identity())
	}
	if p.EventSetup != nil || p.CheckIn != nil || p.ClosingOTP != nil {
		t.Error("absent fields decoded as supplied")
	}
	if p.StartOTP == nil || !p.StartOTP.IsVerified {
		t.Error("startOTP not decoded")
	}
}

func TestPatch_IdentityFallsBackToID(t *testing.T) {
	p := Patch{AltID: ptr("evt-2")}
	if p.Identity() != "evt-2" {
		t.Errorf("Identity() = %q, want evt-2", p.Identity())
	}
}

func TestFromPatchRoundTripsToPatch(t *testing.T) {
	e := populatedEvent()
	got := FromPatch(ToPatch(e))

	if got.ID != e.ID || got.Status != e.Status || len(got.EventSetup.PreSetupPhotos) != 2 {
		t.Errorf("FromPatch(ToPatch(e)) = %+v", got)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"665f1c2e9b1d", true},
		{"a b", true},
		{"...", true},
		{"", false},
		{"  ", false},
		{".", false},
		{"..", false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
