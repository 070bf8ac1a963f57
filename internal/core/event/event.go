// Package event contains the client's view of a vendor event.
// This is part of the Functional Core - no I/O, only data and pure functions.
package event

import (
	"slices"
	"strings"
	"time"
)

// Status is the server-authoritative lifecycle status of an event.
// It is never computed locally.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCheckedIn  Status = "checked-in"
	StatusStarted    Status = "started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusCheckedIn,
	StatusStarted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Location is a geolocation fix.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckIn records the vendor's arrival.
type CheckIn struct {
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	ArrivalPhoto string     `json:"arrivalPhoto,omitempty"`
	Location     *Location  `json:"location,omitempty"`
}

// OTP is the issuance record of a customer passcode.
type OTP struct {
	SentAt     *time.Time `json:"sentAt,omitempty"`
	IsVerified bool       `json:"isVerified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// PhotoRef points at an uploaded photo. Opaque to the client.
type PhotoRef struct {
	URL        string     `json:"url"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// Setup holds the on-site setup documentation.
type Setup struct {
	PreSetupPhotos  []PhotoRef `json:"preSetupPhotos"`
	PostSetupPhotos []PhotoRef `json:"postSetupPhotos"`
	PreSetupNotes   string     `json:"preSetupNotes,omitempty"`
	PostSetupNotes  string     `json:"postSetupNotes,omitempty"`
}

// Event is the local copy of an event record owned by the Event Service.
type Event struct {
	ID            string     `json:"_id"`
	EventName     string     `json:"eventName"`
	EventDate     *time.Time `json:"eventDate,omitempty"`
	Location      string     `json:"location"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerPhone string     `json:"customerPhone"`
	Status        Status     `json:"status"`
	CheckIn       CheckIn    `json:"checkIn"`
	StartOTP      OTP        `json:"startOTP"`
	ClosingOTP    OTP        `json:"closingOTP"`
	EventSetup    Setup      `json:"eventSetup"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// CheckedIn reports whether the arrival check-in has been recorded.
func (e Event) CheckedIn() bool {
	return e.CheckIn.Timestamp != nil
}

// Clone returns a deep copy of e so callers never share slices or pointers.
func (e Event) Clone() Event {
	out := e
	out.EventDate = cloneTime(e.EventDate)
	out.CreatedAt = cloneTime(e.CreatedAt)
	out.UpdatedAt = cloneTime(e.UpdatedAt)
	out.CheckIn = e.CheckIn.clone()
	out.StartOTP = e.StartOTP.clone()
	out.ClosingOTP = e.ClosingOTP.clone()
	out.EventSetup = e.EventSetup.clone()
	return out
}

func (c CheckIn) clone() CheckIn {
	out := c
	out.Timestamp = cloneTime(c.Timestamp)
	if c.Location != nil {
		loc := *c.Location
		out.Location = &loc
	}
	return out
}

func (o OTP) clone() OTP {
	out := o
	out.SentAt = cloneTime(o.SentAt)
	out.VerifiedAt = cloneTime(o.VerifiedAt)
	return out
}

func (s Setup) clone() Setup {
	out := s
	out.PreSetupPhotos = slices.Clone(s.PreSetupPhotos)
	out.PostSetupPhotos = slices.Clone(s.PostSetupPhotos)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ValidID reports whether id can name an event in a request path. Blank ids
// and the dot segments are rejected since a URL path would collapse them.
func ValidID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", ".", "..":
		return false
	}
	return true
}
