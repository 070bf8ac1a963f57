package primary

import (
	"context"
	"time"

	"github.com/example/dayof/internal/core/event"
)

// EventService defines the primary port for event management outside a
// workflow session.
type EventService interface {
	// ListEvents lists the vendor's events, falling back to the local cache
	// when the Event Service is unreachable.
	ListEvents(ctx context.Context) (*ListEventsResponse, error)

	// GetEvent retrieves one event, falling back to the local cache.
	GetEvent(ctx context.Context, eventID string) (*EventSummary, error)

	// CreateEvent validates and creates a new event.
	CreateEvent(ctx context.Context, req CreateEventRequest) (*event.Event, error)

	// DeleteEvent deletes an event.
	DeleteEvent(ctx context.Context, eventID string) error

	// GetAnalytics retrieves aggregate statistics.
	GetAnalytics(ctx context.Context) (*Analytics, error)
}

// CreateEventRequest contains parameters for creating an event.
type CreateEventRequest struct {
	EventName     string `validate:"required,min=2"`
	EventDate     string `validate:"required"` // YYYY-MM-DD or RFC 3339
	Location      string `validate:"required"`
	CustomerName  string `validate:"required,min=2"`
	CustomerEmail string `validate:"required,email"`
	CustomerPhone string `validate:"required,event_phone"`
}

// ListEventsResponse contains the result of listing events.
type ListEventsResponse struct {
	Events    []*EventSummary
	Stale     bool // served from the local cache
	FetchedAt time.Time
}

// EventSummary is an event with its progress marks.
type EventSummary struct {
	Event    event.Event
	Progress Progress
}

// Progress flags each milestone of the workflow.
type Progress struct {
	CheckedIn     bool
	StartVerified bool
	PrePhotos     int
	PostPhotos    int
	Closed        bool
}

// Analytics is the aggregate statistics view.
type Analytics struct {
	Total   int
	Active  int
	Deleted int
	// StatusCounts lists reported statuses in lifecycle order.
	StatusCounts []StatusCount
	// Average durations; nil when no completed event contributed.
	CheckInToStarted   *time.Duration
	StartedToCompleted *time.Duration
	CheckInToCompleted *time.Duration
}

// StatusCount is the number of events in one status.
type StatusCount struct {
	Status event.Status
	Count  int
}
