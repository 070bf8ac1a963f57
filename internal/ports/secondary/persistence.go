package secondary

import (
	"context"
	"time"
)

// CredentialRepository defines the secondary port for the stored sign-in.
type CredentialRepository interface {
	// Get returns the stored credential, or nil when signed out.
	Get(ctx context.Context) (*CredentialRecord, error)

	// Save replaces the stored credential.
	Save(ctx context.Context, cred *CredentialRecord) error

	// Clear removes the stored credential.
	Clear(ctx context.Context) error
}

// CredentialRecord represents the signed-in vendor as stored locally.
type CredentialRecord struct {
	Token       string
	VendorID    string
	VendorName  string
	VendorEmail string
	ExpiresAt   *time.Time
	SavedAt     time.Time
}

// EventSnapshotRepository defines the secondary port for the last-known
// copy of each event, used when the Event Service cannot be reached.
type EventSnapshotRepository interface {
	// Save upserts a snapshot.
	Save(ctx context.Context, snap *EventSnapshotRecord) error

	// GetByID retrieves one snapshot.
	GetByID(ctx context.Context, id string) (*EventSnapshotRecord, error)

	// List retrieves every snapshot, newest event date first.
	List(ctx context.Context) ([]*EventSnapshotRecord, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// ReplaceAll swaps the whole cache for the given snapshots.
	ReplaceAll(ctx context.Context, snaps []*EventSnapshotRecord) error
}

// EventSnapshotRecord represents a cached event.
type EventSnapshotRecord struct {
	ID        string
	EventName string
	Status    string
	EventDate string
	Payload   []byte // JSON of the full event
	FetchedAt time.Time
}
