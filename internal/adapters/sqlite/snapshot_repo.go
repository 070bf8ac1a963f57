package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ports/secondary"
)

// EventSnapshotRepository implements secondary.EventSnapshotRepository with SQLite.
type EventSnapshotRepository struct {
	db *sql.DB
}

// NewEventSnapshotRepository creates a new SQLite event snapshot repository.
func NewEventSnapshotRepository(db *sql.DB) *EventSnapshotRepository {
	return &EventSnapshotRepository{db: db}
}

const upsertSnapshotSQL = `INSERT INTO event_snapshots (id, event_name, status, event_date, payload, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		event_name = excluded.event_name,
		status = excluded.status,
		event_date = excluded.event_date,
		payload = excluded.payload,
		fetched_at = excluded.fetched_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSnapshot(ctx context.Context, ex execer, snap *secondary.EventSnapshotRecord) error {
	if snap.ID == "" {
		return errors.New("snapshot has no event id")
	}
	_, err := ex.ExecContext(ctx, upsertSnapshotSQL,
		snap.ID, snap.EventName, snap.Status, snap.EventDate, snap.Payload, snap.FetchedAt.UTC(),
	)
	return err
}

// Save upserts a snapshot.
func (r *EventSnapshotRepository) Save(ctx context.Context, snap *secondary.EventSnapshotRecord) error {
	if err := upsertSnapshot(ctx, r.db, snap); err != nil {
		return fmt.Errorf("failed to save event snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves one snapshot.
func (r *EventSnapshotRepository) GetByID(ctx context.Context, id string) (*secondary.EventSnapshotRecord, error) {
	var fetchedAt time.Time

	record := &secondary.EventSnapshotRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, event_name, status, event_date, payload, fetched_at FROM event_snapshots WHERE id = ?",
		id,
	).Scan(&record.ID, &record.EventName, &record.Status, &record.EventDate, &record.Payload, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event snapshot %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event snapshot: %w", err)
	}

	record.FetchedAt = fetchedAt.UTC()
	return record, nil
}

// List retrieves every snapshot, newest event date first.
func (r *EventSnapshotRepository) List(ctx context.Context) ([]*secondary.EventSnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, event_name, status, event_date, payload, fetched_at FROM event_snapshots ORDER BY event_date DESC, id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list event snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*secondary.EventSnapshotRecord
	for rows.Next() {
		var fetchedAt time.Time

		record := &secondary.EventSnapshotRecord{}
		err := rows.Scan(&record.ID, &record.EventName, &record.Status, &record.EventDate, &record.Payload, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event snapshot: %w", err)
		}
		record.FetchedAt = fetchedAt.UTC()

		snaps = append(snaps, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list event snapshots: %w", err)
	}

	return snaps, nil
}

// Delete removes a snapshot. Deleting an unknown id is a no-op.
func (r *EventSnapshotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM event_snapshots WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event snapshot: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole cache for snaps in one transaction.
func (r *EventSnapshotRepository) ReplaceAll(ctx context.Context, snaps []*secondary.EventSnapshotRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM event_snapshots"); err != nil {
		return fmt.Errorf("failed to clear event snapshots: %w", err)
	}
	for _, snap := range snaps {
		if err := upsertSnapshot(ctx, tx, snap); err != nil {
			return fmt.Errorf("failed to save event snapshot %s: %w", snap.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event snapshots: %w", err)
	}
	return nil
}

var _ secondary.EventSnapshotRepository = (*EventSnapshotRepository)(nil)
