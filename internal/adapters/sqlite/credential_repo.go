// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/dayof/internal/ports/secondary"
)

// CredentialRepository implements secondary.CredentialRepository with SQLite.
// The credentials table holds at most one row.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new SQLite credential repository.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the stored credential, or nil when signed out.
func (r *CredentialRepository) Get(ctx context.Context) (*secondary.CredentialRecord, error) {
	var (
		expiresAt sql.NullTime
		savedAt   time.Time
	)

	record := &secondary.CredentialRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT token, vendor_id, vendor_name, vendor_email, expires_at, saved_at FROM credentials WHERE id = 1",
	).Scan(&record.Token, &record.VendorID, &record.VendorName, &record.VendorEmail, &expiresAt, &savedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		record.ExpiresAt = &t
	}
	record.SavedAt = savedAt.UTC()

	return record, nil
}

// Save replaces the stored credential.
func (r *CredentialRepository) Save(ctx context.Context, cred *secondary.CredentialRecord) error {
	var expiresAt sql.NullTime
	if cred.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: cred.ExpiresAt.UTC(), Valid: true}
	}
	savedAt := cred.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (id, token, vendor_id, vendor_name, vendor_email, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			vendor_id = excluded.vendor_id,
			vendor_name = excluded.vendor_name,
			vendor_email = excluded.vendor_email,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		cred.Token, cred.VendorID, cred.VendorName, cred.VendorEmail, expiresAt, savedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Clear removes the stored credential. Clearing when signed out is a no-op.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

var _ secondary.CredentialRepository = (*CredentialRepository)(nil)
