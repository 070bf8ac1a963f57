package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/dayof/internal/adapters/sqlite"
	"github.com/example/dayof/internal/ports/secondary"
)

func TestCredentialRepository_GetWhenSignedOut(t *testing.T) {
	repo := sqlite.NewCredentialRepository(setupTestDB(t))

	cred, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cred != nil {
		t.Errorf("expected nil credential, got %+v", cred)
	}
}

func TestCredentialRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewCredentialRepository(setupTestDB(t))
	expires := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	err := repo.Save(ctx, &secondary.CredentialRecord{
		Token:    "tok-1",
		VendorID: "vendor-1",
		SavedAt:  fetched,
	})
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	err = repo.Save(ctx, &secondary.CredentialRecord{
		Token:       "tok-2",
		VendorID:    "vendor-2",
		VendorName:  "Grace Hopper",
		VendorEmail: "grace@example.com",
		ExpiresAt:   &expires,
		SavedAt:     fetched,
	})
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Token != "tok-2" {
		t.Errorf("expected token 'tok-2', got %q", got.Token)
	}
	if got.VendorName != "Grace Hopper" {
		t.Errorf("expected vendor name 'Grace Hopper', got %q", got.VendorName)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("expected expiry %v, got %v", expires, got.ExpiresAt)
	}
	if !got.SavedAt.Equal(fetched) {
		t.Errorf("expected saved_at %v, got %v", fetched, got.SavedAt)
	}
}

func TestCredentialRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewCredentialRepository(setupTestDB(t))

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store failed: %v", err)
	}
	if err := repo.Save(ctx, &secondary.CredentialRecord{Token: "tok", SavedAt: fetched}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected credential to be cleared, got %+v", got)
	}
}
