package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/record"
)

func seed(t *testing.T, s *MemoryStore, status constants.VerificationStatus, ocr constants.OCRStatus, createdAt time.Time) *record.Verification {
	t.Helper()
	v := &record.Verification{
		FilePath:  "uploads/x.jpg",
		FileType:  "image/jpeg",
		FileSize:  1,
		Status:    status,
		OCRStatus: ocr,
		CreatedAt: createdAt,
	}
	if err := s.Create(context.Background(), v); err != nil {
		t.Fatalf("create: %v", err)
	}
	return v
}

func TestListOrderingAndFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	old := seed(t, s, constants.StatusVerified, constants.OCRComplete, now.Add(-2*time.Hour))
	mid := seed(t, s, constants.StatusFlagged, constants.OCRPending, now.Add(-time.Hour))
	recent := seed(t, s, constants.StatusVerified, constants.OCRPending, now)

	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != recent.ID || all[2].ID != old.ID {
		t.Fatal("list is not newest first")
	}

	verified, _ := s.List(ctx, ListFilter{Status: constants.StatusVerified})
	if len(verified) != 2 {
		t.Fatalf("verified = %d, want 2", len(verified))
	}

	since, _ := s.List(ctx, ListFilter{Since: now.Add(-90 * time.Minute)})
	if len(since) != 2 {
		t.Fatalf("since = %d, want 2 (old excluded)", len(since))
	}
	_ = mid

	limited, _ := s.List(ctx, ListFilter{Limit: 1})
	if len(limited) != 1 || limited[0].ID != recent.ID {
		t.Fatalf("limit result = %+v", limited)
	}
}

func TestOldestPendingOCR(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	if _, err := s.OldestPendingOCR(ctx); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("empty queue error = %v, want ErrNotFound", err)
	}

	seed(t, s, constants.StatusVerified, constants.OCRComplete, now.Add(-3*time.Hour))
	oldest := seed(t, s, constants.StatusVerified, constants.OCRPending, now.Add(-2*time.Hour))
	seed(t, s, constants.StatusVerified, constants.OCRPending, now)

	got, err := s.OldestPendingOCR(ctx)
	if err != nil {
		t.Fatalf("oldest: %v", err)
	}
	if got.ID != oldest.ID {
		t.Fatalf("picked %s, want oldest pending %s", got.ID, oldest.ID)
	}
}

func TestUpdateFieldsTouchesOnlyCarriedColumns(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seed(t, s, constants.StatusVerified, constants.OCRPending, time.Now())

	conf := 88
	if err := s.UpdateFields(ctx, v.ID, record.Patch{ConfidenceScore: &conf}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.GetByID(ctx, v.ID)
	if got.ConfidenceScore == nil || *got.ConfidenceScore != 88 {
		t.Fatalf("confidence = %v", got.ConfidenceScore)
	}
	if got.Status != constants.StatusVerified || got.OCRStatus != constants.OCRPending {
		t.Fatalf("untouched columns changed: %+v", got)
	}

	if err := s.UpdateFields(ctx, uuid.New(), record.Patch{ConfidenceScore: &conf}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := seed(t, s, constants.StatusPending, constants.OCRPending, time.Now())

	got, _ := s.GetByID(ctx, v.ID)
	got.Status = constants.StatusFailed

	again, _ := s.GetByID(ctx, v.ID)
	if again.Status != constants.StatusPending {
		t.Fatal("mutation through returned pointer leaked into the store")
	}
}

func TestLogsRecentNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	_ = s.Append(ctx, &record.SystemLogEntry{Level: "info", Message: "first", CreatedAt: now.Add(-time.Minute)})
	_ = s.Append(ctx, &record.SystemLogEntry{Level: "error", Message: "second", CreatedAt: now})

	logs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(logs) != 2 || logs[0].Message != "second" {
		t.Fatalf("logs = %+v, want newest first", logs)
	}

	one, _ := s.Recent(ctx, 1)
	if len(one) != 1 || one[0].Message != "second" {
		t.Fatalf("limited logs = %+v", one)
	}
}

func TestSettingsUpsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "max_file_size", "1048576")
	_ = s.Set(ctx, "max_file_size", "2097152")
	_ = s.Set(ctx, "allowed_file_types", "image/png")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("settings = %d, want 2", len(all))
	}
	// Sorted by key: allowed_file_types first.
	if all[1].Value != "2097152" {
		t.Fatalf("value = %q, want upserted 2097152", all[1].Value)
	}
}
