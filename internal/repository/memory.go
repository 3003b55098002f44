package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/record"
)

// MemoryStore is an in-memory implementation of the three repositories,
// used by tests and by local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*record.Verification
	logs     []*record.SystemLogEntry
	settings map[string]*Setting
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[uuid.UUID]*record.Verification),
		settings: make(map[string]*Setting),
	}
}

var (
	_ VerificationRepository = (*MemoryStore)(nil)
	_ LogRepository          = (*MemoryStore)(nil)
	_ SettingsRepository     = (*MemoryStore)(nil)
)

func (s *MemoryStore) Create(_ context.Context, v *record.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	cp := *v
	s.records[v.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*record.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[id]
	if !ok {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("verification %s not found", id), common.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]*record.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*record.Verification
	for _, v := range s.records {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if !filter.Since.IsZero() && v.CreatedAt.Before(filter.Since) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) OldestPendingOCR(_ context.Context) (*record.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest *record.Verification
	for _, v := range s.records {
		if v.OCRStatus != constants.OCRPending {
			continue
		}
		if oldest == nil || v.CreatedAt.Before(oldest.CreatedAt) {
			oldest = v
		}
	}
	if oldest == nil {
		return nil, common.NewAppError("NOT_FOUND", "no pending recognition work", common.ErrNotFound)
	}
	cp := *oldest
	return &cp, nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, id uuid.UUID, p record.Patch) error {
	if p.IsZero() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("verification %s not found", id), common.ErrNotFound)
	}
	// Column-level semantics match the SQL path: only carried fields change.
	next := applyColumns(*v, p)
	s.records[id] = &next
	return nil
}

// applyColumns writes the patch's carried fields verbatim, without the merge
// reducer's rules. The reconciliation controller runs Merge first and hands
// this layer an already-resolved patch.
func applyColumns(v record.Verification, p record.Patch) record.Verification {
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.ConfidenceScore != nil {
		cv := *p.ConfidenceScore
		v.ConfidenceScore = &cv
	}
	if p.DetectedIDType != nil {
		cv := *p.DetectedIDType
		v.DetectedIDType = &cv
	}
	if p.DetectedIDNumber != nil {
		cv := *p.DetectedIDNumber
		v.DetectedIDNumber = &cv
	}
	if p.DetectedHolderName != nil {
		cv := *p.DetectedHolderName
		v.DetectedHolderName = &cv
	}
	if p.SecurityFeatures != nil {
		v.SecurityFeatures = append([]string(nil), p.SecurityFeatures...)
	}
	if p.OCRStatus != nil {
		v.OCRStatus = *p.OCRStatus
	}
	if p.OCRText != nil {
		cv := *p.OCRText
		v.OCRText = &cv
	}
	if p.ProcessingTimeMs != nil {
		cv := *p.ProcessingTimeMs
		v.ProcessingTimeMs = &cv
	}
	return v
}

func (s *MemoryStore) Append(_ context.Context, entry *record.SystemLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	cp := *entry
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]*record.SystemLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}

	out := make([]*record.SystemLogEntry, 0, len(s.logs))
	for _, e := range s.logs {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) All(_ context.Context) ([]*Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Setting, 0, len(s.settings))
	for _, v := range s.settings {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = &Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return nil
}
