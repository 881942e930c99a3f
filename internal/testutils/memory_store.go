package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/store"
)

type recordKey struct {
	viewingID uuid.UUID
	screenID  uuid.UUID
}

// MemoryStore is a goroutine-safe in-memory job store.
type MemoryStore struct {
	mu       sync.Mutex
	viewings map[uuid.UUID]*domain.FutureViewing
	screens  map[uuid.UUID]*domain.Screen
	records  map[recordKey]time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		viewings: make(map[uuid.UUID]*domain.FutureViewing),
		screens:  make(map[uuid.UUID]*domain.Screen),
		records:  make(map[recordKey]time.Time),
	}
}

// Viewings returns the store.FutureViewingStore view of the data.
func (m *MemoryStore) Viewings() *MemoryViewingStore {
	return &MemoryViewingStore{m: m}
}

// Screens returns the store.ScreenStore view of the data.
func (m *MemoryStore) Screens() *MemoryScreenStore {
	return &MemoryScreenStore{m: m}
}

// Put stores fv as-is, bypassing validation. Tests use it to seed viewings
// with arbitrary statuses and creation times.
func (m *MemoryStore) Put(fv *domain.FutureViewing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewings[fv.ID] = cloneViewing(fv)
}

// HasRecord reports whether the screen has a viewing record for the viewing.
func (m *MemoryStore) HasRecord(viewingID, screenID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[recordKey{viewingID: viewingID, screenID: screenID}]
	return ok
}

// RecordCount returns the number of viewing records.
func (m *MemoryStore) RecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// MemoryViewingStore implements store.FutureViewingStore over a MemoryStore.
type MemoryViewingStore struct {
	m *MemoryStore
}

var _ store.FutureViewingStore = (*MemoryViewingStore)(nil)

// Create implements store.FutureViewingStore.
func (s *MemoryViewingStore) Create(_ context.Context, fv *domain.FutureViewing) error {
	if err := fv.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, exists := s.m.viewings[fv.ID]; exists {
		return fmt.Errorf("%w: future viewing %s", store.ErrDuplicate, fv.ID)
	}
	s.m.viewings[fv.ID] = cloneViewing(fv)
	return nil
}

// GetByID implements store.FutureViewingStore.
func (s *MemoryViewingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.FutureViewing, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	fv, ok := s.m.viewings[id]
	if !ok {
		return nil, store.ErrFutureViewingNotFound
	}
	return cloneViewing(fv), nil
}

// MarkCompleted implements store.FutureViewingStore.
func (s *MemoryViewingStore) MarkCompleted(_ context.Context, id uuid.UUID, imageURL string) error {
	return s.finalize(id, domain.ViewingStatusCompleted, &imageURL)
}

// MarkFailed implements store.FutureViewingStore.
func (s *MemoryViewingStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	return s.finalize(id, domain.ViewingStatusFailed, nil)
}

func (s *MemoryViewingStore) finalize(id uuid.UUID, status domain.ViewingStatus, imageURL *string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	fv, ok := s.m.viewings[id]
	if !ok {
		return store.ErrFutureViewingNotFound
	}
	if fv.Status != domain.ViewingStatusPending {
		return store.ErrAlreadyFinalized
	}
	fv.Status = status
	fv.ImageURL = imageURL
	return nil
}

// List implements store.FutureViewingStore.
func (s *MemoryViewingStore) List(_ context.Context, limit, offset int) ([]*domain.FutureViewing, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := make([]*domain.FutureViewing, 0, len(s.m.viewings))
	for _, fv := range s.m.viewings {
		all = append(all, fv)
	}
	return page(all, limit, offset), nil
}

// FindUnseenCompleted implements store.FutureViewingStore.
func (s *MemoryViewingStore) FindUnseenCompleted(
	_ context.Context,
	screenID uuid.UUID,
	since time.Time,
	limit, offset int,
) ([]*domain.FutureViewing, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var eligible []*domain.FutureViewing
	for _, fv := range s.m.viewings {
		if fv.Status != domain.ViewingStatusCompleted || fv.CreatedAt.Before(since) {
			continue
		}
		if _, seen := s.m.records[recordKey{viewingID: fv.ID, screenID: screenID}]; seen {
			continue
		}
		eligible = append(eligible, fv)
	}
	return page(eligible, limit, offset), nil
}

// WithTx implements store.FutureViewingStore. The memory store has no
// transactions, so the same store is returned.
func (s *MemoryViewingStore) WithTx(_ *sql.Tx) store.FutureViewingStore {
	return s
}

// MemoryScreenStore implements store.ScreenStore over a MemoryStore.
type MemoryScreenStore struct {
	m *MemoryStore
}

var _ store.ScreenStore = (*MemoryScreenStore)(nil)

// Create implements store.ScreenStore.
func (s *MemoryScreenStore) Create(_ context.Context, screen *domain.Screen) error {
	if err := screen.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, exists := s.m.screens[screen.ID]; exists {
		return fmt.Errorf("%w: screen %s", store.ErrDuplicate, screen.ID)
	}
	c := *screen
	s.m.screens[screen.ID] = &c
	return nil
}

// GetByID implements store.ScreenStore.
func (s *MemoryScreenStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Screen, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	screen, ok := s.m.screens[id]
	if !ok {
		return nil, store.ErrScreenNotFound
	}
	c := *screen
	return &c, nil
}

// RecordViewings implements store.ScreenStore. The batch is checked in full
// before anything is written.
func (s *MemoryScreenStore) RecordViewings(
	_ context.Context,
	screenID uuid.UUID,
	viewingIDs []uuid.UUID,
	viewedAt time.Time,
) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.screens[screenID]; !ok && len(viewingIDs) > 0 {
		return fmt.Errorf("%w: unknown screen %s", store.ErrInvalidEntity, screenID)
	}

	batch := make(map[recordKey]struct{}, len(viewingIDs))
	for _, id := range viewingIDs {
		key := recordKey{viewingID: id, screenID: screenID}
		if _, ok := s.m.viewings[id]; !ok {
			return fmt.Errorf("%w: unknown future viewing %s", store.ErrInvalidEntity, id)
		}
		if _, exists := s.m.records[key]; exists {
			return store.ErrViewingRecordExists
		}
		if _, dup := batch[key]; dup {
			return store.ErrViewingRecordExists
		}
		batch[key] = struct{}{}
	}

	for key := range batch {
		s.m.records[key] = viewedAt
	}
	return nil
}

// WithTx implements store.ScreenStore.
func (s *MemoryScreenStore) WithTx(_ *sql.Tx) store.ScreenStore {
	return s
}

// MemoryTransactor runs the function immediately with a nil transaction.
// Pair it with the memory stores, whose WithTx ignores the argument.
type MemoryTransactor struct{}

var _ store.Transactor = MemoryTransactor{}

// RunInTransaction implements store.Transactor.
func (MemoryTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// page sorts newest first (ties by ID) and applies offset and limit.
// It returns clones.
func page(items []*domain.FutureViewing, limit, offset int) []*domain.FutureViewing {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []*domain.FutureViewing{}
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}

	out := make([]*domain.FutureViewing, len(items))
	for i, fv := range items {
		out[i] = cloneViewing(fv)
	}
	return out
}

func cloneViewing(fv *domain.FutureViewing) *domain.FutureViewing {
	c := *fv
	if fv.ImageURL != nil {
		u := *fv.ImageURL
		c.ImageURL = &u
	}
	return &c
}
