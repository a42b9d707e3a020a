package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

type memoryEntry struct {
	claim *model.Claim
	seq   int64
}

// MemoryStorage keeps claims in process memory for the lifetime of a session.
type MemoryStorage struct {
	claims  map[string]*memoryEntry
	nextSeq int64
	mu      sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory claim store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		claims: make(map[string]*memoryEntry),
	}
}

// CreateClaim stores a copy of claim.
func (s *MemoryStorage) CreateClaim(ctx context.Context, claim *model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(claim); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[claim.ID]; exists {
		return fmt.Errorf("%w: claim %s", common.ErrDuplicateEntry, claim.ID)
	}

	s.nextSeq++
	s.claims[claim.ID] = &memoryEntry{claim: claim.Clone(), seq: s.nextSeq}
	return nil
}

// UpdateClaim applies mutate to a copy of the claim and swaps it in on success.
// The write lock is held for the whole mutation so concurrent updates to the
// same claim are serialized.
func (s *MemoryStorage) UpdateClaim(ctx context.Context, id string, mutate service.Mutator) (*model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, fmt.Errorf("%w: mutator", ErrNilParameter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.claims[id]
	if !ok {
		return nil, fmt.Errorf("%w: claim %s", common.ErrNotFound, id)
	}

	working := entry.claim.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := validateUpdate(entry.claim, working); err != nil {
		return nil, err
	}

	entry.claim = working
	return working.Clone(), nil
}

// FindClaim returns a copy of the claim with the given id.
func (s *MemoryStorage) FindClaim(ctx context.Context, id string) (*model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.claims[id]
	if !ok {
		return nil, fmt.Errorf("%w: claim %s", common.ErrNotFound, id)
	}
	return entry.claim.Clone(), nil
}

// ListClaims returns matching claims, most recently created first.
func (s *MemoryStorage) ListClaims(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries := make([]*memoryEntry, 0, len(s.claims))
	for _, entry := range s.claims {
		if filter.Matches(entry.claim) {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	claims := make([]model.Claim, len(entries))
	for i, entry := range entries {
		claims[i] = *entry.claim.Clone()
	}
	s.mu.RUnlock()

	return claims, nil
}

// Close is a no-op; the claims go away with the process.
func (s *MemoryStorage) Close() error {
	return nil
}
