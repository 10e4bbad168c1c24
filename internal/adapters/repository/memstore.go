package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/1970jjh/saudi/pkg/metrics"
)

// MemoryStore implements Store with a plain map. Used in tests and for
// ephemeral runs where notes do not need to survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[int][]string
}

// NewMemoryStore creates an empty in-memory note store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[int][]string)}
}

// Load returns the note sequence stored for a team.
func (s *MemoryStore) Load(ctx context.Context, teamID int) ([]string, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.RecordNoteStoreRead()
	notes, ok := s.notes[teamID]
	if !ok {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}
	out := make([]string, len(notes))
	copy(out, notes)
	return out, nil
}

// Save replaces the stored note sequence for a team.
func (s *MemoryStore) Save(ctx context.Context, teamID int, notes []string) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]string, len(notes))
	copy(stored, notes)
	s.notes[teamID] = stored
	metrics.RecordNoteStoreWrite()
	metrics.UpdateTeamsTracked(len(s.notes))
	return nil
}

// Delete removes a team's stored notes.
func (s *MemoryStore) Delete(ctx context.Context, teamID int) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notes, teamID)
	metrics.UpdateTeamsTracked(len(s.notes))
	return nil
}

// Count returns the number of teams with stored notes.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}
