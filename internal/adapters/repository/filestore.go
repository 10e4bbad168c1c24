package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/1970jjh/saudi/pkg/metrics"
)

// noteDocument is the serialized shape of one team's notes.
type noteDocument struct {
	TeamID int      `json:"team_id"`
	Notes  []string `json:"notes"`
}

// FileStore persists one JSON document per team under a data directory.
// It is the durable analogue of the browser's per-origin storage: state
// survives process restarts on the same machine and nowhere else.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the data directory if needed and returns a store.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty data dir", ErrInvalidTeam)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create note data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path returns the document path for a team. The key embeds the team id.
func (s *FileStore) path(teamID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("team_%d_notes.json", teamID))
}

// Load returns the persisted note sequence for a team.
func (s *FileStore) Load(ctx context.Context, teamID int) ([]string, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics.RecordNoteStoreRead()
	raw, err := os.ReadFile(s.path(teamID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}
	if err != nil {
		metrics.RecordNoteStoreError()
		return nil, fmt.Errorf("read team %d notes: %w", teamID, err)
	}
	var doc noteDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		metrics.RecordNoteStoreError()
		return nil, fmt.Errorf("decode team %d notes: %w", teamID, err)
	}
	return doc.Notes, nil
}

// Save atomically replaces the persisted note sequence for a team.
func (s *FileStore) Save(ctx context.Context, teamID int, notes []string) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(noteDocument{TeamID: teamID, Notes: notes})
	if err != nil {
		metrics.RecordNoteStoreError()
		return fmt.Errorf("encode team %d notes: %w", teamID, err)
	}

	// Write to a temp file then rename so readers never see a torn write.
	target := s.path(teamID)
	tmp, err := os.CreateTemp(s.dir, "notes-*.tmp")
	if err != nil {
		metrics.RecordNoteStoreError()
		return fmt.Errorf("stage team %d notes: %w", teamID, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.RecordNoteStoreError()
		return fmt.Errorf("stage team %d notes: %w", teamID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		metrics.RecordNoteStoreError()
		return fmt.Errorf("stage team %d notes: %w", teamID, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		metrics.RecordNoteStoreError()
		return fmt.Errorf("commit team %d notes: %w", teamID, err)
	}
	metrics.RecordNoteStoreWrite()
	metrics.UpdateTeamsTracked(s.countLocked())
	return nil
}

// Delete removes a team's persisted notes.
func (s *FileStore) Delete(ctx context.Context, teamID int) error {
	if teamID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(teamID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.RecordNoteStoreError()
		return fmt.Errorf("delete team %d notes: %w", teamID, err)
	}
	metrics.UpdateTeamsTracked(s.countLocked())
	return nil
}

// Count returns the number of teams with persisted notes.
func (s *FileStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

func (s *FileStore) countLocked() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "team_*_notes.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}
