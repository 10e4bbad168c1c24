// Package notes implements the team-scoped shared scratchpad: a note
// sequence persisted per team and kept live across the team's sessions
// through debounced broadcasts.
//
// Concurrency model is last-writer-wins. Two sessions editing the same
// team's notes are not reconciled; the later-arriving publish or
// persisted write replaces the earlier one. There is no authoritative
// server to arbitrate, so this is an accepted limitation, not a bug.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/1970jjh/saudi/internal/adapters/bus"
	"github.com/1970jjh/saudi/internal/adapters/repository"
	"github.com/1970jjh/saudi/pkg/logger"
	"github.com/1970jjh/saudi/pkg/metrics"
)

// TypeSyncNotes tags a full-sequence note broadcast.
const TypeSyncNotes = "SYNC_NOTES"

// Default timing constants, matching the reference classroom app.
const (
	defaultDebounce = 800 * time.Millisecond
	defaultPulse    = 500 * time.Millisecond
)

// Message is the payload published on a team channel. It always carries
// the full, unfiltered note sequence.
type Message struct {
	Type  string   `json:"type"`
	Notes []string `json:"notes"`
}

// ChannelName returns the dedicated channel for a team. Distinct teams
// get distinct names, so one team's messages never reach another's
// listeners.
func ChannelName(teamID int) string {
	return fmt.Sprintf("team_%d_sync", teamID)
}

// Option applies a configuration option to the Syncer.
type Option func(*Syncer)

// WithDebounce sets the quiet period after an edit before persisting and
// broadcasting.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithPulse sets how long the syncing indicator stays lit after a remote
// update arrives.
func WithPulse(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.pulse = d
		}
	}
}

// WithClock injects a clock, letting tests drive the debounce and pulse
// timers without sleeping.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Syncer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the syncer.
func WithLogger(log logger.Logger) Option {
	return func(s *Syncer) {
		if log != nil {
			s.log = log
		}
	}
}

// Syncer owns one session's view of a team's notes. The last entry is
// always the open input buffer and may be blank; no other blank entry
// survives a flush.
type Syncer struct {
	teamID  int
	broker  *bus.Broker
	store   repository.Store
	channel *bus.Channel
	clock   clockwork.Clock

	debounce time.Duration
	pulse    time.Duration

	mu            sync.Mutex
	notes         []string
	syncing       bool
	debounceTimer clockwork.Timer
	pulseTimer    clockwork.Timer
	closed        bool

	log logger.Logger
}

// NewSyncer loads the team's persisted notes (absent means a single
// blank entry) and subscribes to the team channel.
func NewSyncer(ctx context.Context, broker *bus.Broker, store repository.Store, teamID int, opts ...Option) (*Syncer, error) {
	s := &Syncer{
		teamID:   teamID,
		broker:   broker,
		store:    store,
		clock:    clockwork.NewRealClock(),
		debounce: defaultDebounce,
		pulse:    defaultPulse,
		log:      logger.Named("notes"),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := store.Load(ctx, teamID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.notes = []string{""}
	case err != nil:
		return nil, fmt.Errorf("load team %d notes: %w", teamID, err)
	default:
		s.notes = loaded
		if len(s.notes) == 0 {
			s.notes = []string{""}
		}
	}

	s.channel = broker.Open(ChannelName(teamID))
	s.channel.Subscribe(s.handle)
	return s, nil
}

// TeamID returns the team this syncer serves.
func (s *Syncer) TeamID() int { return s.teamID }

// Notes returns a copy of the current note sequence.
func (s *Syncer) Notes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.notes))
	copy(out, s.notes)
	return out
}

// Syncing reports whether the advisory syncing indicator is lit.
func (s *Syncer) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Edit replaces the entry at index with value. Typing into the trailing
// open buffer appends a fresh blank one, keeping the invariant of exactly
// one open entry. Persistence and broadcast are debounced: each edit
// restarts the quiet-period timer.
func (s *Syncer) Edit(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.notes) {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, len(s.notes))
	}

	s.notes[index] = value
	if index == len(s.notes)-1 && strings.TrimSpace(value) != "" {
		s.notes = append(s.notes, "")
	}
	s.syncing = true

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		metrics.RecordDebounceRestart()
	}
	s.debounceTimer = s.clock.AfterFunc(s.debounce, s.flush)
	return nil
}

// flush is the debounce payoff: persist the filtered sequence, broadcast
// the full one, clear the indicator.
func (s *Syncer) flush() {
	ctx := context.Background()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.debounceTimer = nil
	filtered := filterBlank(s.notes)
	full := make([]string, len(s.notes))
	copy(full, s.notes)
	s.syncing = false
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.teamID, filtered); err != nil {
		s.log.Error(ctx, "persisting notes failed", logger.Int("team", s.teamID), logger.Error(err))
	}
	s.publish(full)
	metrics.RecordNoteFlush()
}

// Remove deletes the entry at index right away: removals are explicit,
// infrequent actions and propagate without debounce. Removing the last
// remaining entry resets the pad to a single blank buffer.
func (s *Syncer) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if len(s.notes) <= 1 {
		s.notes = []string{""}
		s.mu.Unlock()
		return nil
	}
	if index < 0 || index >= len(s.notes) {
		n := len(s.notes)
		s.mu.Unlock()
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, n)
	}
	s.notes = append(s.notes[:index], s.notes[index+1:]...)
	full := make([]string, len(s.notes))
	copy(full, s.notes)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.teamID, full); err != nil {
		return fmt.Errorf("persist team %d notes: %w", s.teamID, err)
	}
	s.publish(full)
	metrics.RecordNoteRemoval()
	return nil
}

// publish sends the sequence on the team channel through a short-lived
// handle, acquire-send-release.
func (s *Syncer) publish(notes []string) {
	ch := s.broker.Open(ChannelName(s.teamID))
	defer ch.Close()
	ch.Publish(Message{Type: TypeSyncNotes, Notes: notes})
	metrics.RecordBusPublished(TypeSyncNotes)
}

// handle processes a note broadcast from another session: wholesale
// replacement plus a timed pulse of the syncing indicator.
func (s *Syncer) handle(msg any) {
	m, ok := msg.(Message)
	if !ok || m.Type != TypeSyncNotes {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.notes = make([]string, len(m.Notes))
	copy(s.notes, m.Notes)
	if len(s.notes) == 0 {
		s.notes = []string{""}
	}
	s.syncing = true
	if s.pulseTimer != nil {
		s.pulseTimer.Stop()
	}
	s.pulseTimer = s.clock.AfterFunc(s.pulse, func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	})
	s.mu.Unlock()
}

// Close cancels pending timers and detaches from the team channel.
// A pending debounced edit is dropped, matching a closed browser tab.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.pulseTimer != nil {
		s.pulseTimer.Stop()
		s.pulseTimer = nil
	}
	s.mu.Unlock()

	s.channel.Close()
}

// filterBlank drops blank entries except a trailing one, which is the
// open input buffer.
func filterBlank(notes []string) []string {
	out := make([]string, 0, len(notes))
	for i, n := range notes {
		if strings.TrimSpace(n) == "" && i != len(notes)-1 {
			continue
		}
		out = append(out, n)
	}
	return out
}
