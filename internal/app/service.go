// Package app provides the core service that wires the broker, note
// store, scoring engine, and session protocols together, and implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/1970jjh/saudi/internal/adapters/bus"
	"github.com/1970jjh/saudi/internal/adapters/repository"
	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/internal/domain/scoring"
	"github.com/1970jjh/saudi/internal/feedback"
	"github.com/1970jjh/saudi/internal/mission"
	"github.com/1970jjh/saudi/internal/notes"
	"github.com/1970jjh/saudi/internal/session"
	"github.com/1970jjh/saudi/pkg/logger"
	"github.com/1970jjh/saudi/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAdminSecret sets the shared secret that guards admin operations.
func WithAdminSecret(secret string) Option {
	return func(s *Service) {
		if secret != "" {
			s.adminSecret = secret
		}
	}
}

// WithMaxTeams bounds team ids.
func WithMaxTeams(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTeams = n
		}
	}
}

// WithNoteDataDir selects the file-backed note store rooted at dir.
// Empty keeps the in-memory store.
func WithNoteDataDir(dir string) Option {
	return func(s *Service) { s.noteDataDir = dir }
}

// WithDebounce sets the note edit debounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithSyncPulse sets the syncing indicator pulse.
func WithSyncPulse(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pulse = d
		}
	}
}

// WithBusBuffer sizes subscriber inboxes on the sync bus.
func WithBusBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.busBuffer = n
		}
	}
}

// WithFeedbackLatencyRange bounds the simulated collaborator latency.
func WithFeedbackLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.feedbackMin = minLatency
			s.feedbackMax = maxLatency
		}
	}
}

// WithClock injects a clock shared by every timer the service creates.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service owns the process-wide pieces every session shares: the sync
// bus broker, the note store, the scoring engine, the feedback
// collaborator, and the admin broadcaster.
type Service struct {
	mu sync.RWMutex

	broker      *bus.Broker
	store       repository.Store
	engine      *scoring.Engine
	generator   feedback.Generator
	broadcaster *session.Broadcaster

	adminSecret string
	maxTeams    int
	noteDataDir string
	debounce    time.Duration
	pulse       time.Duration
	busBuffer   int
	feedbackMin time.Duration
	feedbackMax time.Duration
	clock       clockwork.Clock

	started bool
	log     logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		adminSecret: "6749467",
		maxTeams:    12,
		debounce:    800 * time.Millisecond,
		pulse:       500 * time.Millisecond,
		busBuffer:   64,
		feedbackMin: 80 * time.Millisecond,
		feedbackMax: 150 * time.Millisecond,
		clock:       clockwork.NewRealClock(),
		log:         nil, // set at Start when absent
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the shared components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	s.log.Info(ctx, "starting bidding mission service...")

	s.broker = bus.NewBroker(bus.WithInboxBuffer(s.busBuffer))
	if s.noteDataDir != "" {
		store, err := repository.NewFileStore(s.noteDataDir)
		if err != nil {
			return fmt.Errorf("note store: %w", err)
		}
		s.store = store
		s.log.Info(ctx, "using file note store", logger.String("dir", s.noteDataDir))
	} else {
		s.store = repository.NewMemoryStore()
		s.log.Info(ctx, "using in-memory note store")
	}
	s.engine = scoring.NewEngine()
	s.generator = feedback.NewInMemoryGenerator(
		feedback.WithLatencyRange(s.feedbackMin, s.feedbackMax),
		feedback.WithClock(s.clock),
	)
	s.broadcaster = session.NewBroadcaster(s.broker)

	s.started = true
	s.log.Info(ctx, "bidding mission service started",
		logger.Int("maxTeams", s.maxTeams),
		logger.Int("busBuffer", s.busBuffer),
	)
	return nil
}

// Stop shuts the shared components down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	s.started = false
	s.log.Info(context.Background(), "bidding mission service stopped")
}

// NewLearnerFlow creates a learner session: a coordinator subscribed to
// the global channel, wired into a fresh mission flow.
func (s *Service) NewLearnerFlow() *mission.Flow {
	var flow *mission.Flow
	coord := session.NewCoordinator(s.broker, session.WithOnChange(func(state session.State) {
		if flow != nil {
			flow.OnSessionState(state)
		}
	}))
	flow = mission.NewFlow(coord, s.broadcaster, s.adminSecret, s.openSyncer,
		mission.WithEngine(s.engine),
		mission.WithGenerator(s.generator),
		mission.WithMaxTeams(s.maxTeams),
	)
	return flow
}

// openSyncer is the factory handed to flows for team selection.
func (s *Service) openSyncer(ctx context.Context, teamID int) (*notes.Syncer, error) {
	return notes.NewSyncer(ctx, s.broker, s.store, teamID,
		notes.WithDebounce(s.debounce),
		notes.WithPulse(s.pulse),
		notes.WithClock(s.clock),
	)
}

// Simulate runs one scoring pass for the raw learner price.
func (s *Service) Simulate(ctx context.Context, rawPrice string) ([]model.RankedResult, error) {
	return s.engine.ScoreString(rawPrice)
}

// checkSecret guards admin operations.
func (s *Service) checkSecret(secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		return mission.ErrBadSecret
	}
	return nil
}

// Reveal broadcasts the reveal signal if the secret checks out.
func (s *Service) Reveal(ctx context.Context, secret string) error {
	if err := s.checkSecret(secret); err != nil {
		return err
	}
	s.broadcaster.Reveal(ctx)
	return nil
}

// ResetRound broadcasts the reset signal if the secret checks out.
func (s *Service) ResetRound(ctx context.Context, secret string) error {
	if err := s.checkSecret(secret); err != nil {
		return err
	}
	s.broadcaster.Reset(ctx)
	return nil
}

// Revealed reports the admin-side revealed flag.
func (s *Service) Revealed() bool {
	return s.broadcaster.Revealed()
}

// TeamNotes reads a team's persisted notes. A team with no saved notes
// shows as a single blank entry, the same view a fresh session loads.
// Any other store failure surfaces to the caller.
func (s *Service) TeamNotes(ctx context.Context, teamID int) ([]string, error) {
	if err := s.validTeam(teamID); err != nil {
		return nil, err
	}
	loaded, err := s.store.Load(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return []string{""}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load team %d notes: %w", teamID, err)
	}
	return loaded, nil
}

// SaveTeamNotes persists a team's notes and broadcasts the full sequence
// so live sessions pick it up, mirroring an immediate (non-debounced)
// edit from another device.
func (s *Service) SaveTeamNotes(ctx context.Context, teamID int, noteSeq []string) error {
	if err := s.validTeam(teamID); err != nil {
		return err
	}
	if len(noteSeq) == 0 {
		noteSeq = []string{""}
	}
	if err := s.store.Save(ctx, teamID, noteSeq); err != nil {
		return err
	}
	ch := s.broker.Open(notes.ChannelName(teamID))
	defer ch.Close()
	ch.Publish(notes.Message{Type: notes.TypeSyncNotes, Notes: noteSeq})
	metrics.RecordBusPublished(notes.TypeSyncNotes)
	return nil
}

func (s *Service) validTeam(teamID int) error {
	if teamID < 1 || teamID > s.maxTeams {
		return fmt.Errorf("%w: team %d of %d", mission.ErrBadTeam, teamID, s.maxTeams)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"maxTeams": s.maxTeams,
	}
	if s.started {
		stats["teamsWithNotes"] = s.store.Count(context.Background())
		stats["revealed"] = s.broadcaster.Revealed()
	}
	return stats
}
