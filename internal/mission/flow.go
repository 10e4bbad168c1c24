// Package mission orchestrates which screen a session shows, based on
// role, wizard step, and submission/reveal state. It is a deterministic
// finite-state menu controller over the ordered mission steps.
package mission

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/1970jjh/saudi/internal/domain/answerkey"
	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/internal/domain/scoring"
	"github.com/1970jjh/saudi/internal/feedback"
	"github.com/1970jjh/saudi/internal/notes"
	"github.com/1970jjh/saudi/internal/session"
	"github.com/1970jjh/saudi/pkg/logger"
)

// Step identifies one screen of the mission wizard.
type Step string

const (
	StepSelectRole    Step = "SELECT_ROLE"
	StepAdminLogin    Step = "ADMIN_LOGIN"
	StepTeamSelection Step = "TEAM_SELECTION"
	StepBriefing      Step = "BRIEFING"
	StepAnalysis      Step = "ANALYSIS"
	StepRecords       Step = "RECORDS"
	StepSimulation    Step = "SIMULATION"
	StepResult        Step = "RESULT"
)

// forward is the learner wizard's transition table for Next.
// Simulation is absent: Next from there means final submission.
var forward = map[Step]Step{
	StepTeamSelection: StepBriefing,
	StepBriefing:      StepAnalysis,
	StepAnalysis:      StepRecords,
	StepRecords:       StepSimulation,
}

// backward is the transition table for Back. TeamSelection is absent:
// Back from there exits role selection entirely.
var backward = map[Step]Step{
	StepBriefing:   StepTeamSelection,
	StepAnalysis:   StepBriefing,
	StepRecords:    StepAnalysis,
	StepSimulation: StepRecords,
	StepResult:     StepSimulation,
}

// SyncerFactory opens a note syncer for the selected team.
type SyncerFactory func(ctx context.Context, teamID int) (*notes.Syncer, error)

// Option applies a configuration option to the Flow.
type Option func(*Flow)

// WithEngine overrides the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(f *Flow) {
		if e != nil {
			f.engine = e
		}
	}
}

// WithGenerator sets the feedback collaborator.
func WithGenerator(g feedback.Generator) Option {
	return func(f *Flow) {
		if g != nil {
			f.generator = g
		}
	}
}

// WithMaxTeams bounds team selection and card assignment.
func WithMaxTeams(n int) Option {
	return func(f *Flow) {
		if n > 0 {
			f.maxTeams = n
		}
	}
}

// WithLogger sets a custom logger for the flow.
func WithLogger(log logger.Logger) Option {
	return func(f *Flow) {
		if log != nil {
			f.log = log
		}
	}
}

// Flow is one session's walk through the mission. Bus deliveries and
// local calls may race, so state sits behind a mutex.
type Flow struct {
	mu sync.Mutex

	role Role
	step Step

	adminSecret string
	loginErrors int
	broadcaster *session.Broadcaster
	coordinator *session.Coordinator

	maxTeams     int
	selectedTeam int
	studentName  string
	sessionName  string
	active       bool

	openSyncer SyncerFactory
	syncer     *notes.Syncer

	engine    *scoring.Engine
	generator feedback.Generator
	key       answerkey.Key

	rawPrice     string
	rawProfit    string
	manualScores map[model.Country]int
	results      []model.RankedResult
	feedbackText string
	loading      bool

	log logger.Logger
}

// Role aliases the domain role type for callers of this package.
type Role = model.Role

// NewFlow creates a session flow. The coordinator and broadcaster come
// from the caller so all flows of one process share a broker.
func NewFlow(coord *session.Coordinator, bc *session.Broadcaster, adminSecret string, openSyncer SyncerFactory, opts ...Option) *Flow {
	f := &Flow{
		step:         StepSelectRole,
		adminSecret:  adminSecret,
		broadcaster:  bc,
		coordinator:  coord,
		maxTeams:     12,
		openSyncer:   openSyncer,
		engine:       scoring.NewEngine(),
		generator:    feedback.NewInMemoryGenerator(),
		key:          answerkey.Default(),
		manualScores: make(map[model.Country]int),
		log:          logger.Named("mission"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnSessionState is wired as the coordinator's change callback: a reveal
// pushes a waiting learner into the result step, a reset returns a
// finished learner to the simulation step without a reload.
func (f *Flow) OnSessionState(state session.State) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch state {
	case session.StateRevealed:
		if f.role == model.RoleLearner {
			f.step = StepResult
		}
	case session.StateIdle:
		if f.role == model.RoleLearner && f.step == StepResult {
			f.step = StepSimulation
		}
		f.feedbackText = ""
	case session.StateAwaitingReveal:
	}
}

// Step returns the current wizard step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Role returns the selected role, empty until one is chosen.
func (f *Flow) Role() Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.role
}

// ChooseRole moves from role selection into the learner or admin track.
func (f *Flow) ChooseRole(role Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepSelectRole {
		return fmt.Errorf("%w: role already chosen", ErrBadTransition)
	}
	switch role {
	case model.RoleLearner:
		f.role = role
		f.step = StepTeamSelection
	case model.RoleAdmin:
		f.step = StepAdminLogin
	default:
		return fmt.Errorf("%w: unknown role %q", ErrBadTransition, role)
	}
	return nil
}

// Login checks the shared secret. Success grants the admin role and
// jumps straight to the result dashboard; failure increments the visible
// error count. No lockout, fully recoverable.
func (f *Flow) Login(secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepAdminLogin {
		return fmt.Errorf("%w: not at admin login", ErrBadTransition)
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(f.adminSecret)) != 1 {
		f.loginErrors++
		return ErrBadSecret
	}
	f.role = model.RoleAdmin
	f.step = StepResult
	f.loginErrors = 0
	return nil
}

// LoginErrors returns the visible failed-login count.
func (f *Flow) LoginErrors() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginErrors
}

// SelectTeam picks the learner's team and loads its shared notes.
func (f *Flow) SelectTeam(ctx context.Context, teamID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.role != model.RoleLearner {
		return fmt.Errorf("%w: only learners join teams", ErrBadTransition)
	}
	if teamID < 1 || teamID > f.maxTeams {
		return fmt.Errorf("%w: team %d of %d", ErrBadTeam, teamID, f.maxTeams)
	}

	if f.syncer != nil {
		f.syncer.Close()
		f.syncer = nil
	}
	s, err := f.openSyncer(ctx, teamID)
	if err != nil {
		return fmt.Errorf("open team %d notes: %w", teamID, err)
	}
	f.selectedTeam = teamID
	f.syncer = s
	return nil
}

// Team returns the selected team, 0 when none.
func (f *Flow) Team() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedTeam
}

// Notes returns the team note syncer, nil before team selection.
func (f *Flow) Notes() *notes.Syncer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncer
}

// SetStudentName records the learner's name for the admin roster.
func (f *Flow) SetStudentName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.studentName = name
}

// Next advances the wizard one step. From the simulation step it instead
// performs final submission via Submit.
func (f *Flow) Next(ctx context.Context) error {
	f.mu.Lock()
	if f.step == StepSimulation {
		f.mu.Unlock()
		return f.Submit(ctx)
	}
	defer f.mu.Unlock()

	if f.step == StepTeamSelection && f.selectedTeam == 0 {
		return fmt.Errorf("%w: select a team first", ErrBadTransition)
	}
	next, ok := forward[f.step]
	if !ok {
		return fmt.Errorf("%w: no forward step from %s", ErrBadTransition, f.step)
	}
	f.step = next
	return nil
}

// Back reverses one step. From team selection it exits to role selection
// and clears the role.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepTeamSelection, StepAdminLogin:
		f.role = ""
		f.step = StepSelectRole
		return nil
	default:
		prev, ok := backward[f.step]
		if !ok {
			return fmt.Errorf("%w: no backward step from %s", ErrBadTransition, f.step)
		}
		f.step = prev
		return nil
	}
}

// SetPrice recomputes the ranking for the learner's current price input.
// Anything non-numeric keeps the previous results untouched and reports
// scoring.ErrInvalidPrice, so incomplete input never flickers the view.
func (f *Flow) SetPrice(raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rawPrice = raw
	results, err := f.engine.ScoreString(raw)
	if err != nil {
		return err
	}
	f.results = results
	return nil
}

// SetExpectedProfit records the learner's self-declared profit estimate.
func (f *Flow) SetExpectedProfit(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawProfit = raw
}

// SetManualScore records the learner's hand-computed total for a country.
func (f *Flow) SetManualScore(country model.Country, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manualScores[country] = score
}

// Results returns the latest computed ranking, nil before the first
// valid price.
func (f *Flow) Results() []model.RankedResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RankedResult, len(f.results))
	copy(out, f.results)
	return out
}

// Submit performs final submission: mark the session as submitted, then
// fetch commentary from the feedback collaborator. The loading flag is
// lit while the call is in flight; a collaborator failure degrades to
// the canned fallback and never blocks the result screen.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.role != model.RoleLearner {
		f.mu.Unlock()
		return fmt.Errorf("%w: only learners submit", ErrBadTransition)
	}
	if f.step != StepSimulation {
		f.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrBadTransition, f.step)
	}
	if len(f.results) == 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: no computed results", ErrNoResults)
	}
	results := make([]model.RankedResult, len(f.results))
	copy(results, f.results)
	profit := f.profitLocked()
	gen := f.generator
	f.loading = true
	f.mu.Unlock()

	f.coordinator.Submit()
	text := feedback.Generate(ctx, gen, results, profit)

	f.mu.Lock()
	f.feedbackText = text
	f.loading = false
	f.mu.Unlock()
	return nil
}

// profitLocked parses the declared profit, zero when unparseable.
func (f *Flow) profitLocked() decimal.Decimal {
	p, err := decimal.NewFromString(f.rawProfit)
	if err != nil {
		return decimal.Zero
	}
	return p
}

// Loading reports whether the feedback call is in flight.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// FeedbackText returns the commentary produced by the last submission.
func (f *Flow) FeedbackText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feedbackText
}

// Comparison grades the submission against the fixed answer key for the
// instructor-facing result view.
func (f *Flow) Comparison() answerkey.Comparison {
	f.mu.Lock()
	defer f.mu.Unlock()

	price, err := decimal.NewFromString(f.rawPrice)
	if err != nil {
		price = decimal.Zero
	}
	profit := f.profitLocked()
	scores := make(map[model.Country]int, len(f.manualScores))
	for c, s := range f.manualScores {
		scores[c] = s
	}
	return f.key.Compare(price, profit, scores, f.results)
}

// Reveal broadcasts the reveal signal. Admin only.
func (f *Flow) Reveal(ctx context.Context) error {
	if err := f.requireAdmin(); err != nil {
		return err
	}
	f.broadcaster.Reveal(ctx)
	return nil
}

// ResetRound broadcasts the reset signal. Admin only.
func (f *Flow) ResetRound(ctx context.Context) error {
	if err := f.requireAdmin(); err != nil {
		return err
	}
	f.broadcaster.Reset(ctx)
	return nil
}

func (f *Flow) requireAdmin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.role != model.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// SetSessionName records the classroom session title on the dashboard.
func (f *Flow) SetSessionName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionName = name
}

// ToggleSessionActive flips the mission-active switch, returning the new
// value.
func (f *Flow) ToggleSessionActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = !f.active
	return f.active
}

// Close releases the flow's team channel subscription.
func (f *Flow) Close() {
	f.mu.Lock()
	syncer := f.syncer
	f.syncer = nil
	f.mu.Unlock()

	if syncer != nil {
		syncer.Close()
	}
}
