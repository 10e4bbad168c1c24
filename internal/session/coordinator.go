package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/1970jjh/saudi/internal/adapters/bus"
	"github.com/1970jjh/saudi/pkg/logger"
)

// State is a learner session's position in the reveal lifecycle.
type State string

const (
	// StateIdle: nothing submitted, results hidden.
	StateIdle State = "IDLE"
	// StateAwaitingReveal: submitted, waiting for the admin to reveal.
	StateAwaitingReveal State = "AWAITING_REVEAL"
	// StateRevealed: results are visible.
	StateRevealed State = "REVEALED"
)

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithOnChange registers a callback invoked after every state change.
// It runs on the bus delivery goroutine; keep it short.
func WithOnChange(fn func(State)) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.onChange = fn
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(log logger.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// Coordinator tracks one learner session's reveal state and keeps it in
// sync with admin broadcasts. A session that subscribes after a reveal
// was broadcast does not catch up; state is only as current as the
// messages received since subscribing.
type Coordinator struct {
	id      uuid.UUID
	channel *bus.Channel

	mu        sync.Mutex
	state     State
	submitted bool
	revealed  bool

	onChange func(State)
	log      logger.Logger
}

// NewCoordinator subscribes a fresh learner session to the global channel.
func NewCoordinator(broker *bus.Broker, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:      uuid.New(),
		state:   StateIdle,
		channel: broker.Open(GlobalChannel),
		log:     logger.Named("session"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.channel.Subscribe(c.handle)
	return c
}

// ID returns the session identity.
func (c *Coordinator) ID() uuid.UUID { return c.id }

// Submit marks this session as having submitted its bid. If the admin
// already revealed the round, the session lands directly on Revealed;
// otherwise it waits for the broadcast.
func (c *Coordinator) Submit() {
	c.mu.Lock()
	changed := false
	c.submitted = true
	switch {
	case c.revealed && c.state != StateRevealed:
		c.state = StateRevealed
		changed = true
	case c.state == StateIdle && !c.revealed:
		c.state = StateAwaitingReveal
		changed = true
	}
	state := c.state
	c.mu.Unlock()

	if changed {
		c.notify(state)
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Revealed reports whether results are visible to this session.
func (c *Coordinator) Revealed() bool {
	return c.State() == StateRevealed
}

// HasSubmitted reports whether this session submitted in the current round.
func (c *Coordinator) HasSubmitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// Close detaches the session from the global channel.
func (c *Coordinator) Close() {
	c.channel.Close()
}

// handle processes one control message off the bus.
func (c *Coordinator) handle(msg any) {
	ctl, ok := msg.(ControlMessage)
	if !ok {
		c.log.Warn(context.Background(), "ignoring unknown message on global channel",
			logger.Any("message", msg),
		)
		return
	}

	c.mu.Lock()
	var (
		changed bool
		state   State
	)
	switch ctl.Type {
	case TypeRevealResults:
		// The revealed flag latches for every subscribed session, so a
		// learner who submits after the broadcast still lands on the
		// result. Redundant reveals have no additional effect.
		c.revealed = true
		if c.submitted && c.state != StateRevealed {
			c.state = StateRevealed
			changed = true
		}
	case TypeResetResults:
		// Any state returns to Idle; the submission and reveal flags clear.
		if c.state != StateIdle || c.submitted {
			changed = true
		}
		c.state = StateIdle
		c.submitted = false
		c.revealed = false
	}
	state = c.state
	c.mu.Unlock()

	if changed {
		c.notify(state)
	}
}

func (c *Coordinator) notify(state State) {
	if c.onChange != nil {
		c.onChange(state)
	}
}
