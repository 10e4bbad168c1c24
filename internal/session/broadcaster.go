package session

import (
	"context"
	"sync"

	"github.com/1970jjh/saudi/internal/adapters/bus"
	"github.com/1970jjh/saudi/pkg/logger"
	"github.com/1970jjh/saudi/pkg/metrics"
)

// Broadcaster is the admin side of the protocol: a stateless publisher
// plus one locally-tracked revealed flag used to disable the reveal
// control in the admin view.
type Broadcaster struct {
	broker *bus.Broker

	mu       sync.Mutex
	revealed bool

	log logger.Logger
}

// NewBroadcaster creates an admin broadcaster on the given broker.
func NewBroadcaster(broker *bus.Broker) *Broadcaster {
	return &Broadcaster{
		broker: broker,
		log:    logger.Named("session"),
	}
}

// Reveal asserts that results are visible. Publish-and-close: the
// channel handle lives only for this one message. Redundant reveals are
// harmless; receivers are idempotent.
func (b *Broadcaster) Reveal(ctx context.Context) {
	ch := b.broker.Open(GlobalChannel)
	defer ch.Close()
	ch.Publish(ControlMessage{Type: TypeRevealResults})
	metrics.RecordBusPublished(TypeRevealResults)

	b.mu.Lock()
	b.revealed = true
	b.mu.Unlock()

	b.log.Info(ctx, "results revealed")
}

// Reset ends the round: every learner session returns to its
// pre-submission state and the local revealed flag clears.
func (b *Broadcaster) Reset(ctx context.Context) {
	ch := b.broker.Open(GlobalChannel)
	defer ch.Close()
	ch.Publish(ControlMessage{Type: TypeResetResults})
	metrics.RecordBusPublished(TypeResetResults)

	b.mu.Lock()
	b.revealed = false
	b.mu.Unlock()

	b.log.Info(ctx, "round reset")
}

// Revealed reports whether this admin already revealed the round.
func (b *Broadcaster) Revealed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revealed
}
