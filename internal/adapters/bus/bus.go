// Package bus implements the named, fire-and-forget publish/subscribe
// mechanism that carries all cross-session signaling.
//
// It is the in-process analogue of a browser BroadcastChannel: channels
// are keyed by name, a publish reaches every current subscriber of that
// name except subscriptions made through the publishing handle, and
// nothing is persisted or replayed. It deliberately does not cross
// process or machine boundaries.
package bus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/1970jjh/saudi/pkg/metrics"
)

// Default bus configuration constants.
const (
	defaultInboxBuffer = 64
)

// Option applies a configuration option to the Broker.
type Option func(*Broker)

// WithInboxBuffer sets the per-subscription inbox size.
func WithInboxBuffer(size int) Option {
	return func(b *Broker) {
		if size > 0 {
			b.inboxBuffer = size
		}
	}
}

// Broker routes messages between channel handles of the same process.
type Broker struct {
	mu          sync.RWMutex
	subs        map[string]map[uuid.UUID]*Subscription
	inboxBuffer int
	closed      bool
}

// NewBroker creates a Broker with configuration options.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		subs:        make(map[string]map[uuid.UUID]*Subscription),
		inboxBuffer: defaultInboxBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Channel is a handle on a named channel. Handles are cheap: a publisher
// typically opens one, sends a message, and closes it immediately.
type Channel struct {
	broker *Broker
	name   string
	id     uuid.UUID

	mu     sync.Mutex
	owned  []*Subscription
	closed bool
}

// Subscription receives messages published on a channel name by other
// handles, in publish order.
type Subscription struct {
	id       uuid.UUID
	handleID uuid.UUID
	inbox    chan any
	stop     chan struct{}
	once     sync.Once
}

// Open returns a handle on the channel with the given name. Opening never
// fails; the channel springs into existence with its first subscriber.
func (b *Broker) Open(name string) *Channel {
	return &Channel{
		broker: b,
		name:   name,
		id:     uuid.New(),
	}
}

// Subscribe registers fn to run for every message published on this
// channel name by other handles. Messages are delivered one at a time in
// publish order. The subscription stays live until Cancel or Close.
func (c *Channel) Subscribe(fn func(msg any)) *Subscription {
	sub := &Subscription{
		id:       uuid.New(),
		handleID: c.id,
		inbox:    make(chan any, c.broker.inboxBuffer),
		stop:     make(chan struct{}),
	}

	c.broker.mu.Lock()
	if c.broker.closed {
		c.broker.mu.Unlock()
		close(sub.stop)
		return sub
	}
	byID, ok := c.broker.subs[c.name]
	if !ok {
		byID = make(map[uuid.UUID]*Subscription)
		c.broker.subs[c.name] = byID
	}
	byID[sub.id] = sub
	total := c.broker.subCount()
	c.broker.mu.Unlock()
	metrics.UpdateBusSubscriptions(total)

	c.mu.Lock()
	c.owned = append(c.owned, sub)
	c.mu.Unlock()

	go sub.deliver(fn)
	return sub
}

// deliver runs fn for each inbox message until the subscription stops.
func (s *Subscription) deliver(fn func(msg any)) {
	for {
		select {
		case <-s.stop:
			return
		case msg := <-s.inbox:
			fn(msg)
			metrics.RecordBusDelivered()
		}
	}
}

// Publish sends msg to every current subscriber of this channel name
// except subscriptions made through this handle. Delivery is best-effort:
// a full inbox drops the message rather than blocking the publisher.
func (c *Channel) Publish(msg any) {
	c.broker.mu.RLock()
	if c.broker.closed {
		c.broker.mu.RUnlock()
		return
	}
	targets := make([]*Subscription, 0, len(c.broker.subs[c.name]))
	for _, sub := range c.broker.subs[c.name] {
		if sub.handleID == c.id {
			continue
		}
		targets = append(targets, sub)
	}
	c.broker.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.inbox <- msg:
		default:
			metrics.RecordBusDropped()
		}
	}
}

// cancel detaches the subscription from the broker and stops delivery.
func (s *Subscription) cancel(b *Broker, name string) {
	s.once.Do(func() { close(s.stop) })
	b.mu.Lock()
	if byID, ok := b.subs[name]; ok {
		delete(byID, s.id)
		if len(byID) == 0 {
			delete(b.subs, name)
		}
	}
	total := b.subCount()
	b.mu.Unlock()
	metrics.UpdateBusSubscriptions(total)
}

// Close releases the handle and cancels every subscription made through it.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	owned := c.owned
	c.owned = nil
	c.mu.Unlock()

	for _, sub := range owned {
		sub.cancel(c.broker, c.name)
	}
}

// Close shuts the broker down. Existing subscriptions stop receiving and
// further publishes are ignored.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for name, byID := range b.subs {
		for _, sub := range byID {
			sub.once.Do(func() { close(sub.stop) })
		}
		delete(b.subs, name)
	}
	metrics.UpdateBusSubscriptions(0)
	return nil
}

// subCount reports active subscriptions across all names. Callers hold b.mu.
func (b *Broker) subCount() int {
	n := 0
	for _, byID := range b.subs {
		n += len(byID)
	}
	return n
}
