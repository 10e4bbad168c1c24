package bus_test

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/1970jjh/saudi/internal/adapters/bus"
)

// collector gathers delivered messages behind a mutex so tests can poll.
type collector struct {
	mu   sync.Mutex
	msgs []any
}

func (c *collector) record(msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collector) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *collector) waitFor(n int) []any {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := c.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(2 * time.Millisecond)
	}
	return c.snapshot()
}

func TestBroker_PublishSubscribe(t *testing.T) {
	Convey("Given a broker with two handles on the same name", t, func() {
		broker := bus.NewBroker()
		defer broker.Close()

		sender := broker.Open("global_session_sync")
		receiver := broker.Open("global_session_sync")
		defer sender.Close()
		defer receiver.Close()

		var got collector
		receiver.Subscribe(got.record)

		Convey("When the sender publishes a message", func() {
			sender.Publish("REVEAL_RESULTS")

			Convey("Then the other handle's subscriber receives it", func() {
				msgs := got.waitFor(1)
				So(msgs, ShouldHaveLength, 1)
				So(msgs[0], ShouldEqual, "REVEAL_RESULTS")
			})
		})

		Convey("When the sender publishes several messages", func() {
			for i := 0; i < 10; i++ {
				sender.Publish(i)
			}

			Convey("Then they arrive in publish order", func() {
				msgs := got.waitFor(10)
				So(msgs, ShouldHaveLength, 10)
				for i, m := range msgs {
					So(m, ShouldEqual, i)
				}
			})
		})
	})
}

func TestBroker_SelfExclusion(t *testing.T) {
	Convey("Given a handle that both subscribes and publishes", t, func() {
		broker := bus.NewBroker()
		defer broker.Close()

		handle := broker.Open("team_1_sync")
		other := broker.Open("team_1_sync")
		defer handle.Close()
		defer other.Close()

		var self, peer collector
		handle.Subscribe(self.record)
		other.Subscribe(peer.record)

		Convey("When the handle publishes", func() {
			handle.Publish("SYNC_NOTES")

			Convey("Then the peer receives it but the handle itself does not", func() {
				So(peer.waitFor(1), ShouldHaveLength, 1)
				So(self.snapshot(), ShouldBeEmpty)
			})
		})
	})
}

func TestBroker_NameIsolation(t *testing.T) {
	Convey("Given subscribers on two different channel names", t, func() {
		broker := bus.NewBroker()
		defer broker.Close()

		one := broker.Open("team_1_sync")
		two := broker.Open("team_2_sync")
		sender := broker.Open("team_1_sync")
		defer one.Close()
		defer two.Close()
		defer sender.Close()

		var gotOne, gotTwo collector
		one.Subscribe(gotOne.record)
		two.Subscribe(gotTwo.record)

		Convey("When a message goes out on the first name", func() {
			sender.Publish("hello")

			Convey("Then only the matching subscriber sees it", func() {
				So(gotOne.waitFor(1), ShouldHaveLength, 1)
				So(gotTwo.snapshot(), ShouldBeEmpty)
			})
		})
	})
}

func TestBroker_LateSubscriber(t *testing.T) {
	Convey("Given a message published before anyone subscribes", t, func() {
		broker := bus.NewBroker()
		defer broker.Close()

		sender := broker.Open("global_session_sync")
		defer sender.Close()
		sender.Publish("RESET_RESULTS")

		Convey("When a subscriber joins afterwards", func() {
			receiver := broker.Open("global_session_sync")
			defer receiver.Close()

			var got collector
			receiver.Subscribe(got.record)

			Convey("Then nothing is replayed", func() {
				time.Sleep(20 * time.Millisecond)
				So(got.snapshot(), ShouldBeEmpty)
			})
		})
	})
}

func TestChannel_Close(t *testing.T) {
	Convey("Given a closed receiving handle", t, func() {
		broker := bus.NewBroker()
		defer broker.Close()

		sender := broker.Open("global_session_sync")
		receiver := broker.Open("global_session_sync")
		defer sender.Close()

		var got collector
		receiver.Subscribe(got.record)
		receiver.Close()

		Convey("When a message is published afterwards", func() {
			sender.Publish("REVEAL_RESULTS")

			Convey("Then the closed handle receives nothing", func() {
				time.Sleep(20 * time.Millisecond)
				So(got.snapshot(), ShouldBeEmpty)
			})
		})

		Convey("When Close is called twice", func() {
			Convey("Then the second call is a no-op", func() {
				So(receiver.Close, ShouldNotPanic)
			})
		})
	})
}

func TestBroker_Close(t *testing.T) {
	Convey("Given a broker that has been shut down", t, func() {
		broker := bus.NewBroker()

		sender := broker.Open("global_session_sync")
		receiver := broker.Open("global_session_sync")

		var got collector
		receiver.Subscribe(got.record)

		So(broker.Close(), ShouldBeNil)

		Convey("When publishing after shutdown", func() {
			sender.Publish("REVEAL_RESULTS")

			Convey("Then nothing is delivered", func() {
				time.Sleep(20 * time.Millisecond)
				So(got.snapshot(), ShouldBeEmpty)
			})
		})

		Convey("When subscribing after shutdown", func() {
			late := broker.Open("global_session_sync")
			var lateGot collector
			late.Subscribe(lateGot.record)
			sender.Publish("REVEAL_RESULTS")

			Convey("Then the late subscription never fires", func() {
				time.Sleep(20 * time.Millisecond)
				So(lateGot.snapshot(), ShouldBeEmpty)
			})
		})

		Convey("When closing a second time", func() {
			So(broker.Close(), ShouldBeNil)
		})
	})
}
