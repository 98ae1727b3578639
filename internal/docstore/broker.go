package docstore

import (
	"context"
	"log"
	"sync"
)

// Broker fans write notifications out to live subscriptions. Stores call
// Publish after every committed write; each subscription re-runs its query
// and hands the fresh snapshot to its callback.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*Subscription]struct{})}
}

// Publish wakes every subscription registered on topic.
func (b *Broker) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[topic] {
		s.wake()
	}
}

// Len returns the number of live subscriptions on topic.
func (b *Broker) Len(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Broker) add(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[s.topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[s.topic] = set
	}
	set[s] = struct{}{}
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.topic)
		}
	}
}

// WatchOption customises a subscription.
type WatchOption func(*watchOptions)

type watchOptions struct {
	onError func(error)
}

// WithErrorHandler receives query errors raised while refreshing a
// subscription. Without it errors are logged. Errors never end the
// subscription; the next write triggers another attempt.
func WithErrorHandler(fn func(error)) WatchOption {
	return func(o *watchOptions) { o.onError = fn }
}

// Subscription is a cancellable live query. Callbacks for one subscription
// run on a single goroutine and are coalesced: a burst of writes while a
// callback is running produces one more callback with the latest snapshot.
type Subscription struct {
	broker *Broker
	topic  string
	notify chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}

	// mu orders Unsubscribe against the start of a callback.
	mu      sync.Mutex
	stopped bool
}

// Unsubscribe stops the subscription. It is safe to call more than once and
// from inside the callback. After it returns no new callback starts.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.broker.remove(s)
		s.cancel()
	})
}

// Done is closed once the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// begin reports whether a callback may start. A true result means the
// callback started before any Unsubscribe returned.
func (s *Subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// watch registers a subscription that runs query on every wake-up and
// passes the result to fn. The first snapshot is delivered immediately.
func watch[T any](b *Broker, topic string, query func(context.Context) (T, error), fn func(T), opts []WatchOption) *Subscription {
	var o watchOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		broker: b,
		topic:  topic,
		notify: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	b.add(s)
	s.wake()

	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.notify:
			}

			v, err := query(ctx)
			if !s.begin() {
				return
			}
			if err != nil {
				if o.onError != nil {
					o.onError(err)
				} else {
					log.Printf("docstore: watch %s: %v", topic, err)
				}
				continue
			}
			fn(v)
		}
	}()

	return s
}
