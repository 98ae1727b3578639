// Package trending derives the set of recently used topics from a live
// window over the newest generation records.
package trending

import (
	"sync"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// DefaultWindow is the number of newest records inspected.
const DefaultWindow = 6

// Watcher is the part of the document store the feed subscribes to.
type Watcher interface {
	WatchRecent(limit int, fn func([]docstore.Record), opts ...docstore.WatchOption) *docstore.Subscription
}

// DistinctTopics returns the topics of records in order, keeping only the
// first occurrence of each. Topics compare by exact string identity.
func DistinctTopics(records []docstore.Record) []string {
	seen := make(map[string]struct{}, len(records))
	topics := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		topics = append(topics, r.Topic)
	}
	return topics
}

// Feed keeps the current trending topics up to date.
type Feed struct {
	sub *docstore.Subscription

	mu     sync.RWMutex
	topics []string
	ready  bool
}

// Start subscribes to the newest window records and recomputes the topics
// on every change. onChange, if non-nil, receives each new topic list on
// the subscription goroutine.
func Start(w Watcher, window int, onChange func([]string), opts ...docstore.WatchOption) *Feed {
	if window <= 0 {
		window = DefaultWindow
	}
	f := &Feed{topics: []string{}}
	f.sub = w.WatchRecent(window, func(records []docstore.Record) {
		topics := DistinctTopics(records)
		f.mu.Lock()
		f.topics = topics
		f.ready = true
		f.mu.Unlock()
		if onChange != nil {
			onChange(topics)
		}
	}, opts...)
	return f
}

// Topics returns a copy of the current topics, most recent first.
func (f *Feed) Topics() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.topics...)
}

// Ready reports whether the first snapshot has arrived.
func (f *Feed) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ready
}

// Close stops the subscription.
func (f *Feed) Close() {
	f.sub.Unsubscribe()
}

// Done is closed once the subscription has stopped delivering.
func (f *Feed) Done() <-chan struct{} { return f.sub.Done() }
