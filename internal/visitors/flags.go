package visitors

import (
	"sync"
	"time"
)

// Flags records which sessions have already been counted. Claim must be
// atomic so that concurrent activations of one session count it once.
type Flags interface {
	// Claim marks session as recorded and reports whether it was unmarked.
	Claim(session string) bool
	// Release undoes a Claim so a later activation retries.
	Release(session string)
	// Recorded reports whether session is marked.
	Recorded(session string) bool
}

// MemoryFlags keeps flags in process memory. An entry lives as long as its
// session keeps being seen; one idle for longer than the TTL is forgotten.
// The recorded-visit cookie, not these flags, is what keeps a live browser
// session from counting twice across idle periods and restarts.
type MemoryFlags struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryFlags creates flags that expire after ttl of inactivity. A
// non-positive ttl keeps entries for the life of the process.
func NewMemoryFlags(ttl time.Duration) *MemoryFlags {
	return &MemoryFlags{ttl: ttl, now: time.Now, entries: make(map[string]time.Time)}
}

// Claim implements Flags.
func (f *MemoryFlags) Claim(session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if f.liveLocked(session, now) {
		f.entries[session] = now
		return false
	}
	f.entries[session] = now
	return true
}

// Release implements Flags.
func (f *MemoryFlags) Release(session string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, session)
}

// Recorded implements Flags.
func (f *MemoryFlags) Recorded(session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if !f.liveLocked(session, now) {
		return false
	}
	f.entries[session] = now
	return true
}

// Sweep drops expired entries and returns how many remain.
func (f *MemoryFlags) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	for s := range f.entries {
		if !f.liveLocked(s, now) {
			delete(f.entries, s)
		}
	}
	return len(f.entries)
}

func (f *MemoryFlags) liveLocked(session string, now time.Time) bool {
	seen, ok := f.entries[session]
	if !ok {
		return false
	}
	return f.ttl <= 0 || now.Sub(seen) < f.ttl
}
