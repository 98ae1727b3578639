package genai

import (
	"context"
	"sync"
	"time"
)

// RateLimited wraps a Client with a token bucket so a public form cannot
// burn through the provider quota.
type RateLimited struct {
	client   Client
	rpm      int
	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// NewRateLimited allows at most rpm generations per minute through client.
func NewRateLimited(client Client, rpm int) *RateLimited {
	return &RateLimited{
		client:   client,
		rpm:      rpm,
		tokens:   float64(rpm),
		lastFill: time.Now(),
	}
}

func (r *RateLimited) Name() string {
	return r.client.Name()
}

func (r *RateLimited) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.client.Generate(ctx, req)
}

func (r *RateLimited) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		r.tokens += now.Sub(r.lastFill).Minutes() * float64(r.rpm)
		if r.tokens > float64(r.rpm) {
			r.tokens = float64(r.rpm)
		}
		r.lastFill = now

		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
