package genai

import (
	"context"
	"fmt"
	"sync"
)

// Mock is an offline Client for local runs and tests. It never calls out;
// every request is recorded and answered with Text (or Err).
type Mock struct {
	mu    sync.Mutex
	calls []Request

	Text string
	Err  error
}

// NewMock returns a Mock answering with a fixed, recognisable quote.
func NewMock() *Mock {
	return &Mock{Text: "\"Every ending is a quiet beginning.\" - Anonymous"}
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Text == "" {
		return nil, ErrEmptyResponse
	}
	return &Response{Text: m.Text, Model: fmt.Sprintf("mock:%s", req.Model), FinishReason: "stop"}, nil
}

// Calls returns a copy of the recorded requests.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
