// Package gate is the shared-secret switch in front of the history view.
// It hides the view from casual visitors; it is not access control.
package gate

import (
	"context"
	"errors"
	"sync"
)

// ErrIncorrectSecret is returned for a wrong secret. The message is the
// same whatever was wrong about the attempt.
var ErrIncorrectSecret = errors.New("incorrect password")

// State is the gate position.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Gate holds the login state and the pending secret input.
type Gate struct {
	secret   string
	onLogin  func(context.Context) error
	onLogout func()

	mu    sync.Mutex
	state State
	input string
}

// New creates a logged-out gate. onLogin runs once per successful login and
// normally loads the first history page; onLogout discards what was loaded.
// Either may be nil.
func New(secret string, onLogin func(context.Context) error, onLogout func()) *Gate {
	return &Gate{secret: secret, onLogin: onLogin, onLogout: onLogout}
}

// SetInput stores the candidate secret typed so far.
func (g *Gate) SetInput(s string) {
	g.mu.Lock()
	g.input = s
	g.mu.Unlock()
}

// Input returns the pending candidate secret.
func (g *Gate) Input() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.input
}

// Submit authenticates with the pending input.
func (g *Gate) Submit(ctx context.Context) error {
	ok, err := g.Authenticate(ctx, g.Input())
	if err != nil {
		return err
	}
	if !ok {
		return ErrIncorrectSecret
	}
	return nil
}

// Authenticate compares candidate with the secret. On a match the gate
// opens and onLogin runs; its error is returned but the gate stays open,
// so a failed first load can be retried. On a mismatch the input is
// cleared and the gate stays closed. Authenticating an open gate with the
// right secret is a no-op.
func (g *Gate) Authenticate(ctx context.Context, candidate string) (bool, error) {
	g.mu.Lock()
	if candidate != g.secret {
		g.input = ""
		g.mu.Unlock()
		return false, nil
	}
	g.input = ""
	if g.state == LoggedIn {
		g.mu.Unlock()
		return true, nil
	}
	g.state = LoggedIn
	g.mu.Unlock()

	if g.onLogin != nil {
		if err := g.onLogin(ctx); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Logout closes the gate and runs onLogout.
func (g *Gate) Logout() {
	g.mu.Lock()
	wasIn := g.state == LoggedIn
	g.state = LoggedOut
	g.input = ""
	g.mu.Unlock()

	if wasIn && g.onLogout != nil {
		g.onLogout()
	}
}

// State returns the current gate position.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
