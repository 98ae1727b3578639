// Package admin keeps the per-client state behind the history gate: one
// gate and one history pager per logged-in client, addressed by a signed
// token.
package admin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ziadkadry99/quotegen/internal/gate"
	"github.com/ziadkadry99/quotegen/internal/history"
)

const tokenIssuer = "quotegen"

var (
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("admin: invalid token")

	// ErrSessionExpired is returned when a token names a session that was
	// logged out, idled out or lost in a restart.
	ErrSessionExpired = errors.New("admin: session expired")
)

// Session is one logged-in client.
type Session struct {
	ID    string
	Gate  *gate.Gate
	Pager *history.Pager

	lastSeen time.Time
}

// Sessions issues and resolves admin sessions. Sessions live in memory
// only; a restart logs everybody out.
type Sessions struct {
	secret   string
	src      history.Source
	pageSize int
	ttl      time.Duration
	key      []byte
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates a session registry. Pagers read pageSize records per
// load from src. Sessions unused for ttl are dropped.
func NewSessions(secret string, src history.Source, pageSize int, ttl time.Duration) (*Sessions, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	return &Sessions{
		secret:   secret,
		src:      src,
		pageSize: pageSize,
		ttl:      ttl,
		key:      key,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Login checks candidate against the admin secret. On success a session is
// created, its first history page is loaded and a token is returned. A
// failed first load still returns the token and session along with the
// load error, so the client can retry with Reload.
func (s *Sessions) Login(ctx context.Context, candidate string) (string, *Session, error) {
	sess := &Session{ID: uuid.NewString()}
	sess.Pager = history.NewPager(s.src, s.pageSize)
	sess.Gate = gate.New(s.secret,
		func(ctx context.Context) error {
			_, err := sess.Pager.LoadInitial(ctx)
			return err
		},
		sess.Pager.Reset,
	)

	ok, loadErr := sess.Gate.Authenticate(ctx, candidate)
	if !ok {
		return "", nil, gate.ErrIncorrectSecret
	}

	token, err := s.sign(sess.ID)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return token, sess, loadErr
}

// Lookup resolves a token to its live session and refreshes its idle timer.
func (s *Sessions) Lookup(token string) (*Session, error) {
	id, err := s.verify(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionExpired
	}
	now := s.now()
	if s.ttl > 0 && now.Sub(sess.lastSeen) >= s.ttl {
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Gate.Logout()
		return nil, ErrSessionExpired
	}
	sess.lastSeen = now
	s.mu.Unlock()
	return sess, nil
}

// Logout closes the session named by token and discards its history.
func (s *Sessions) Logout(token string) error {
	id, err := s.verify(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Gate.Logout()
	}
	return nil
}

// Sweep drops idle sessions and returns how many remain.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for id, sess := range s.sessions {
		if s.ttl > 0 && now.Sub(sess.lastSeen) >= s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Gate.Logout()
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) sign(id string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   tokenIssuer,
		Subject:  "history",
		ID:       id,
		IssuedAt: jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing admin token: %w", err)
	}
	return token, nil
}

func (s *Sessions) verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
