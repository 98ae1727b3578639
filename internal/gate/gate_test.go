package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hooks struct {
	logins  int
	logouts int
	err     error
}

func (h *hooks) gate(secret string) *Gate {
	return New(secret,
		func(context.Context) error { h.logins++; return h.err },
		func() { h.logouts++ },
	)
}

func TestCorrectSecretLogsIn(t *testing.T) {
	h := &hooks{}
	g := h.gate("letmein")
	g.SetInput("letmein")

	require.NoError(t, g.Submit(context.Background()))
	assert.Equal(t, LoggedIn, g.State())
	assert.Equal(t, 1, h.logins)
	assert.Empty(t, g.Input())
}

func TestIncorrectSecretClearsInput(t *testing.T) {
	h := &hooks{}
	g := h.gate("letmein")
	g.SetInput("guess")

	err := g.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncorrectSecret)
	assert.Equal(t, LoggedOut, g.State())
	assert.Empty(t, g.Input())
	assert.Zero(t, h.logins)
}

func TestNoLockout(t *testing.T) {
	h := &hooks{}
	g := h.gate("letmein")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		ok, err := g.Authenticate(ctx, "wrong")
		require.NoError(t, err)
		require.False(t, ok)
	}
	ok, err := g.Authenticate(ctx, "letmein")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, LoggedIn, g.State())
}

func TestRepeatLoginRunsHookOnce(t *testing.T) {
	h := &hooks{}
	g := h.gate("s")
	ctx := context.Background()

	_, _ = g.Authenticate(ctx, "s")
	_, _ = g.Authenticate(ctx, "s")
	assert.Equal(t, 1, h.logins)
}

func TestLogoutRunsHook(t *testing.T) {
	h := &hooks{}
	g := h.gate("s")
	ctx := context.Background()

	g.Logout()
	assert.Zero(t, h.logouts, "logging out a closed gate does nothing")

	_, _ = g.Authenticate(ctx, "s")
	g.Logout()
	assert.Equal(t, LoggedOut, g.State())
	assert.Equal(t, 1, h.logouts)

	// The next login loads again.
	_, _ = g.Authenticate(ctx, "s")
	assert.Equal(t, 2, h.logins)
}

func TestLoginHookErrorKeepsGateOpen(t *testing.T) {
	h := &hooks{err: errors.New("query failed")}
	g := h.gate("s")

	ok, err := g.Authenticate(context.Background(), "s")
	assert.True(t, ok)
	assert.EqualError(t, err, "query failed")
	assert.Equal(t, LoggedIn, g.State())
}

func TestNilHooks(t *testing.T) {
	g := New("s", nil, nil)
	ok, err := g.Authenticate(context.Background(), "s")
	require.NoError(t, err)
	assert.True(t, ok)
	g.Logout()
	assert.Equal(t, "logged_out", g.State().String())
}
