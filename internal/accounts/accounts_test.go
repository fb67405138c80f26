package accounts_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/assets"
	"github.com/robalobadob/wordle/apps/game-session/internal/accounts"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

func newUsers(t *testing.T) *accounts.Users {
	t.Helper()
	db, err := accounts.OpenDB(filepath.Join(t.TempDir(), "data", "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, accounts.Migrate(ctx, db, assets.Migrations(), zerolog.Nop()))
	// Second run is a no-op.
	require.NoError(t, accounts.Migrate(ctx, db, assets.Migrations(), zerolog.Nop()))
	return accounts.NewUsers(db)
}

func TestUsers_SignupAndAuthenticate(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	u, err := users.Signup(ctx, "  alice ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, session.ValidUser(u.ID), "account IDs are usable as session identities")

	got, err := users.Authenticate(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Authenticate(ctx, "alice", "wrong password")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "whatever1")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, byID.Username)
	assert.Equal(t, u.CreatedAt, byID.CreatedAt)

	_, err = users.FindByID(ctx, "missing")
	require.ErrorIs(t, err, accounts.ErrUserNotFound)
}

func TestUsers_SignupRules(t *testing.T) {
	users := newUsers(t)
	ctx := context.Background()

	_, err := users.Signup(ctx, "bob", "password1")
	require.NoError(t, err)
	_, err = users.Signup(ctx, "BOB", "password2")
	require.ErrorIs(t, err, accounts.ErrUsernameTaken)

	for _, tc := range []struct{ user, pw string }{
		{"ab", "password1"},
		{"has space", "password1"},
		{"carol", "short"},
	} {
		_, err := users.Signup(ctx, tc.user, tc.pw)
		assert.Error(t, err, tc.user)
	}
}

func TestTokens(t *testing.T) {
	tokens := accounts.NewTokens("s3cret", time.Hour)

	tok, exp, err := tokens.Sign("id-1", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, accounts.Claims{ID: "id-1", Username: "alice"}, claims)

	_, err = accounts.NewTokens("other", time.Hour).Parse(tok)
	require.ErrorIs(t, err, accounts.ErrInvalidToken)
	_, err = tokens.Parse(tok + "x")
	require.ErrorIs(t, err, accounts.ErrInvalidToken)

	expired, _, err := accounts.NewTokens("s3cret", -time.Minute).Sign("id-1", "alice")
	require.NoError(t, err)
	_, err = tokens.Parse(expired)
	require.ErrorIs(t, err, accounts.ErrInvalidToken)
}
