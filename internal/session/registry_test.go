package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

func TestRegistry_StartFreshSession(t *testing.T) {
	r := session.NewRegistry(session.RestartOverwrite)

	s, replaced, err := r.Start("u1", 4, 14)
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, session.StageAwaitingStart, s.Stage)
	assert.Equal(t, session.ResultUnknown, s.Result)
	assert.Zero(t, s.CheckCount)
	assert.Empty(t, s.History)
	assert.Equal(t, clock.Tick(4), s.StartedAt)
	assert.Equal(t, clock.Tick(14), s.Deadline)

	got, ok := r.Get("u1")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Get("nobody")
	assert.False(t, ok)
}

func TestRegistry_OverwriteDiscardsHistory(t *testing.T) {
	r := session.NewRegistry(session.RestartOverwrite)
	s, _, _ := r.Start("u1", 0, 10)
	s.Stage = session.StageInProgress
	s.CheckCount = 2
	s.History = append(s.History, session.Entry{Word: "human"}, session.Entry{Word: "jknkj"})

	fresh, replaced, err := r.Start("u1", 3, 13)
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Zero(t, fresh.CheckCount)
	assert.Empty(t, fresh.History)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectLiveSession(t *testing.T) {
	r := session.NewRegistry(session.RestartReject)
	s, _, _ := r.Start("u1", 0, 10)
	s.Stage = session.StageInProgress

	_, _, err := r.Start("u1", 1, 11)
	require.ErrorIs(t, err, errclass.ErrSessionAlreadyActive)
	got, _ := r.Get("u1")
	assert.Same(t, s, got, "rejected restart leaves the live session in place")

	s.Finish(session.ResultLose, session.ReasonExhausted)
	fresh, replaced, err := r.Start("u1", 2, 12)
	require.NoError(t, err, "finished sessions can always be restarted")
	assert.False(t, replaced)
	assert.Equal(t, session.StageAwaitingStart, fresh.Stage)
}

func TestRegistry_AllKeepsFirstStartOrder(t *testing.T) {
	r := session.NewRegistry("")
	assert.Equal(t, session.RestartOverwrite, r.Policy())

	for _, u := range []string{"u3", "u1", "u2", "u1"} {
		_, _, err := r.Start(u, 0, 10)
		require.NoError(t, err)
	}
	var users []string
	for _, s := range r.All() {
		users = append(users, s.User)
	}
	assert.Equal(t, []string{"u3", "u1", "u2"}, users)
}

func TestParseRestartPolicy(t *testing.T) {
	p, err := session.ParseRestartPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, session.RestartReject, p)

	p, err = session.ParseRestartPolicy("")
	require.NoError(t, err)
	assert.Equal(t, session.RestartOverwrite, p)

	_, err = session.ParseRestartPolicy("merge")
	require.Error(t, err)
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	s := &session.Session{
		User:    "u1",
		History: []session.Entry{{Word: "human", Marks: []game.Mark{game.MarkCorrect}}},
	}
	snap := s.Snapshot()
	snap.History[0].Marks[0] = game.MarkAbsent
	assert.Equal(t, game.MarkCorrect, s.History[0].Marks[0])
}

func TestSession_Expired(t *testing.T) {
	s := &session.Session{Result: session.ResultInProgress, Deadline: 10}
	assert.False(t, s.Expired(10))
	assert.True(t, s.Expired(11))

	s.Finish(session.ResultWin, session.ReasonGuessed)
	assert.False(t, s.Expired(11))
	assert.Equal(t, session.StageFinished, s.Stage)
}

func TestValidUser(t *testing.T) {
	for _, u := range []string{"u1", "Ab_9-x", "3f2a6c0e-1d2b-4c8e-9a1f-5b6c7d8e9f00"} {
		assert.True(t, session.ValidUser(u), u)
	}
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	for _, u := range []string{"", "has space", "semi;colon", "ünï", string(long)} {
		assert.False(t, session.ValidUser(u), u)
	}
}
