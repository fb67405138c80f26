package daily_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/wordle/apps/game-session/internal/daily"
)

func TestSchedule_KeyDefaultsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2026, 10, 19, 5, 0, 0, 0, loc)

	assert.Equal(t, "2026-10-18", daily.NewSchedule("salt", nil).Key(ts))
	assert.Equal(t, "2026-10-19", daily.NewSchedule("salt", loc).Key(ts))
}

func TestSchedule_Index(t *testing.T) {
	s := daily.NewSchedule("salt", nil)
	day := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	i := s.Index(day, 12)
	assert.GreaterOrEqual(t, i, 0)
	assert.Less(t, i, 12)
	assert.Equal(t, i, s.Index(day.Add(6*time.Hour), 12), "same day, same index")
	assert.Equal(t, 0, s.Index(day, 0))

	var zero daily.Schedule
	assert.Equal(t, "2026-10-19", zero.Key(day))
}

func TestSchedule_SaltChangesSequence(t *testing.T) {
	a, b := daily.NewSchedule("a", nil), daily.NewSchedule("b", nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	differs := false
	for d := 0; d < 30 && !differs; d++ {
		day := start.AddDate(0, 0, d)
		differs = a.Index(day, 1000) != b.Index(day, 1000)
	}
	assert.True(t, differs)
}

func TestSchedule_Next(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	s := daily.NewSchedule("salt", loc)
	ts := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC) // 18:30 local

	next := s.Next(ts)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, loc), next)
	assert.NotEqual(t, s.Key(ts), s.Key(next))
	assert.Equal(t, s.Key(ts), s.Key(next.Add(-time.Nanosecond)))
}
