// Package daily maps calendar days to answer indexes for the oracle's daily
// picker, so every user gets the same secret word for the same day.
//
// Days roll over at midnight in the schedule's location (UTC by default).
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

const keyLayout = "2006-01-02"

// Schedule derives the day's index as HMAC-SHA256(salt, YYYY-MM-DD) mod n.
type Schedule struct {
	salt []byte
	loc  *time.Location
}

// NewSchedule returns a Schedule keyed by salt with days cut over in loc.
func NewSchedule(salt string, loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{salt: []byte(salt), loc: loc}
}

// Key returns the schedule's YYYY-MM-DD for t.
func (s Schedule) Key(t time.Time) string {
	return t.In(s.location()).Format(keyLayout)
}

// Index returns the answer index for t's day among n answers.
func (s Schedule) Index(t time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, s.salt)
	h.Write([]byte(s.Key(t)))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Next returns when the day containing t ends.
func (s Schedule) Next(t time.Time) time.Time {
	local := t.In(s.location())
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.location())
}

func (s Schedule) location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}
