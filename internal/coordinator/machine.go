// apps/game-session/internal/coordinator/machine.go
//
// Machine is the session state machine. It validates user actions against the
// session stage, dispatches oracle requests, applies correlated replies and
// enforces deadlines.
//
// Transitions:
//   idle/finished    --StartGame-->      awaiting_start   (start request sent)
//   awaiting_start   --start reply-->    in_progress
//   in_progress      --CheckWord-->      awaiting_verdict (check request sent)
//   awaiting_verdict --verdict-->        in_progress | finished(win|lose)
//   any non-terminal --now > deadline--> finished(lose, timeout)
//
// Deadline rule: before any action or reply touching a session is applied, the
// session is expired if the current tick is past its deadline. Within one tick the
// first of {verdict, timeout} the machine processes wins, and a verdict applied at
// tick t (so t <= deadline) is never reverted by the sweep for tick t.
//
// Machine is not safe for concurrent use; Coordinator runs it on one goroutine.

package coordinator

import (
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
	"github.com/robalobadob/wordle/apps/game-session/internal/evaluator"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/metrics"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

// Config holds the game rules.
type Config struct {
	MaxGuesses   int
	WordLength   int
	TimeoutTicks int64
	Restart      session.RestartPolicy
}

// DefaultConfig is the reference configuration: 6 guesses of 5 letters within 10 ticks.
func DefaultConfig() Config {
	return Config{
		MaxGuesses:   6,
		WordLength:   5,
		TimeoutTicks: 10,
		Restart:      session.RestartOverwrite,
	}
}

// Machine drives sessions through their lifecycle.
type Machine struct {
	cfg      Config
	registry *session.Registry
	clock    clock.Clock
	eval     evaluator.Evaluator
	sink     evaluator.Sink
	pending  map[string]evaluator.Request // user -> the one outstanding request
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewMachine wires a Machine. Replies to its requests must be fed back through
// HandleReply; sink is the address they are dispatched with.
func NewMachine(cfg Config, clk clock.Clock, eval evaluator.Evaluator, sink evaluator.Sink, log zerolog.Logger, m *metrics.Metrics) *Machine {
	return &Machine{
		cfg:      cfg,
		registry: session.NewRegistry(cfg.Restart),
		clock:    clk,
		eval:     eval,
		sink:     sink,
		pending:  make(map[string]evaluator.Request),
		metrics:  m,
		log:      log,
	}
}

// StartGame creates a fresh session for user and asks the oracle to start a puzzle.
func (m *Machine) StartGame(user string) (session.Snapshot, []Event, error) {
	if !session.ValidUser(user) {
		return m.reject(session.IdleSnapshot(user), nil, errclass.ErrInvalidUser.WithMessagef("malformed identity %q", user))
	}

	now := m.clock.Now()
	var events []Event
	if s, ok := m.registry.GetMut(user); ok {
		events = m.expire(s, now)
	}

	s, replaced, err := m.registry.Start(user, now, now+clock.Tick(m.cfg.TimeoutTicks))
	if err != nil {
		prev, _ := m.registry.Get(user)
		return m.reject(prev.Snapshot(), events, err)
	}
	if replaced {
		// The reply to the discarded session's request will find nothing pending.
		delete(m.pending, user)
		m.log.Info().Str("user", user).Msg("live session overwritten by restart")
	}
	m.metrics.Started()
	m.log.Info().Str("user", user).Int64("started_at", int64(now)).Int64("deadline", int64(s.Deadline)).Msg("session started")

	m.dispatch(s, evaluator.NewRequest(user, evaluator.KindStart, ""))
	return s.Snapshot(), events, nil
}

// CheckWord submits a guess for user's session. Guesses are accepted only in
// in_progress: a session still in awaiting_start has no puzzle at the oracle yet,
// so a guess sent before the start acknowledgement fails with ErrIllegalStage and
// is not queued. Clients wait for game_started (or a settled start) first.
func (m *Machine) CheckWord(user, word string) (session.Snapshot, []Event, error) {
	if !session.ValidUser(user) {
		return m.reject(session.IdleSnapshot(user), nil, errclass.ErrInvalidUser.WithMessagef("malformed identity %q", user))
	}
	s, ok := m.registry.GetMut(user)
	if !ok {
		return m.reject(session.IdleSnapshot(user), nil, errclass.ErrSessionNotFound.WithMessagef("user %s has not started a game", user))
	}

	events := m.expire(s, m.clock.Now())
	if s.Stage != session.StageInProgress {
		return m.reject(s.Snapshot(), events, errclass.ErrIllegalStage.WithMessagef("cannot check a word while %s", s.Stage))
	}
	if len(word) != m.cfg.WordLength || !game.IsLowerAlpha(word) {
		return m.reject(s.Snapshot(), events, errclass.ErrInvalidGuess.WithMessagef("want %d lowercase letters, got %q", m.cfg.WordLength, word))
	}

	s.Stage = session.StageAwaitingVerdict
	m.dispatch(s, evaluator.NewRequest(user, evaluator.KindCheck, word))

	ev := newEvent(EventGuessDispatched, s)
	ev.Word = word
	return s.Snapshot(), append(events, ev), nil
}

// HandleReply applies an oracle reply. Replies that do not match the user's
// outstanding request are dropped with errclass.ErrStaleReply.
func (m *Machine) HandleReply(rep evaluator.Reply) ([]Event, error) {
	var events []Event
	s, ok := m.registry.GetMut(rep.User)
	if ok {
		events = m.expire(s, m.clock.Now())
	}

	req, pending := m.pending[rep.User]
	if !ok || !pending || req.ID != rep.ID {
		m.metrics.Stale()
		m.log.Debug().Str("user", rep.User).Str("request_id", rep.ID).Msg("stale oracle reply dropped")
		return events, errclass.ErrStaleReply.WithMessagef("no outstanding request %s for user %s", rep.ID, rep.User)
	}
	delete(m.pending, rep.User)

	switch req.Kind {
	case evaluator.KindStart:
		return append(events, m.applyStart(s, rep)...), nil
	default:
		return append(events, m.applyVerdict(s, req, rep)...), nil
	}
}

func (m *Machine) applyStart(s *session.Session, rep evaluator.Reply) []Event {
	if rep.Err != "" {
		// Nothing to retry against; the deadline settles the session.
		m.log.Warn().Str("user", s.User).Str("oracle_error", rep.Err).Msg("oracle refused to start a game")
		return nil
	}
	s.Stage = session.StageInProgress
	s.Result = session.ResultInProgress
	return []Event{newEvent(EventGameStarted, s)}
}

func (m *Machine) applyVerdict(s *session.Session, req evaluator.Request, rep evaluator.Reply) []Event {
	if reason := m.invalidVerdict(req, rep); reason != "" {
		s.Stage = session.StageInProgress
		m.metrics.Rejected("oracle")
		m.log.Warn().Str("user", s.User).Str("word", req.Word).Str("reason", reason).Msg("guess not scored")
		ev := newEvent(EventGuessRejected, s)
		ev.Word, ev.Reason = req.Word, reason
		return []Event{ev}
	}

	marks := append([]game.Mark(nil), rep.Marks...)
	s.CheckCount++
	s.History = append(s.History, session.Entry{Word: req.Word, Marks: marks})
	m.metrics.Applied()

	// verdict_applied is built after the transition so its snapshot is settled.
	var finished []Event
	switch {
	case game.AllCorrect(marks):
		finished = append(finished, m.finish(s, session.ResultWin, session.ReasonGuessed))
	case s.CheckCount >= m.cfg.MaxGuesses:
		finished = append(finished, m.finish(s, session.ResultLose, session.ReasonExhausted))
	default:
		s.Stage = session.StageInProgress
	}
	applied := newEvent(EventVerdictApplied, s)
	applied.Word, applied.Marks = req.Word, marks
	return append([]Event{applied}, finished...)
}

// invalidVerdict returns why rep cannot be applied, or "".
func (m *Machine) invalidVerdict(req evaluator.Request, rep evaluator.Reply) string {
	if rep.Err != "" {
		return rep.Err
	}
	if len(rep.Marks) != len(req.Word) {
		return "verdict length mismatch"
	}
	for _, mk := range rep.Marks {
		if !mk.Valid() {
			return "unknown mark " + string(mk)
		}
	}
	return ""
}

// Sweep is the watchdog: it finishes every non-terminal session whose deadline is
// before now, regardless of outstanding oracle requests.
func (m *Machine) Sweep(now clock.Tick) []Event {
	var events []Event
	for _, s := range m.registry.All() {
		events = append(events, m.expire(s, now)...)
	}
	return events
}

// expire applies the deadline rule to s.
func (m *Machine) expire(s *session.Session, now clock.Tick) []Event {
	if !s.Expired(now) {
		return nil
	}
	if req, ok := m.pending[s.User]; ok {
		m.log.Info().Str("user", s.User).Str("request_id", req.ID).Msg("abandoning in-flight oracle request")
		delete(m.pending, s.User)
	}
	return []Event{m.finish(s, session.ResultLose, session.ReasonTimeout)}
}

func (m *Machine) finish(s *session.Session, result session.Result, reason session.Reason) Event {
	s.Finish(result, reason)
	m.metrics.Finished(string(result), string(reason))
	m.log.Info().Str("user", s.User).Str("result", string(result)).Str("reason", string(reason)).
		Int("check_count", s.CheckCount).Msg("session finished")
	ev := newEvent(EventGameFinished, s)
	ev.Reason = string(reason)
	return ev
}

// dispatch records req as the session's outstanding request and sends it. A
// request the evaluator refuses is treated like a lost reply.
func (m *Machine) dispatch(s *session.Session, req evaluator.Request) {
	m.pending[s.User] = req
	m.metrics.Sent(string(req.Kind))
	if err := m.eval.Dispatch(req, m.sink); err != nil {
		m.metrics.DispatchFailed()
		m.log.Error().Err(err).Str("user", s.User).Str("request_id", req.ID).Msg("oracle dispatch failed; waiting for deadline")
	}
}

func (m *Machine) reject(snap session.Snapshot, events []Event, err error) (session.Snapshot, []Event, error) {
	kind := errclass.KindOf(err)
	m.metrics.Rejected(string(kind))
	m.log.Debug().Err(err).Str("user", snap.User).Str("stage", string(snap.Stage)).Msg("action rejected")
	return snap, events, err
}

// Session returns the snapshot for user; unknown users are reported idle.
func (m *Machine) Session(user string) (session.Snapshot, bool) {
	s, ok := m.registry.Get(user)
	if !ok {
		return session.IdleSnapshot(user), false
	}
	return s.Snapshot(), true
}

// State snapshots every session in first-start order.
func (m *Machine) State() State {
	all := m.registry.All()
	out := State{UserSessions: make([]UserSession, 0, len(all))}
	for _, s := range all {
		out.UserSessions = append(out.UserSessions, UserSession{User: s.User, Session: s.Snapshot()})
	}
	return out
}

// Outstanding returns the user's in-flight oracle request, if any.
func (m *Machine) Outstanding(user string) (evaluator.Request, bool) {
	req, ok := m.pending[user]
	return req, ok
}
