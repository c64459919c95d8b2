package game

import (
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
)

// State is the session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Session is one play from start to end or reset.
type Session struct {
	ID        string // uuid, reported with the result
	Serial    uint64 // scheduling key, bumped on every start and reset
	State     State
	Settings  Settings
	Score     int
	TimeLeft  int
	StartedAt time.Time
}

// hit adds the reward.
func (s *Session) hit(scoring config.ScoringConfig) {
	s.Score += scoring.Hit
}

// miss subtracts the penalty, never going below zero.
func (s *Session) miss(scoring config.ScoringConfig) {
	s.Score -= scoring.Miss
	if s.Score < 0 {
		s.Score = 0
	}
}

func (s *Session) result(level int, at time.Time) MatchResult {
	return MatchResult{
		SessionID:          s.ID,
		Score:              s.Score,
		Result:             OutcomeFor(s.Score),
		Level:              level,
		Difficulty:         s.Settings.Difficulty,
		Rows:               s.Settings.Rows,
		Cols:               s.Settings.Cols,
		DurationSecPlanned: s.Settings.Seconds,
		Timestamp:          at,
	}
}
