package game

import (
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
)

// Outcome is the win/loss verdict of a finished session.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// OutcomeFor returns win iff score is positive.
func OutcomeFor(score int) Outcome {
	if score > 0 {
		return OutcomeWin
	}
	return OutcomeLoss
}

// MatchResult is the report of a finished session.
type MatchResult struct {
	SessionID          string
	Score              int
	Result             Outcome
	Level              int // 1 easy, 2 medium, 3 hard
	Difficulty         config.Difficulty
	Rows               int
	Cols               int
	DurationSecPlanned int
	Timestamp          time.Time
}

// Win reports whether the result is a win.
func (r MatchResult) Win() bool {
	return r.Result == OutcomeWin
}

// Reporter receives finished sessions.
type Reporter interface {
	SessionEnded(res MatchResult)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(res MatchResult)

func (f ReporterFunc) SessionEnded(res MatchResult) { f(res) }
