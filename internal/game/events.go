package game

import "time"

// Event is a state change the rendering collaborator subscribes to.
type Event interface {
	event()
}

// NoticeLevel grades an advisory.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// GridRebuilt asks the renderer to rebuild its cell representation.
type GridRebuilt struct{ Rows, Cols int }

// TargetMoved reports a relocation. Prev is core.NoCell after a catch or on
// the first placement.
type TargetMoved struct{ Index, Prev int }

// TargetCaught reports a hit on Index.
type TargetCaught struct{ Index int }

// CellMissed reports a click on a cell without the target.
type CellMissed struct{ Index int }

type ScoreChanged struct{ Score int }

type TimeChanged struct{ Seconds int }

type SessionStarted struct{ SessionID string }

type SessionEnded struct{ Result MatchResult }

// FieldRejected reports a guarded edit. The field shows RevertTo again.
type FieldRejected struct {
	Field    Field
	Reason   string
	RevertTo string
}

// FieldInvalid reports a pending value outside [Min, Max]. Min and Max are
// zero for non-numeric fields.
type FieldInvalid struct {
	Field    Field
	Min, Max int
}

// Notice is a transient advisory shown for TTL.
type Notice struct {
	Text  string
	Level NoticeLevel
	TTL   time.Duration
}

func (GridRebuilt) event()    {}
func (TargetMoved) event()    {}
func (TargetCaught) event()   {}
func (CellMissed) event()     {}
func (ScoreChanged) event()   {}
func (TimeChanged) event()    {}
func (SessionStarted) event() {}
func (SessionEnded) event()   {}
func (FieldRejected) event()  {}
func (FieldInvalid) event()   {}
func (Notice) event()         {}
