package game

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/catch-arcade/internal/config"
)

// Field names an editable session setting.
type Field string

const (
	FieldRows       Field = "rows"
	FieldCols       Field = "cols"
	FieldTime       Field = "time"
	FieldDifficulty Field = "difficulty"
)

// Fields returns the editable settings in form order.
func Fields() []Field {
	return []Field{FieldRows, FieldCols, FieldTime, FieldDifficulty}
}

// Settings is a committed session configuration.
type Settings struct {
	Rows       int
	Cols       int
	Seconds    int
	Difficulty config.Difficulty
}

// Value returns the field formatted as it appears in an input.
func (s Settings) Value(f Field) string {
	switch f {
	case FieldRows:
		return strconv.Itoa(s.Rows)
	case FieldCols:
		return strconv.Itoa(s.Cols)
	case FieldTime:
		return strconv.Itoa(s.Seconds)
	case FieldDifficulty:
		return string(s.Difficulty)
	}
	return ""
}

// Planned holds the raw, possibly invalid, field contents for the next session.
type Planned struct {
	Rows       string
	Cols       string
	Time       string
	Difficulty config.Difficulty
}

// Get returns the raw contents of f.
func (p Planned) Get(f Field) string {
	switch f {
	case FieldRows:
		return p.Rows
	case FieldCols:
		return p.Cols
	case FieldTime:
		return p.Time
	case FieldDifficulty:
		return string(p.Difficulty)
	}
	return ""
}

// Verdict is the guard's answer to an attempted edit.
type Verdict struct {
	Accepted bool
	RevertTo string
	Message  string
}

// Guard decides whether an edit of field may proceed. While a session runs
// every change to a guarded field is refused and the committed value is
// returned for the input to show again; edits that keep the committed value
// pass.
func Guard(running bool, field Field, attempted string, committed Settings) Verdict {
	if !running {
		return Verdict{Accepted: true}
	}
	current := committed.Value(field)
	if attempted == current {
		return Verdict{Accepted: true}
	}
	return Verdict{
		RevertTo: current,
		Message:  fmt.Sprintf("can't change %s during a game", field),
	}
}
