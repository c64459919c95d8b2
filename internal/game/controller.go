// Package game implements the catch-the-target session engine: the session
// state machine, the spawn and countdown timers it drives, and the guard that
// keeps settings fixed while a session runs.
//
// The engine is single-threaded. Timers are expressed as Tasks handed to a
// Scheduler; the host delivers them back through Controller.Fire on the same
// goroutine that calls every other method.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
	"github.com/vovakirdan/catch-arcade/internal/validate"
)

var (
	ErrNotRunning     = errors.New("game: no session running")
	ErrAlreadyRunning = errors.New("game: session already running")
	ErrInvalidConfig  = errors.New("game: invalid session settings")
)

// FieldError describes one field that failed validation at start.
type FieldError struct {
	Field    Field
	Min, Max int
}

// ConfigError lists the fields that blocked a start.
type ConfigError struct {
	Fields []FieldError
}

func (e *ConfigError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f.Field)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(names, ", "))
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ClickResult classifies a cell click.
type ClickResult int

const (
	ClickIgnored ClickResult = iota
	ClickHit
	ClickMiss
)

// Preferences are profile-stored defaults for the next session.
// Zero values leave the corresponding field untouched.
type Preferences struct {
	Rows       int
	Cols       int
	Time       int
	Difficulty string
}

// Snapshot is a read-only view of the controller for rendering.
type Snapshot struct {
	State     State
	SessionID string
	Settings  Settings // committed while running/ended; display values when idle
	Planned   Planned
	Score     int
	TimeLeft  int
	Target    int
	Limit     int
}

// Controller owns the single live session.
type Controller struct {
	cfg      config.Config
	sched    Scheduler
	rng      *rand.Rand
	reporter Reporter
	now      func() time.Time

	limit     int
	serial    uint64
	planned   Planned
	session   Session
	countdown *Countdown
	spawner   *Spawner
	events    []Event
}

// NewController creates an idle controller seeded with the configured
// defaults. reporter may be nil.
func NewController(cfg config.Config, sched Scheduler, rng *rand.Rand, reporter Reporter) *Controller {
	def := Settings{
		Rows:       cfg.Grid.DefaultRows,
		Cols:       cfg.Grid.DefaultCols,
		Seconds:    cfg.Time.DefaultSeconds,
		Difficulty: cfg.Difficulty.Default,
	}
	return &Controller{
		cfg:       cfg,
		sched:     sched,
		rng:       rng,
		reporter:  reporter,
		now:       time.Now,
		limit:     cfg.Grid.MaxSize,
		planned:   plannedFrom(def),
		session:   Session{State: StateIdle, Settings: def, TimeLeft: def.Seconds},
		countdown: NewCountdown(sched),
		spawner:   NewSpawner(sched, rng),
	}
}

// SetClock replaces the wall clock used for result timestamps.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// SetReporter replaces the result reporter.
func (c *Controller) SetReporter(r Reporter) {
	c.reporter = r
}

// Events drains the queued events.
func (c *Controller) Events() []Event {
	out := c.events
	c.events = nil
	return out
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:     c.session.State,
		SessionID: c.session.ID,
		Settings:  c.session.Settings,
		Planned:   c.planned,
		Score:     c.session.Score,
		TimeLeft:  c.session.TimeLeft,
		Target:    c.spawner.Current(),
		Limit:     c.limit,
	}
}

// Grid returns the board of the current session.
func (c *Controller) Grid() core.Grid {
	return core.NewGrid(c.session.Settings.Rows, c.session.Settings.Cols)
}

// Running reports whether a session is in progress.
func (c *Controller) Running() bool {
	return c.session.State == StateRunning
}

// Limit returns the current rows/cols upper bound.
func (c *Controller) Limit() int {
	return c.limit
}

// SetLimit changes the rows/cols upper bound, e.g. after a terminal resize.
// A running session keeps its board; the new bound applies at the next start.
func (c *Controller) SetLimit(limit int) {
	if limit < c.cfg.Grid.MinSize {
		limit = c.cfg.Grid.MinSize
	}
	if limit == c.limit {
		return
	}
	c.limit = limit
	if !c.Running() {
		c.checkPlanned(FieldRows)
		c.checkPlanned(FieldCols)
	}
}

// SetField records an edit of a settings field. While a session runs the
// edit is refused and the field reverts to the committed value. Otherwise
// the raw text is kept as typed and validated for inline feedback.
func (c *Controller) SetField(field Field, raw string) Verdict {
	v := Guard(c.Running(), field, raw, c.session.Settings)
	if !v.Accepted {
		c.setPlanned(field, v.RevertTo)
		c.emit(FieldRejected{Field: field, Reason: v.Message, RevertTo: v.RevertTo})
		c.notice(v.Message, NoticeWarn)
		return v
	}
	c.setPlanned(field, raw)
	c.checkPlanned(field)
	return v
}

// ApplyPreferences loads profile preferences into the planned settings.
// The running session, if any, is not affected.
func (c *Controller) ApplyPreferences(p Preferences) {
	if p.Rows > 0 {
		c.setPlanned(FieldRows, strconv.Itoa(p.Rows))
	}
	if p.Cols > 0 {
		c.setPlanned(FieldCols, strconv.Itoa(p.Cols))
	}
	if p.Time > 0 {
		c.setPlanned(FieldTime, strconv.Itoa(p.Time))
	}
	if p.Difficulty != "" {
		if d, err := config.ParseDifficulty(p.Difficulty); err == nil {
			c.planned.Difficulty = d
		}
	}
	if c.Running() {
		c.notice("preferences will apply to the next game", NoticeInfo)
		return
	}
	for _, f := range Fields() {
		c.checkPlanned(f)
	}
}

// Start validates the planned settings and begins a session.
// On failure the controller stays idle and a *ConfigError is returned.
func (c *Controller) Start() error {
	if c.Running() {
		c.notice("a game is already running", NoticeWarn)
		return ErrAlreadyRunning
	}

	settings, bad := c.validatePlanned()
	if len(bad) > 0 {
		for _, fe := range bad {
			c.emit(FieldInvalid{Field: fe.Field, Min: fe.Min, Max: fe.Max})
		}
		c.notice("fix the highlighted settings before starting", NoticeError)
		return &ConfigError{Fields: bad}
	}

	c.stopTimers()
	c.serial++
	c.planned = plannedFrom(settings)
	c.session = Session{
		ID:        uuid.NewString(),
		Serial:    c.serial,
		State:     StateRunning,
		Settings:  settings,
		TimeLeft:  settings.Seconds,
		StartedAt: c.now(),
	}

	c.emit(GridRebuilt{Rows: settings.Rows, Cols: settings.Cols})
	c.emit(SessionStarted{SessionID: c.session.ID})
	c.emit(ScoreChanged{Score: 0})
	c.emit(TimeChanged{Seconds: settings.Seconds})

	c.countdown.Start(c.serial, settings.Seconds)
	idx := c.spawner.Start(c.serial, c.Grid(), c.cfg.Difficulty.Interval(settings.Difficulty))
	c.emit(TargetMoved{Index: idx, Prev: core.NoCell})
	return nil
}

// Click adjudicates a click on cell index.
func (c *Controller) Click(index int) (ClickResult, error) {
	if !c.Running() {
		c.notice("press Start first", NoticeInfo)
		return ClickIgnored, ErrNotRunning
	}
	g := c.Grid()
	if !g.Contains(index) {
		return ClickIgnored, fmt.Errorf("game: cell %d outside %dx%d grid", index, g.Rows, g.Cols)
	}

	if index == c.spawner.Current() {
		c.session.hit(c.cfg.Scoring)
		caught, next := c.spawner.Catch()
		c.emit(TargetCaught{Index: caught})
		c.emit(ScoreChanged{Score: c.session.Score})
		c.emit(TargetMoved{Index: next, Prev: core.NoCell})
		return ClickHit, nil
	}

	c.session.miss(c.cfg.Scoring)
	c.emit(CellMissed{Index: index})
	c.emit(ScoreChanged{Score: c.session.Score})
	return ClickMiss, nil
}

// Fire delivers a scheduled task. It reports false for stale tasks, which
// leave the state untouched.
func (c *Controller) Fire(t Task) bool {
	if t.Session != c.serial || !c.Running() {
		return false
	}
	switch t.Kind {
	case TaskTick:
		left, expired, ok := c.countdown.Fire(t)
		if !ok {
			return false
		}
		c.session.TimeLeft = left
		c.emit(TimeChanged{Seconds: left})
		if expired {
			c.end()
		}
		return true
	case TaskSpawn:
		prev, next, ok := c.spawner.Fire(t)
		if !ok {
			return false
		}
		c.emit(TargetMoved{Index: next, Prev: prev})
		return true
	}
	return false
}

// Live reports whether t is still current. Anything else is discarded by Fire.
func (c *Controller) Live(t Task) bool {
	if t.Session != c.serial || !c.Running() {
		return false
	}
	return c.countdown.Live(t) || c.spawner.Live(t)
}

// Reset stops every timer and returns to idle from any state. The time is
// recomputed from the raw time field, falling back to the default.
func (c *Controller) Reset() {
	c.stopTimers()
	c.serial++

	settings := c.session.Settings
	if r := validate.Validate(c.planned.Rows, c.cfg.Grid.MinSize, c.limit); r.OK {
		settings.Rows = r.Value
	}
	if r := validate.Validate(c.planned.Cols, c.cfg.Grid.MinSize, c.limit); r.OK {
		settings.Cols = r.Value
	}
	if d, err := config.ParseDifficulty(string(c.planned.Difficulty)); err == nil {
		settings.Difficulty = d
	}
	secs, ok := validate.ParseNumeric(c.planned.Time)
	if !ok || secs <= 0 {
		secs = c.cfg.Time.DefaultSeconds
	}
	settings.Seconds = secs

	c.session = Session{Serial: c.serial, State: StateIdle, Settings: settings, TimeLeft: secs}
	c.emit(GridRebuilt{Rows: settings.Rows, Cols: settings.Cols})
	c.emit(ScoreChanged{Score: 0})
	c.emit(TimeChanged{Seconds: secs})
}

func (c *Controller) end() {
	c.stopTimers()
	c.session.State = StateEnded
	level := c.cfg.Difficulty.Interval(c.session.Settings.Difficulty).Level
	res := c.session.result(level, c.now().UTC())
	c.emit(SessionEnded{Result: res})
	if c.reporter != nil {
		c.reporter.SessionEnded(res)
	}
}

func (c *Controller) stopTimers() {
	c.countdown.Stop()
	c.spawner.Stop()
}

func (c *Controller) bounds(f Field) (int, int) {
	if f == FieldTime {
		return c.cfg.Time.MinSeconds, c.cfg.Time.MaxSeconds
	}
	return c.cfg.Grid.MinSize, c.limit
}

func (c *Controller) setPlanned(f Field, raw string) {
	switch f {
	case FieldRows:
		c.planned.Rows = raw
	case FieldCols:
		c.planned.Cols = raw
	case FieldTime:
		c.planned.Time = raw
	case FieldDifficulty:
		if d, err := config.ParseDifficulty(raw); err == nil {
			c.planned.Difficulty = d
		} else {
			c.planned.Difficulty = config.Difficulty(raw)
		}
	}
}

// checkPlanned emits FieldInvalid when the planned value of f is unusable.
func (c *Controller) checkPlanned(f Field) bool {
	if f == FieldDifficulty {
		if _, err := config.ParseDifficulty(string(c.planned.Difficulty)); err != nil {
			c.emit(FieldInvalid{Field: f})
			return false
		}
		return true
	}
	lo, hi := c.bounds(f)
	if !validate.Validate(c.planned.Get(f), lo, hi).OK {
		c.emit(FieldInvalid{Field: f, Min: lo, Max: hi})
		return false
	}
	return true
}

// Preferred returns the settings as currently entered in the fields. A field
// whose entry is invalid keeps the value of the current session.
func (c *Controller) Preferred() Settings {
	s, bad := c.validatePlanned()
	cur := c.session.Settings
	for _, e := range bad {
		switch e.Field {
		case FieldRows:
			s.Rows = cur.Rows
		case FieldCols:
			s.Cols = cur.Cols
		case FieldTime:
			s.Seconds = cur.Seconds
		case FieldDifficulty:
			s.Difficulty = cur.Difficulty
		}
	}
	return s
}

func (c *Controller) validatePlanned() (Settings, []FieldError) {
	var s Settings
	var bad []FieldError
	for _, f := range []Field{FieldRows, FieldCols, FieldTime} {
		lo, hi := c.bounds(f)
		r := validate.Validate(c.planned.Get(f), lo, hi)
		if !r.OK {
			bad = append(bad, FieldError{Field: f, Min: lo, Max: hi})
			continue
		}
		switch f {
		case FieldRows:
			s.Rows = r.Value
		case FieldCols:
			s.Cols = r.Value
		case FieldTime:
			s.Seconds = r.Value
		}
	}
	d, err := config.ParseDifficulty(string(c.planned.Difficulty))
	if err != nil {
		bad = append(bad, FieldError{Field: FieldDifficulty})
	}
	s.Difficulty = d
	return s, bad
}

func (c *Controller) emit(e Event) {
	c.events = append(c.events, e)
}

func (c *Controller) notice(text string, level NoticeLevel) {
	c.emit(Notice{Text: text, Level: level, TTL: c.cfg.Notices.Duration()})
}

func plannedFrom(s Settings) Planned {
	return Planned{
		Rows:       strconv.Itoa(s.Rows),
		Cols:       strconv.Itoa(s.Cols),
		Time:       strconv.Itoa(s.Seconds),
		Difficulty: s.Difficulty,
	}
}
