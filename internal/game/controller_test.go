package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
)

type recordingReporter struct {
	results []MatchResult
}

func (r *recordingReporter) SessionEnded(res MatchResult) {
	r.results = append(r.results, res)
}

func newTestController(t *testing.T, seed int64) (*Controller, *VirtualScheduler, *recordingReporter) {
	t.Helper()
	sched := NewVirtualScheduler()
	rep := &recordingReporter{}
	c := NewController(config.Default(), sched, rand.New(rand.NewSource(seed)), rep)
	c.SetClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) })
	return c, sched, rep
}

func startGame(t *testing.T, c *Controller, rows, cols, secs string) {
	t.Helper()
	c.SetField(FieldRows, rows)
	c.SetField(FieldCols, cols)
	c.SetField(FieldTime, secs)
	if err := c.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	c.Events()
}

func run(c *Controller, s *VirtualScheduler, d time.Duration) {
	s.Advance(d, func(task Task) { c.Fire(task) })
}

func TestCountdownRunsToCompletion(t *testing.T) {
	c, sched, rep := newTestController(t, 1)
	startGame(t, c, "6", "8", "30")

	run(c, sched, 60*time.Second)

	var ticks []int
	ended := 0
	for _, ev := range c.Events() {
		switch e := ev.(type) {
		case TimeChanged:
			ticks = append(ticks, e.Seconds)
		case SessionEnded:
			ended++
		}
	}
	if len(ticks) != 30 {
		t.Fatalf("expected 30 ticks, got %d", len(ticks))
	}
	if ticks[len(ticks)-1] != 0 {
		t.Errorf("last tick = %d, expected 0", ticks[len(ticks)-1])
	}
	if ended != 1 || len(rep.results) != 1 {
		t.Errorf("session ended %d times, reported %d times; expected once", ended, len(rep.results))
	}

	snap := c.Snapshot()
	if snap.State != StateEnded || snap.TimeLeft != 0 {
		t.Errorf("final state %v, time %d", snap.State, snap.TimeLeft)
	}
	if snap.Target != core.NoCell {
		t.Errorf("target should be cleared after end, got %d", snap.Target)
	}
	for _, task := range sched.Tasks() {
		if c.Live(task) {
			t.Errorf("live task %+v left after end", task)
		}
	}
}

func TestScoreNeverNegative(t *testing.T) {
	c, sched, _ := newTestController(t, 2)
	startGame(t, c, "4", "4", "60")
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 500; i++ {
		if rng.Intn(4) == 0 {
			c.Click(c.Snapshot().Target)
		} else {
			c.Click(rng.Intn(16))
		}
		if s := c.Snapshot().Score; s < 0 {
			t.Fatalf("score went negative: %d", s)
		}
		run(c, sched, 50*time.Millisecond)
	}
	for _, ev := range c.Events() {
		if e, ok := ev.(ScoreChanged); ok && e.Score < 0 {
			t.Fatalf("negative ScoreChanged event: %d", e.Score)
		}
	}
}

func TestClickHitAndMiss(t *testing.T) {
	c, _, _ := newTestController(t, 3)
	startGame(t, c, "3", "3", "30")

	target := c.Snapshot().Target
	res, err := c.Click(target)
	if err != nil || res != ClickHit {
		t.Fatalf("Click(target) = %v, %v", res, err)
	}
	if c.Snapshot().Score != 10 {
		t.Errorf("score after hit = %d, expected 10", c.Snapshot().Score)
	}
	next := c.Snapshot().Target
	if next == target || next == core.NoCell {
		t.Errorf("catch should relocate immediately to a new cell, got %d (was %d)", next, target)
	}

	miss := (next + 1) % 9
	res, _ = c.Click(miss)
	if res != ClickMiss {
		t.Fatalf("Click(non-target) = %v, expected miss", res)
	}
	if c.Snapshot().Score != 5 {
		t.Errorf("score after miss = %d, expected 5", c.Snapshot().Score)
	}

	var missed bool
	for _, ev := range c.Events() {
		if e, ok := ev.(CellMissed); ok && e.Index == miss {
			missed = true
		}
	}
	if !missed {
		t.Error("expected a CellMissed event")
	}

	if _, err := c.Click(42); err == nil {
		t.Error("clicking outside the grid should fail")
	}
}

func TestClickWhileIdle(t *testing.T) {
	c, _, _ := newTestController(t, 4)

	res, err := c.Click(0)
	if res != ClickIgnored || !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Click while idle = %v, %v", res, err)
	}
	var notice bool
	for _, ev := range c.Events() {
		if _, ok := ev.(Notice); ok {
			notice = true
		}
	}
	if !notice {
		t.Error("clicking an idle grid should produce an advisory")
	}
}

func TestGuardBlocksEditsWhileRunning(t *testing.T) {
	c, _, _ := newTestController(t, 5)
	c.SetField(FieldDifficulty, "hard")
	startGame(t, c, "6", "8", "30")
	before := c.Snapshot().Settings

	edits := []struct {
		field Field
		raw   string
	}{
		{FieldRows, "10"},
		{FieldCols, "3"},
		{FieldTime, "90"},
		{FieldDifficulty, "easy"},
	}
	for _, e := range edits {
		v := c.SetField(e.field, e.raw)
		if v.Accepted {
			t.Errorf("edit of %s accepted while running", e.field)
		}
		if v.RevertTo != before.Value(e.field) {
			t.Errorf("%s reverts to %q, expected %q", e.field, v.RevertTo, before.Value(e.field))
		}
		if got := c.Snapshot().Planned.Get(e.field); got != before.Value(e.field) {
			t.Errorf("%s input shows %q after rejection", e.field, got)
		}
	}

	if c.Snapshot().Settings != before {
		t.Errorf("committed settings changed: %+v -> %+v", before, c.Snapshot().Settings)
	}

	rejected, notices := 0, 0
	for _, ev := range c.Events() {
		switch e := ev.(type) {
		case FieldRejected:
			rejected++
		case Notice:
			notices++
			if e.TTL != 2500*time.Millisecond {
				t.Errorf("advisory TTL = %v", e.TTL)
			}
		}
	}
	if rejected != len(edits) || notices != len(edits) {
		t.Errorf("rejected=%d notices=%d, expected %d each", rejected, notices, len(edits))
	}

	if v := c.SetField(FieldRows, "6"); !v.Accepted {
		t.Error("re-entering the committed value should not be treated as a change")
	}
}

func TestIdleEditsArePermissive(t *testing.T) {
	c, _, _ := newTestController(t, 6)

	c.SetField(FieldRows, "ab1")
	if got := c.Snapshot().Planned.Rows; got != "ab1" {
		t.Errorf("raw input should be kept as typed, got %q", got)
	}
	var invalid *FieldInvalid
	for _, ev := range c.Events() {
		if e, ok := ev.(FieldInvalid); ok {
			invalid = &e
		}
	}
	if invalid == nil || invalid.Field != FieldRows || invalid.Min != 2 || invalid.Max != 15 {
		t.Fatalf("expected FieldInvalid for rows in [2, 15], got %+v", invalid)
	}

	c.SetField(FieldRows, "x5y")
	if err := c.Start(); err != nil {
		t.Fatalf("Start() should accept permissive digits: %v", err)
	}
	if c.Snapshot().Settings.Rows != 5 {
		t.Errorf("rows = %d, expected 5", c.Snapshot().Settings.Rows)
	}
}

func TestStartRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		raw   string
	}{
		{"rows too small", FieldRows, "1"},
		{"cols too large", FieldCols, "16"},
		{"time too short", FieldTime, "9"},
		{"time too long", FieldTime, "91"},
		{"no digits", FieldCols, "many"},
		{"bad difficulty", FieldDifficulty, "insane"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, sched, _ := newTestController(t, 7)
			c.SetField(tc.field, tc.raw)
			c.Events()

			err := c.Start()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Start() = %v, expected ErrInvalidConfig", err)
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) || len(cerr.Fields) != 1 || cerr.Fields[0].Field != tc.field {
				t.Errorf("expected a single %s field error, got %v", tc.field, err)
			}
			if c.Running() {
				t.Error("failed start must stay idle")
			}
			if sched.Pending() != 0 {
				t.Errorf("failed start scheduled %d tasks", sched.Pending())
			}
		})
	}
}

func TestLimitShrinksWithViewport(t *testing.T) {
	c, _, _ := newTestController(t, 8)
	c.SetLimit(6)
	c.SetField(FieldRows, "6")
	c.SetField(FieldCols, "7")

	if err := c.Start(); err == nil {
		t.Fatal("cols above the compact limit should be rejected")
	}
	c.SetField(FieldCols, "6")
	if err := c.Start(); err != nil {
		t.Fatalf("6x6 within the compact limit should start: %v", err)
	}
}

func TestWinAndLossReports(t *testing.T) {
	t.Run("win", func(t *testing.T) {
		c, sched, rep := newTestController(t, 9)
		c.SetField(FieldDifficulty, "easy")
		startGame(t, c, "6", "8", "10")
		c.Click(c.Snapshot().Target)
		run(c, sched, 11*time.Second)

		if len(rep.results) != 1 {
			t.Fatalf("expected one report, got %d", len(rep.results))
		}
		res := rep.results[0]
		if res.Score != 10 || res.Result != OutcomeWin || !res.Win() {
			t.Errorf("result = %+v, expected win with 10", res)
		}
		if res.Level != 1 || res.Difficulty != config.DifficultyEasy {
			t.Errorf("level = %d, difficulty = %s", res.Level, res.Difficulty)
		}
		if res.DurationSecPlanned != 10 || res.Rows != 6 || res.Cols != 8 {
			t.Errorf("planned shape not carried: %+v", res)
		}
		if res.SessionID == "" || res.SessionID != c.Snapshot().SessionID {
			t.Errorf("session id %q not carried", res.SessionID)
		}
	})

	t.Run("loss", func(t *testing.T) {
		c, sched, rep := newTestController(t, 10)
		c.SetField(FieldDifficulty, "hard")
		startGame(t, c, "6", "8", "10")
		run(c, sched, 11*time.Second)

		if len(rep.results) != 1 {
			t.Fatalf("expected one report, got %d", len(rep.results))
		}
		if res := rep.results[0]; res.Score != 0 || res.Result != OutcomeLoss || res.Level != 3 {
			t.Errorf("result = %+v, expected loss at level 3", res)
		}
	})
}

func TestStaleTasksAreDiscarded(t *testing.T) {
	c, sched, _ := newTestController(t, 11)
	startGame(t, c, "5", "5", "30")
	old := sched.Tasks()

	c.Reset()
	startGame(t, c, "5", "5", "30")
	before := c.Snapshot()

	for _, task := range old {
		if c.Fire(task) {
			t.Errorf("stale task %+v accepted", task)
		}
	}
	if c.Snapshot() != before {
		t.Error("stale tasks changed the session")
	}
	if evs := c.Events(); len(evs) != 0 {
		t.Errorf("stale tasks emitted %d events", len(evs))
	}
}

func TestResetStopsEverything(t *testing.T) {
	c, sched, rep := newTestController(t, 12)
	startGame(t, c, "6", "8", "30")
	c.Click(c.Snapshot().Target)
	run(c, sched, 3*time.Second)

	c.Reset()
	for _, task := range sched.Tasks() {
		if c.Live(task) {
			t.Errorf("live task %+v survived reset", task)
		}
	}

	snap := c.Snapshot()
	if snap.State != StateIdle || snap.Score != 0 || snap.TimeLeft != 30 {
		t.Errorf("after reset: %+v", snap)
	}
	var rebuilt bool
	for _, ev := range c.Events() {
		if e, ok := ev.(GridRebuilt); ok && e.Rows == 6 && e.Cols == 8 {
			rebuilt = true
		}
	}
	if !rebuilt {
		t.Error("reset should ask for a grid rebuild")
	}

	run(c, sched, time.Minute)
	if len(c.Events()) != 0 || len(rep.results) != 0 {
		t.Error("nothing should happen after reset")
	}
}

func TestResetTimeFallback(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"soon", 30},
		{"", 30},
		{"0", 30},
		{"00s", 30},
		{"120s", 120},
		{"5", 5},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			c, _, _ := newTestController(t, 13)
			c.SetField(FieldTime, tc.raw)
			c.Reset()
			if got := c.Snapshot().TimeLeft; got != tc.want {
				t.Errorf("Reset() with time %q: TimeLeft = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestPreferredUsesEnteredFields(t *testing.T) {
	c, _, _ := newTestController(t, 15)
	committed := c.Snapshot().Settings

	c.SetField(FieldRows, "4")
	c.SetField(FieldDifficulty, "hard")
	c.SetField(FieldCols, "x")
	c.SetField(FieldTime, "999")

	got := c.Preferred()
	if got.Rows != 4 || got.Difficulty != config.DifficultyHard {
		t.Errorf("Preferred() = %+v, want rows 4 and hard", got)
	}
	if got.Cols != committed.Cols || got.Seconds != committed.Seconds {
		t.Errorf("invalid fields should keep %+v, got %+v", committed, got)
	}
}

func TestApplyPreferences(t *testing.T) {
	c, _, _ := newTestController(t, 14)
	startGame(t, c, "6", "8", "30")
	committed := c.Snapshot().Settings

	c.ApplyPreferences(Preferences{Rows: 4, Cols: 5, Time: 45, Difficulty: "hard"})
	if c.Snapshot().Settings != committed {
		t.Error("preferences must not touch the running session")
	}
	p := c.Snapshot().Planned
	if p.Rows != "4" || p.Cols != "5" || p.Time != "45" || p.Difficulty != config.DifficultyHard {
		t.Errorf("planned = %+v", p)
	}

	c.Reset()
	if err := c.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	s := c.Snapshot().Settings
	if s.Rows != 4 || s.Cols != 5 || s.Seconds != 45 || s.Difficulty != config.DifficultyHard {
		t.Errorf("next session settings = %+v", s)
	}
}

func TestStartWhileRunning(t *testing.T) {
	c, sched, _ := newTestController(t, 15)
	startGame(t, c, "6", "8", "30")
	pending := sched.Pending()

	if err := c.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() = %v", err)
	}
	if sched.Pending() != pending {
		t.Error("second Start() must not schedule overlapping timers")
	}
}
