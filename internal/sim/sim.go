// Package sim plays headless games with a scripted player on a virtual clock.
package sim

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
	"github.com/vovakirdan/catch-arcade/internal/game"
)

// Default bot tuning.
const (
	DefaultSkill    = 0.7                    // chance that a click lands on the target
	DefaultReaction = 600 * time.Millisecond // time between clicks
)

// Bot is a scripted player.
type Bot struct {
	Skill    float64       // 0-1
	Reaction time.Duration // delay between clicks
}

// DefaultBot returns a bot with default tuning.
func DefaultBot() Bot {
	return Bot{Skill: DefaultSkill, Reaction: DefaultReaction}
}

// Validate reports unusable tuning.
func (b Bot) Validate() error {
	if b.Skill < 0 || b.Skill > 1 {
		return fmt.Errorf("sim: skill %.2f outside 0-1", b.Skill)
	}
	if b.Reaction <= 0 {
		return fmt.Errorf("sim: reaction must be positive")
	}
	return nil
}

// Stats summarizes one played game.
type Stats struct {
	Hits   int
	Misses int
}

// Runner plays games on a single controller. Not safe for concurrent use.
type Runner struct {
	ctrl  *game.Controller
	sched *game.VirtualScheduler
	rng   *rand.Rand
	clock time.Time
	last  *game.MatchResult
}

// NewRunner creates a runner. The seed drives both the target and the bot.
// Result timestamps advance from start with the virtual clock.
func NewRunner(cfg config.Config, seed int64, start time.Time) *Runner {
	r := &Runner{
		sched: game.NewVirtualScheduler(),
		rng:   rand.New(rand.NewSource(seed)),
		clock: start,
	}
	r.ctrl = game.NewController(cfg, r.sched, rand.New(rand.NewSource(seed+1)), game.ReporterFunc(func(res game.MatchResult) {
		r.last = &res
	}))
	r.ctrl.SetClock(func() time.Time { return r.clock.Add(r.sched.Now()) })
	return r
}

// Play runs one full game with the given settings and returns its result.
func (r *Runner) Play(s game.Settings, bot Bot) (game.MatchResult, Stats, error) {
	if err := bot.Validate(); err != nil {
		return game.MatchResult{}, Stats{}, err
	}

	r.ctrl.Reset()
	r.ctrl.SetField(game.FieldRows, strconv.Itoa(s.Rows))
	r.ctrl.SetField(game.FieldCols, strconv.Itoa(s.Cols))
	r.ctrl.SetField(game.FieldTime, strconv.Itoa(s.Seconds))
	r.ctrl.SetField(game.FieldDifficulty, string(s.Difficulty))
	r.last = nil
	if err := r.ctrl.Start(); err != nil {
		r.ctrl.Events()
		return game.MatchResult{}, Stats{}, err
	}

	var st Stats
	fire := func(t game.Task) { r.ctrl.Fire(t) }
	for r.ctrl.Running() {
		r.sched.Advance(bot.Reaction, fire)
		if !r.ctrl.Running() {
			break
		}
		switch res, _ := r.ctrl.Click(r.aim(bot)); res {
		case game.ClickHit:
			st.Hits++
		case game.ClickMiss:
			st.Misses++
		}
	}
	r.ctrl.Events()

	if r.last == nil {
		return game.MatchResult{}, st, fmt.Errorf("sim: game ended without a result")
	}
	return *r.last, st, nil
}

// aim picks the target with probability Skill, another cell otherwise.
func (r *Runner) aim(bot Bot) int {
	snap := r.ctrl.Snapshot()
	g := r.ctrl.Grid()
	if snap.Target == core.NoCell || r.rng.Float64() < bot.Skill || g.Size() == 1 {
		return snap.Target
	}
	idx := r.rng.Intn(g.Size() - 1)
	if idx >= snap.Target {
		idx++
	}
	return idx
}
