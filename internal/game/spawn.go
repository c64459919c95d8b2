package game

import (
	"math/rand"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
)

// Spawner places the target and relocates it on a randomized cadence.
type Spawner struct {
	sched   Scheduler
	rng     *rand.Rand
	grid    core.Grid
	level   config.LevelConfig
	session uint64
	gen     uint64
	running bool
	current int // cell holding the target, or core.NoCell
	last    int // last spawned cell, excluded from the next pick
}

// NewSpawner creates a stopped spawner.
func NewSpawner(sched Scheduler, rng *rand.Rand) *Spawner {
	return &Spawner{sched: sched, rng: rng, current: core.NoCell, last: core.NoCell}
}

// Start places the target uniformly at random and schedules the next move.
// Returns the chosen cell.
func (s *Spawner) Start(session uint64, grid core.Grid, level config.LevelConfig) int {
	s.Stop()
	s.session = session
	s.grid = grid
	s.level = level
	s.last = core.NoCell
	s.running = true
	return s.relocate()
}

// Stop cancels the pending relocation and clears the target. Idempotent.
func (s *Spawner) Stop() {
	s.running = false
	s.gen++
	s.current = core.NoCell
}

// Current returns the cell holding the target, or core.NoCell.
func (s *Spawner) Current() int {
	return s.current
}

// Running reports whether relocations are scheduled.
func (s *Spawner) Running() bool {
	return s.running
}

// Live reports whether t would be accepted by Fire.
func (s *Spawner) Live(t Task) bool {
	return s.running && t.Kind == TaskSpawn && t.Session == s.session && t.Gen == s.gen
}

// Fire performs a scheduled relocation. ok is false for stale tasks.
func (s *Spawner) Fire(t Task) (prev, next int, ok bool) {
	if !s.Live(t) {
		return s.current, s.current, false
	}
	prev = s.current
	return prev, s.relocate(), true
}

// Catch clears the target and immediately relocates it, restarting the
// interval. The pending relocation from the old interval becomes stale.
func (s *Spawner) Catch() (caught, next int) {
	caught = s.current
	s.current = core.NoCell
	s.gen++
	return caught, s.relocate()
}

func (s *Spawner) relocate() int {
	s.current = s.pick()
	s.last = s.current
	s.sched.Schedule(s.level.Delay(s.rng), Task{Kind: TaskSpawn, Session: s.session, Gen: s.gen})
	return s.current
}

// pick draws uniformly from the grid, excluding the last spawned cell.
// A single-cell grid always yields that cell.
func (s *Spawner) pick() int {
	n := s.grid.Size()
	switch {
	case n <= 0:
		return core.NoCell
	case n == 1:
		return 0
	case s.last == core.NoCell || s.last >= n:
		return s.rng.Intn(n)
	}
	idx := s.rng.Intn(n - 1)
	if idx >= s.last {
		idx++
	}
	return idx
}
