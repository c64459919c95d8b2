package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
)

func TestSpawnerNeverRepeatsConsecutively(t *testing.T) {
	level := config.Default().Difficulty.Interval(config.DifficultyHard)
	shapes := []struct{ rows, cols int }{
		{1, 2}, {2, 1}, {2, 2}, {6, 8}, {15, 15},
	}

	for _, sh := range shapes {
		sched := NewVirtualScheduler()
		sp := NewSpawner(sched, rand.New(rand.NewSource(int64(sh.rows*100+sh.cols))))
		last := sp.Start(1, core.NewGrid(sh.rows, sh.cols), level)

		for i := 0; i < 2000; i++ {
			var next int
			if i%7 == 0 {
				_, next = sp.Catch()
			} else {
				sched.Advance(time.Duration(level.MaxMs)*time.Millisecond, func(task Task) {
					if _, n, ok := sp.Fire(task); ok {
						next = n
					}
				})
			}
			if next == last {
				t.Fatalf("%dx%d: index %d repeated at step %d", sh.rows, sh.cols, next, i)
			}
			if !core.NewGrid(sh.rows, sh.cols).Contains(next) {
				t.Fatalf("%dx%d: index %d out of range", sh.rows, sh.cols, next)
			}
			last = next
		}
	}
}

func TestSpawnerCoversWholeGrid(t *testing.T) {
	sched := NewVirtualScheduler()
	sp := NewSpawner(sched, rand.New(rand.NewSource(1)))
	g := core.NewGrid(3, 3)
	seen := map[int]bool{sp.Start(1, g, config.LevelConfig{MinMs: 10, MaxMs: 10}): true}

	sched.Advance(10*time.Second, func(task Task) {
		if _, n, ok := sp.Fire(task); ok {
			seen[n] = true
		}
	})
	if len(seen) != g.Size() {
		t.Errorf("expected every cell to be used, saw %d of %d", len(seen), g.Size())
	}
}

func TestSpawnerSingleCell(t *testing.T) {
	sched := NewVirtualScheduler()
	sp := NewSpawner(sched, rand.New(rand.NewSource(1)))
	level := config.LevelConfig{MinMs: 100, MaxMs: 100}

	if idx := sp.Start(1, core.NewGrid(1, 1), level); idx != 0 {
		t.Fatalf("Start on 1x1 = %d, expected 0", idx)
	}
	sched.Advance(time.Second, func(task Task) {
		if _, n, ok := sp.Fire(task); ok && n != 0 {
			t.Fatalf("1x1 relocation chose %d", n)
		}
	})
}

func TestSpawnerCatchStalesPendingMove(t *testing.T) {
	sched := NewVirtualScheduler()
	sp := NewSpawner(sched, rand.New(rand.NewSource(5)))
	sp.Start(1, core.NewGrid(4, 4), config.LevelConfig{MinMs: 500, MaxMs: 500})

	old := sched.Tasks()[0]
	caught, next := sp.Catch()
	if caught == next {
		t.Fatalf("catch relocated onto the caught cell %d", caught)
	}
	if sp.Live(old) {
		t.Error("relocation scheduled before the catch should be stale")
	}
	if _, _, ok := sp.Fire(old); ok {
		t.Error("Fire accepted a stale task")
	}
	if sp.Current() != next {
		t.Errorf("stale fire moved the target: %d != %d", sp.Current(), next)
	}
}

func TestSpawnerStop(t *testing.T) {
	sched := NewVirtualScheduler()
	sp := NewSpawner(sched, rand.New(rand.NewSource(5)))
	sp.Start(1, core.NewGrid(3, 3), config.LevelConfig{MinMs: 100, MaxMs: 100})

	sp.Stop()
	sp.Stop()
	if sp.Running() || sp.Current() != core.NoCell {
		t.Fatal("Stop should clear the target and halt relocation")
	}
	moved := 0
	sched.Advance(time.Second, func(task Task) {
		if _, _, ok := sp.Fire(task); ok {
			moved++
		}
	})
	if moved != 0 {
		t.Errorf("stopped spawner relocated %d times", moved)
	}
}

func TestCountdownExpiresOnce(t *testing.T) {
	sched := NewVirtualScheduler()
	cd := NewCountdown(sched)
	cd.Start(1, 3)

	var lefts []int
	expiries := 0
	sched.Advance(10*time.Second, func(task Task) {
		left, expired, ok := cd.Fire(task)
		if !ok {
			return
		}
		lefts = append(lefts, left)
		if expired {
			expiries++
		}
	})

	if len(lefts) != 3 || lefts[0] != 2 || lefts[2] != 0 {
		t.Errorf("ticks = %v, expected [2 1 0]", lefts)
	}
	if expiries != 1 {
		t.Errorf("expired %d times, expected once", expiries)
	}
	if cd.Running() {
		t.Error("countdown should stop itself at zero")
	}
}

func TestCountdownRestartDropsOldRun(t *testing.T) {
	sched := NewVirtualScheduler()
	cd := NewCountdown(sched)
	cd.Start(1, 10)
	cd.Start(1, 5)

	ticks := 0
	sched.Advance(500*time.Millisecond+time.Second, func(task Task) {
		if _, _, ok := cd.Fire(task); ok {
			ticks++
		}
	})
	if ticks != 1 {
		t.Errorf("expected a single live tick per second, got %d", ticks)
	}
	if cd.Left() != 4 {
		t.Errorf("Left() = %d, expected 4", cd.Left())
	}
}
