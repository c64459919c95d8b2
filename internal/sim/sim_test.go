package sim

import (
	"testing"
	"time"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/game"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func settings(d config.Difficulty) game.Settings {
	return game.Settings{Rows: 6, Cols: 6, Seconds: 10, Difficulty: d}
}

func TestPerfectBotWins(t *testing.T) {
	r := NewRunner(config.Default(), 7, epoch)
	res, st, err := r.Play(settings(config.DifficultyEasy), Bot{Skill: 1, Reaction: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if st.Misses != 0 {
		t.Errorf("misses = %d, want 0", st.Misses)
	}
	if st.Hits == 0 {
		t.Fatal("perfect bot never hit")
	}
	cfg := config.Default()
	if want := st.Hits * cfg.Scoring.Hit; res.Score != want {
		t.Errorf("score = %d, want %d", res.Score, want)
	}
	if res.Result != game.OutcomeWin {
		t.Errorf("result = %s, want win", res.Result)
	}
	if res.Level != 1 || res.DurationSecPlanned != 10 {
		t.Errorf("level/duration = %d/%d, want 1/10", res.Level, res.DurationSecPlanned)
	}
}

func TestHopelessBotLosesWithoutNegativeScore(t *testing.T) {
	r := NewRunner(config.Default(), 3, epoch)
	res, st, err := r.Play(settings(config.DifficultyHard), Bot{Skill: 0, Reaction: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if st.Hits != 0 {
		t.Errorf("hits = %d, want 0", st.Hits)
	}
	if st.Misses == 0 {
		t.Error("expected misses")
	}
	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
	if res.Result != game.OutcomeLoss {
		t.Errorf("result = %s, want loss", res.Result)
	}
}

func TestSameSeedSameGame(t *testing.T) {
	bot := DefaultBot()
	a, _, errA := NewRunner(config.Default(), 11, epoch).Play(settings(config.DifficultyMedium), bot)
	b, _, errB := NewRunner(config.Default(), 11, epoch).Play(settings(config.DifficultyMedium), bot)
	if errA != nil || errB != nil {
		t.Fatalf("Play() failed: %v / %v", errA, errB)
	}
	if a.Score != b.Score || !a.Timestamp.Equal(b.Timestamp) {
		t.Errorf("runs differ: %d@%v vs %d@%v", a.Score, a.Timestamp, b.Score, b.Timestamp)
	}
}

func TestRunnerPlaysConsecutiveGames(t *testing.T) {
	r := NewRunner(config.Default(), 5, epoch)
	first, _, err := r.Play(settings(config.DifficultyEasy), DefaultBot())
	if err != nil {
		t.Fatalf("first game: %v", err)
	}
	second, _, err := r.Play(settings(config.DifficultyEasy), DefaultBot())
	if err != nil {
		t.Fatalf("second game: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Error("consecutive games share a session id")
	}
	if !second.Timestamp.After(first.Timestamp) {
		t.Errorf("second game at %v not after first at %v", second.Timestamp, first.Timestamp)
	}
}

func TestInvalidSettings(t *testing.T) {
	r := NewRunner(config.Default(), 1, epoch)
	_, _, err := r.Play(game.Settings{Rows: 1, Cols: 6, Seconds: 10, Difficulty: config.DifficultyEasy}, DefaultBot())
	if err == nil {
		t.Fatal("expected error for 1 row")
	}
}

func TestBotValidate(t *testing.T) {
	tests := []struct {
		name string
		bot  Bot
		ok   bool
	}{
		{"default", DefaultBot(), true},
		{"skill above one", Bot{Skill: 1.5, Reaction: time.Second}, false},
		{"negative skill", Bot{Skill: -0.1, Reaction: time.Second}, false},
		{"zero reaction", Bot{Skill: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.bot.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
