package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/sim"
)

var (
	flagSimGames    int
	flagSimRows     int
	flagSimCols     int
	flagSimTime     int
	flagSimLevel    string
	flagSimSkill    float64
	flagSimReaction time.Duration
	flagSimReport   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run headless games with a scripted player",
	Long: `Play games without a terminal on a virtual clock. A scripted player
clicks every --reaction and hits the target with probability --skill.

With --report every result goes through the same path as a real game: it is
saved on this machine and, with an active profile, sent to the service.

Examples:
  catch simulate
  catch simulate --games 10 --skill 0.9 --level hard
  catch simulate --report --seed 42`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagSimGames, "games", 1, "Number of games")
	simulateCmd.Flags().IntVar(&flagSimRows, "rows", 0, "Rows (default from config)")
	simulateCmd.Flags().IntVar(&flagSimCols, "cols", 0, "Columns (default from config)")
	simulateCmd.Flags().IntVar(&flagSimTime, "time", 0, "Game length in seconds (default from config)")
	simulateCmd.Flags().StringVar(&flagSimLevel, "level", "", "Level: easy, medium, hard (default from config)")
	simulateCmd.Flags().Float64Var(&flagSimSkill, "skill", sim.DefaultSkill, "Chance that a click hits the target (0-1)")
	simulateCmd.Flags().DurationVar(&flagSimReaction, "reaction", sim.DefaultReaction, "Time between clicks")
	simulateCmd.Flags().BoolVar(&flagSimReport, "report", false, "Record results like a real game")
}

func runSimulate(_ *cobra.Command, _ []string) {
	var a *app
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if flagSimReport {
		if a, err = openApp(os.Stderr, "catch"); err != nil {
			fail("%v", err)
		}
		defer a.Close()
		cfg = a.cfg
	}

	settings, err := simSettings(cfg)
	if err != nil {
		fail("%v", err)
	}
	bot := sim.Bot{Skill: flagSimSkill, Reaction: flagSimReaction}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runner := sim.NewRunner(cfg, seed, time.Now())

	fmt.Printf("Simulating %d game(s): %dx%d, %ds, %s, skill %.2f, seed %d\n\n",
		flagSimGames, settings.Rows, settings.Cols, settings.Seconds, settings.Difficulty, bot.Skill, seed)

	wins, total := 0, 0
	for i := range flagSimGames {
		res, st, err := runner.Play(settings, bot)
		if err != nil {
			fail("game %d: %v", i+1, err)
		}
		total += res.Score
		if res.Win() {
			wins++
		}
		fmt.Printf("  #%-3d score %4d  %-4s  hits %3d  misses %3d\n", i+1, res.Score, res.Result, st.Hits, st.Misses)

		if a != nil {
			report(os.Stdout, a, res)
		}
	}

	if flagSimGames > 0 {
		fmt.Println()
		fmt.Printf("Wins %d/%d  Average score %.1f\n", wins, flagSimGames, float64(total)/float64(flagSimGames))
	}
}

// report records one simulated result and prints the advisory, if any.
func report(w io.Writer, a *app, res game.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*a.cfg.Remote.Timeout())
	defer cancel()
	out := a.recorder.Record(ctx, res)
	switch {
	case out.Advisory != "":
		fmt.Fprintf(w, "        %s\n", out.Advisory)
	case out.Posted:
		fmt.Fprintf(w, "        recorded for profile %s\n", out.ProfileID)
	}
}

// simSettings fills unset flags from the config defaults.
func simSettings(cfg config.Config) (game.Settings, error) {
	s := game.Settings{
		Rows:       cfg.Grid.DefaultRows,
		Cols:       cfg.Grid.DefaultCols,
		Seconds:    cfg.Time.DefaultSeconds,
		Difficulty: cfg.Difficulty.Default,
	}
	if flagSimRows > 0 {
		s.Rows = flagSimRows
	}
	if flagSimCols > 0 {
		s.Cols = flagSimCols
	}
	if flagSimTime > 0 {
		s.Seconds = flagSimTime
	}
	if flagSimLevel != "" {
		d, err := config.ParseDifficulty(flagSimLevel)
		if err != nil {
			return s, err
		}
		s.Difficulty = d
	}
	return s, nil
}
