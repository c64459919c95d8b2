package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/catch-arcade/internal/platform/tui"
)

var (
	flagPlain      bool
	flagLocalLimit int
	flagClearLocal bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard and local results",
	Long: `Display the shared leaderboard next to the matches played on this
machine.

Examples:
  catch scores
  catch scores --plain
  catch scores --plain --local 20
  catch scores --clear-local`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print text instead of the interactive table")
	scoresCmd.Flags().IntVar(&flagLocalLimit, "local", 10, "Number of local results to print with --plain")
	scoresCmd.Flags().BoolVar(&flagClearLocal, "clear-local", false, "Delete the results stored on this machine")
}

func runScores(_ *cobra.Command, _ []string) {
	a, err := openApp(os.Stderr, "catch")
	if err != nil {
		fail("%v", err)
	}
	defer a.Close()

	if flagClearLocal {
		if a.store == nil {
			fail("local database unavailable")
		}
		if err := a.store.ClearResults(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Local results deleted.")
		return
	}

	if !flagPlain {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		var local tui.LocalSource
		if a.store != nil {
			local = a.store
		}
		if err := tui.RunScoreboard(a.client, local, a.cfg.Remote.LeaderboardLimit, a.cfg.Remote.Timeout(), width, height); err != nil {
			fail("running scoreboard: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Remote.Timeout())
	defer cancel()

	fmt.Printf("Leaderboard - %s\n\n", a.client.BaseURL())
	entries, err := a.recorder.Leaderboard(ctx)
	switch {
	case err != nil:
		fmt.Printf("Could not load the leaderboard: %v\n", err)
	case len(entries) == 0:
		fmt.Println("Nobody is on the leaderboard yet.")
	default:
		limit := a.cfg.Remote.LeaderboardLimit
		for i, e := range entries {
			if limit > 0 && i == limit {
				break
			}
			fmt.Printf("  #%d %s — %d\n", e.Rank, e.Username, e.Value())
		}
	}

	if a.store == nil {
		return
	}

	fmt.Println()
	fmt.Println("This machine")
	fmt.Println()
	results, err := a.store.TopResults(flagLocalLimit)
	if err != nil {
		fail("retrieving local results: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No matches played yet.")
		fmt.Println()
		fmt.Println("Run 'catch play' to play your first game!")
		return
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-8s  %-6s  %s\n", "Rank", "Score", "Result", "Level", "Grid", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-8s  %-6s  %s\n", "----", "-----", "------", "-----", "----", "----")
	for i, r := range results {
		fmt.Printf("  %-4d  %-6d  %-6s  %-8s  %-6s  %s\n", i+1, r.Score, r.Result, r.Difficulty,
			fmt.Sprintf("%dx%d", r.Rows, r.Cols), r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if stats, err := a.store.Stats(""); err == nil {
		fmt.Printf("Games %d  Wins %d  Losses %d  Total %d\n", stats.Games, stats.Wins, stats.Losses, stats.TotalScore)
	}
	if highScore, err := a.store.HighScore(); err == nil {
		fmt.Printf("Best: %d\n", highScore)
	}
}
