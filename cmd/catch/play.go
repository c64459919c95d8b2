package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/platform/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start the game in the terminal.

Controls:
  S          - Start
  R          - Reset
  Mouse/Space - Catch the target (click a cell, or move the cursor)
  Arrows/hjkl - Move the cursor
  Tab        - Edit rows, columns, time and level
  P          - Profiles
  A          - Change the server address
  Q/Ctrl+C   - Quit

Logs are written to ~/.catch/catch.log.

Examples:
  catch play
  catch play --seed 42
  catch play --api http://localhost:3000`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	// The terminal belongs to the TUI; logs go to a file
	var logOut io.Writer = io.Discard
	logFile, logErr := logging.OpenFile(filepath.Join(config.Dir(), "catch.log"))
	if logErr == nil {
		logOut = logFile
	}

	a, err := openApp(logOut, "catch")
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		fail("%v", err)
	}
	if logFile != nil {
		a.closers = append(a.closers, logFile)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	rc := core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		Seed:    flagSeed,
	}

	deps := tui.Deps{
		Config:   a.cfg,
		Client:   a.client,
		Profiles: a.profiles,
		Recorder: a.recorder,
		Logger:   a.logger,
	}
	if a.store != nil {
		deps.Settings = a.store
	}

	runErr := tui.Run(deps, rc)
	a.Close()

	if runErr != nil {
		fail("running game: %v", runErr)
	}
}
