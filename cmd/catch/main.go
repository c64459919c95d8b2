// catch is a timed "catch the target" grid game for the terminal, with
// player profiles and a shared leaderboard.
//
// Usage:
//
//	catch play                - Play in the terminal
//	catch serve               - Start SSH server for remote play
//	catch scores              - Show the leaderboard and local results
//	catch profiles <command>  - Manage player profiles
//	catch simulate            - Run headless games with a scripted player
//	catch config              - Print the effective configuration
//
// Global flags:
//
//	--config <path>    - Custom config YAML
//	--db <path>        - Local database (default: ~/.catch/catch.db)
//	--api <url>        - Remote service base URL (remembered)
//	--seed <value>     - RNG seed for reproducible games
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagAPI      string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catch",
	Short: "Catch - click the target before the clock runs out",
	Long: `Catch is a terminal game: a target jumps around a grid and you score
by clicking it before it moves. Misses cost points. Results of players with
a profile are sent to the shared leaderboard.

Available commands:
  play      - Play in the terminal
  serve     - Start SSH server for remote play
  scores    - View the leaderboard and local results
  profiles  - Manage player profiles
  simulate  - Run headless games with a scripted player
  config    - Print the effective configuration

Examples:
  catch play
  catch play --api http://localhost:3000
  catch profiles create --username juan
  catch scores --plain
  catch simulate --games 5 --accuracy 0.8`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.catch/catch.db", "Path to local database")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "Remote service base URL (persisted when given)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
}
