package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection runs its own game. The active profile is remembered per
SSH user name, so "ssh juan@host" and "ssh ana@host" keep separate profiles.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.catch/host_key

Examples:
  catch serve                           # Listen on :23234 with auto-generated key
  catch serve --ssh :2222               # Listen on port 2222
  catch serve --host-key ./my_host_key  # Use specific host key
  catch serve --api http://scores:3000  # Use a specific score service

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	gameCfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	logger := logging.New(os.Stderr, logLevel(), "catch-ssh")

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      dbPath(),
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		APIBase:     flagAPI,
	}

	server, err := tui.NewSSHServer(cfg, gameCfg, logger)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting catch SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}
