package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/profile"
	"github.com/vovakirdan/catch-arcade/internal/recorder"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	store    *storage.Store // nil when the database could not be opened
	client   *api.Client
	profiles *profile.Store
	recorder *recorder.Recorder
	closers  []io.Closer
}

// loadConfig loads the configuration named by --config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// logLevel resolves --log-level, then CATCH_LOG_LEVEL.
func logLevel() string {
	if flagLogLevel != "" {
		return flagLogLevel
	}
	return os.Getenv(config.EnvLogLevel)
}

// dbPath resolves --db, letting CATCH_DB replace the default.
func dbPath() string {
	if !rootCmd.PersistentFlags().Changed("db") {
		if env := strings.TrimSpace(os.Getenv(config.EnvDBPath)); env != "" {
			return env
		}
	}
	return flagDBPath
}

// openApp wires configuration, logging, storage and the remote client.
// Logs go to w.
func openApp(w io.Writer, prefix string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: logging.New(w, logLevel(), prefix),
	}

	store, err := storage.Open(dbPath())
	if err != nil {
		a.logger.Warn("could not open local database", "error", err)
		// Continue without storage
	} else {
		a.store = store
		a.closers = append(a.closers, store)
	}

	a.client = api.NewClient(cfg.Remote, a.logger)
	if err := a.resolveBaseURL(); err != nil {
		a.Close()
		return nil, err
	}

	// Typed nils must not reach the interfaces below.
	var settings profile.Settings
	var results recorder.Results
	if a.store != nil {
		settings = a.store
		results = a.store
	}

	a.profiles, err = profile.NewStore(a.client, settings, "", a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.recorder = recorder.New(a.client, a.profiles, results, a.logger)
	return a, nil
}

// resolveBaseURL applies --api, then the stored setting. The environment
// and YAML were already folded into the config.
func (a *app) resolveBaseURL() error {
	if flagAPI != "" {
		if err := a.client.SetBaseURL(flagAPI); err != nil {
			return err
		}
		if a.store != nil {
			if err := a.store.SetSetting(storage.KeyAPIBase, a.client.BaseURL()); err != nil {
				a.logger.Warn("could not remember api base", "error", err)
			}
		}
		return nil
	}

	if a.store == nil {
		return nil
	}
	stored, ok, err := a.store.Setting(storage.KeyAPIBase)
	if err != nil {
		a.logger.Warn("could not read stored api base", "error", err)
		return nil
	}
	if ok && stored != "" {
		if err := a.client.SetBaseURL(stored); err != nil {
			a.logger.Warn("ignoring invalid stored api base", "base", stored, "error", err)
		}
	}
	return nil
}

// Close releases the database and log file.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		//nolint:errcheck // Best-effort close on exit
		a.closers[i].Close()
	}
	a.closers = nil
}

// fail prints err and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
