// Package config provides YAML-based game configuration loading and
// difficulty management.
package config

import (
	"fmt"
	"time"
)

// Config contains all tunable policy for the game and its remote service.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Time       TimeConfig       `yaml:"time"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Notices    NoticesConfig    `yaml:"notices"`
	Remote     RemoteConfig     `yaml:"remote"`
}

// GridConfig bounds the board shape.
type GridConfig struct {
	MinSize        int `yaml:"min_size"`
	MaxSize        int `yaml:"max_size"`
	CompactMaxSize int `yaml:"compact_max_size"` // LIMIT on constrained viewports
	CompactWidth   int `yaml:"compact_width"`    // Viewports narrower than this are compact
	CompactHeight  int `yaml:"compact_height"`   // Viewports shorter than this are compact
	DefaultRows    int `yaml:"default_rows"`
	DefaultCols    int `yaml:"default_cols"`
}

// TimeConfig bounds the planned session length in seconds.
type TimeConfig struct {
	MinSeconds     int `yaml:"min_seconds"`
	MaxSeconds     int `yaml:"max_seconds"`
	DefaultSeconds int `yaml:"default_seconds"`
}

// ScoringConfig is the hit reward / miss penalty policy.
type ScoringConfig struct {
	Hit  int `yaml:"hit"`
	Miss int `yaml:"miss"`
}

// NoticesConfig controls how long transient feedback stays visible.
type NoticesConfig struct {
	DurationMs int `yaml:"duration_ms"`
	TrailMs    int `yaml:"trail_ms"`
	MissMs     int `yaml:"miss_ms"`
}

// Duration returns the advisory display window.
func (n NoticesConfig) Duration() time.Duration {
	return time.Duration(n.DurationMs) * time.Millisecond
}

// Trail returns how long the catch trail stays on a cell.
func (n NoticesConfig) Trail() time.Duration {
	return time.Duration(n.TrailMs) * time.Millisecond
}

// MissFlash returns how long a missed cell stays highlighted.
func (n NoticesConfig) MissFlash() time.Duration {
	return time.Duration(n.MissMs) * time.Millisecond
}

// Score endpoint styles accepted by RemoteConfig.ScoreEndpoint.
const (
	ScoreEndpointPartidas = "partidas" // POST /api/perfiles/{id}/partidas
	ScoreEndpointScores   = "scores"   // POST /api/scores/{id}
)

// RemoteConfig describes the profile/score service.
type RemoteConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	UpdateMethod     string `yaml:"update_method"`  // PATCH or PUT
	ScoreEndpoint    string `yaml:"score_endpoint"` // partidas or scores
	LeaderboardLimit int    `yaml:"leaderboard_limit"`
}

// Timeout returns the per-request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// Limit returns the largest allowed rows/cols value for a viewport of the
// given size. Non-positive sizes mean "unknown" and yield the full limit.
func (c *Config) Limit(width, height int) int {
	g := c.Grid
	if width > 0 && width < g.CompactWidth {
		return g.CompactMaxSize
	}
	if height > 0 && height < g.CompactHeight {
		return g.CompactMaxSize
	}
	return g.MaxSize
}

// Validate reports the first inconsistency in the configuration.
func (c *Config) Validate() error {
	g := c.Grid
	switch {
	case g.MinSize < 1:
		return fmt.Errorf("config: grid.min_size must be >= 1, got %d", g.MinSize)
	case g.MaxSize < g.MinSize:
		return fmt.Errorf("config: grid.max_size %d < min_size %d", g.MaxSize, g.MinSize)
	case g.CompactMaxSize < g.MinSize || g.CompactMaxSize > g.MaxSize:
		return fmt.Errorf("config: grid.compact_max_size %d outside [%d, %d]", g.CompactMaxSize, g.MinSize, g.MaxSize)
	}

	t := c.Time
	if t.MinSeconds < 1 || t.MaxSeconds < t.MinSeconds {
		return fmt.Errorf("config: invalid time range [%d, %d]", t.MinSeconds, t.MaxSeconds)
	}

	if c.Scoring.Hit <= 0 {
		return fmt.Errorf("config: scoring.hit must be positive, got %d", c.Scoring.Hit)
	}
	if c.Scoring.Miss < 0 {
		return fmt.Errorf("config: scoring.miss must not be negative, got %d", c.Scoring.Miss)
	}

	if _, err := ParseDifficulty(string(c.Difficulty.Default)); err != nil {
		return fmt.Errorf("config: difficulty.default: %w", err)
	}
	for _, d := range Difficulties() {
		lvl, ok := c.Difficulty.Levels[d]
		if !ok {
			return fmt.Errorf("config: difficulty.levels.%s is missing", d)
		}
		if lvl.MinMs <= 0 || lvl.MaxMs < lvl.MinMs {
			return fmt.Errorf("config: difficulty.levels.%s has invalid interval [%d, %d]", d, lvl.MinMs, lvl.MaxMs)
		}
	}

	switch c.Remote.UpdateMethod {
	case "PATCH", "PUT":
	default:
		return fmt.Errorf("config: remote.update_method must be PATCH or PUT, got %q", c.Remote.UpdateMethod)
	}
	switch c.Remote.ScoreEndpoint {
	case ScoreEndpointPartidas, ScoreEndpointScores:
	default:
		return fmt.Errorf("config: remote.score_endpoint must be %q or %q, got %q",
			ScoreEndpointPartidas, ScoreEndpointScores, c.Remote.ScoreEndpoint)
	}
	return nil
}
