package config

import (
	_ "embed"
)

//go:embed defaults/catch.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: GridConfig{
			MinSize:        2,
			MaxSize:        15,
			CompactMaxSize: 6,
			CompactWidth:   72,
			CompactHeight:  22,
			DefaultRows:    6,
			DefaultCols:    8,
		},
		Time: TimeConfig{
			MinSeconds:     10,
			MaxSeconds:     90,
			DefaultSeconds: 30,
		},
		Scoring: ScoringConfig{
			Hit:  10,
			Miss: 5,
		},
		Difficulty: DifficultyConfig{
			Default: DifficultyMedium,
			Levels: map[Difficulty]LevelConfig{
				DifficultyEasy:   {MinMs: 900, MaxMs: 1400, Level: 1},
				DifficultyMedium: {MinMs: 650, MaxMs: 1000, Level: 2},
				DifficultyHard:   {MinMs: 380, MaxMs: 650, Level: 3},
			},
		},
		Notices: NoticesConfig{
			DurationMs: 2500,
			TrailMs:    2000,
			MissMs:     200,
		},
		Remote: RemoteConfig{
			BaseURL:          "http://localhost:5000",
			TimeoutMs:        8000,
			UpdateMethod:     "PATCH",
			ScoreEndpoint:    ScoreEndpointPartidas,
			LeaderboardLimit: 10,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultYAML
}
