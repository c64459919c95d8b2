package config

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Difficulty is a named spawn cadence.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties returns all difficulties in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty accepts a difficulty name case-insensitively.
// "normal" is accepted as an alias of medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium", "normal":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
}

// Next returns the following difficulty, wrapping around.
func (d Difficulty) Next() Difficulty {
	all := Difficulties()
	for i, x := range all {
		if x == d {
			return all[(i+1)%len(all)]
		}
	}
	return DifficultyMedium
}

// Prev returns the preceding difficulty, wrapping around.
func (d Difficulty) Prev() Difficulty {
	all := Difficulties()
	for i, x := range all {
		if x == d {
			return all[(i+len(all)-1)%len(all)]
		}
	}
	return DifficultyMedium
}

// DifficultyConfig holds the default difficulty and per-level policy.
type DifficultyConfig struct {
	Default Difficulty                `yaml:"default"`
	Levels  map[Difficulty]LevelConfig `yaml:"levels"`
}

// LevelConfig is the spawn interval window and reported level number.
type LevelConfig struct {
	MinMs int `yaml:"min_ms"`
	MaxMs int `yaml:"max_ms"`
	Level int `yaml:"level"` // 1, 2, 3 in match results
}

// Interval returns the spawn window for d, falling back to medium.
func (c DifficultyConfig) Interval(d Difficulty) LevelConfig {
	if lvl, ok := c.Levels[d]; ok {
		return lvl
	}
	return c.Levels[DifficultyMedium]
}

// Delay draws a spawn delay uniformly from [MinMs, MaxMs].
func (l LevelConfig) Delay(rng *rand.Rand) time.Duration {
	span := l.MaxMs - l.MinMs
	ms := l.MinMs
	if span > 0 {
		ms += rng.Intn(span + 1)
	}
	return time.Duration(ms) * time.Millisecond
}
