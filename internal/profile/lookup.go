package profile

import (
	"strings"

	"github.com/samber/lo"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
)

// Lookup finds a profile by id.
func Lookup(list []api.Profile, id api.ID) (api.Profile, bool) {
	return lo.Find(list, func(p api.Profile) bool { return p.ID == id })
}

// Resolve finds a profile by id or, failing that, by case-insensitive
// username.
func Resolve(list []api.Profile, ref string) (api.Profile, bool) {
	ref = strings.TrimSpace(ref)
	if p, ok := Lookup(list, api.ID(ref)); ok {
		return p, true
	}
	return lo.Find(list, func(p api.Profile) bool { return strings.EqualFold(p.Username, ref) })
}

// GamePreferences converts stored preferences into the engine's form.
func GamePreferences(p api.Preferences) game.Preferences {
	return game.Preferences{
		Rows:       p.Rows,
		Cols:       p.Cols,
		Time:       p.Time,
		Difficulty: p.Difficulty,
	}
}

// FromSettings builds preferences from session settings, keeping sound.
func FromSettings(s game.Settings, sound *bool) api.Preferences {
	return api.Preferences{
		Difficulty: string(s.Difficulty),
		Rows:       s.Rows,
		Cols:       s.Cols,
		Time:       s.Seconds,
		Sound:      sound,
	}
}
