package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an opaque profile identifier. The service may send it as a JSON
// string or number; it is always sent back as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("api: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Preferences are the per-profile defaults for the next game.
type Preferences struct {
	Difficulty string `json:"difficulty,omitempty"`
	Rows       int    `json:"rows,omitempty"`
	Cols       int    `json:"cols,omitempty"`
	Time       int    `json:"time,omitempty"`
	Sound      *bool  `json:"sound,omitempty"`
}

// Stats are maintained by the service and read-only here.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	TotalScore  int `json:"totalScore"`
	BestStreak  int `json:"bestStreak"`
}

type Profile struct {
	ID          ID            `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	Avatar      string        `json:"avatar"`
	Preferences Preferences   `json:"preferences"`
	Stats       Stats         `json:"stats"`
	History     []HistoryItem `json:"history,omitempty"`
}

// ProfileInput is the body of a create or full update.
type ProfileInput struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Avatar      string      `json:"avatar"`
	Preferences Preferences `json:"preferences"`
}

// ProfilePatch is a partial update; nil fields are left out of the body.
type ProfilePatch struct {
	Username    *string      `json:"username,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// LeaderboardEntry is one leaderboard row. Rank is the 1-based position in
// the service response.
type LeaderboardEntry struct {
	ID          ID     `json:"id,omitempty"`
	Username    string `json:"username"`
	TotalScore  *int   `json:"totalScore,omitempty"`
	HighScore   *int   `json:"highScore,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	GamesPlayed int    `json:"gamesPlayed,omitempty"`
	Rank        int    `json:"-"`
}

// Value returns the displayed score, preferring totalScore over highScore.
func (e LeaderboardEntry) Value() int {
	switch {
	case e.TotalScore != nil:
		return *e.TotalScore
	case e.HighScore != nil:
		return *e.HighScore
	}
	return 0
}

// HistoryItem is one past match of a profile.
type HistoryItem struct {
	Timestamp  string `json:"timestamp,omitempty"`
	Date       string `json:"date,omitempty"`
	Score      int    `json:"score"`
	Difficulty string `json:"difficulty,omitempty"`
	Result     string `json:"result,omitempty"`
}

var historyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses the item's timestamp. Naive timestamps are taken as UTC.
func (h HistoryItem) Time() (time.Time, bool) {
	raw := h.Timestamp
	if raw == "" {
		raw = h.Date
	}
	for _, layout := range historyLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MatchPost is the body of a match report.
type MatchPost struct {
	Score       int    `json:"score"`
	Result      string `json:"result"`
	Level       int    `json:"level"`
	Difficulty  string `json:"difficulty"`
	DurationSec int    `json:"durationSec"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Time        int    `json:"time"`
	Timestamp   string `json:"timestamp"`
}
