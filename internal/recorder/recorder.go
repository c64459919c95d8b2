// Package recorder keeps finished matches locally and reports them to the
// remote service for the active profile.
package recorder

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

// Advisory texts.
const (
	AdvisoryNoProfile   = "No active profile: this result will not appear on the leaderboard."
	AdvisoryPostFailed  = "Could not record the match on the server."
	AdvisoryRefreshFail = "Match recorded, but the leaderboard could not be refreshed."
	AdvisoryLocalFailed = "Could not save the match locally."
)

// Remote is the subset of the service client used for results.
type Remote interface {
	PostMatch(ctx context.Context, id api.ID, m api.MatchPost) (*api.Profile, error)
	Leaderboard(ctx context.Context) ([]api.LeaderboardEntry, error)
	History(ctx context.Context, id api.ID) ([]api.HistoryItem, error)
}

// Profiles exposes the active selection. *profile.Store implements it.
type Profiles interface {
	ActiveID() api.ID
	IsCurrent(id api.ID) bool
	Adopt(p *api.Profile) bool
}

// Results persists local results. *storage.Store implements it.
type Results interface {
	SaveResult(r storage.LocalResult) (string, error)
	MarkPosted(id string) error
}

// Entry is one line of the session-local history.
type Entry struct {
	At         time.Time
	Score      int
	Result     game.Outcome
	Difficulty string
	Posted     bool
}

// Outcome reports what Record managed to do.
type Outcome struct {
	Result    game.MatchResult
	LocalID   string
	ProfileID api.ID // profile active when the match ended
	Posted    bool

	// Profile-specific data; nil when the profile changed meanwhile.
	Profile *api.Profile
	History []api.HistoryItem
	Stale   bool

	// Leaderboard is global and stays valid across profile changes.
	Leaderboard   []api.LeaderboardEntry
	LeaderboardOK bool

	Advisory string
	Err      error
}

// Recorder records finished matches.
type Recorder struct {
	remote   Remote
	profiles Profiles
	results  Results
	logger   *log.Logger

	mu      sync.Mutex
	history []Entry
}

// New creates a recorder. results and logger may be nil.
func New(remote Remote, profiles Profiles, results Results, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Recorder{remote: remote, profiles: profiles, results: results, logger: logger}
}

// LocalHistory returns this session's results, newest first.
func (r *Recorder) LocalHistory() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.history)
	slices.Reverse(out)
	return out
}

// Record stores res locally and, with an active profile, posts it and
// refreshes the leaderboard and the profile history. Failures never undo
// the local record; they are reported through Outcome.Advisory.
func (r *Recorder) Record(ctx context.Context, res game.MatchResult) Outcome {
	out := Outcome{Result: res, ProfileID: r.profiles.ActiveID()}

	r.mu.Lock()
	r.history = append(r.history, Entry{
		At:         res.Timestamp,
		Score:      res.Score,
		Result:     res.Result,
		Difficulty: string(res.Difficulty),
	})
	idx := len(r.history) - 1
	r.mu.Unlock()

	if r.results != nil {
		id, err := r.results.SaveResult(localResult(res, out.ProfileID))
		if err != nil {
			r.logger.Warn("could not save local result", "session", res.SessionID, "error", err)
			out.Advisory = AdvisoryLocalFailed
		}
		out.LocalID = id
	}

	if out.ProfileID == "" {
		out.Advisory = AdvisoryNoProfile
		return out
	}

	updated, err := r.remote.PostMatch(ctx, out.ProfileID, Post(res))
	if err != nil {
		r.logger.Warn("could not post match", "profile", out.ProfileID, "error", err)
		out.Advisory = AdvisoryPostFailed
		out.Err = err
		return out
	}
	out.Posted = true
	r.logger.Info("match posted", "profile", out.ProfileID, "score", res.Score, "result", res.Result)

	r.mu.Lock()
	r.history[idx].Posted = true
	r.mu.Unlock()
	if r.results != nil && out.LocalID != "" {
		if err := r.results.MarkPosted(out.LocalID); err != nil {
			r.logger.Warn("could not mark result posted", "id", out.LocalID, "error", err)
		}
	}

	// Each fetch keeps its own error so one failure does not cancel or hide
	// the other.
	var g errgroup.Group
	var board []api.LeaderboardEntry
	var hist []api.HistoryItem
	var boardErr, histErr error

	g.Go(func() error {
		board, boardErr = r.remote.Leaderboard(ctx)
		return nil
	})

	g.Go(func() error {
		hist, histErr = r.remote.History(ctx, out.ProfileID)
		return nil
	})
	_ = g.Wait()

	if boardErr != nil {
		r.logger.Warn("could not refresh leaderboard after post", "error", boardErr)
	} else {
		out.Leaderboard = board
		out.LeaderboardOK = true
	}
	if histErr != nil {
		r.logger.Warn("could not refresh history after post", "profile", out.ProfileID, "error", histErr)
	} else {
		out.History = hist
	}
	if err := errors.Join(boardErr, histErr); err != nil {
		out.Advisory = AdvisoryRefreshFail
		out.Err = err
	}

	if !r.profiles.IsCurrent(out.ProfileID) {
		out.Stale = true
		out.History = nil
		return out
	}
	if r.profiles.Adopt(updated) {
		out.Profile = updated
	}
	return out
}

// Leaderboard fetches the current ranking.
func (r *Recorder) Leaderboard(ctx context.Context) ([]api.LeaderboardEntry, error) {
	return r.remote.Leaderboard(ctx)
}

// History fetches the recorded matches of the active profile. The result
// is dropped if the selection changed during the request.
func (r *Recorder) History(ctx context.Context) ([]api.HistoryItem, error) {
	id := r.profiles.ActiveID()
	if id == "" {
		return nil, nil
	}
	items, err := r.remote.History(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.profiles.IsCurrent(id) {
		return nil, nil
	}
	return items, nil
}

// Post converts a match result into its wire form.
func Post(res game.MatchResult) api.MatchPost {
	return api.MatchPost{
		Score:       res.Score,
		Result:      string(res.Result),
		Level:       res.Level,
		Difficulty:  string(res.Difficulty),
		DurationSec: res.DurationSecPlanned,
		Rows:        res.Rows,
		Cols:        res.Cols,
		Time:        res.DurationSecPlanned,
		Timestamp:   res.Timestamp.UTC().Format(time.RFC3339),
	}
}

func localResult(res game.MatchResult, profileID api.ID) storage.LocalResult {
	return storage.LocalResult{
		SessionID:    res.SessionID,
		ProfileID:    string(profileID),
		Score:        res.Score,
		Result:       string(res.Result),
		Level:        res.Level,
		Difficulty:   string(res.Difficulty),
		Rows:         res.Rows,
		Cols:         res.Cols,
		DurationSecs: res.DurationSecPlanned,
		CreatedAt:    res.Timestamp,
	}
}
