package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/recorder"
)

// Messages produced by background commands. Each carries the profile id it
// was issued for so that late answers can be checked against the current
// selection.
type (
	recordedMsg struct {
		Outcome recorder.Outcome
	}

	leaderboardMsg struct {
		Entries []api.LeaderboardEntry
		Err     error
	}

	historyMsg struct {
		ProfileID api.ID
		Items     []api.HistoryItem
		Err       error
	}

	profileListMsg struct {
		Profiles []api.Profile
		Err      error
	}

	// profileMsg reports a profile that became (or stayed) active.
	profileMsg struct {
		Profile *api.Profile
		Action  string
		Err     error
	}

	profileDeletedMsg struct {
		ID      api.ID
		Deleted bool
		Err     error
	}
)

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	timeout := m.cfg.Remote.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// recordCmd hands a finished match to the recorder. Posting plus the
// follow-up refreshes may take several round trips, hence the wider window.
func (m Model) recordCmd(res game.MatchResult) tea.Cmd {
	rec := m.recorder
	timeout := 3 * m.cfg.Remote.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return recordedMsg{Outcome: rec.Record(ctx, res)}
	}
}

func (m Model) leaderboardCmd() tea.Cmd {
	rec := m.recorder
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		entries, err := rec.Leaderboard(ctx)
		return leaderboardMsg{Entries: entries, Err: err}
	}
}

func (m Model) historyCmd() tea.Cmd {
	id := m.profiles.ActiveID()
	if id == "" {
		return nil
	}
	rec := m.recorder
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		items, err := rec.History(ctx)
		return historyMsg{ProfileID: id, Items: items, Err: err}
	}
}

func (m Model) listProfilesCmd() tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		list, err := store.List(ctx)
		return profileListMsg{Profiles: list, Err: err}
	}
}

// refreshProfileCmd re-fetches the active profile, if any.
func (m Model) refreshProfileCmd() tea.Cmd {
	if m.profiles.ActiveID() == "" {
		return nil
	}
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := store.Refresh(ctx)
		return profileMsg{Profile: p, Action: "refresh", Err: err}
	}
}

func (m Model) selectProfileCmd(id api.ID) tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := store.Select(ctx, id)
		return profileMsg{Profile: p, Action: "select", Err: err}
	}
}

func (m Model) createProfileCmd(in api.ProfileInput) tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := store.Create(ctx, in)
		return profileMsg{Profile: p, Action: "create", Err: err}
	}
}

func (m Model) updateProfileCmd(id api.ID, patch api.ProfilePatch) tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := store.Update(ctx, id, patch)
		return profileMsg{Profile: p, Action: "update", Err: err}
	}
}

func (m Model) savePreferencesCmd(prefs api.Preferences) tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		p, err := store.SavePreferences(ctx, prefs)
		return profileMsg{Profile: p, Action: "prefs", Err: err}
	}
}

// deleteProfileCmd runs after the user already confirmed on screen.
func (m Model) deleteProfileCmd(id api.ID) tea.Cmd {
	store := m.profiles
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		ok, err := store.Delete(ctx, id, func(string) bool { return true })
		return profileDeletedMsg{ID: id, Deleted: ok, Err: err}
	}
}
