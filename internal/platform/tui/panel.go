package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/recorder"
)

const (
	panelWidth   = 34
	historyLines = 5
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(7)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sectionStyle = boxStyle.Width(panelWidth)
	headStyle    = lipgloss.NewStyle().Bold(true)
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// viewHeader renders exactly headerLines lines.
func (m Model) viewHeader(snap game.Snapshot) string {
	state := map[game.State]string{
		game.StateIdle:    "ready",
		game.StateRunning: "running",
		game.StateEnded:   "game over",
	}[snap.State]

	title := titleStyle.Render("CATCH") + " " + dimStyle.Render(state)
	status := fmt.Sprintf("Score %s   Time %ds   %s",
		scoreStyle.Render(fmt.Sprintf("%d", snap.Score)), snap.TimeLeft, snap.Settings.Difficulty)

	style := lipgloss.NewStyle()
	if m.runtime.ScreenW > 0 {
		style = style.MaxWidth(m.runtime.ScreenW)
	}
	return style.Render(title) + "\n" + style.Render(status)
}

func (m Model) viewPanel(snap game.Snapshot) string {
	sections := []string{
		sectionStyle.Render(m.viewSettings(snap)),
		sectionStyle.Render(m.viewProfileBox()),
		sectionStyle.Render(m.viewLeaderboard()),
		sectionStyle.Render(m.viewHistory()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewSettings(snap game.Snapshot) string {
	var b strings.Builder
	b.WriteString(headStyle.Render("Settings"))
	b.WriteString("\n")

	labels := map[game.Field]string{
		game.FieldRows:       "Rows",
		game.FieldCols:       "Cols",
		game.FieldTime:       "Time",
		game.FieldDifficulty: "Level",
	}
	for i, f := range settingFields {
		marker := "  "
		label := labelStyle.Render(labels[f])
		if i == m.focus {
			marker = focusStyle.Render("> ")
		}

		var value string
		if i < textFields {
			value = m.inputs[i].View()
			if f == game.FieldTime {
				value += dimStyle.Render(" s")
			}
		} else {
			value = "< " + string(snap.Planned.Difficulty) + " >"
			if i == m.focus {
				value = focusStyle.Render(value)
			}
		}

		line := marker + label + value
		if msg, ok := m.fieldErr[f]; ok {
			line += " " + errorStyle.Render(msg)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Max recommended %dx%d", snap.Limit, snap.Limit)))
	return b.String()
}

func (m Model) viewProfileBox() string {
	p, ok := m.profiles.Active()
	if !ok {
		if m.profiles.ActiveID() != "" {
			return dimStyle.Render("Loading profile...")
		}
		return dimStyle.Render("No profile. Press p to choose one.")
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(avatarOf(p) + " " + p.Username))
	b.WriteString("\n")
	s := p.Stats
	fmt.Fprintf(&b, "Games %d  W/L %d/%d\n", s.GamesPlayed, s.Wins, s.Losses)
	fmt.Fprintf(&b, "Total %d  Best streak %d", s.TotalScore, s.BestStreak)
	return b.String()
}

// leaderboardLines formats the ranking as "#rank username — score".
func leaderboardLines(entries []api.LeaderboardEntry, limit int) []string {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("#%d %s — %d", e.Rank, e.Username, e.Value())
	}
	return lines
}

func (m Model) viewLeaderboard() string {
	var b strings.Builder
	b.WriteString(headStyle.Render("Leaderboard"))
	lines := leaderboardLines(m.leaderboard, m.cfg.Remote.LeaderboardLimit)
	if len(lines) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No entries"))
		return b.String()
	}

	active, _ := m.profiles.Active()
	for i, line := range lines {
		b.WriteString("\n")
		if active.ID != "" && m.leaderboard[i].ID == active.ID {
			line = focusStyle.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m Model) viewHistory() string {
	var b strings.Builder
	b.WriteString(headStyle.Render("This session"))
	local := m.recorder.LocalHistory()
	if len(local) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No matches yet"))
	}
	for i, e := range local {
		if i == historyLines {
			break
		}
		b.WriteString("\n")
		b.WriteString(historyLine(e))
	}

	if len(m.history) > 0 {
		b.WriteString("\n")
		b.WriteString(headStyle.Render("Recorded"))
		// Newest last on the wire.
		for i := len(m.history) - 1; i >= 0 && i >= len(m.history)-historyLines; i-- {
			h := m.history[i]
			when := h.Timestamp
			if when == "" {
				when = h.Date
			}
			if t, ok := h.Time(); ok {
				when = t.Local().Format("Jan 02 15:04")
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "%s  %4d  %s", when, h.Score, h.Difficulty)
		}
	}
	return b.String()
}

func historyLine(e recorder.Entry) string {
	result := lossStyle.Render(string(e.Result))
	if e.Result == game.OutcomeWin {
		result = winStyle.Render(string(e.Result))
	}
	mark := ""
	if e.Posted {
		mark = dimStyle.Render(" ✓")
	}
	return fmt.Sprintf("%s  %4d  %s%s", e.At.Local().Format("15:04:05"), e.Score, result, mark)
}

func (m Model) viewNotices() string {
	if len(m.notices) == 0 {
		return ""
	}
	now := m.now()
	var lines []string
	for _, n := range m.notices {
		if !now.Before(n.until) {
			continue
		}
		style := dimStyle
		switch n.level {
		case game.NoticeWarn:
			style = warnStyle
		case game.NoticeError:
			style = errorStyle
		}
		lines = append(lines, style.Render(n.text))
	}
	return strings.Join(lines, "\n")
}
