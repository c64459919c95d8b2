package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinHeight = 5
	maxLocalScores = 100
)

// Scoreboard tabs.
const (
	tabLeaderboard = iota
	tabLocal
	tabCount
)

var tabTitles = [tabCount]string{"Leaderboard", "This machine"}

// LeaderboardSource fetches the remote ranking. *api.Client implements it.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) ([]api.LeaderboardEntry, error)
}

// LocalSource lists locally stored results. *storage.Store implements it.
type LocalSource interface {
	TopResults(limit int) ([]storage.LocalResult, error)
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Reload, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Reload, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "switch list"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev list"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	remote  LeaderboardSource
	local   LocalSource
	limit   int
	timeout time.Duration

	tab     int
	entries []api.LeaderboardEntry
	results []storage.LocalResult
	loading bool
	err     string

	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model. local may be nil.
func NewScoreboardModel(remote LeaderboardSource, local LocalSource, limit int, timeout time.Duration, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		remote:  remote,
		local:   local,
		limit:   limit,
		timeout: timeout,
		keys:    DefaultScoreboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
		loading: true,
	}
	m.table = m.createTable()
	m.loadLocal()
	return m
}

// createTable creates a new table with columns for the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	var columns []table.Column
	if m.tab == tabLeaderboard {
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 20},
			{Title: "Score", Width: 10},
			{Title: "Games", Width: 7},
		}
	} else {
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Score", Width: 8},
			{Title: "Result", Width: 7},
			{Title: "Level", Width: 8},
			{Title: "Grid", Width: 7},
			{Title: "Date", Width: 14},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, tableMinHeight)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) loadLocal() {
	if m.local == nil {
		m.results = nil
		return
	}
	results, err := m.local.TopResults(maxLocalScores)
	if err != nil {
		m.results = nil
		return
	}
	m.results = results
}

func (m ScoreboardModel) fetchCmd() tea.Cmd {
	remote, timeout := m.remote, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := remote.Leaderboard(ctx)
		return leaderboardMsg{Entries: entries, Err: err}
	}
}

// updateTableRows updates the table with the rows of the current tab.
func (m *ScoreboardModel) updateTableRows() {
	var rows []table.Row
	if m.tab == tabLeaderboard {
		rows = leaderboardRows(m.entries, m.limit)
	} else {
		rows = make([]table.Row, len(m.results))
		for i, r := range m.results {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				fmt.Sprintf("%d", r.Score),
				r.Result,
				r.Difficulty,
				fmt.Sprintf("%dx%d", r.Rows, r.Cols),
				r.CreatedAt.Local().Format("Jan 02 15:04"),
			}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// leaderboardRows formats at most limit entries; limit <= 0 keeps all.
func leaderboardRows(entries []api.LeaderboardEntry, limit int) []table.Row {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", e.Rank),
			e.Username,
			fmt.Sprintf("%d", e.Value()),
			fmt.Sprintf("%d", e.GamesPlayed),
		}
	}
	return rows
}

// Init starts loading the remote ranking.
func (m ScoreboardModel) Init() tea.Cmd {
	return m.fetchCmd()
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case leaderboardMsg:
		m.loading = false
		m.err = ""
		if msg.Err != nil {
			m.err = "Could not load the leaderboard: " + msg.Err.Error()
		}
		m.entries = msg.Entries
		m.updateTableRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
			m.table = m.createTable()
			m.updateTableRows()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
			m.table = m.createTable()
			m.updateTableRows()
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.loadLocal()
			m.loading = true
			m.updateTableRows()
			return m, m.fetchCmd()

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, tabCount)
	for i, title := range tabTitles {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = tabStyle.Render(title)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or a status message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.tab == tabLeaderboard {
		switch {
		case m.loading && len(m.entries) == 0:
			return emptyStyle.Render("Loading leaderboard...")
		case m.err != "":
			return emptyStyle.Render(m.err)
		case len(m.entries) == 0:
			return emptyStyle.Render("Nobody is on the leaderboard yet.")
		}
	} else if len(m.results) == 0 {
		return emptyStyle.Render("No matches played on this machine yet.")
	}

	return m.table.View()
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(remote LeaderboardSource, local LocalSource, limit int, timeout time.Duration, width, height int) error {
	model := NewScoreboardModel(remote, local, limit, timeout, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
