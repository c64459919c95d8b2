package tui

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/core"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/profile"
	"github.com/vovakirdan/catch-arcade/internal/recorder"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

type screenMode int

const (
	modeGame screenMode = iota
	modeProfiles
	modeAPIBase
)

// headerLines is the height of the title and status lines above the board.
// Mouse coordinates are shifted by it before hit-testing.
const headerLines = 2

const maxNotices = 3

// settingFields lists the editable settings in focus order. The first
// three have text inputs; difficulty is cycled.
var settingFields = []game.Field{game.FieldRows, game.FieldCols, game.FieldTime, game.FieldDifficulty}

const textFields = 3

// Settings persists runtime settings. *storage.Store implements it.
type Settings interface {
	SetSetting(key, value string) error
}

// Deps are the collaborators of a Model. Settings may be nil.
type Deps struct {
	Config   config.Config
	Client   *api.Client
	Profiles *profile.Store
	Recorder *recorder.Recorder
	Settings Settings
	Logger   *log.Logger
}

type notice struct {
	text  string
	level game.NoticeLevel
	until time.Time
}

// Model is the Bubble Tea model of the catch game.
type Model struct {
	cfg      config.Config
	runtime  core.RuntimeConfig
	keys     GameKeyMap
	help     help.Model
	sched    *teaScheduler
	ctrl     *game.Controller
	client   *api.Client
	profiles *profile.Store
	recorder *recorder.Recorder
	settings Settings
	logger   *log.Logger
	now      func() time.Time
	screen   *core.Screen

	mode     screenMode
	cursor   int
	focus    int // index into settingFields, -1 while the board has focus
	inputs   [textFields]textinput.Model
	fieldErr map[game.Field]string
	apiInput textinput.Model
	pv       profilesView

	trail   map[int]time.Time
	missed  map[int]time.Time
	notices []notice

	leaderboard []api.LeaderboardEntry
	history     []api.HistoryItem
	quitting    bool
}

// NewModel creates the game model. A zero seed picks a time-based one.
func NewModel(deps Deps, rc core.RuntimeConfig) Model {
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	sched := &teaScheduler{}
	ctrl := game.NewController(deps.Config, sched, rand.New(rand.NewSource(rc.Seed)), nil)
	ctrl.SetLimit(deps.Config.Limit(rc.ScreenW, rc.ScreenH))

	h := help.New()
	h.ShowAll = false
	h.Width = rc.ScreenW

	m := Model{
		cfg:      deps.Config,
		runtime:  rc,
		keys:     DefaultGameKeyMap(),
		help:     h,
		sched:    sched,
		ctrl:     ctrl,
		client:   deps.Client,
		profiles: deps.Profiles,
		recorder: deps.Recorder,
		settings: deps.Settings,
		logger:   logger,
		now:      time.Now,
		screen:   core.NewScreen(1, 1),
		focus:    -1,
		fieldErr: make(map[game.Field]string),
		pv:       newProfilesView(),
		trail:    make(map[int]time.Time),
		missed:   make(map[int]time.Time),
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 6
		ti.Width = 6
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	m.apiInput = textinput.New()
	m.apiInput.Placeholder = "http://localhost:3000"
	m.apiInput.CharLimit = 200
	m.apiInput.Width = 40

	if p, ok := m.profiles.Active(); ok {
		ctrl.ApplyPreferences(profile.GamePreferences(p.Preferences))
	}
	ctrl.Events()
	m.syncInputs()
	return m
}

// Init loads remote state: the leaderboard and the active profile.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.leaderboardCmd(), m.refreshProfileCmd(), m.historyCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	case tea.MouseMsg:
		m = m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m = m.handleResize(msg)
	case TaskMsg:
		m.ctrl.Fire(msg.Task)
	case expireMsg:
		m.prune()
	case recordedMsg:
		m = m.handleRecorded(msg.Outcome)
	case leaderboardMsg:
		if msg.Err != nil {
			m.logger.Warn("leaderboard unavailable", "err", msg.Err)
		} else {
			m.leaderboard = msg.Entries
		}
	case historyMsg:
		switch {
		case !m.profiles.IsCurrent(msg.ProfileID):
			m.logger.Debug("dropping stale history", "profile", msg.ProfileID)
		case msg.Err != nil:
			m.logger.Warn("history unavailable", "err", msg.Err)
		default:
			m.history = msg.Items
		}
	case profileListMsg:
		m.pv.loading = false
		m.pv.err = ""
		if msg.Err != nil {
			m.logger.Warn("list profiles failed", "err", msg.Err)
			m.pv.err = "Could not load profiles: server unreachable"
		} else {
			m.pv.list = msg.Profiles
			m.pv.cursor = core.Clamp(m.pv.cursor, 0, max(len(msg.Profiles)-1, 0))
		}
	case profileMsg:
		m, cmd = m.handleProfile(msg)
	case profileDeletedMsg:
		m, cmd = m.handleProfileDeleted(msg)
	}
	cmds = append(cmds, cmd)

	m, evCmds := m.applyEvents()
	cmds = append(cmds, evCmds...)
	cmds = append(cmds, m.sched.drain()...)
	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeProfiles:
		return m.handleProfilesKey(msg)
	case modeAPIBase:
		return m.handleAPIBaseKey(msg)
	}
	if m.focus >= 0 {
		return m.handleFieldKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		if err := m.ctrl.Start(); err != nil {
			m.logger.Debug("start refused", "err", err)
		}
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
	case key.Matches(msg, m.keys.Click):
		m.click(m.cursor)
	case key.Matches(msg, m.keys.Up):
		m.cursor = m.ctrl.Grid().Move(m.cursor, -1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = m.ctrl.Grid().Move(m.cursor, 1, 0)
	case key.Matches(msg, m.keys.Left):
		m.cursor = m.ctrl.Grid().Move(m.cursor, 0, -1)
	case key.Matches(msg, m.keys.Right):
		m.cursor = m.ctrl.Grid().Move(m.cursor, 0, 1)
	case key.Matches(msg, m.keys.NextField):
		m = m.focusField(0)
	case key.Matches(msg, m.keys.PrevField):
		m = m.focusField(len(settingFields) - 1)
	case key.Matches(msg, m.keys.Profiles):
		m.mode = modeProfiles
		m.pv.loading = true
		return m, m.listProfilesCmd()
	case key.Matches(msg, m.keys.Leaderboard):
		return m, m.leaderboardCmd()
	case key.Matches(msg, m.keys.APIBase):
		m.mode = modeAPIBase
		m.apiInput.SetValue(m.client.BaseURL())
		m.apiInput.CursorEnd()
		return m, m.apiInput.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
	}
	return m, nil
}

// handleFieldKey edits the focused setting.
func (m Model) handleFieldKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Blur), msg.String() == "enter":
		return m.focusField(-1), nil
	case key.Matches(msg, m.keys.NextField):
		next := m.focus + 1
		if next >= len(settingFields) {
			next = -1
		}
		return m.focusField(next), nil
	case key.Matches(msg, m.keys.PrevField):
		return m.focusField(m.focus - 1), nil
	}

	f := settingFields[m.focus]
	if f == game.FieldDifficulty {
		cur := m.ctrl.Snapshot().Planned.Difficulty
		switch msg.String() {
		case "left", "h", "-":
			m = m.setField(f, string(cur.Prev()))
		case "right", "l", "+", " ":
			m = m.setField(f, string(cur.Next()))
		}
		return m, nil
	}

	i := m.focus
	before := m.inputs[i].Value()
	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	if v := m.inputs[i].Value(); v != before {
		m = m.setField(f, v)
	}
	return m, cmd
}

func (m Model) setField(f game.Field, raw string) Model {
	delete(m.fieldErr, f)
	m.ctrl.SetField(f, raw)
	return m
}

// focusField moves keyboard focus to a setting, or back to the board for -1.
func (m Model) focusField(i int) Model {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
			m.inputs[j].CursorEnd()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m Model) handleAPIBaseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeGame
		m.apiInput.Blur()
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.apiInput.Value())
		if err := m.client.SetBaseURL(raw); err != nil {
			m.pushNotice("Invalid API base: use an http:// or https:// URL", game.NoticeError)
			return m, nil
		}
		base := m.client.BaseURL()
		if m.settings != nil {
			if err := m.settings.SetSetting(storage.KeyAPIBase, base); err != nil {
				m.logger.Warn("persist api base failed", "err", err)
			}
		}
		m.logger.Info("api base changed", "base", base)
		m.pushNotice("API base set to "+base, game.NoticeInfo)
		m.mode = modeGame
		m.apiInput.Blur()
		return m, tea.Batch(m.leaderboardCmd(), m.refreshProfileCmd())
	}

	var cmd tea.Cmd
	m.apiInput, cmd = m.apiInput.Update(msg)
	return m, cmd
}

// handleMouse turns a left click on a cell into a catch attempt.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.mode != modeGame {
		return m
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}
	idx := boardLayout.HitTest(m.ctrl.Grid(), msg.X, msg.Y-headerLines)
	if idx == core.NoCell {
		return m
	}
	m = m.focusField(-1)
	m.cursor = idx
	m.click(idx)
	return m
}

func (m Model) click(idx int) {
	if _, err := m.ctrl.Click(idx); err != nil && !errors.Is(err, game.ErrNotRunning) {
		m.logger.Debug("click ignored", "cell", idx, "err", err)
	}
}

// handleResize recomputes the size limit for the new viewport.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.runtime.ScreenW = msg.Width
	m.runtime.ScreenH = msg.Height
	m.help.Width = msg.Width

	limit := m.cfg.Limit(msg.Width, msg.Height)
	if limit != m.ctrl.Limit() {
		delete(m.fieldErr, game.FieldRows)
		delete(m.fieldErr, game.FieldCols)
		m.ctrl.SetLimit(limit)
	}
	return m
}

func (m Model) handleRecorded(o recorder.Outcome) Model {
	if o.Advisory != "" {
		m.pushNotice(o.Advisory, game.NoticeWarn)
	} else if o.Posted {
		m.pushNotice("Match recorded", game.NoticeInfo)
	}
	if o.LeaderboardOK {
		m.leaderboard = o.Leaderboard
	}
	if !o.Stale && o.History != nil && m.profiles.IsCurrent(o.ProfileID) {
		m.history = o.History
	}
	return m
}

var profileVerbs = map[string]string{
	"refresh": "load",
	"select":  "load",
	"create":  "create",
	"update":  "update",
	"prefs":   "save",
}

func (m Model) handleProfile(msg profileMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("profile request failed", "action", msg.Action, "err", msg.Err)
		if msg.Action == "refresh" && errors.Is(msg.Err, api.ErrNotFound) {
			m.history = nil
			m.pushNotice("Your profile no longer exists; playing without a profile", game.NoticeWarn)
			return m, nil
		}
		m.pushNotice(profileError(profileVerbs[msg.Action], msg.Err), game.NoticeError)
		return m, nil
	}

	var cmds []tea.Cmd
	if m.mode == modeProfiles {
		cmds = append(cmds, m.listProfilesCmd())
	}

	p := msg.Profile
	if p == nil || !m.profiles.IsCurrent(p.ID) {
		if msg.Action == "update" {
			m.pushNotice("Profile updated", game.NoticeInfo)
		}
		return m, tea.Batch(cmds...)
	}

	switch msg.Action {
	case "select", "create", "refresh":
		m.ctrl.ApplyPreferences(profile.GamePreferences(p.Preferences))
		if msg.Action != "refresh" {
			m.history = nil
			m.pushNotice("Playing as "+p.Username, game.NoticeInfo)
			cmds = append(cmds, m.historyCmd())
		}
	case "prefs":
		m.pushNotice("Preferences saved to "+p.Username, game.NoticeInfo)
	case "update":
		m.pushNotice("Profile updated", game.NoticeInfo)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleProfileDeleted(msg profileDeletedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("delete profile failed", "id", msg.ID, "err", msg.Err)
		m.pushNotice(profileError("delete", msg.Err), game.NoticeError)
		return m, nil
	}
	if !msg.Deleted {
		return m, nil
	}
	if m.profiles.ActiveID() == "" {
		m.history = nil
	}
	m.pushNotice("Profile deleted", game.NoticeInfo)
	return m, tea.Batch(m.listProfilesCmd(), m.leaderboardCmd())
}

// applyEvents drains the controller and updates view state.
func (m Model) applyEvents() (Model, []tea.Cmd) {
	var cmds []tea.Cmd
	now := m.now()
	for _, ev := range m.ctrl.Events() {
		switch e := ev.(type) {
		case game.GridRebuilt:
			if !core.NewGrid(e.Rows, e.Cols).Contains(m.cursor) {
				m.cursor = 0
			}
			clear(m.trail)
			clear(m.missed)
		case game.TargetCaught:
			m.trail[e.Index] = now.Add(m.cfg.Notices.Trail())
			m.sched.after(m.cfg.Notices.Trail())
		case game.CellMissed:
			m.missed[e.Index] = now.Add(m.cfg.Notices.MissFlash())
			m.sched.after(m.cfg.Notices.MissFlash())
		case game.SessionStarted:
			m.logger.Info("session started", "session", e.SessionID)
			clear(m.fieldErr)
			m = m.focusField(-1)
		case game.SessionEnded:
			r := e.Result
			m.logger.Info("session ended", "session", r.SessionID, "score", r.Score, "result", r.Result)
			m.pushNotice(fmt.Sprintf("Time's up! Final score %d (%s)", r.Score, r.Result), game.NoticeInfo)
			cmds = append(cmds, m.recordCmd(r))
		case game.FieldInvalid:
			if e.Min == 0 && e.Max == 0 {
				m.fieldErr[e.Field] = "invalid"
			} else {
				m.fieldErr[e.Field] = fmt.Sprintf("use %d-%d", e.Min, e.Max)
			}
		case game.FieldRejected:
			m.logger.Debug("setting change rejected", "field", e.Field, "reason", e.Reason)
		case game.Notice:
			m.pushNoticeFor(e.Text, e.Level, e.TTL)
		}
	}
	m.syncInputs()
	return m, cmds
}

// syncInputs shows the planned values in the setting inputs.
func (m *Model) syncInputs() {
	planned := m.ctrl.Snapshot().Planned
	for i := range m.inputs {
		if v := planned.Get(settingFields[i]); m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
}

func (m *Model) pushNotice(text string, level game.NoticeLevel) {
	m.pushNoticeFor(text, level, m.cfg.Notices.Duration())
}

func (m *Model) pushNoticeFor(text string, level game.NoticeLevel, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.cfg.Notices.Duration()
	}
	m.notices = append(m.notices, notice{text: text, level: level, until: m.now().Add(ttl)})
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	m.sched.after(ttl)
}

// prune drops expired notices and markers.
func (m *Model) prune() {
	now := m.now()
	kept := m.notices[:0]
	for _, n := range m.notices {
		if now.Before(n.until) {
			kept = append(kept, n)
		}
	}
	m.notices = kept
	for idx, until := range m.trail {
		if !now.Before(until) {
			delete(m.trail, idx)
		}
	}
	for idx, until := range m.missed {
		if !now.Before(until) {
			delete(m.missed, idx)
		}
	}
}

func (m Model) currentPreferences() api.Preferences {
	var sound *bool
	if p, ok := m.profiles.Active(); ok {
		sound = p.Preferences.Sound
	}
	return profile.FromSettings(m.ctrl.Preferred(), sound)
}

// live reports the markers that have not expired yet.
func live(markers map[int]time.Time, now time.Time) map[int]bool {
	out := make(map[int]bool, len(markers))
	for idx, until := range markers {
		if now.Before(until) {
			out[idx] = true
		}
	}
	return out
}

func (m Model) board(snap game.Snapshot) boardView {
	cursor := m.cursor
	if m.focus >= 0 || m.mode != modeGame {
		cursor = core.NoCell
	}
	now := m.now()
	return boardView{
		Grid:    m.ctrl.Grid(),
		Target:  snap.Target,
		Cursor:  cursor,
		Trail:   live(m.trail, now),
		Missed:  live(m.missed, now),
		Running: snap.State == game.StateRunning,
	}
}

// saveScreenshot saves the current board to a file.
func (m *Model) saveScreenshot() {
	drawBoard(m.screen, m.board(m.ctrl.Snapshot()))

	dir := filepath.Join(config.Dir(), "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := m.now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("catch_%s.txt", timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot failed", "err", err)
		return
	}
	m.pushNotice("Screenshot saved to "+path, game.NoticeInfo)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeProfiles {
		return m.viewProfiles()
	}

	snap := m.ctrl.Snapshot()
	drawBoard(m.screen, m.board(snap))
	board := RenderScreen(m.screen)
	panel := m.viewPanel(snap)

	var body string
	if m.runtime.ScreenW <= 0 || m.screen.Width()+2+lipgloss.Width(panel) <= m.runtime.ScreenW {
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", panel)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, board, panel)
	}

	parts := []string{m.viewHeader(snap), body}
	if m.mode == modeAPIBase {
		parts = append(parts, "API base: "+m.apiInput.View()+dimStyle.Render("  enter save · esc cancel"))
	}
	if n := m.viewNotices(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, dimStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Run starts the Bubble Tea program for the game.
func Run(deps Deps, rc core.RuntimeConfig) error {
	model := NewModel(deps, rc)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
