package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/profile"
	"github.com/vovakirdan/catch-arcade/internal/validate"
)

type profileForm int

const (
	formNone profileForm = iota
	formCreate
	formEdit
	formConfirmDelete
)

// Form inputs, in tab order.
const (
	inputUsername = iota
	inputEmail
	inputAvatar
	inputCount
)

// profilesView is the state of the profile management screen.
type profilesView struct {
	keys    ProfileKeyMap
	list    []api.Profile
	cursor  int
	loading bool
	err     string

	form      profileForm
	inputs    [inputCount]textinput.Model
	focus     int
	target    api.ID // profile edited or about to be deleted
	formError string
}

func newProfilesView() profilesView {
	v := profilesView{keys: DefaultProfileKeyMap()}
	placeholders := [inputCount]string{"username (3+ characters)", "email (optional)", "avatar (optional)"}
	for i := range v.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 64
		ti.Width = 32
		v.inputs[i] = ti
	}
	return v
}

func (v profilesView) selected() (api.Profile, bool) {
	if v.cursor < 0 || v.cursor >= len(v.list) {
		return api.Profile{}, false
	}
	return v.list[v.cursor], true
}

// openForm prepares the inputs for creating or editing a profile.
func (v profilesView) openForm(form profileForm, p api.Profile) profilesView {
	v.form = form
	v.formError = ""
	v.target = p.ID
	v.inputs[inputUsername].SetValue(p.Username)
	v.inputs[inputEmail].SetValue(p.Email)
	v.inputs[inputAvatar].SetValue(p.Avatar)
	return v.focusInput(inputUsername)
}

func (v profilesView) focusInput(i int) profilesView {
	v.focus = i
	for j := range v.inputs {
		if j == i {
			v.inputs[j].Focus()
		} else {
			v.inputs[j].Blur()
		}
	}
	return v
}

func (v profilesView) closeForm() profilesView {
	v.form = formNone
	v.target = ""
	v.formError = ""
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	return v
}

func (v profilesView) value(i int) string {
	return strings.TrimSpace(v.inputs[i].Value())
}

// handleProfilesKey processes input on the profiles screen.
func (m Model) handleProfilesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.pv
	switch v.form {
	case formConfirmDelete:
		return m.handleDeleteConfirm(msg)
	case formCreate, formEdit:
		return m.handleProfileForm(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		m.mode = modeGame
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			m.pv.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.list)-1 {
			m.pv.cursor++
		}
	case key.Matches(msg, v.keys.Reload):
		m.pv.loading = true
		return m, m.listProfilesCmd()
	case key.Matches(msg, v.keys.Select):
		if p, ok := v.selected(); ok {
			return m, m.selectProfileCmd(p.ID)
		}
	case key.Matches(msg, v.keys.New):
		m.pv = v.openForm(formCreate, api.Profile{})
	case key.Matches(msg, v.keys.Edit):
		if p, ok := v.selected(); ok {
			m.pv = v.openForm(formEdit, p)
		}
	case key.Matches(msg, v.keys.SavePrefs):
		if m.profiles.ActiveID() == "" {
			m.pushNotice("Select a profile first", game.NoticeInfo)
			return m, nil
		}
		return m, m.savePreferencesCmd(m.currentPreferences())
	case key.Matches(msg, v.keys.Delete):
		if p, ok := v.selected(); ok {
			m.pv.form = formConfirmDelete
			m.pv.target = p.ID
		}
	case key.Matches(msg, v.keys.Clear):
		if err := m.profiles.Clear(); err != nil {
			m.logger.Warn("clear profile failed", "err", err)
		}
		m.history = nil
		m.pushNotice("Playing without a profile", game.NoticeInfo)
	}
	return m, nil
}

func (m Model) handleDeleteConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	id := m.pv.target
	m.pv = m.pv.closeForm()
	switch strings.ToLower(msg.String()) {
	case "y":
		return m, m.deleteProfileCmd(id)
	default:
		m.pushNotice("Delete cancelled", game.NoticeInfo)
		return m, nil
	}
}

func (m Model) handleProfileForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := m.pv
	switch msg.String() {
	case "esc":
		m.pv = v.closeForm()
		return m, nil
	case "tab", "down":
		m.pv = v.focusInput((v.focus + 1) % inputCount)
		return m, nil
	case "shift+tab", "up":
		m.pv = v.focusInput((v.focus + inputCount - 1) % inputCount)
		return m, nil
	case "enter":
		return m.submitProfileForm()
	}

	var cmd tea.Cmd
	m.pv.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return m, cmd
}

func (m Model) submitProfileForm() (Model, tea.Cmd) {
	v := m.pv
	name := v.value(inputUsername)
	if !validate.Username(name) {
		m.pv.formError = "Username must have at least 3 characters"
		return m, nil
	}

	if v.form == formCreate {
		m.pv = v.closeForm()
		in := api.ProfileInput{
			Username:    name,
			Email:       v.value(inputEmail),
			Avatar:      v.value(inputAvatar),
			Preferences: m.currentPreferences(),
		}
		return m, m.createProfileCmd(in)
	}

	email, avatar := v.value(inputEmail), v.value(inputAvatar)
	id := v.target
	m.pv = v.closeForm()
	return m, m.updateProfileCmd(id, api.ProfilePatch{
		Username: &name,
		Email:    &email,
		Avatar:   &avatar,
	})
}

// profileError turns a profile operation error into advisory text.
func profileError(action string, err error) string {
	switch {
	case errors.Is(err, profile.ErrInvalidUsername):
		return "Username must have at least 3 characters"
	case errors.Is(err, profile.ErrNoActiveProfile):
		return "Select a profile first"
	case errors.Is(err, api.ErrNotFound):
		return "Profile not found on the server"
	default:
		return fmt.Sprintf("Could not %s the profile: server unreachable", action)
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func (m Model) viewProfiles() string {
	v := m.pv
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profiles"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("server: " + m.client.BaseURL()))
	b.WriteString("\n\n")

	activeID := m.profiles.ActiveID()
	switch {
	case v.loading:
		b.WriteString(dimStyle.Render("Loading..."))
	case v.err != "":
		b.WriteString(errorStyle.Render(v.err))
	case len(v.list) == 0:
		b.WriteString(dimStyle.Render("No profiles yet. Press n to create one."))
	default:
		for i, p := range v.list {
			marker := "  "
			if p.ID == activeID {
				marker = "* "
			}
			line := fmt.Sprintf("%s%s %s  %s", marker, avatarOf(p), p.Username,
				dimStyle.Render(fmt.Sprintf("games %d  total %d", p.Stats.GamesPlayed, p.Stats.TotalScore)))
			if i == v.cursor {
				line = selectedStyle.Render(fmt.Sprintf("%s%s %s", marker, avatarOf(p), p.Username))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	switch v.form {
	case formCreate, formEdit:
		title := "New profile"
		if v.form == formEdit {
			title = "Edit profile " + string(v.target)
		}
		var f strings.Builder
		f.WriteString(title + "\n")
		labels := [inputCount]string{"Username", "Email", "Avatar"}
		for i := range v.inputs {
			fmt.Fprintf(&f, "%-9s %s\n", labels[i], v.inputs[i].View())
		}
		if v.formError != "" {
			f.WriteString(errorStyle.Render(v.formError) + "\n")
		}
		f.WriteString(dimStyle.Render("enter save · tab next · esc cancel"))
		b.WriteString(boxStyle.Render(f.String()))
		b.WriteString("\n")
	case formConfirmDelete:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Delete profile %s? This cannot be undone. (y/n)", v.target)))
		b.WriteString("\n")
	}

	b.WriteString(m.viewNotices())
	b.WriteString("\n")
	b.WriteString(m.help.View(v.keys))
	return b.String()
}

func avatarOf(p api.Profile) string {
	if p.Avatar == "" {
		return profile.DefaultAvatar
	}
	return p.Avatar
}
