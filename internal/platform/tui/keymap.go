package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// GameKeyMap defines the key bindings of the game screen.
type GameKeyMap struct {
	Start       key.Binding
	Reset       key.Binding
	Click       key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	Blur        key.Binding
	Profiles    key.Binding
	Leaderboard key.Binding
	APIBase     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Reset, k.Click, k.NextField, k.Profiles, k.Leaderboard, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Reset, k.Click},
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextField, k.PrevField, k.Blur},
		{k.Profiles, k.Leaderboard, k.APIBase},
		{k.Help, k.Quit},
	}
}

// DefaultGameKeyMap returns default key bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Click: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/click", "catch"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "cursor right"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "settings"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev setting"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave settings"),
		),
		Profiles: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "profiles"),
		),
		Leaderboard: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "refresh leaderboard"),
		),
		APIBase: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "api base"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ProfileKeyMap defines the key bindings of the profiles screen.
type ProfileKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	New       key.Binding
	Edit      key.Binding
	SavePrefs key.Binding
	Delete    key.Binding
	Clear     key.Binding
	Reload    key.Binding
	Back      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ProfileKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Edit, k.SavePrefs, k.Delete, k.Clear, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ProfileKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.New, k.Edit, k.SavePrefs},
		{k.Delete, k.Clear, k.Reload, k.Back},
	}
}

// DefaultProfileKeyMap returns default key bindings.
func DefaultProfileKeyMap() ProfileKeyMap {
	return ProfileKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "use profile"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		SavePrefs: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save preferences"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "play without profile"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
	}
}
