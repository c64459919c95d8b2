package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/catch-arcade/internal/game"
)

// TaskMsg delivers a scheduled engine task back to the model.
type TaskMsg struct {
	Task game.Task
}

// expireMsg asks for a redraw once a transient effect has run out.
type expireMsg struct{}

// teaScheduler turns engine tasks into tea.Tick commands. Commands collected
// during an Update are returned by drain and handed to Bubble Tea.
type teaScheduler struct {
	cmds []tea.Cmd
}

func (s *teaScheduler) Schedule(after time.Duration, t game.Task) {
	s.cmds = append(s.cmds, tea.Tick(after, func(time.Time) tea.Msg {
		return TaskMsg{Task: t}
	}))
}

// after schedules a redraw.
func (s *teaScheduler) after(d time.Duration) {
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return expireMsg{}
	}))
}

func (s *teaScheduler) drain() []tea.Cmd {
	out := s.cmds
	s.cmds = nil
	return out
}
