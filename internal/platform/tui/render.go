package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/catch-arcade/internal/core"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:         lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:         lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	core.ColorBrightCyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// boardLayout places cells inside the board frame: three columns per cell,
// one blank column between cells.
var boardLayout = core.Layout{
	Origin: core.Rect{X: 1, Y: 1},
	CellW:  3,
	CellH:  1,
	GapX:   1,
}

// Glyphs drawn in the middle of a cell.
const (
	glyphEmpty  = '·'
	glyphTarget = '◆'
	glyphTrail  = '∘'
	glyphMiss   = '✕'
)

// boardView is everything drawBoard needs to know about one frame.
type boardView struct {
	Grid    core.Grid
	Target  int
	Cursor  int // core.NoCell hides the cursor
	Trail   map[int]bool
	Missed  map[int]bool
	Running bool
}

// boardSize returns the frame size needed for a grid.
func boardSize(g core.Grid) (w, h int) {
	b := boardLayout.Bounds(g)
	return b.Right() + 1, b.Bottom() + 1
}

// drawBoard paints the grid, its frame and transient markers onto s.
// s is resized to fit the grid.
func drawBoard(s *core.Screen, v boardView) {
	w, h := boardSize(v.Grid)
	s.Resize(w, h)
	s.Clear()

	frame := core.ColorGray
	if v.Running {
		frame = core.ColorCyan
	}
	s.DrawBox(core.NewRect(0, 0, w, h), frame)

	for i := range v.Grid.Size() {
		row, col := v.Grid.RowCol(i)
		r := boardLayout.CellRect(row, col)
		mid := r.X + r.W/2

		switch {
		case i == v.Target:
			s.SetColor(mid, r.Y, glyphTarget, core.ColorBrightYellow)
		case v.Missed[i]:
			s.SetColor(mid, r.Y, glyphMiss, core.ColorBrightRed)
		case v.Trail[i]:
			s.SetColor(mid, r.Y, glyphTrail, core.ColorGreen)
		default:
			s.SetColor(mid, r.Y, glyphEmpty, core.ColorGray)
		}

		if i == v.Cursor {
			s.SetColor(r.X, r.Y, '[', core.ColorWhite)
			s.SetColor(r.Right()-1, r.Y, ']', core.ColorWhite)
		}
	}
}
