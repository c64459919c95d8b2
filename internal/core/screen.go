package core

import (
	"strings"
)

// Cell is a single character of the screen buffer with its color.
type Cell struct {
	Rune  rune
	Color Color
}

// Screen is a 2D character buffer for rendering the board.
// It decouples drawing from the terminal, allowing the board to be drawn
// with simple rune operations while the platform handles actual display.
type Screen struct {
	width  int
	height int
	cells  [][]Cell
}

// NewScreen creates a new screen buffer with the given dimensions.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  max(width, 0),
		height: max(height, 0),
	}
	s.allocate()
	s.Clear()
	return s
}

func (s *Screen) allocate() {
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
	}
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// Resize changes the screen dimensions. Content is discarded.
func (s *Screen) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width = max(width, 0)
	s.height = max(height, 0)
	s.allocate()
	s.Clear()
}

// Clear fills the entire screen with spaces.
func (s *Screen) Clear() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = Cell{Rune: ' ', Color: ColorDefault}
		}
	}
}

// Set places a rune at the given position.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) Set(x, y int, r rune) {
	s.SetColor(x, y, r, ColorDefault)
}

// SetColor places a colored rune at the given position.
func (s *Screen) SetColor(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Cell{Rune: r, Color: c}
}

// Get returns the rune at the given position.
// Returns space for out-of-bounds coordinates.
func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// GetCell returns the cell at the given position.
func (s *Screen) GetCell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Cell{Rune: ' '}
	}
	return s.cells[y][x]
}

// DrawText writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.SetColor(x+i, y, r, c)
		i++
	}
}

// DrawBox draws a box outline using box-drawing characters.
func (s *Screen) DrawBox(r Rect, c Color) {
	s.SetColor(r.X, r.Y, '┌', c)
	s.SetColor(r.Right()-1, r.Y, '┐', c)
	s.SetColor(r.X, r.Bottom()-1, '└', c)
	s.SetColor(r.Right()-1, r.Bottom()-1, '┘', c)

	for x := r.X + 1; x < r.Right()-1; x++ {
		s.SetColor(x, r.Y, '─', c)
		s.SetColor(x, r.Bottom()-1, '─', c)
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		s.SetColor(r.X, y, '│', c)
		s.SetColor(r.Right()-1, y, '│', c)
	}
}

// String converts the screen buffer to an uncolored string.
// Each row is joined with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)

	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < s.width; x++ {
			sb.WriteRune(s.cells[y][x].Rune)
		}
	}
	return sb.String()
}

// Row returns the specified row as a string.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	var sb strings.Builder
	for _, c := range s.cells[y] {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}
