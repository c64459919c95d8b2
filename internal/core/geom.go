// Package core provides fundamental types and utilities for the game.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

// Rect represents an axis-aligned box on the terminal, used for hit-testing
// mouse clicks against rendered cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Layout maps grid cells to screen rectangles. Each cell occupies CellW×CellH
// characters, followed by GapX/GapY blank characters.
type Layout struct {
	Origin Rect // Only X and Y are used
	CellW  int
	CellH  int
	GapX   int
	GapY   int
}

// CellRect returns the screen rectangle of a cell.
func (l Layout) CellRect(row, col int) Rect {
	return Rect{
		X: l.Origin.X + col*(l.CellW+l.GapX),
		Y: l.Origin.Y + row*(l.CellH+l.GapY),
		W: l.CellW,
		H: l.CellH,
	}
}

// Bounds returns the rectangle covered by the whole grid.
func (l Layout) Bounds(g Grid) Rect {
	if g.Size() == 0 {
		return Rect{X: l.Origin.X, Y: l.Origin.Y}
	}
	return Rect{
		X: l.Origin.X,
		Y: l.Origin.Y,
		W: g.Cols*(l.CellW+l.GapX) - l.GapX,
		H: g.Rows*(l.CellH+l.GapY) - l.GapY,
	}
}

// HitTest returns the index of the cell under (x, y), or NoCell when the
// point falls outside the grid or on a gap.
func (l Layout) HitTest(g Grid, x, y int) int {
	if !l.Bounds(g).Contains(x, y) {
		return NoCell
	}
	strideX := l.CellW + l.GapX
	strideY := l.CellH + l.GapY
	dx, dy := x-l.Origin.X, y-l.Origin.Y
	if dx%strideX >= l.CellW || dy%strideY >= l.CellH {
		return NoCell
	}
	row, col := dy/strideY, dx/strideX
	if !g.ContainsRowCol(row, col) {
		return NoCell
	}
	return g.Index(row, col)
}
