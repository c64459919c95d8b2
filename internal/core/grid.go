package core

// NoCell marks the absence of a cell index (e.g. no active target).
const NoCell = -1

// Grid addresses the cells of a Rows×Cols board.
// Cells are numbered row-major: index = row*Cols + col.
type Grid struct {
	Rows int
	Cols int
}

// NewGrid creates a grid with the given shape.
func NewGrid(rows, cols int) Grid {
	return Grid{Rows: rows, Cols: cols}
}

// Size returns the number of cells.
func (g Grid) Size() int {
	if g.Rows <= 0 || g.Cols <= 0 {
		return 0
	}
	return g.Rows * g.Cols
}

// Index returns the linear index of (row, col).
func (g Grid) Index(row, col int) int {
	return row*g.Cols + col
}

// RowCol returns the (row, col) pair of a linear index.
func (g Grid) RowCol(index int) (row, col int) {
	if g.Cols <= 0 {
		return 0, 0
	}
	return index / g.Cols, index % g.Cols
}

// Contains reports whether index addresses a cell of this grid.
func (g Grid) Contains(index int) bool {
	return index >= 0 && index < g.Size()
}

// ContainsRowCol reports whether (row, col) lies inside the grid.
func (g Grid) ContainsRowCol(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Move returns the index reached from index by (dRow, dCol), clamped to the
// grid edges.
func (g Grid) Move(index, dRow, dCol int) int {
	if g.Size() == 0 {
		return NoCell
	}
	if !g.Contains(index) {
		return 0
	}
	row, col := g.RowCol(index)
	row = Clamp(row+dRow, 0, g.Rows-1)
	col = Clamp(col+dCol, 0, g.Cols-1)
	return g.Index(row, col)
}
