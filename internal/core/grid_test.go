package core

import "testing"

func TestGridIndexRowColBijection(t *testing.T) {
	shapes := []Grid{NewGrid(2, 2), NewGrid(6, 8), NewGrid(15, 15), NewGrid(1, 7)}

	for _, g := range shapes {
		seen := make(map[int]bool, g.Size())
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				i := g.Index(row, col)
				if !g.Contains(i) {
					t.Fatalf("%dx%d: Index(%d, %d) = %d out of range", g.Rows, g.Cols, row, col, i)
				}
				if seen[i] {
					t.Fatalf("%dx%d: index %d produced twice", g.Rows, g.Cols, i)
				}
				seen[i] = true

				r, c := g.RowCol(i)
				if r != row || c != col {
					t.Errorf("%dx%d: RowCol(%d) = (%d, %d), expected (%d, %d)", g.Rows, g.Cols, i, r, c, row, col)
				}
			}
		}
		if len(seen) != g.Size() {
			t.Errorf("%dx%d: covered %d cells, expected %d", g.Rows, g.Cols, len(seen), g.Size())
		}
	}
}

func TestGridContains(t *testing.T) {
	g := NewGrid(6, 8)

	if g.Contains(-1) || g.Contains(48) {
		t.Error("indices outside [0, 48) should not be contained")
	}
	if !g.Contains(0) || !g.Contains(47) {
		t.Error("boundary indices should be contained")
	}
	if NewGrid(0, 5).Size() != 0 {
		t.Error("degenerate grid should have no cells")
	}
}

func TestGridMove(t *testing.T) {
	g := NewGrid(3, 3)

	if got := g.Move(4, -1, 0); got != 1 {
		t.Errorf("Move up from center = %d, expected 1", got)
	}
	if got := g.Move(0, -1, -1); got != 0 {
		t.Errorf("Move past corner = %d, expected 0", got)
	}
	if got := g.Move(8, 1, 1); got != 8 {
		t.Errorf("Move past far corner = %d, expected 8", got)
	}
	if got := g.Move(NoCell, 0, 1); got != 0 {
		t.Errorf("Move from NoCell = %d, expected 0", got)
	}
}
