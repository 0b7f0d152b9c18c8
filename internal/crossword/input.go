package crossword

// InputGrid holds what the solver typed: one string per cell, empty when
// nothing has been entered. Only Session writes to it.
type InputGrid struct {
	cells [][]string
}

// NewInputGrid returns an empty size×size grid.
func NewInputGrid(size int) *InputGrid {
	cells := make([][]string, size)
	for i := range cells {
		cells[i] = make([]string, size)
	}
	return &InputGrid{cells: cells}
}

func (g *InputGrid) Size() int { return len(g.cells) }

func (g *InputGrid) inBounds(pos Pos) bool {
	return pos.Row >= 0 && pos.Row < len(g.cells) && pos.Col >= 0 && pos.Col < len(g.cells)
}

// Get returns the entry at pos, or "" when out of range.
func (g *InputGrid) Get(pos Pos) string {
	if !g.inBounds(pos) {
		return ""
	}
	return g.cells[pos.Row][pos.Col]
}

func (g *InputGrid) set(pos Pos, v string) {
	g.cells[pos.Row][pos.Col] = v
}

// Filled counts non-empty entries.
func (g *InputGrid) Filled() int {
	n := 0
	for _, row := range g.cells {
		for _, v := range row {
			if v != "" {
				n++
			}
		}
	}
	return n
}

// Rows returns a copy of the grid contents.
func (g *InputGrid) Rows() [][]string {
	cp := make([][]string, len(g.cells))
	for i, row := range g.cells {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}

func (g *InputGrid) clear() {
	for _, row := range g.cells {
		for i := range row {
			row[i] = ""
		}
	}
}
