package systems

// maxGridDim caps grid columns and rows so tiny radii cannot explode the
// cell count. Larger cells only add candidate pairs, never drop overlaps.
const maxGridDim = 256

// SpatialGrid buckets agent indices into uniform cells for pair candidate
// lookup. Positions outside the bounds are clamped into the edge cells;
// the clamp is monotone, so two points closer than one cell along an axis
// always land in the same or adjacent cells.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int
	cellOf   []int
}

// NewSpatialGrid creates an empty grid. Call Rebuild before querying.
func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{}
}

// Rebuild sizes the grid for the bounds and cell size and inserts every
// agent by index.
func (g *SpatialGrid) Rebuild(agents []Agent, bounds Bounds, cellSize float32) {
	extent := maxf(bounds.Width, bounds.Height)
	if minCell := extent / maxGridDim; cellSize < minCell {
		cellSize = minCell
	}
	if cellSize <= 0 {
		cellSize = 1
	}

	cols := int(bounds.Width/cellSize) + 1
	rows := int(bounds.Height/cellSize) + 1
	n := cols * rows

	if n > len(g.cells) {
		g.cells = make([][]int, n)
	}
	for i := 0; i < n; i++ {
		g.cells[i] = g.cells[i][:0]
	}
	g.cellSize = cellSize
	g.cols = cols
	g.rows = rows

	if cap(g.cellOf) < len(agents) {
		g.cellOf = make([]int, len(agents))
	}
	g.cellOf = g.cellOf[:len(agents)]

	for i := range agents {
		col, row := g.cellCoords(agents[i].Pos.X, agents[i].Pos.Y)
		idx := row*g.cols + col
		g.cells[idx] = append(g.cells[idx], i)
		g.cellOf[i] = idx
	}
}

// ForEachPair calls fn once for every unordered pair (i, j), i < j, whose
// cells are identical or adjacent.
func (g *SpatialGrid) ForEachPair(fn func(i, j int)) {
	for i, idx := range g.cellOf {
		col := idx % g.cols
		row := idx / g.cols
		for dr := -1; dr <= 1; dr++ {
			r := row + dr
			if r < 0 || r >= g.rows {
				continue
			}
			for dc := -1; dc <= 1; dc++ {
				c := col + dc
				if c < 0 || c >= g.cols {
					continue
				}
				for _, j := range g.cells[r*g.cols+c] {
					if j > i {
						fn(i, j)
					}
				}
			}
		}
	}
}

// cellCoords returns the clamped cell for a world position.
func (g *SpatialGrid) cellCoords(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
