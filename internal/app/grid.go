package app

// GridState is the pagination state of the tours grid.
type GridState int

const (
	Collapsed GridState = iota
	Expanded
)

func (s GridState) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

const (
	// BasicCap is the fixed number of cards shown collapsed in the basic variant.
	BasicCap = 10

	MinCardWidth     = 280
	GridGap          = 24
	GridRows         = 3
	DefaultGridWidth = 1200
)

// ComputeCap returns how many cards fit in GridRows rows of a grid width px wide.
func ComputeCap(width int) int {
	if width <= 0 {
		width = DefaultGridWidth
	}
	cols := width / (MinCardWidth + GridGap)
	if cols < 1 {
		cols = 1
	}
	return cols * GridRows
}

// Grid decides how many cards are visible and how the see more/less control looks.
type Grid struct {
	state GridState
	limit int
	total int
}

func NewGrid(total, limit int) *Grid {
	if limit < 1 {
		limit = 1
	}
	if total < 0 {
		total = 0
	}
	return &Grid{state: Collapsed, limit: limit, total: total}
}

func (g *Grid) State() GridState { return g.state }
func (g *Grid) Cap() int         { return g.limit }
func (g *Grid) Total() int       { return g.total }

// Resize changes the cap (grid width changed) and keeps the state.
func (g *Grid) Resize(limit int) {
	if limit < 1 {
		limit = 1
	}
	g.limit = limit
}

// SetTotal updates the catalog size, e.g. after a late catalog load.
func (g *Grid) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	g.total = total
}

// Visible is the number of cards to render.
func (g *Grid) Visible() int {
	if g.state == Expanded || g.total <= g.limit {
		return g.total
	}
	return g.limit
}

// ControlVisible reports whether the see more/less control is shown.
func (g *Grid) ControlVisible() bool { return g.total > g.limit }

// LabelKey is the dictionary key of the control label.
func (g *Grid) LabelKey() string {
	if g.state == Expanded {
		return "tours.less"
	}
	return "tours.more"
}

// Toggle flips between collapsed and expanded. It is a no-op when the
// control is hidden.
func (g *Grid) Toggle() GridState {
	if !g.ControlVisible() {
		return g.state
	}
	if g.state == Collapsed {
		g.state = Expanded
	} else {
		g.state = Collapsed
	}
	return g.state
}
