package screen

import (
	"hubpanel/internal/geom"
	"hubpanel/internal/nav"
)

// Selector is the selection geometry of a screen. Both strategies remember
// the selection from before the last move so the engine can refresh only
// the highlight.
type Selector interface {
	Count() int
	SetCount(n int)
	Index() int
	SetIndex(i int)
	// Move applies a SELECT_* event and reports whether the selection
	// changed.
	Move(ev nav.Event) bool
	// Visible is the range of items currently on screen.
	Visible() (first, n int)
	ItemRect(i int) geom.Rect
	SelectionRect() geom.Rect
	PreviousSelectionRect() geom.Rect
}

// Grid lays items out row-major in pages of Cols x Rows equal cells.
// Movement wraps at the edges and never lands past the last item. Moving
// down off the last row of a page opens the next page, and moving up off
// the first row opens the previous one.
type Grid struct {
	Origin  geom.Point
	Cols    int
	Rows    int
	CellW   int
	CellH   int
	Spacing int
	// Wrap enables wrap-around; without it moves stop at the edges.
	Wrap bool

	count    int
	page     int
	col, row int
	prevPage int
	prevCol  int
	prevRow  int
}

// NewGrid fits a cols x rows grid into area.
func NewGrid(area geom.Rect, cols, rows, spacing int) *Grid {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Grid{
		Origin:  geom.Point{X: area.X, Y: area.Y},
		Cols:    cols,
		Rows:    rows,
		CellW:   max((area.W-(cols-1)*spacing)/cols, 0),
		CellH:   max((area.H-(rows-1)*spacing)/rows, 0),
		Spacing: spacing,
		Wrap:    true,
	}
}

func (g *Grid) idx(col, row int) int {
	return row*g.Cols + col
}

func (g *Grid) cells() int {
	return g.Cols * g.Rows
}

// Pages is the number of pages needed for the current count.
func (g *Grid) Pages() int {
	return max((g.count+g.cells()-1)/g.cells(), 1)
}

// Page is the page holding the selection.
func (g *Grid) Page() int {
	return g.page
}

// countOn is the number of populated cells on page p.
func (g *Grid) countOn(p int) int {
	return min(max(g.count-p*g.cells(), 0), g.cells())
}

func (g *Grid) Count() int {
	return g.count
}

// SetCount changes the number of items, clamping the selection.
func (g *Grid) SetCount(n int) {
	g.count = max(n, 0)
	if g.count == 0 {
		g.page, g.col, g.row = 0, 0, 0
		return
	}
	if g.Index() >= g.count {
		g.SetIndex(g.count - 1)
	}
}

func (g *Grid) Index() int {
	return g.page*g.cells() + g.idx(g.col, g.row)
}

func (g *Grid) SetIndex(i int) {
	if g.count == 0 {
		return
	}
	i = min(max(i, 0), g.count-1)
	g.page = i / g.cells()
	i %= g.cells()
	g.col, g.row = i%g.Cols, i/g.Cols
}

// Cell returns the selected column and row on the current page.
func (g *Grid) Cell() (col, row int) {
	return g.col, g.row
}

func (g *Grid) Move(ev nav.Event) bool {
	if g.count == 0 {
		return false
	}
	page, col, row := g.page, g.col, g.row
	switch ev {
	case nav.SelectLeft:
		col = g.stepCol(-1)
	case nav.SelectRight:
		col = g.stepCol(1)
	case nav.SelectUp:
		page, row = g.stepRow(-1)
	case nav.SelectDown:
		page, row = g.stepRow(1)
	default:
		return false
	}
	if n := g.countOn(page); g.idx(col, row) >= n {
		last := n - 1
		col, row = last%g.Cols, last/g.Cols
	}
	if page == g.page && col == g.col && row == g.row {
		return false
	}
	g.prevPage, g.prevCol, g.prevRow = g.page, g.col, g.row
	g.page, g.col, g.row = page, col, row
	return true
}

func (g *Grid) stepCol(dir int) int {
	count := g.countOn(g.page)
	n := g.col + dir
	if dir > 0 && (n >= g.Cols || g.idx(n, g.row) >= count) {
		if !g.Wrap {
			return g.col
		}
		return 0
	}
	if n < 0 {
		if !g.Wrap {
			return g.col
		}
		// last populated column of this row
		return min(g.Cols-1, count-1-g.row*g.Cols)
	}
	return n
}

func (g *Grid) stepRow(dir int) (page, row int) {
	page, n := g.page, g.row+dir
	if dir > 0 && (n >= g.Rows || g.idx(g.col, n) >= g.countOn(page)) {
		switch {
		case page+1 < g.Pages():
			return page + 1, 0
		case !g.Wrap:
			return page, g.row
		}
		return 0, 0
	}
	if n < 0 {
		switch {
		case page > 0:
			page--
		case !g.Wrap:
			return page, g.row
		default:
			page = g.Pages() - 1
		}
		n = g.Rows - 1
	}
	// Hold the column and search upwards for a populated row.
	for n > 0 && g.idx(g.col, n) >= g.countOn(page) {
		n--
	}
	return page, n
}

func (g *Grid) Visible() (int, int) {
	return g.page * g.cells(), g.countOn(g.page)
}

// ItemRect is empty for items that are not on the current page.
func (g *Grid) ItemRect(i int) geom.Rect {
	i -= g.page * g.cells()
	if i < 0 || i >= g.cells() {
		return geom.Rect{}
	}
	col, row := i%g.Cols, i/g.Cols
	return geom.R(
		g.Origin.X+col*(g.CellW+g.Spacing),
		g.Origin.Y+row*(g.CellH+g.Spacing),
		g.CellW, g.CellH,
	)
}

func (g *Grid) SelectionRect() geom.Rect {
	if g.count == 0 {
		return geom.Rect{}
	}
	return g.ItemRect(g.Index())
}

func (g *Grid) PreviousSelectionRect() geom.Rect {
	if g.count == 0 {
		return geom.Rect{}
	}
	return g.ItemRect(g.prevPage*g.cells() + g.idx(g.prevCol, g.prevRow))
}

// List stacks fixed-height rows vertically and scrolls to keep the
// selection visible. Movement wraps top to bottom.
type List struct {
	Area geom.Rect
	RowH int
	Wrap bool

	count int
	index int
	prev  int
	top   int
}

func NewList(area geom.Rect, rowH int) *List {
	return &List{Area: area, RowH: max(rowH, 1), Wrap: true}
}

func (l *List) rows() int {
	return max(l.Area.H/l.RowH, 1)
}

func (l *List) Count() int {
	return l.count
}

func (l *List) SetCount(n int) {
	l.count = max(n, 0)
	if l.count == 0 {
		l.index, l.prev, l.top = 0, 0, 0
		return
	}
	if l.index >= l.count {
		l.SetIndex(l.count - 1)
	}
	l.scroll()
}

func (l *List) Index() int {
	return l.index
}

func (l *List) SetIndex(i int) {
	if l.count == 0 {
		return
	}
	l.index = min(max(i, 0), l.count-1)
	l.scroll()
}

func (l *List) Move(ev nav.Event) bool {
	if l.count == 0 {
		return false
	}
	n := l.index
	switch ev {
	case nav.SelectUp:
		n--
	case nav.SelectDown:
		n++
	default:
		return false
	}
	if n < 0 || n >= l.count {
		if !l.Wrap {
			return false
		}
		n = (n + l.count) % l.count
	}
	if n == l.index {
		return false
	}
	l.prev = l.index
	l.index = n
	l.scroll()
	return true
}

func (l *List) scroll() {
	rows := l.rows()
	if l.index < l.top {
		l.top = l.index
	}
	if l.index >= l.top+rows {
		l.top = l.index - rows + 1
	}
	l.top = max(min(l.top, l.count-rows), 0)
}

func (l *List) Visible() (int, int) {
	return l.top, min(l.rows(), l.count-l.top)
}

// ItemRect is empty for rows scrolled out of view.
func (l *List) ItemRect(i int) geom.Rect {
	if i < l.top || i >= l.top+l.rows() || i >= l.count {
		return geom.Rect{}
	}
	return geom.R(l.Area.X, l.Area.Y+(i-l.top)*l.RowH, l.Area.W, l.RowH)
}

func (l *List) SelectionRect() geom.Rect {
	return l.ItemRect(l.index)
}

func (l *List) PreviousSelectionRect() geom.Rect {
	return l.ItemRect(l.prev)
}
