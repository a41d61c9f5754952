package screen

import (
	"testing"

	"hubpanel/internal/geom"
	"hubpanel/internal/nav"
)

func grid3x3(count int) *Grid {
	g := NewGrid(geom.R(0, 0, 300, 300), 3, 3, 0)
	g.SetCount(count)
	return g
}

func TestGridRightFromLastColumnWraps(t *testing.T) {
	g := grid3x3(7)
	g.SetIndex(2)

	if !g.Move(nav.SelectRight) {
		t.Fatal("move reported no change")
	}
	if col, row := g.Cell(); col != 0 || row != 0 {
		t.Errorf("selection = (%d,%d), want (0,0)", col, row)
	}
	if g.Index() >= g.Count() {
		t.Errorf("index %d past count %d", g.Index(), g.Count())
	}
}

func TestGridNeverSelectsPastCount(t *testing.T) {
	cases := []struct {
		name     string
		start    int
		ev       nav.Event
		wantCol  int
		wantRow  int
		wantMove bool
	}{
		{"down into empty cell falls back to row 0", 4, nav.SelectDown, 1, 0, true},
		{"up wraps and searches for a populated row", 1, nav.SelectUp, 1, 1, true},
		{"right on partial last row wraps to col 0", 6, nav.SelectRight, 0, 2, false},
		{"left from col 0 on a full row wraps to last col", 3, nav.SelectLeft, 2, 1, true},
		{"left on the partial row stays on the only item", 6, nav.SelectLeft, 0, 2, false},
		{"down from last full row to the partial row", 3, nav.SelectDown, 0, 2, true},
		{"up from row 0 col 0 wraps to the partial row", 0, nav.SelectUp, 0, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := grid3x3(7)
			g.SetIndex(tc.start)
			moved := g.Move(tc.ev)
			col, row := g.Cell()
			if col != tc.wantCol || row != tc.wantRow || moved != tc.wantMove {
				t.Errorf("got (%d,%d) moved=%v, want (%d,%d) moved=%v", col, row, moved, tc.wantCol, tc.wantRow, tc.wantMove)
			}
			if g.Index() >= g.Count() {
				t.Errorf("index %d past count", g.Index())
			}
		})
	}
}

func TestGridExhaustiveMovesStayInRange(t *testing.T) {
	events := []nav.Event{nav.SelectUp, nav.SelectDown, nav.SelectLeft, nav.SelectRight}
	for count := 1; count <= 9; count++ {
		for start := 0; start < count; start++ {
			for _, ev := range events {
				g := grid3x3(count)
				g.SetIndex(start)
				g.Move(ev)
				if g.Index() >= count {
					t.Errorf("count=%d start=%d %v -> index %d", count, start, ev, g.Index())
				}
			}
		}
	}
}

func TestGridWithoutWrapStopsAtEdges(t *testing.T) {
	g := grid3x3(9)
	g.Wrap = false
	g.SetIndex(2)
	if g.Move(nav.SelectRight) {
		t.Error("moved past the right edge")
	}
	g.SetIndex(0)
	if g.Move(nav.SelectUp) {
		t.Error("moved past the top edge")
	}
}

func TestGridPreviousSelectionSetOncePerMove(t *testing.T) {
	g := grid3x3(9)
	g.Move(nav.SelectRight) // 0 -> 1
	g.Move(nav.SelectDown)  // 1 -> 4

	if got, want := g.PreviousSelectionRect(), g.ItemRect(1); got != want {
		t.Errorf("previous = %v, want %v", got, want)
	}
	if got, want := g.SelectionRect(), g.ItemRect(4); got != want {
		t.Errorf("selection = %v, want %v", got, want)
	}

	// A rejected move leaves both untouched.
	g.Wrap = false
	g.SetIndex(8)
	prev := g.PreviousSelectionRect()
	g.Move(nav.SelectRight)
	if g.PreviousSelectionRect() != prev {
		t.Error("no-op move changed previous selection")
	}
}

func TestGridItemRects(t *testing.T) {
	g := NewGrid(geom.R(10, 20, 320, 210), 3, 2, 10)
	if g.CellW != 100 || g.CellH != 100 {
		t.Fatalf("cell = %dx%d", g.CellW, g.CellH)
	}
	if got, want := g.ItemRect(4), geom.R(120, 130, 100, 100); got != want {
		t.Errorf("ItemRect(4) = %v, want %v", got, want)
	}
}

func TestGridShrinkClampsSelection(t *testing.T) {
	g := grid3x3(9)
	g.SetIndex(8)
	g.SetCount(4)
	if g.Index() != 3 {
		t.Errorf("index = %d, want 3", g.Index())
	}
	g.SetCount(0)
	if !g.SelectionRect().Empty() || g.Move(nav.SelectRight) {
		t.Error("empty grid has a selection")
	}
}

func TestListWrapsTopAndBottom(t *testing.T) {
	l := NewList(geom.R(0, 0, 100, 100), 20)
	l.SetCount(3)

	l.Move(nav.SelectUp)
	if l.Index() != 2 {
		t.Errorf("up from 0 = %d, want 2", l.Index())
	}
	l.Move(nav.SelectDown)
	if l.Index() != 0 {
		t.Errorf("down from last = %d, want 0", l.Index())
	}
	if l.Move(nav.SelectLeft) {
		t.Error("lists ignore horizontal moves")
	}
}

func TestListRowsAndScrolling(t *testing.T) {
	l := NewList(geom.R(5, 40, 100, 100), 20) // 5 visible rows
	l.SetCount(8)

	if got, want := l.ItemRect(2), geom.R(5, 80, 100, 20); got != want {
		t.Errorf("ItemRect(2) = %v, want %v", got, want)
	}

	for i := 0; i < 6; i++ {
		l.Move(nav.SelectDown)
	}
	first, n := l.Visible()
	if first != 2 || n != 5 {
		t.Errorf("visible = %d+%d, want 2+5", first, n)
	}
	if got, want := l.SelectionRect(), geom.R(5, 120, 100, 20); got != want {
		t.Errorf("selection rect = %v, want %v", got, want)
	}
	if !l.ItemRect(0).Empty() {
		t.Error("scrolled-out row has a rect")
	}

	l.Move(nav.SelectDown)
	l.Move(nav.SelectDown) // wraps to 0
	if first, _ := l.Visible(); first != 0 || l.Index() != 0 {
		t.Errorf("after wrap first=%d index=%d", first, l.Index())
	}
}

func TestListPreviousSelection(t *testing.T) {
	l := NewList(geom.R(0, 0, 100, 200), 20)
	l.SetCount(4)
	l.Move(nav.SelectDown)
	l.Move(nav.SelectDown)
	if l.PreviousSelectionRect() != l.ItemRect(1) {
		t.Errorf("previous = %v", l.PreviousSelectionRect())
	}
}

func TestGridPagesPastOneScreen(t *testing.T) {
	g := grid3x3(11)
	if g.Count() != 11 || g.Pages() != 2 {
		t.Fatalf("count=%d pages=%d, want 11 and 2", g.Count(), g.Pages())
	}

	g.SetIndex(6)
	if !g.Move(nav.SelectDown) {
		t.Fatal("down off the last row did not move")
	}
	if g.Index() != 9 || g.Page() != 1 {
		t.Fatalf("index=%d page=%d, want 9 on page 1", g.Index(), g.Page())
	}
	if first, n := g.Visible(); first != 9 || n != 2 {
		t.Errorf("visible = (%d,%d), want (9,2)", first, n)
	}
	if got, want := g.ItemRect(9), geom.R(0, 0, 100, 100); got != want {
		t.Errorf("item 9 rect = %v, want first cell %v", got, want)
	}
	if !g.ItemRect(0).Empty() {
		t.Error("item on the hidden page has a rect")
	}
	if !g.PreviousSelectionRect().Empty() {
		t.Error("previous selection on the hidden page has a rect")
	}

	// off the last page wraps back to the first
	g.Move(nav.SelectDown)
	if g.Index() != 0 || g.Page() != 0 {
		t.Errorf("index=%d page=%d, want 0 on page 0", g.Index(), g.Page())
	}
	g.Move(nav.SelectUp)
	if g.Index() != 9 {
		t.Errorf("up from the first page = %d, want 9", g.Index())
	}

	g.SetIndex(8)
	g.Move(nav.SelectDown)
	if g.Index() != 10 {
		t.Errorf("down from 8 = %d, want clamped to last item 10", g.Index())
	}

	g.SetCount(4)
	if g.Index() != 3 || g.Page() != 0 {
		t.Errorf("after shrink index=%d page=%d, want 3 on page 0", g.Index(), g.Page())
	}
}

func TestGridPagedMovesStayInRange(t *testing.T) {
	events := []nav.Event{nav.SelectUp, nav.SelectDown, nav.SelectLeft, nav.SelectRight}
	for count := 10; count <= 20; count++ {
		for start := 0; start < count; start++ {
			for _, ev := range events {
				g := grid3x3(count)
				g.SetIndex(start)
				g.Move(ev)
				first, n := g.Visible()
				if i := g.Index(); i >= count || i < first || i >= first+n {
					t.Errorf("count=%d start=%d %v -> index %d outside visible (%d,%d)", count, start, ev, i, first, n)
				}
			}
		}
	}
}
