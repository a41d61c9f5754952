package compositor

import (
	"testing"

	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
)

func newTest(t *testing.T) (*Compositor, *epd.Driver, *epd.SimPanel) {
	t.Helper()
	p := epd.NewSimPanel(200, 100)
	d := epd.NewDriver(p, 0)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	return New(d), d, p
}

func TestEndFrameWithoutDrawsIsNoop(t *testing.T) {
	c, _, p := newTest(t)

	c.BeginFrame()
	refreshed, err := c.EndFrame()
	if err != nil {
		t.Fatal(err)
	}
	if refreshed || len(p.Calls()) != 0 {
		t.Fatalf("empty frame refreshed: %v", p.Calls())
	}
}

func TestEndFrameIssuesOnePartialOverBound(t *testing.T) {
	c, _, p := newTest(t)

	c.BeginFrame()
	a := c.FillRect(geom.R(10, 10, 5, 5), epd.Black)
	b := c.StrokeRect(geom.R(50, 40, 20, 10), epd.Black)
	refreshed, err := c.EndFrame()
	if err != nil || !refreshed {
		t.Fatalf("EndFrame = %v, %v", refreshed, err)
	}

	calls := p.Calls()
	if len(calls) != 1 || calls[0].Kind != epd.KindPartial {
		t.Fatalf("calls = %+v", calls)
	}
	if want := geom.Union(a, b); calls[0].Rect != want {
		t.Errorf("refresh rect = %v, want %v", calls[0].Rect, want)
	}
	if !c.Dirty().Empty() {
		t.Error("dirty region not cleared")
	}
}

func TestBeginFrameResetsDirty(t *testing.T) {
	c, _, p := newTest(t)

	c.MarkDirty(geom.R(0, 0, 10, 10))
	c.BeginFrame()
	if refreshed, _ := c.EndFrame(); refreshed {
		t.Errorf("stale dirty state survived BeginFrame: %v", p.Calls())
	}
}

func TestEndFrameFullAlwaysFull(t *testing.T) {
	c, _, p := newTest(t)

	c.BeginFrame()
	c.FillRect(geom.R(1, 1, 1, 1), epd.Black)
	if err := c.EndFrameFull(); err != nil {
		t.Fatal(err)
	}
	c.BeginFrame()
	if err := c.EndFrameFull(); err != nil {
		t.Fatal(err)
	}

	calls := p.Calls()
	if len(calls) != 2 || calls[0].Kind != epd.KindFull || calls[1].Kind != epd.KindFull {
		t.Fatalf("calls = %+v", calls)
	}
	if !c.Dirty().Empty() {
		t.Error("dirty state left after EndFrameFull")
	}
}

func TestUpdateSelectionMovesHighlight(t *testing.T) {
	c, d, _ := newTest(t)
	old := geom.R(10, 10, 20, 10)
	next := geom.R(40, 10, 20, 10)

	c.BeginFrame()
	c.Highlight(old)
	c.EndFrame()

	c.BeginFrame()
	u := c.UpdateSelection(old, next)
	if u != geom.Union(old, next) {
		t.Errorf("union = %v", u)
	}
	if d.Frame().Ink(15, 15) {
		t.Error("old highlight still inked")
	}
	if !d.Frame().Ink(45, 15) {
		t.Error("new highlight missing")
	}
	if c.Dirty() != u {
		t.Errorf("dirty = %v, want %v", c.Dirty(), u)
	}
}

func TestUpdateSelectionEmptyOld(t *testing.T) {
	c, _, _ := newTest(t)
	next := geom.R(5, 5, 10, 10)

	c.BeginFrame()
	if u := c.UpdateSelection(geom.Rect{}, next); u != next {
		t.Errorf("union with empty old = %v", u)
	}
}
