// Package screen holds the navigable screens. Screens paint through the
// compositor, expose their selection rects for highlight-only refreshes and
// receive collaborator data through typed setters that only mark them dirty.
package screen

import (
	"hubpanel/internal/compositor"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
)

// Screen is one page of the panel.
type Screen interface {
	ID() nav.PageID
	Title() string
	// Render paints the body. With full set every item is painted,
	// otherwise only dirty items. Render never draws the selection
	// highlight; the engine inverts SelectionRect itself.
	Render(c *compositor.Compositor, full bool)
	HandleEvent(ev nav.Event) bool
	OnEnter()
	SelectionRect() geom.Rect
	PreviousSelectionRect() geom.Rect
	// Dirty is the area waiting to be repainted, empty when clean.
	Dirty() geom.Rect
}

// TriggerHandler is implemented by screens that react to analog triggers.
type TriggerHandler interface {
	HandleTrigger(left bool, intensity int) bool
}

// FullRefreshRequester is implemented by screens that can ask for a full
// refresh of the panel.
type FullRefreshRequester interface {
	TakeFullRefreshRequest() bool
}

// CommandSink receives commands produced by screens.
type CommandSink interface {
	Send(cmd model.Command)
}

// SinkFunc adapts a function to CommandSink.
type SinkFunc func(model.Command)

func (f SinkFunc) Send(cmd model.Command) { f(cmd) }

// Base implements the parts of Screen shared by every page: identity,
// item-level dirty tracking and rendering of visible items through a draw
// hook.
type Base struct {
	id    nav.PageID
	title string
	area  geom.Rect
	sel   Selector

	// drawItem paints item i into r, which has already been cleared.
	drawItem func(c *compositor.Compositor, i int, r geom.Rect)
	// emptyText is shown when there are no items.
	emptyText string

	all   bool
	items map[int]struct{}
}

func newBase(id nav.PageID, title string, area geom.Rect, sel Selector) Base {
	return Base{
		id:        id,
		title:     title,
		area:      area,
		sel:       sel,
		emptyText: "Nothing here yet",
		all:       true,
		items:     map[int]struct{}{},
	}
}

func (b *Base) ID() nav.PageID {
	return b.id
}

func (b *Base) Title() string {
	return b.title
}

// Area is the body rect of the screen.
func (b *Base) Area() geom.Rect {
	return b.area
}

// Selector exposes the selection geometry.
func (b *Base) Selector() Selector {
	return b.sel
}

func (b *Base) OnEnter() {
	b.MarkAll()
}

func (b *Base) SelectionRect() geom.Rect {
	if b.sel == nil {
		return geom.Rect{}
	}
	return b.sel.SelectionRect()
}

func (b *Base) PreviousSelectionRect() geom.Rect {
	if b.sel == nil {
		return geom.Rect{}
	}
	return b.sel.PreviousSelectionRect()
}

// MarkAll schedules a repaint of the whole body.
func (b *Base) MarkAll() {
	b.all = true
}

// MarkItem schedules a repaint of item i.
func (b *Base) MarkItem(i int) {
	b.items[i] = struct{}{}
}

func (b *Base) Dirty() geom.Rect {
	if b.all {
		return b.area
	}
	var r geom.Rect
	for i := range b.items {
		r = geom.Union(r, b.itemRect(i))
	}
	return r
}

func (b *Base) itemRect(i int) geom.Rect {
	if b.sel == nil {
		return geom.Rect{}
	}
	return b.sel.ItemRect(i)
}

// setCount updates the item count; the body layout may change so the whole
// body is repainted.
func (b *Base) setCount(n int) {
	if b.sel != nil {
		b.sel.SetCount(n)
	}
	b.MarkAll()
}

func (b *Base) HandleEvent(ev nav.Event) bool {
	if b.sel == nil || !ev.IsSelect() {
		return false
	}
	first, _ := b.sel.Visible()
	if !b.sel.Move(ev) {
		return false
	}
	if f, _ := b.sel.Visible(); f != first {
		b.MarkAll()
	}
	return true
}

func (b *Base) Render(c *compositor.Compositor, full bool) {
	defer b.clean()

	if full || b.all {
		c.FillRect(b.area, epd.White)
		switch {
		case b.sel == nil:
			if b.drawItem != nil {
				b.drawItem(c, 0, b.area)
			}
		case b.sel.Count() == 0:
			c.Text(b.area.X+Padding, b.area.Y+Padding, b.emptyText, epd.FontBody, epd.Black)
		default:
			first, n := b.sel.Visible()
			for i := first; i < first+n; i++ {
				b.drawItem(c, i, b.sel.ItemRect(i))
			}
		}
		return
	}

	for i := range b.items {
		r := b.itemRect(i)
		if r.Empty() || i >= b.sel.Count() {
			continue
		}
		c.FillRect(r, epd.White)
		b.drawItem(c, i, r)
	}
}

func (b *Base) clean() {
	b.all = false
	clear(b.items)
}
