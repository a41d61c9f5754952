// Package compositor wraps the display driver with a frame lifecycle: every
// draw grows a dirty region, and EndFrame turns that region into exactly one
// partial refresh.
package compositor

import (
	"image"

	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
)

type Compositor struct {
	d     *epd.Driver
	dirty geom.DirtyRegion
}

func New(d *epd.Driver) *Compositor {
	return &Compositor{d: d}
}

// Bounds is the panel rect.
func (c *Compositor) Bounds() geom.Rect {
	return c.d.Bounds()
}

// BeginFrame discards any dirty state left from a previous frame.
func (c *Compositor) BeginFrame() {
	c.dirty.Reset()
}

// Dirty is the region accumulated so far in this frame.
func (c *Compositor) Dirty() geom.Rect {
	return c.dirty.Bounds()
}

func (c *Compositor) MarkDirty(r geom.Rect) {
	c.dirty.Add(r.Clamp(c.d.Bounds()))
}

func (c *Compositor) MarkAllDirty() {
	c.dirty.MarkAll(c.d.Bounds())
}

// EndFrame refreshes the accumulated region once. It reports whether a
// hardware refresh was issued.
func (c *Compositor) EndFrame() (bool, error) {
	r := c.dirty.Take()
	if r.Empty() {
		return false, nil
	}
	if err := c.d.PartialRefresh(r); err != nil {
		return false, err
	}
	return true, nil
}

// EndFrameFull repaints the whole panel whatever was drawn.
func (c *Compositor) EndFrameFull() error {
	c.dirty.Reset()
	return c.d.FullRefresh()
}

// Highlight inverts r and marks it dirty.
func (c *Compositor) Highlight(r geom.Rect) geom.Rect {
	t := c.d.InvertRect(r)
	c.dirty.Add(t)
	return t
}

// UpdateSelection removes the highlight from old and applies it to new. The
// returned union is what the caller must refresh to make the move visible;
// it is also added to the dirty region.
func (c *Compositor) UpdateSelection(old, new geom.Rect) geom.Rect {
	a := c.d.InvertRect(old)
	b := c.d.InvertRect(new)
	u := geom.Union(a, b)
	c.dirty.Add(u)
	return u
}

func (c *Compositor) track(r geom.Rect) geom.Rect {
	c.dirty.Add(r)
	return r
}

func (c *Compositor) Clear() geom.Rect {
	return c.track(c.d.Clear())
}

func (c *Compositor) FillRect(r geom.Rect, col epd.Color) geom.Rect {
	return c.track(c.d.FillRect(r, col))
}

func (c *Compositor) StrokeRect(r geom.Rect, col epd.Color) geom.Rect {
	return c.track(c.d.StrokeRect(r, col))
}

func (c *Compositor) Line(x0, y0, x1, y1 int, col epd.Color) geom.Rect {
	return c.track(c.d.Line(x0, y0, x1, y1, col))
}

func (c *Compositor) Circle(cx, cy, radius int, col epd.Color) geom.Rect {
	return c.track(c.d.Circle(cx, cy, radius, col))
}

func (c *Compositor) Text(x, y int, s string, f epd.Font, col epd.Color) geom.Rect {
	return c.track(c.d.Text(x, y, s, f, col))
}

func (c *Compositor) Bitmap(x, y int, img image.Image) geom.Rect {
	return c.track(c.d.Bitmap(x, y, img))
}
