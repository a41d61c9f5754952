package epd

import (
	"image"

	"hubpanel/internal/convert"
	"hubpanel/internal/geom"
	"hubpanel/internal/mathx"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// Font selects one of the built-in faces.
type Font int

const (
	FontBody Font = iota
	FontTitle
)

func (f Font) face() *tinyfont.Font {
	if f == FontTitle {
		return &freemono.Bold9pt7b
	}
	return &proggy.TinySZ8pt7b
}

// LineHeight is the vertical advance of f in pixels.
func (f Font) LineHeight() int {
	return int(f.face().GetYAdvance())
}

// TextWidth is the rendered width of s in f.
func (f Font) TextWidth(s string) int {
	_, outbox := tinyfont.LineWidth(f.face(), s)
	return int(outbox)
}

// The primitives below write the buffer only and return the rect they may
// have touched, clamped to the panel.

// Clear paints the whole buffer white.
func (d *Driver) Clear() geom.Rect {
	return d.frame.Fill(d.frame.Bounds(), White)
}

func (d *Driver) FillRect(r geom.Rect, c Color) geom.Rect {
	return d.frame.Fill(r, c)
}

// StrokeRect draws a one pixel border just inside r.
func (d *Driver) StrokeRect(r geom.Rect, c Color) geom.Rect {
	if r.Empty() {
		return geom.Rect{}
	}
	d.frame.Fill(geom.R(r.X, r.Y, r.W, 1), c)
	d.frame.Fill(geom.R(r.X, r.Y+r.H-1, r.W, 1), c)
	d.frame.Fill(geom.R(r.X, r.Y, 1, r.H), c)
	d.frame.Fill(geom.R(r.X+r.W-1, r.Y, 1, r.H), c)
	return r.Clamp(d.frame.Bounds())
}

// Line draws a Bresenham line between two points, inclusive.
func (d *Driver) Line(x0, y0, x1, y1 int, c Color) geom.Rect {
	dx := mathx.Abs(x1 - x0)
	dy := -mathx.Abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	bound := geom.R(min(x0, x1), min(y0, y1), dx+1, -dy+1)

	e := dx + dy
	for {
		d.frame.Set(x0, y0, c == Black)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
	return bound.Clamp(d.frame.Bounds())
}

// Circle draws the outline of a circle using the midpoint algorithm.
func (d *Driver) Circle(cx, cy, radius int, c Color) geom.Rect {
	if radius < 0 {
		return geom.Rect{}
	}
	ink := c == Black
	x, y := radius, 0
	e := 1 - radius
	for x >= y {
		for _, p := range [8][2]int{
			{cx + x, cy + y}, {cx + y, cy + x}, {cx - y, cy + x}, {cx - x, cy + y},
			{cx - x, cy - y}, {cx - y, cy - x}, {cx + y, cy - x}, {cx + x, cy - y},
		} {
			d.frame.Set(p[0], p[1], ink)
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
	return geom.R(cx-radius, cy-radius, 2*radius+1, 2*radius+1).Clamp(d.frame.Bounds())
}

// Text renders s with its top-left corner at (x, y).
func (d *Driver) Text(x, y int, s string, f Font, c Color) geom.Rect {
	if s == "" {
		return geom.Rect{}
	}
	face := f.face()
	lh := int(face.GetYAdvance())
	// tinyfont positions on the baseline. The returned rect over-covers
	// by a quarter line on each side since glyph extents vary per face.
	baseline := y + lh*3/4
	tinyfont.WriteLine(d.frame, face, int16(x), int16(baseline), s, c.RGBA())
	return geom.R(x-1, y-lh/4, f.TextWidth(s)+2, lh+lh/2).Clamp(d.frame.Bounds())
}

// Bitmap packs img with the panel conversion and copies it to (x, y).
func (d *Driver) Bitmap(x, y int, img image.Image) geom.Rect {
	plane, w, h := convert.PackImage(img)
	stride := convert.Stride(w)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			white := plane[py*stride+px>>3]&(0x80>>(px&7)) != 0
			d.frame.Set(x+px, y+py, !white)
		}
	}
	return geom.R(x, y, w, h).Clamp(d.frame.Bounds())
}
