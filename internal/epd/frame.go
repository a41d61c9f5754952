package epd

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"

	"hubpanel/internal/convert"
	"hubpanel/internal/geom"
)

// Color is a monochrome ink value.
type Color uint8

const (
	White Color = iota
	Black
)

// RGBA returns the color passed to tinyfont for this ink.
func (c Color) RGBA() color.RGBA {
	if c == Black {
		return color.RGBA{A: 0xFF}
	}
	return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
}

// Frame is the in-memory 1bpp image of the panel. It implements
// drivers.Displayer so tinyfont can render into it; Display is a no-op
// because refreshing the glass is always an explicit driver call.
type Frame struct {
	w, h   int
	stride int
	plane  []byte
}

var _ drivers.Displayer = (*Frame)(nil)

// NewFrame returns an all-white frame.
func NewFrame(w, h int) *Frame {
	return &Frame{
		w:      w,
		h:      h,
		stride: convert.Stride(w),
		plane:  convert.NewPlane(w, h),
	}
}

func (f *Frame) Size() (x, y int16) {
	return int16(f.w), int16(f.h)
}

// SetPixel implements drivers.Displayer.
func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	f.Set(int(x), int(y), convert.IsInk(c))
}

func (f *Frame) Display() error {
	return nil
}

// Bounds returns the panel rect.
func (f *Frame) Bounds() geom.Rect {
	return geom.R(0, 0, f.w, f.h)
}

// Set paints one pixel; out-of-bounds writes are dropped.
func (f *Frame) Set(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	i := y*f.stride + (x >> 3)
	mask := byte(0x80 >> (x & 7))
	if ink {
		f.plane[i] &^= mask
	} else {
		f.plane[i] |= mask
	}
}

// Ink reports whether (x, y) is black.
func (f *Frame) Ink(x, y int) bool {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return false
	}
	return f.plane[y*f.stride+(x>>3)]&byte(0x80>>(x&7)) == 0
}

// Fill paints r (clamped) with a single ink.
func (f *Frame) Fill(r geom.Rect, c Color) geom.Rect {
	r = r.Clamp(f.Bounds())
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			f.Set(x, y, c == Black)
		}
	}
	return r
}

// Invert toggles every pixel in r (clamped). Inverting twice restores the
// original contents.
func (f *Frame) Invert(r geom.Rect) geom.Rect {
	r = r.Clamp(f.Bounds())
	for y := r.Y; y < r.Y+r.H; y++ {
		row := y * f.stride
		for x := r.X; x < r.X+r.W; x++ {
			f.plane[row+(x>>3)] ^= byte(0x80 >> (x & 7))
		}
	}
	return r
}

// Plane exposes the packed buffer for panel backends.
func (f *Frame) Plane() []byte {
	return f.plane
}

// Snapshot returns a copy of the packed buffer.
func (f *Frame) Snapshot() []byte {
	out := make([]byte, len(f.plane))
	copy(out, f.plane)
	return out
}

// Gray renders the frame as a grey image for previews.
func (f *Frame) Gray() *image.Gray {
	return convert.ToGray(f.plane, f.w, f.h)
}
