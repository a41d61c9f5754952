package convert

import (
	"image"
	"image/color"
)

// Plane layout shared with the panel backends:
//
//   - y-major, MSB-first 1bpp
//     byteIndex = y*Stride(w) + (x >> 3)
//     mask      = 0x80 >> (x & 7)
//   - a set bit is white paper, a cleared bit is black ink.

// Stride returns the bytes per row for a panel w pixels wide.
func Stride(w int) int {
	return (w + 7) / 8
}

// NewPlane returns an all-white plane for a w x h panel.
func NewPlane(w, h int) []byte {
	p := make([]byte, Stride(w)*h)
	for i := range p {
		p[i] = 0xFF
	}
	return p
}

// PackImage converts any image into a 1bpp plane. Transparent pixels are
// treated as paper; opaque pixels become ink when they are dark.
func PackImage(img image.Image) (plane []byte, w, h int) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	plane = NewPlane(w, h)
	stride := Stride(w)

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			if !IsInk(img.At(b.Min.X+px, b.Min.Y+py)) {
				continue
			}
			plane[py*stride+(px>>3)] &^= byte(0x80 >> (px & 7))
		}
	}
	return plane, w, h
}

// IsInk decides whether a pixel prints black on a monochrome panel.
//
//   - alpha < 50% -> paper
//   - luma Y = 0.299R + 0.587G + 0.114B below mid-grey -> ink
func IsInk(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A < 128 {
		return false
	}
	y := 0.299*float64(n.R) + 0.587*float64(n.G) + 0.114*float64(n.B)
	return y < 128
}

// ToGray expands a plane into an 8-bit grey image, used for previews.
func ToGray(plane []byte, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	stride := Stride(w)
	for py := 0; py < h; py++ {
		row := py * stride
		for px := 0; px < w; px++ {
			i := row + (px >> 3)
			if i >= len(plane) {
				return img
			}
			v := uint8(0xFF)
			if plane[i]&byte(0x80>>(px&7)) == 0 {
				v = 0
			}
			img.Pix[py*img.Stride+px] = v
		}
	}
	return img
}
