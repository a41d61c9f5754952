package geom

// DirtyRegion accumulates every rect drawn during a frame into one bounding
// rect. The bound may cover extra area but never loses coverage.
type DirtyRegion struct {
	bound Rect
}

// Add grows the region by r. Empty rects are ignored.
func (d *DirtyRegion) Add(r Rect) {
	d.bound = Union(d.bound, r)
}

// MarkAll marks the whole panel dirty. Repeating it changes nothing.
func (d *DirtyRegion) MarkAll(bounds Rect) {
	d.bound = Union(d.bound, bounds)
}

// Bounds returns the current bounding rect.
func (d *DirtyRegion) Bounds() Rect {
	return d.bound
}

func (d *DirtyRegion) Empty() bool {
	return d.bound.Empty()
}

func (d *DirtyRegion) Reset() {
	d.bound = Rect{}
}

// Take returns the bound and clears the region.
func (d *DirtyRegion) Take() Rect {
	r := d.bound
	d.bound = Rect{}
	return r
}
