package geom

// Zone names a coarse band of the panel.
type Zone int

const (
	ZoneStatus Zone = iota
	ZoneContent
	ZoneFooter
)

func (z Zone) String() string {
	switch z {
	case ZoneStatus:
		return "status"
	case ZoneContent:
		return "content"
	case ZoneFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Zones partitions the panel into a status bar, a content area and a footer.
// It is a coarse wrapper over the rect accumulator: marking a zone simply
// adds the zone's rect to a DirtyRegion.
type Zones struct {
	Bounds  Rect
	Status  Rect
	Content Rect
	Footer  Rect
}

// NewZones splits bounds into the three bands. Heights larger than the panel
// are clamped so that the bands never overlap.
func NewZones(bounds Rect, statusH, footerH int) Zones {
	statusH = min(max(statusH, 0), bounds.H)
	footerH = min(max(footerH, 0), bounds.H-statusH)
	return Zones{
		Bounds:  bounds,
		Status:  R(bounds.X, bounds.Y, bounds.W, statusH),
		Content: R(bounds.X, bounds.Y+statusH, bounds.W, bounds.H-statusH-footerH),
		Footer:  R(bounds.X, bounds.Y+bounds.H-footerH, bounds.W, footerH),
	}
}

// Rect returns the rect of zone z.
func (z Zones) Rect(zone Zone) Rect {
	switch zone {
	case ZoneStatus:
		return z.Status
	case ZoneContent:
		return z.Content
	case ZoneFooter:
		return z.Footer
	default:
		return Rect{}
	}
}

// Mark adds the rects of the given zones to d.
func (z Zones) Mark(d *DirtyRegion, zones ...Zone) {
	for _, zone := range zones {
		d.Add(z.Rect(zone))
	}
}
