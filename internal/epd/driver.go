package epd

import (
	"fmt"
	"sync"
	"time"

	"hubpanel/internal/geom"
	appLog "hubpanel/internal/log"
)

// Stats are the refresh counters kept for diagnostics.
type Stats struct {
	FullRefreshes    int           `json:"full_refreshes"`
	PartialRefreshes int           `json:"partial_refreshes"`
	LastFull         time.Duration `json:"last_full_ns"`
	LastPartial      time.Duration `json:"last_partial_ns"`
	TotalRefreshTime time.Duration `json:"total_refresh_ns"`
}

// Driver owns the frame buffer and the panel backend. Drawing calls only
// touch the buffer; FullRefresh and PartialRefresh block until the panel is
// done.
//
// Driver is not safe for concurrent drawing; only Stats may be called from
// other goroutines.
type Driver struct {
	panel     Panel
	frame     *Frame
	stabilize time.Duration

	ready   bool
	powered bool

	// sleep and now are swapped in tests.
	sleep func(time.Duration)
	now   func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewDriver wraps p with a frame buffer of the panel's size.
func NewDriver(p Panel, stabilize time.Duration) *Driver {
	w, h := p.Size()
	return &Driver{
		panel:     p,
		frame:     NewFrame(w, h),
		stabilize: stabilize,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Init brings up the backend. On failure the returned error wraps
// ErrHardwareFault and the driver refuses every later refresh.
func (d *Driver) Init() error {
	if err := d.panel.Init(); err != nil {
		d.ready = false
		return fmt.Errorf("%w: %v", ErrHardwareFault, err)
	}
	// Some backends only learn their geometry during Init.
	if w, h := d.panel.Size(); w != d.frame.w || h != d.frame.h {
		d.frame = NewFrame(w, h)
	}
	d.ready = true
	appLog.Info("epd: panel initialized", "size", d.frame.Bounds().String())
	return nil
}

// Ready reports whether Init succeeded.
func (d *Driver) Ready() bool {
	return d.ready
}

// Bounds is the panel rect.
func (d *Driver) Bounds() geom.Rect {
	return d.frame.Bounds()
}

// Frame exposes the buffer for previews and tests.
func (d *Driver) Frame() *Frame {
	return d.frame
}

// PowerOn powers the panel and waits for the rails to stabilize. Calling it
// while powered is a no-op.
func (d *Driver) PowerOn() error {
	if !d.ready {
		return ErrNotReady
	}
	if d.powered {
		return nil
	}
	if err := d.panel.PowerOn(); err != nil {
		return fmt.Errorf("epd: power on: %w", err)
	}
	if d.stabilize > 0 {
		d.sleep(d.stabilize)
	}
	d.powered = true
	return nil
}

// PowerOff is a no-op when the panel is already off.
func (d *Driver) PowerOff() error {
	if !d.ready || !d.powered {
		return nil
	}
	if err := d.panel.PowerOff(); err != nil {
		return fmt.Errorf("epd: power off: %w", err)
	}
	d.powered = false
	return nil
}

// FullRefresh repaints the whole panel from the buffer.
func (d *Driver) FullRefresh() error {
	if !d.ready {
		return ErrNotReady
	}
	if err := d.PowerOn(); err != nil {
		return err
	}
	start := d.now()
	if err := d.panel.Full(d.frame.Plane()); err != nil {
		return fmt.Errorf("epd: full refresh: %w", err)
	}
	d.record(true, d.now().Sub(start))
	return nil
}

// PartialRefresh repaints r clamped to the panel. An empty rect performs no
// hardware call.
func (d *Driver) PartialRefresh(r geom.Rect) error {
	if !d.ready {
		return ErrNotReady
	}
	r = r.Clamp(d.frame.Bounds())
	if r.Empty() {
		return nil
	}
	if err := d.PowerOn(); err != nil {
		return err
	}
	start := d.now()
	if err := d.panel.Partial(d.frame.Plane(), r); err != nil {
		return fmt.Errorf("epd: partial refresh %s: %w", r, err)
	}
	d.record(false, d.now().Sub(start))
	return nil
}

func (d *Driver) record(full bool, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if full {
		d.stats.FullRefreshes++
		d.stats.LastFull = elapsed
	} else {
		d.stats.PartialRefreshes++
		d.stats.LastPartial = elapsed
	}
	d.stats.TotalRefreshTime += elapsed
}

// Stats returns a copy of the refresh counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// InvertRect toggles r in the buffer. It becomes visible only after a
// refresh covering r.
func (d *Driver) InvertRect(r geom.Rect) geom.Rect {
	return d.frame.Invert(r)
}
