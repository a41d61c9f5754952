// Package epd is the boundary to the physical e-paper panel: a 1bpp frame
// buffer, drawing primitives that only touch the buffer, and the blocking
// full/partial refresh operations that push it to the glass.
package epd

import (
	"errors"
	"fmt"

	"hubpanel/internal/config"
	"hubpanel/internal/geom"
)

var (
	// ErrHardwareFault wraps any panel bring-up failure. It is terminal for
	// the display subsystem.
	ErrHardwareFault = errors.New("epd: hardware fault")
	// ErrNotReady is returned by refresh calls when Init has not succeeded.
	ErrNotReady = errors.New("epd: driver not initialized")
)

// Panel is a refresh backend. Implementations block until the controller
// reports the refresh as complete.
type Panel interface {
	Init() error
	PowerOn() error
	PowerOff() error
	// Full repaints the entire panel from plane.
	Full(plane []byte) error
	// Partial repaints only r, which the caller has clamped to the panel.
	Partial(plane []byte, r geom.Rect) error
	Size() (w, h int)
}

// Open builds the backend named by cfg.Backend.
func Open(cfg config.DisplayConfig) (Panel, error) {
	switch cfg.Backend {
	case "", "sim":
		p := NewSimPanel(cfg.Width, cfg.Height)
		p.FullDelay = cfg.SimFull
		p.PartialDelay = cfg.SimPartial
		return p, nil
	case "spi":
		return openSPI(cfg)
	case "uc8151":
		return openUC8151(cfg)
	default:
		return nil, fmt.Errorf("epd: unknown backend %q", cfg.Backend)
	}
}
