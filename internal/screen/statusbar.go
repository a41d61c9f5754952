package screen

import (
	"fmt"
	"time"

	"hubpanel/internal/compositor"
	"hubpanel/internal/controller"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
)

// StatusBar is the strip at the top of every page.
type StatusBar struct {
	rect  geom.Rect
	dirty bool

	title   string
	ctrl    controller.State
	battery model.Battery
	clock   time.Time
}

func NewStatusBar(z geom.Zones) *StatusBar {
	return &StatusBar{rect: z.Status, dirty: true, ctrl: controller.Disconnected}
}

func (s *StatusBar) Rect() geom.Rect {
	return s.rect
}

func (s *StatusBar) Dirty() bool {
	return s.dirty
}

func (s *StatusBar) SetTitle(t string) {
	if t != s.title {
		s.title = t
		s.dirty = true
	}
}

func (s *StatusBar) SetController(st controller.State) {
	if st != s.ctrl {
		s.ctrl = st
		s.dirty = true
	}
}

func (s *StatusBar) SetBattery(b model.Battery) {
	if b != s.battery {
		s.battery = b
		s.dirty = true
	}
}

// SetClock updates the clock; only minute changes repaint.
func (s *StatusBar) SetClock(t time.Time) {
	t = t.Truncate(time.Minute)
	if !t.Equal(s.clock) {
		s.clock = t
		s.dirty = true
	}
}

func (s *StatusBar) Render(c *compositor.Compositor) {
	s.dirty = false
	r := s.rect
	c.FillRect(r, epd.White)
	c.Line(r.X, r.Y+r.H-1, r.X+r.W-1, r.Y+r.H-1, epd.Black)
	c.Text(r.X+Padding, r.Y+3, s.title, epd.FontTitle, epd.Black)

	right := s.ctrl.String()
	if s.battery.Present {
		right += fmt.Sprintf("  %d%%", s.battery.Percent)
		if s.battery.Charging {
			right += "+"
		}
	}
	if !s.clock.IsZero() {
		right += "  " + s.clock.Format("15:04")
	}
	w := epd.FontBody.TextWidth(right)
	c.Text(r.X+r.W-Padding-w, r.Y+6, right, epd.FontBody, epd.Black)
}
