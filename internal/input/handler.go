package input

import (
	"time"

	"hubpanel/internal/controller"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/mathx"
)

const (
	IntensityMin = 5
	IntensityMax = 30
)

// Config tunes a Handler.
type Config struct {
	// NavDebounce is the repeat interval for a held or re-pressed direction.
	NavDebounce time.Duration
	// TriggerInterval rate-limits trigger actions.
	TriggerInterval time.Duration
	// StickThreshold is the deflection (of 32767) a stick needs to count as
	// a direction.
	StickThreshold int
	// TriggerThreshold is the minimum raw trigger value (of 1023).
	TriggerThreshold int
}

// buttonOrder is the priority order for discrete buttons.
var buttonOrder = []struct {
	btn   controller.Button
	event Event
	pulse controller.Pulse
}{
	{controller.ButtonA, ButtonA, controller.PulseShort},
	{controller.ButtonB, ButtonB, controller.PulseShort},
	{controller.ButtonX, ButtonX, controller.PulseShort},
	{controller.ButtonY, ButtonY, controller.PulseShort},
	{controller.ButtonMenu, ButtonMenu, controller.PulseShort},
	{controller.ButtonView, ButtonView, controller.PulseShort},
	{controller.ButtonXbox, ButtonXbox, controller.PulseShort},
	{controller.ButtonBumperLeft, BumperLeft, controller.PulseTick},
	{controller.ButtonBumperRight, BumperRight, controller.PulseTick},
}

// Handler polls a controller.Driver. It is owned by a single goroutine.
type Handler struct {
	drv controller.Driver
	cfg Config
	now func() time.Time

	state  controller.State
	primed bool
	prev   controller.Snapshot

	lastDir     Event
	lastNav     time.Time
	lastTrigger time.Time

	onActivity func(time.Time)
}

func NewHandler(drv controller.Driver, cfg Config) *Handler {
	return &Handler{
		drv:   drv,
		cfg:   cfg,
		now:   time.Now,
		state: controller.Disconnected,
	}
}

// SetClock replaces time.Now, for tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// OnActivity registers a callback run for every produced action; it feeds
// the idle timer.
func (h *Handler) OnActivity(fn func(time.Time)) {
	h.onActivity = fn
}

// Poll samples the controller once and returns at most one action. It
// returns a None action unless the controller is Active.
func (h *Handler) Poll() Action {
	now := h.now()
	st := h.drv.State()
	if st != h.state {
		appLog.Info("controller state changed", "from", h.state, "to", st)
		h.state = st
	}
	if st != controller.Active {
		h.primed = false
		return Action{At: now}
	}

	snap := h.drv.Snapshot()
	if !h.primed {
		// Buttons already held when the link came up are not presses.
		h.prev = snap
		h.primed = true
		return Action{At: now}
	}

	a := h.detect(snap, now)
	if a.Event != None && h.onActivity != nil {
		h.onActivity(now)
	}
	return a
}

func (h *Handler) detect(snap controller.Snapshot, now time.Time) Action {
	pressed := snap.Buttons &^ h.prev.Buttons
	// Released buttons are forgotten; pressed ones are only recorded once
	// reported, so two presses in the same sample surface on later polls.
	h.prev.Buttons &= snap.Buttons
	h.prev.At = snap.At

	for _, b := range buttonOrder {
		if pressed&b.btn == 0 {
			continue
		}
		h.prev.Buttons |= b.btn
		h.drv.Rumble(b.pulse)
		return Action{Event: b.event, At: now}
	}

	if dir := h.direction(snap); dir != None {
		if dir != h.lastDir || now.Sub(h.lastNav) >= h.cfg.NavDebounce {
			h.lastDir = dir
			h.lastNav = now
			h.drv.Rumble(controller.PulseTick)
			return Action{Event: dir, At: now}
		}
	}

	if h.lastTrigger.IsZero() || now.Sub(h.lastTrigger) >= h.cfg.TriggerInterval {
		ev, raw := None, 0
		switch {
		case int(snap.TriggerLeft) >= h.cfg.TriggerThreshold:
			ev, raw = TriggerLeft, int(snap.TriggerLeft)
		case int(snap.TriggerRight) >= h.cfg.TriggerThreshold:
			ev, raw = TriggerRight, int(snap.TriggerRight)
		}
		if ev != None {
			h.lastTrigger = now
			h.drv.Rumble(controller.PulseTick)
			return Action{Event: ev, Intensity: Intensity(raw, h.cfg.TriggerThreshold), At: now}
		}
	}

	return Action{At: now}
}

// direction combines the d-pad and the left stick; either can steer.
func (h *Handler) direction(s controller.Snapshot) Event {
	th := h.cfg.StickThreshold
	lx, ly := int(s.LeftX), int(s.LeftY)
	switch {
	case s.DPad&controller.DPadUp != 0 || ly <= -th:
		return NavUp
	case s.DPad&controller.DPadDown != 0 || ly >= th:
		return NavDown
	case s.DPad&controller.DPadLeft != 0 || lx <= -th:
		return NavLeft
	case s.DPad&controller.DPadRight != 0 || lx >= th:
		return NavRight
	}
	return None
}

// Intensity maps a raw trigger value linearly from [threshold, 1023] onto
// [5, 30].
func Intensity(raw, threshold int) int {
	return mathx.MapRange(raw, threshold, controller.TriggerMax, IntensityMin, IntensityMax)
}
