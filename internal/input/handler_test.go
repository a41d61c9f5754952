package input

import (
	"testing"
	"time"

	"hubpanel/internal/controller"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() Config {
	return Config{
		NavDebounce:      200 * time.Millisecond,
		TriggerInterval:  120 * time.Millisecond,
		StickThreshold:   16000,
		TriggerThreshold: 100,
	}
}

// newActive returns a handler whose controller is active and primed with an
// idle snapshot.
func newActive(t *testing.T) (*Handler, *controller.Sim, *fakeClock) {
	t.Helper()
	sim := controller.NewSim()
	sim.SetState(controller.Active)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	h := NewHandler(sim, testConfig())
	h.SetClock(clk.now)
	if a := h.Poll(); !a.IsNone() {
		t.Fatalf("priming poll produced %v", a.Event)
	}
	return h, sim, clk
}

func TestPollInactiveIsNoop(t *testing.T) {
	for _, st := range []controller.State{controller.Disconnected, controller.Scanning, controller.Connected} {
		sim := controller.NewSim()
		sim.SetState(st)
		sim.Set(controller.Snapshot{Buttons: controller.ButtonA, DPad: controller.DPadUp})
		h := NewHandler(sim, testConfig())
		for i := 0; i < 3; i++ {
			if a := h.Poll(); !a.IsNone() {
				t.Errorf("state %v: got %v", st, a.Event)
			}
		}
		if len(sim.Rumbles()) != 0 {
			t.Errorf("state %v: rumbled while inactive", st)
		}
	}
}

func TestButtonEdgeDetection(t *testing.T) {
	h, sim, clk := newActive(t)

	sim.Set(controller.Snapshot{Buttons: controller.ButtonA})
	if a := h.Poll(); a.Event != ButtonA {
		t.Fatalf("press: got %v", a.Event)
	}
	for i := 0; i < 5; i++ {
		clk.advance(10 * time.Millisecond)
		if a := h.Poll(); !a.IsNone() {
			t.Fatalf("held button fired again: %v", a.Event)
		}
	}

	sim.Set(controller.Snapshot{})
	h.Poll()
	sim.Set(controller.Snapshot{Buttons: controller.ButtonA})
	if a := h.Poll(); a.Event != ButtonA {
		t.Errorf("re-press: got %v", a.Event)
	}
}

func TestHeldAtConnectIsNotAPress(t *testing.T) {
	sim := controller.NewSim()
	sim.Set(controller.Snapshot{Buttons: controller.ButtonB})
	h := NewHandler(sim, testConfig())

	h.Poll()
	sim.SetState(controller.Active)
	for i := 0; i < 3; i++ {
		if a := h.Poll(); !a.IsNone() {
			t.Fatalf("held B reported as %v after connect", a.Event)
		}
	}
}

func TestSimultaneousPressesAreNotLost(t *testing.T) {
	h, sim, _ := newActive(t)

	sim.Set(controller.Snapshot{Buttons: controller.ButtonA | controller.ButtonB})
	first := h.Poll()
	second := h.Poll()
	third := h.Poll()
	if first.Event != ButtonA || second.Event != ButtonB || !third.IsNone() {
		t.Errorf("got %v, %v, %v", first.Event, second.Event, third.Event)
	}
}

func TestPriorityButtonsOverNavOverTriggers(t *testing.T) {
	h, sim, _ := newActive(t)

	sim.Set(controller.Snapshot{
		Buttons:     controller.ButtonY,
		DPad:        controller.DPadLeft,
		TriggerLeft: 900,
	})
	want := []Event{ButtonY, NavLeft, TriggerLeft}
	for i, w := range want {
		if a := h.Poll(); a.Event != w {
			t.Errorf("poll %d: got %v, want %v", i, a.Event, w)
		}
	}
}

func TestNavDebounceCollapse(t *testing.T) {
	cases := []struct {
		name  string
		gap   time.Duration
		steps int
	}{
		{"within interval", 100 * time.Millisecond, 1},
		{"beyond interval", 250 * time.Millisecond, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, sim, clk := newActive(t)
			steps := 0
			press := func() {
				sim.Set(controller.Snapshot{DPad: controller.DPadRight})
				if h.Poll().Event == NavRight {
					steps++
				}
				clk.advance(10 * time.Millisecond)
				sim.Set(controller.Snapshot{})
				h.Poll()
			}

			press()
			clk.advance(tc.gap - 10*time.Millisecond)
			press()

			if steps != tc.steps {
				t.Errorf("steps = %d, want %d", steps, tc.steps)
			}
		})
	}
}

func TestHeldDirectionRepeats(t *testing.T) {
	h, sim, clk := newActive(t)
	sim.Set(controller.Snapshot{LeftY: 30000})

	steps := 0
	for i := 0; i < 50; i++ { // 500ms at 10ms polls
		if h.Poll().Event == NavDown {
			steps++
		}
		clk.advance(10 * time.Millisecond)
	}
	// fires at 0, 200 and 400ms
	if steps != 3 {
		t.Errorf("steps = %d, want 3", steps)
	}
}

func TestNewDirectionFiresImmediately(t *testing.T) {
	h, sim, clk := newActive(t)

	sim.Set(controller.Snapshot{DPad: controller.DPadRight})
	h.Poll()
	clk.advance(20 * time.Millisecond)
	sim.Set(controller.Snapshot{LeftX: -20000})
	if a := h.Poll(); a.Event != NavLeft {
		t.Errorf("got %v, want NAV_LEFT", a.Event)
	}
}

func TestStickBelowThresholdIgnored(t *testing.T) {
	h, sim, _ := newActive(t)
	sim.Set(controller.Snapshot{LeftX: 15999, LeftY: -15999})
	if a := h.Poll(); !a.IsNone() {
		t.Errorf("got %v", a.Event)
	}
}

func TestTriggerRateLimitAndIntensity(t *testing.T) {
	h, sim, clk := newActive(t)

	sim.Set(controller.Snapshot{TriggerRight: 1023})
	a := h.Poll()
	if a.Event != TriggerRight || a.Intensity != IntensityMax {
		t.Fatalf("got %v/%d", a.Event, a.Intensity)
	}

	clk.advance(60 * time.Millisecond)
	if a := h.Poll(); !a.IsNone() {
		t.Errorf("trigger not rate limited: %v", a.Event)
	}
	clk.advance(60 * time.Millisecond)
	if a := h.Poll(); a.Event != TriggerRight {
		t.Errorf("trigger did not fire after interval: %v", a.Event)
	}

	sim.Set(controller.Snapshot{TriggerLeft: 99})
	clk.advance(time.Second)
	if a := h.Poll(); !a.IsNone() {
		t.Errorf("below threshold fired: %v", a.Event)
	}
}

func TestIntensityMapping(t *testing.T) {
	cases := []struct {
		raw, threshold, want int
	}{
		{100, 100, 5},
		{1023, 100, 30},
		{562, 100, 18},
		{400, 400, 5},
		{1023, 400, 30},
	}
	for _, tc := range cases {
		if got := Intensity(tc.raw, tc.threshold); got != tc.want {
			t.Errorf("Intensity(%d, %d) = %d, want %d", tc.raw, tc.threshold, got, tc.want)
		}
	}
}

func TestHapticsAndActivity(t *testing.T) {
	h, sim, _ := newActive(t)
	var activity int
	h.OnActivity(func(time.Time) { activity++ })

	sim.Set(controller.Snapshot{Buttons: controller.ButtonMenu})
	h.Poll()
	sim.Set(controller.Snapshot{Buttons: controller.ButtonMenu | controller.ButtonBumperLeft})
	h.Poll()
	sim.Set(controller.Snapshot{DPad: controller.DPadUp})
	h.Poll()
	h.Poll() // held, suppressed

	want := []controller.Pulse{controller.PulseShort, controller.PulseTick, controller.PulseTick}
	got := sim.Rumbles()
	if len(got) != len(want) {
		t.Fatalf("rumbles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rumble %d = %v, want %v", i, got[i], want[i])
		}
	}
	if activity != 3 {
		t.Errorf("activity = %d, want 3", activity)
	}
}
