// Package ebitenpad adapts an ebiten gamepad to controller.Driver for the
// desktop simulator.
package ebitenpad

import (
	"math"
	"sync"
	"time"

	"hubpanel/internal/controller"

	"github.com/hajimehoshi/ebiten/v2"
)

var buttonMap = []struct {
	std ebiten.StandardGamepadButton
	btn controller.Button
}{
	{ebiten.StandardGamepadButtonRightBottom, controller.ButtonA},
	{ebiten.StandardGamepadButtonRightRight, controller.ButtonB},
	{ebiten.StandardGamepadButtonRightLeft, controller.ButtonX},
	{ebiten.StandardGamepadButtonRightTop, controller.ButtonY},
	{ebiten.StandardGamepadButtonCenterRight, controller.ButtonMenu},
	{ebiten.StandardGamepadButtonCenterLeft, controller.ButtonView},
	{ebiten.StandardGamepadButtonCenterCenter, controller.ButtonXbox},
	{ebiten.StandardGamepadButtonFrontTopLeft, controller.ButtonBumperLeft},
	{ebiten.StandardGamepadButtonFrontTopRight, controller.ButtonBumperRight},
}

var dpadMap = []struct {
	std ebiten.StandardGamepadButton
	dir controller.DPad
}{
	{ebiten.StandardGamepadButtonLeftTop, controller.DPadUp},
	{ebiten.StandardGamepadButtonLeftBottom, controller.DPadDown},
	{ebiten.StandardGamepadButtonLeftLeft, controller.DPadLeft},
	{ebiten.StandardGamepadButtonLeftRight, controller.DPadRight},
}

var keyMap = []struct {
	key ebiten.Key
	btn controller.Button
}{
	{ebiten.KeyEnter, controller.ButtonA},
	{ebiten.KeyBackspace, controller.ButtonB},
	{ebiten.KeyX, controller.ButtonX},
	{ebiten.KeyY, controller.ButtonY},
	{ebiten.KeyTab, controller.ButtonMenu},
	{ebiten.KeyH, controller.ButtonView},
	{ebiten.KeyQ, controller.ButtonBumperLeft},
	{ebiten.KeyE, controller.ButtonBumperRight},
}

var arrowMap = []struct {
	key ebiten.Key
	dir controller.DPad
}{
	{ebiten.KeyArrowUp, controller.DPadUp},
	{ebiten.KeyArrowDown, controller.DPadDown},
	{ebiten.KeyArrowLeft, controller.DPadLeft},
	{ebiten.KeyArrowRight, controller.DPadRight},
}

// Pad samples the first connected gamepad. Sample must be called from the
// ebiten Update loop; State, Snapshot and Rumble are safe from any goroutine.
type Pad struct {
	// Keyboard makes the keyboard act as an active controller while no
	// gamepad is connected.
	Keyboard bool

	mu    sync.Mutex
	id    ebiten.GamepadID
	pad   bool
	state controller.State
	snap  controller.Snapshot

	ids []ebiten.GamepadID
}

func New() *Pad {
	return &Pad{state: controller.Scanning}
}

// sampleKeyboard maps keys onto a snapshot; Z and C are full-travel
// triggers.
func sampleKeyboard() controller.Snapshot {
	var s controller.Snapshot
	for _, m := range keyMap {
		if ebiten.IsKeyPressed(m.key) {
			s.Buttons |= m.btn
		}
	}
	for _, m := range arrowMap {
		if ebiten.IsKeyPressed(m.key) {
			s.DPad |= m.dir
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		s.TriggerLeft = controller.TriggerMax
	}
	if ebiten.IsKeyPressed(ebiten.KeyC) {
		s.TriggerRight = controller.TriggerMax
	}
	s.At = time.Now()
	return s
}

// Sample reads the gamepad into the current snapshot.
func (p *Pad) Sample() {
	p.ids = ebiten.AppendGamepadIDs(p.ids[:0])

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ids) == 0 {
		p.pad = false
		if p.Keyboard {
			p.state = controller.Active
			p.snap = sampleKeyboard()
			return
		}
		p.state = controller.Scanning
		p.snap = controller.Snapshot{At: time.Now()}
		return
	}
	id := p.ids[0]
	p.id, p.pad = id, true
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		p.state = controller.Connected
		return
	}
	p.state = controller.Active

	var s controller.Snapshot
	for _, m := range buttonMap {
		if ebiten.IsStandardGamepadButtonPressed(id, m.std) {
			s.Buttons |= m.btn
		}
	}
	for _, m := range dpadMap {
		if ebiten.IsStandardGamepadButtonPressed(id, m.std) {
			s.DPad |= m.dir
		}
	}
	s.LeftX = axis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
	s.LeftY = axis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
	s.RightX = axis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal))
	s.RightY = axis(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical))
	s.TriggerLeft = trigger(ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft))
	s.TriggerRight = trigger(ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight))
	s.At = time.Now()
	p.snap = s
}

func (p *Pad) State() controller.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pad) Snapshot() controller.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *Pad) Rumble(pulse controller.Pulse) {
	p.mu.Lock()
	id, ok := p.id, p.pad && p.state == controller.Active
	p.mu.Unlock()
	if !ok {
		return
	}
	opts := &ebiten.VibrateGamepadOptions{
		Duration:        20 * time.Millisecond,
		StrongMagnitude: 0,
		WeakMagnitude:   0.4,
	}
	if pulse == controller.PulseShort {
		opts.Duration = 60 * time.Millisecond
		opts.StrongMagnitude = 0.6
	}
	ebiten.VibrateGamepad(id, opts)
}

// axis scales ebiten's -1..1 to the signed 16-bit stick range.
func axis(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * controller.StickMax))
}

// trigger scales 0..1 to 0..TriggerMax.
func trigger(v float64) uint16 {
	v = math.Max(0, math.Min(1, v))
	return uint16(math.Round(v * controller.TriggerMax))
}
