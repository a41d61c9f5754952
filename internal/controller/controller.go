// Package controller models the wireless game controller: its connection
// state and point-in-time snapshots of every input.
package controller

import (
	"sync"
	"time"
)

// State is the connection state of the controller link.
type State int

const (
	Disconnected State = iota
	Scanning
	Connected
	// Active means connected and delivering reports.
	Active
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Scanning:
		return "SCANNING"
	case Connected:
		return "CONNECTED"
	case Active:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Button is a bitmask of discrete buttons.
type Button uint16

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonMenu
	ButtonView
	ButtonXbox
	ButtonBumperLeft
	ButtonBumperRight
)

// DPad is a bitmask of d-pad directions.
type DPad uint8

const (
	DPadUp DPad = 1 << iota
	DPadDown
	DPadLeft
	DPadRight
)

const (
	StickMax   = 32767
	TriggerMax = 1023
)

// Snapshot is an immutable capture of the controller. Stick Y grows
// downwards, matching screen coordinates.
type Snapshot struct {
	Buttons Button
	DPad    DPad

	LeftX, LeftY   int16
	RightX, RightY int16

	// Triggers are 0..TriggerMax.
	TriggerLeft  uint16
	TriggerRight uint16

	At time.Time
}

func (s Snapshot) Pressed(b Button) bool {
	return s.Buttons&b != 0
}

// Pulse is a haptic pattern.
type Pulse int

const (
	// PulseTick is the short click used for navigation and triggers.
	PulseTick Pulse = iota
	// PulseShort is a stronger confirmation buzz for face/system buttons.
	PulseShort
)

// Driver is the polling side of a controller connection.
type Driver interface {
	State() State
	Snapshot() Snapshot
	Rumble(p Pulse)
}

// Sim is an in-memory Driver for tests and headless runs.
type Sim struct {
	mu      sync.Mutex
	state   State
	snap    Snapshot
	rumbles []Pulse
}

func NewSim() *Sim {
	return &Sim{state: Disconnected}
}

func (s *Sim) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sim) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Sim) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	if snap.At.IsZero() {
		snap.At = time.Now()
	}
	return snap
}

// Set replaces the current snapshot.
func (s *Sim) Set(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Update edits the current snapshot in place.
func (s *Sim) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.mu.Unlock()
}

func (s *Sim) Rumble(p Pulse) {
	s.mu.Lock()
	s.rumbles = append(s.rumbles, p)
	s.mu.Unlock()
}

// Rumbles returns the haptic pulses requested so far.
func (s *Sim) Rumbles() []Pulse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pulse, len(s.rumbles))
	copy(out, s.rumbles)
	return out
}
