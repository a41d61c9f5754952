// Package input turns raw controller snapshots into discrete actions: edge
// detection for buttons, repeat-rate limiting for navigation and rate-limited
// analog triggers.
package input

import "time"

// Event is the raw input that produced an Action.
type Event int

const (
	None Event = iota
	NavUp
	NavDown
	NavLeft
	NavRight
	ButtonA
	ButtonB
	ButtonX
	ButtonY
	ButtonMenu
	ButtonView
	ButtonXbox
	BumperLeft
	BumperRight
	TriggerLeft
	TriggerRight
)

var eventNames = [...]string{
	None:         "NONE",
	NavUp:        "NAV_UP",
	NavDown:      "NAV_DOWN",
	NavLeft:      "NAV_LEFT",
	NavRight:     "NAV_RIGHT",
	ButtonA:      "BUTTON_A",
	ButtonB:      "BUTTON_B",
	ButtonX:      "BUTTON_X",
	ButtonY:      "BUTTON_Y",
	ButtonMenu:   "BUTTON_MENU",
	ButtonView:   "BUTTON_VIEW",
	ButtonXbox:   "BUTTON_XBOX",
	BumperLeft:   "BUMPER_LEFT",
	BumperRight:  "BUMPER_RIGHT",
	TriggerLeft:  "TRIGGER_LEFT",
	TriggerRight: "TRIGGER_RIGHT",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// IsNav reports whether e is a d-pad/stick direction.
func (e Event) IsNav() bool {
	return e >= NavUp && e <= NavRight
}

// IsTrigger reports whether e is an analog trigger.
func (e Event) IsTrigger() bool {
	return e == TriggerLeft || e == TriggerRight
}

// Action is one discrete input. Intensity is set only for triggers.
type Action struct {
	Event     Event
	Intensity int
	At        time.Time
}

func (a Action) IsNone() bool {
	return a.Event == None
}
