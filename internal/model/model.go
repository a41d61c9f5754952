// Package model holds the immutable snapshots collaborators push into the
// panel and the commands the panel sends back out.
package model

import "time"

// Room is one lighting zone.
type Room struct {
	ID   string
	Name string
	On   bool
	// Brightness is 0-100.
	Brightness int
}

// ClimateZone is one thermostat.
type ClimateZone struct {
	ID       string
	Name     string
	Current  float64
	Setpoint float64
	// Mode is a free-form label such as "heat" or "off".
	Mode string
}

// SensorReading is the latest value of a single sensor.
type SensorReading struct {
	ID    string
	Name  string
	Value float64
	Unit  string
	At    time.Time
}

// Message is an inbox entry from the message broker bridge.
type Message struct {
	ID      string
	From    string
	Subject string
	At      time.Time
	Read    bool
}

// AgendaItem is a single concrete calendar occurrence, after recurrence
// expansion and timezone normalization.
type AgendaItem struct {
	SourceID string
	UID      string
	// InstanceKey uniquely identifies one occurrence of a recurring event.
	InstanceKey string

	Summary  string
	Location string
	AllDay   bool

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}

// DeviceInfo describes the hub itself.
type DeviceInfo struct {
	Name    string
	Version string
	Address string
	Uptime  time.Duration
}

// Battery is the fuel gauge state.
type Battery struct {
	Present bool
	// Percent is 0-100.
	Percent   int
	VoltageMv int
	Charging  bool
}

// CommandKind names an outbound request.
type CommandKind string

const (
	CmdToggleRoom    CommandKind = "toggle_room"
	CmdSetBrightness CommandKind = "set_brightness"
	CmdSetSetpoint   CommandKind = "set_setpoint"
	CmdMarkRead      CommandKind = "mark_read"
	CmdQuickAction   CommandKind = "quick_action"
	CmdRefreshAgenda CommandKind = "refresh_agenda"
)

// Command is sent from a screen to the collaborator owning Target.
type Command struct {
	Kind   CommandKind
	Target string
	Value  float64
}
