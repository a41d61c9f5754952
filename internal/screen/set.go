package screen

import (
	"fmt"
	"time"

	"hubpanel/internal/controller"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
)

// FooterHint is the key legend drawn on every full repaint.
const FooterHint = "LB/RB page   A select   B back   Menu settings   Y refresh"

// Set owns every screen plus the status bar. Its setters are the typed
// entry points for collaborator snapshots and keep the home tiles in step
// with the detail pages. Like the screens, a Set belongs to the display
// goroutine.
type Set struct {
	Zones  geom.Zones
	Status *StatusBar

	Home       *Home
	Lights     *Lights
	Climate    *Climate
	Sensors    *Sensors
	Messages   *Messages
	Agenda     *Agenda
	Device     *Device
	Display    *DisplaySettings
	Controller *ControllerSettings
	Error      *ErrorScreen

	byID map[nav.PageID]Screen
}

// Options carries the collaborators screens call back into.
type Options struct {
	Sink     CommandSink
	Navigate func(nav.PageID)
	Stats    func() RefreshStats

	NavDebounce     time.Duration
	TriggerInterval time.Duration
}

func NewSet(bounds geom.Rect, opts Options) *Set {
	z := Zones(bounds)
	area := body(z)
	sink := opts.Sink
	if sink == nil {
		sink = SinkFunc(func(model.Command) {})
	}

	s := &Set{
		Zones:      z,
		Status:     NewStatusBar(z),
		Home:       NewHome(area, opts.Navigate),
		Lights:     NewLights(area, sink),
		Climate:    NewClimate(area, sink),
		Sensors:    NewSensors(area),
		Messages:   NewMessages(area, sink),
		Agenda:     NewAgenda(area, sink),
		Device:     NewDevice(area),
		Display:    NewDisplaySettings(area, opts.Stats),
		Controller: NewControllerSettings(area, opts.NavDebounce, opts.TriggerInterval),
		Error:      NewErrorScreen(z.Content),
	}
	s.byID = map[nav.PageID]Screen{}
	for _, scr := range s.All() {
		s.byID[scr.ID()] = scr
	}
	return s
}

// All lists every screen, the error screen last.
func (s *Set) All() []Screen {
	return []Screen{s.Home, s.Lights, s.Climate, s.Sensors, s.Messages, s.Agenda, s.Device, s.Display, s.Controller, s.Error}
}

// Get returns the screen for id, or nil.
func (s *Set) Get(id nav.PageID) Screen {
	return s.byID[id]
}

func (s *Set) SetRooms(rooms []model.Room) {
	s.Lights.SetRooms(rooms)
	on := 0
	for _, r := range rooms {
		if r.On {
			on++
		}
	}
	s.Home.SetSummary(nav.PageLights, fmt.Sprintf("%d of %d on", on, len(rooms)))
}

func (s *Set) SetZones(zones []model.ClimateZone) {
	s.Climate.SetZones(zones)
	detail := "no zones"
	if len(zones) > 0 {
		var sum float64
		for _, z := range zones {
			sum += z.Current
		}
		detail = fmt.Sprintf("avg %.1f°", sum/float64(len(zones)))
	}
	s.Home.SetSummary(nav.PageClimate, detail)
}

func (s *Set) SetSensorData(readings []model.SensorReading) {
	s.Sensors.SetReadings(readings)
	s.Home.SetSummary(nav.PageSensors, fmt.Sprintf("%d sensors", len(readings)))
}

func (s *Set) SetMessages(msgs []model.Message) {
	s.Messages.SetMessages(msgs)
	s.Home.SetSummary(nav.PageMessages, fmt.Sprintf("%d unread", s.Messages.Unread()))
}

func (s *Set) SetAgenda(items []model.AgendaItem) {
	s.Agenda.SetItems(items)
	detail := "nothing planned"
	if len(items) > 0 {
		detail = items[0].Start.Format("Mon 15:04") + " " + items[0].Summary
	}
	s.Home.SetSummary(nav.PageAgenda, detail)
}

func (s *Set) SetDeviceInfo(info model.DeviceInfo) {
	s.Device.SetDeviceInfo(info)
	s.Home.SetSummary(nav.PageDevice, info.Name)
}

func (s *Set) SetBattery(b model.Battery) {
	s.Device.SetBattery(b)
	s.Status.SetBattery(b)
}

func (s *Set) SetControllerState(st controller.State) {
	s.Controller.SetState(st)
	s.Status.SetController(st)
}

func (s *Set) SetClock(t time.Time) {
	s.Status.SetClock(t)
}
