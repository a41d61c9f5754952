package collab

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"hubpanel/internal/mathx"
	"hubpanel/internal/model"
	"hubpanel/internal/screen"
)

// Demo is a simulated home used when no real hub is attached. It owns the
// lighting, climate, sensor and message state and applies commands to it.
type Demo struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time

	rooms    []model.Room
	zones    []model.ClimateZone
	sensors  []model.SensorReading
	messages []model.Message
}

// NewDemo seeds a small house. seed 0 uses the clock.
func NewDemo(seed int64) *Demo {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Demo{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
	d.rooms = []model.Room{
		{ID: "living", Name: "Living", On: true, Brightness: 70},
		{ID: "kitchen", Name: "Kitchen", Brightness: 100},
		{ID: "hall", Name: "Hall", Brightness: 40},
		{ID: "bedroom", Name: "Bedroom", Brightness: 30},
		{ID: "office", Name: "Office", On: true, Brightness: 85},
		{ID: "porch", Name: "Porch", Brightness: 100},
		{ID: "bath", Name: "Bath", Brightness: 60},
	}
	d.zones = []model.ClimateZone{
		{ID: "down", Name: "Downstairs", Current: 20.5, Setpoint: 21, Mode: "heat"},
		{ID: "up", Name: "Upstairs", Current: 19.0, Setpoint: 19.5, Mode: "heat"},
		{ID: "office", Name: "Office", Current: 22.0, Setpoint: 21, Mode: "auto"},
	}
	at := d.now().Add(-2 * time.Hour)
	d.sensors = []model.SensorReading{
		{ID: "power", Name: "Power draw", Value: 420, Unit: "W", At: at},
		{ID: "co2", Name: "CO2 living", Value: 640, Unit: "ppm", At: at},
		{ID: "hum", Name: "Humidity bath", Value: 55, Unit: "%", At: at},
		{ID: "out", Name: "Outside", Value: 8, Unit: "C", At: at},
	}
	d.messages = []model.Message{
		{ID: "m1", From: "Hub", Subject: "Firmware 2.4 installed", At: at},
		{ID: "m2", From: "Door", Subject: "Parcel delivered", At: at.Add(40 * time.Minute)},
		{ID: "m3", From: "Alex", Subject: "Back at 7", At: at.Add(90 * time.Minute), Read: true},
	}
	return d
}

// Tick drifts temperatures and sensor values a little.
func (d *Demo) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.zones {
		z := &d.zones[i]
		step := 0.1 * float64(d.rnd.Intn(3)-1)
		if z.Current < z.Setpoint {
			step += 0.1
		} else if z.Current > z.Setpoint {
			step -= 0.1
		}
		z.Current = mathx.Clamp(z.Current+step, 5, 35)
	}
	now := d.now()
	d.sensors[0].Value = float64(300 + d.rnd.Intn(400))
	d.sensors[1].Value = float64(500 + d.rnd.Intn(400))
	d.sensors[3].Value = math.Round((5+d.rnd.Float64()*6)*10) / 10
	for i := range d.sensors {
		d.sensors[i].At = now
	}
}

// Apply executes cmd. It reports whether the command was for this home.
func (d *Demo) Apply(cmd model.Command) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch cmd.Kind {
	case model.CmdToggleRoom:
		if r := d.room(cmd.Target); r != nil {
			r.On = cmd.Value != 0
			return true
		}
	case model.CmdSetBrightness:
		if r := d.room(cmd.Target); r != nil {
			r.Brightness = mathx.Clamp(int(cmd.Value), 0, 100)
			r.On = r.Brightness > 0
			return true
		}
	case model.CmdSetSetpoint:
		for i := range d.zones {
			if d.zones[i].ID == cmd.Target {
				d.zones[i].Setpoint = cmd.Value
				return true
			}
		}
	case model.CmdMarkRead:
		for i := range d.messages {
			if d.messages[i].ID == cmd.Target {
				d.messages[i].Read = true
				return true
			}
		}
	case model.CmdQuickAction:
		// All off.
		for i := range d.rooms {
			d.rooms[i].On = false
		}
		return true
	}
	return false
}

func (d *Demo) room(id string) *model.Room {
	for i := range d.rooms {
		if d.rooms[i].ID == id {
			return &d.rooms[i]
		}
	}
	return nil
}

// Snapshot copies the current state into an engine update.
func (d *Demo) Snapshot() func(*screen.Set) {
	d.mu.Lock()
	rooms := append([]model.Room(nil), d.rooms...)
	zones := append([]model.ClimateZone(nil), d.zones...)
	sensors := append([]model.SensorReading(nil), d.sensors...)
	msgs := append([]model.Message(nil), d.messages...)
	d.mu.Unlock()

	return func(s *screen.Set) {
		s.SetRooms(rooms)
		s.SetZones(zones)
		s.SetSensorData(sensors)
		s.SetMessages(msgs)
	}
}
