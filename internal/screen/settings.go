package screen

import (
	"fmt"
	"time"

	"hubpanel/internal/compositor"
	"hubpanel/internal/controller"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
)

type row struct {
	label string
	value string
}

// rowList is a read-only list of label/value rows.
type rowList struct {
	Base
	rows []row
}

func newRowList(id nav.PageID, title string, area geom.Rect) rowList {
	rl := rowList{Base: newBase(id, title, area, NewList(area, ListRowHeight))}
	return rl
}

func (rl *rowList) setRows(rows []row) {
	diffItems(&rl.Base, rl.rows, rows)
	rl.rows = rows
}

func (rl *rowList) draw(c *compositor.Compositor, i int, r geom.Rect) {
	drawRow(c, r, rl.rows[i].label, rl.rows[i].value)
}

// Device shows information about the hub.
type Device struct {
	rowList
	info    model.DeviceInfo
	battery model.Battery
}

func NewDevice(area geom.Rect) *Device {
	d := &Device{rowList: newRowList(nav.PageDevice, "Device", area)}
	d.drawItem = d.draw
	d.refresh()
	return d
}

func (d *Device) SetDeviceInfo(info model.DeviceInfo) {
	d.info = info
	d.refresh()
}

func (d *Device) SetBattery(b model.Battery) {
	d.battery = b
	d.refresh()
}

func (d *Device) refresh() {
	bat := "not present"
	if d.battery.Present {
		bat = fmt.Sprintf("%d%% %dmV", d.battery.Percent, d.battery.VoltageMv)
	}
	d.setRows([]row{
		{"Name", d.info.Name},
		{"Version", d.info.Version},
		{"Address", d.info.Address},
		{"Uptime", d.info.Uptime.Truncate(time.Minute).String()},
		{"Battery", bat},
	})
}

// RefreshStats is the subset of engine counters shown on the display page.
type RefreshStats struct {
	Full          int
	Partial       int
	SinceFull     int
	LastFull      time.Time
	DroppedEvents int
}

// DisplaySettings shows refresh counters. CONFIRM on the first row asks
// for a full refresh.
type DisplaySettings struct {
	rowList
	stats       func() RefreshStats
	requestFull bool
}

func NewDisplaySettings(area geom.Rect, stats func() RefreshStats) *DisplaySettings {
	d := &DisplaySettings{rowList: newRowList(nav.PageDisplay, "Display", area), stats: stats}
	d.drawItem = d.draw
	d.refresh()
	return d
}

// OnEnter samples the counters; they are not live while the page is shown
// since every repaint would change them again.
func (d *DisplaySettings) OnEnter() {
	d.refresh()
	d.MarkAll()
}

func (d *DisplaySettings) refresh() {
	var s RefreshStats
	if d.stats != nil {
		s = d.stats()
	}
	last := "never"
	if !s.LastFull.IsZero() {
		last = s.LastFull.Format("15:04:05")
	}
	d.setRows([]row{
		{"Full refresh now", "A"},
		{"Full refreshes", fmt.Sprint(s.Full)},
		{"Partial refreshes", fmt.Sprint(s.Partial)},
		{"Partials since full", fmt.Sprint(s.SinceFull)},
		{"Last full", last},
		{"Dropped events", fmt.Sprint(s.DroppedEvents)},
	})
}

func (d *DisplaySettings) HandleEvent(ev nav.Event) bool {
	if d.Base.HandleEvent(ev) {
		return true
	}
	if ev == nav.Confirm && d.sel.Index() == 0 {
		d.requestFull = true
		return true
	}
	return false
}

func (d *DisplaySettings) TakeFullRefreshRequest() bool {
	r := d.requestFull
	d.requestFull = false
	return r
}

// ControllerSettings shows the controller link and input tuning.
type ControllerSettings struct {
	rowList
	state   controller.State
	tunings []row
}

func NewControllerSettings(area geom.Rect, debounce, triggerInterval time.Duration) *ControllerSettings {
	s := &ControllerSettings{
		rowList: newRowList(nav.PageController, "Controller", area),
		state:   controller.Disconnected,
		tunings: []row{
			{"Navigation repeat", debounce.String()},
			{"Trigger interval", triggerInterval.String()},
		},
	}
	s.drawItem = s.draw
	s.refresh()
	return s
}

func (s *ControllerSettings) SetState(st controller.State) {
	s.state = st
	s.refresh()
}

func (s *ControllerSettings) refresh() {
	s.setRows(append([]row{{"Connection", s.state.String()}}, s.tunings...))
}

// ErrorScreen is shown after a display hardware fault. It has no
// selection and ignores every event.
type ErrorScreen struct {
	Base
	err error
}

func NewErrorScreen(area geom.Rect) *ErrorScreen {
	e := &ErrorScreen{}
	e.Base = newBase(nav.PageError, "Display fault", area, nil)
	e.drawItem = e.draw
	return e
}

func (e *ErrorScreen) SetError(err error) {
	e.err = err
	e.MarkAll()
}

func (e *ErrorScreen) HandleEvent(nav.Event) bool {
	return false
}

func (e *ErrorScreen) draw(c *compositor.Compositor, _ int, r geom.Rect) {
	c.Text(r.X+Padding, r.Y+Padding, "Display unavailable", epd.FontTitle, epd.Black)
	if e.err != nil {
		c.Text(r.X+Padding, r.Y+Padding+2*ListRowHeight, e.err.Error(), epd.FontBody, epd.Black)
	}
	c.Text(r.X+Padding, r.Y+Padding+3*ListRowHeight, "Restart the hub to retry.", epd.FontBody, epd.Black)
}
