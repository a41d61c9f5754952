package screen

import (
	"fmt"

	"hubpanel/internal/compositor"
	"hubpanel/internal/geom"
	"hubpanel/internal/mathx"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
)

// diffItems marks only the items that changed; a count change repaints the
// whole body.
func diffItems[T comparable](b *Base, old, next []T) {
	if len(old) != len(next) {
		b.setCount(len(next))
		return
	}
	for i := range next {
		if old[i] != next[i] {
			b.MarkItem(i)
		}
	}
}

type homeTile struct {
	page   nav.PageID
	detail string
}

// Home is a grid of summary tiles; CONFIRM opens the tile's page.
type Home struct {
	Base
	tiles    []homeTile
	navigate func(nav.PageID)
}

func NewHome(area geom.Rect, navigate func(nav.PageID)) *Home {
	h := &Home{navigate: navigate}
	h.Base = newBase(nav.PageHome, "Home", area, NewGrid(area, 3, 2, TileSpacing))
	for _, p := range []nav.PageID{nav.PageLights, nav.PageClimate, nav.PageSensors, nav.PageMessages, nav.PageAgenda, nav.PageDevice} {
		h.tiles = append(h.tiles, homeTile{page: p})
	}
	h.setCount(len(h.tiles))
	h.drawItem = h.draw
	return h
}

// SetSummary updates the detail line of the tile for page.
func (h *Home) SetSummary(page nav.PageID, detail string) {
	for i := range h.tiles {
		if h.tiles[i].page == page && h.tiles[i].detail != detail {
			h.tiles[i].detail = detail
			h.MarkItem(i)
		}
	}
}

func (h *Home) HandleEvent(ev nav.Event) bool {
	if h.Base.HandleEvent(ev) {
		return true
	}
	if ev == nav.Confirm && h.navigate != nil && h.sel.Count() > 0 {
		h.navigate(h.tiles[h.sel.Index()].page)
		return true
	}
	return false
}

func (h *Home) draw(c *compositor.Compositor, i int, r geom.Rect) {
	t := h.tiles[i]
	drawTile(c, r, t.page.String(), t.detail)
}

// Lights is a grid of rooms. CONFIRM toggles the selected room, triggers
// dim or brighten it by the trigger intensity.
type Lights struct {
	Base
	rooms []model.Room
	sink  CommandSink
}

func NewLights(area geom.Rect, sink CommandSink) *Lights {
	l := &Lights{sink: sink}
	l.Base = newBase(nav.PageLights, "Lights", area, NewGrid(area, 3, 3, TileSpacing))
	l.emptyText = "No rooms reported"
	l.drawItem = l.draw
	return l
}

func (l *Lights) SetRooms(rooms []model.Room) {
	next := append([]model.Room(nil), rooms...)
	diffItems(&l.Base, l.rooms, next)
	l.rooms = next
}

func (l *Lights) Rooms() []model.Room {
	return l.rooms
}

func (l *Lights) selected() (int, bool) {
	i := l.sel.Index()
	return i, l.sel.Count() > 0 && i < len(l.rooms)
}

func (l *Lights) HandleEvent(ev nav.Event) bool {
	if l.Base.HandleEvent(ev) {
		return true
	}
	i, ok := l.selected()
	if ev != nav.Confirm || !ok {
		return false
	}
	r := &l.rooms[i]
	r.On = !r.On
	l.MarkItem(i)
	v := 0.0
	if r.On {
		v = 1
	}
	l.sink.Send(model.Command{Kind: model.CmdToggleRoom, Target: r.ID, Value: v})
	return true
}

func (l *Lights) HandleTrigger(left bool, intensity int) bool {
	i, ok := l.selected()
	if !ok {
		return false
	}
	r := &l.rooms[i]
	delta := intensity
	if left {
		delta = -intensity
	}
	b := mathx.Clamp(r.Brightness+delta, 0, 100)
	if b == r.Brightness {
		return false
	}
	r.Brightness = b
	r.On = b > 0
	l.MarkItem(i)
	l.sink.Send(model.Command{Kind: model.CmdSetBrightness, Target: r.ID, Value: float64(b)})
	return true
}

func (l *Lights) draw(c *compositor.Compositor, i int, r geom.Rect) {
	room := l.rooms[i]
	detail := "off"
	if room.On {
		detail = fmt.Sprintf("on %d%%", room.Brightness)
	}
	drawTile(c, r, room.Name, detail)
}

const (
	minSetpoint = 5.0
	maxSetpoint = 30.0
)

// Climate lists thermostat zones; triggers lower or raise the setpoint by
// a tenth of a degree per intensity step.
type Climate struct {
	Base
	zones []model.ClimateZone
	sink  CommandSink
}

func NewClimate(area geom.Rect, sink CommandSink) *Climate {
	s := &Climate{sink: sink}
	s.Base = newBase(nav.PageClimate, "Climate", area, NewList(area, ListRowHeight))
	s.emptyText = "No climate zones"
	s.drawItem = s.draw
	return s
}

func (s *Climate) SetZones(zones []model.ClimateZone) {
	next := append([]model.ClimateZone(nil), zones...)
	diffItems(&s.Base, s.zones, next)
	s.zones = next
}

func (s *Climate) HandleTrigger(left bool, intensity int) bool {
	i := s.sel.Index()
	if s.sel.Count() == 0 || i >= len(s.zones) {
		return false
	}
	z := &s.zones[i]
	step := float64(intensity) / 10
	if left {
		step = -step
	}
	sp := mathx.Clamp(z.Setpoint+step, minSetpoint, maxSetpoint)
	if sp == z.Setpoint {
		return false
	}
	z.Setpoint = sp
	s.MarkItem(i)
	s.sink.Send(model.Command{Kind: model.CmdSetSetpoint, Target: z.ID, Value: sp})
	return true
}

func (s *Climate) draw(c *compositor.Compositor, i int, r geom.Rect) {
	z := s.zones[i]
	drawRow(c, r, z.Name, fmt.Sprintf("%.1f° -> %.1f° %s", z.Current, z.Setpoint, z.Mode))
}

// Sensors lists the latest sensor readings.
type Sensors struct {
	Base
	readings []model.SensorReading
}

func NewSensors(area geom.Rect) *Sensors {
	s := &Sensors{}
	s.Base = newBase(nav.PageSensors, "Sensors", area, NewList(area, ListRowHeight))
	s.emptyText = "No sensors"
	s.drawItem = s.draw
	return s
}

func (s *Sensors) SetReadings(readings []model.SensorReading) {
	next := append([]model.SensorReading(nil), readings...)
	diffItems(&s.Base, s.readings, next)
	s.readings = next
}

func (s *Sensors) draw(c *compositor.Compositor, i int, r geom.Rect) {
	rd := s.readings[i]
	drawRow(c, r, rd.Name, fmt.Sprintf("%.1f %s", rd.Value, rd.Unit))
}

// Messages lists inbox entries; CONFIRM marks the selected one read.
type Messages struct {
	Base
	msgs []model.Message
	sink CommandSink
}

func NewMessages(area geom.Rect, sink CommandSink) *Messages {
	m := &Messages{sink: sink}
	m.Base = newBase(nav.PageMessages, "Messages", area, NewList(area, ListRowHeight))
	m.emptyText = "Inbox empty"
	m.drawItem = m.draw
	return m
}

func (m *Messages) SetMessages(msgs []model.Message) {
	next := append([]model.Message(nil), msgs...)
	diffItems(&m.Base, m.msgs, next)
	m.msgs = next
}

// Unread counts unread messages.
func (m *Messages) Unread() int {
	n := 0
	for _, msg := range m.msgs {
		if !msg.Read {
			n++
		}
	}
	return n
}

func (m *Messages) HandleEvent(ev nav.Event) bool {
	if m.Base.HandleEvent(ev) {
		return true
	}
	i := m.sel.Index()
	if ev != nav.Confirm || m.sel.Count() == 0 || i >= len(m.msgs) || m.msgs[i].Read {
		return false
	}
	m.msgs[i].Read = true
	m.MarkItem(i)
	m.sink.Send(model.Command{Kind: model.CmdMarkRead, Target: m.msgs[i].ID})
	return true
}

func (m *Messages) draw(c *compositor.Compositor, i int, r geom.Rect) {
	msg := m.msgs[i]
	label := msg.From + ": " + msg.Subject
	if !msg.Read {
		label = "* " + label
	}
	drawRow(c, r, label, msg.At.Format("15:04"))
}

// Agenda lists upcoming calendar occurrences. QUICK_ACTION asks for a
// refetch of the feeds.
type Agenda struct {
	Base
	items []model.AgendaItem
	sink  CommandSink
}

func NewAgenda(area geom.Rect, sink CommandSink) *Agenda {
	a := &Agenda{sink: sink}
	a.Base = newBase(nav.PageAgenda, "Agenda", area, NewList(area, ListRowHeight))
	a.emptyText = "No upcoming events"
	a.drawItem = a.draw
	return a
}

func (a *Agenda) SetItems(items []model.AgendaItem) {
	next := append([]model.AgendaItem(nil), items...)
	diffItems(&a.Base, a.items, next)
	a.items = next
}

func (a *Agenda) HandleEvent(ev nav.Event) bool {
	if a.Base.HandleEvent(ev) {
		return true
	}
	if ev == nav.QuickAction {
		a.sink.Send(model.Command{Kind: model.CmdRefreshAgenda})
		return true
	}
	return false
}

func (a *Agenda) draw(c *compositor.Compositor, i int, r geom.Rect) {
	it := a.items[i]
	when := it.Start.Format("Mon 15:04")
	if it.AllDay {
		when = it.Start.Format("Mon") + " all day"
	}
	drawRow(c, r, it.Summary, when)
}
