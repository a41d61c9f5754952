package screen

import (
	"errors"
	"testing"

	"hubpanel/internal/compositor"
	"hubpanel/internal/controller"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
)

type recordSink struct {
	cmds []model.Command
}

func (r *recordSink) Send(cmd model.Command) { r.cmds = append(r.cmds, cmd) }

func newComp(t *testing.T) *compositor.Compositor {
	t.Helper()
	d := epd.NewDriver(epd.NewSimPanel(400, 300), 0)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	return compositor.New(d)
}

func rooms() []model.Room {
	return []model.Room{
		{ID: "kitchen", Name: "Kitchen", On: true, Brightness: 60},
		{ID: "hall", Name: "Hall"},
		{ID: "bed", Name: "Bedroom", Brightness: 10},
	}
}

func TestSetterMarksOnlyChangedItems(t *testing.T) {
	c := newComp(t)
	l := NewLights(geom.R(0, 30, 400, 240), &recordSink{})
	l.SetRooms(rooms())
	l.Render(c, true)
	if !l.Dirty().Empty() {
		t.Fatal("screen dirty after render")
	}

	next := rooms()
	next[1].On = true
	l.SetRooms(next)
	if got, want := l.Dirty(), l.Selector().ItemRect(1); got != want {
		t.Errorf("dirty = %v, want tile 1 %v", got, want)
	}

	next = append(next, model.Room{ID: "bath", Name: "Bath"})
	l.SetRooms(next)
	if got := l.Dirty(); got != l.Area() {
		t.Errorf("count change dirty = %v, want whole body", got)
	}
}

func TestSetterDoesNotRender(t *testing.T) {
	c := newComp(t)
	l := NewLights(geom.R(0, 30, 400, 240), &recordSink{})
	c.BeginFrame()
	l.SetRooms(rooms())
	if !c.Dirty().Empty() {
		t.Error("setter drew into the compositor")
	}
}

func TestPartialRenderTouchesOnlyDirtyTiles(t *testing.T) {
	c := newComp(t)
	l := NewLights(geom.R(0, 30, 400, 240), &recordSink{})
	l.SetRooms(rooms())
	l.Render(c, true)

	next := rooms()
	next[2].Brightness = 90
	l.SetRooms(next)

	c.BeginFrame()
	l.Render(c, false)
	if got, want := c.Dirty(), l.Selector().ItemRect(2); !want.ContainsRect(got) || got.Empty() {
		t.Errorf("partial render touched %v, want within %v", got, want)
	}
}

func TestLightsConfirmAndTriggers(t *testing.T) {
	sink := &recordSink{}
	l := NewLights(geom.R(0, 0, 300, 300), sink)
	l.SetRooms(rooms())

	if !l.HandleEvent(nav.SelectRight) {
		t.Fatal("select right not handled")
	}
	if !l.HandleEvent(nav.Confirm) {
		t.Fatal("confirm not handled")
	}
	if !l.Rooms()[1].On {
		t.Error("hall not toggled on")
	}

	l.HandleTrigger(false, 30)
	l.HandleTrigger(true, 5)
	if b := l.Rooms()[1].Brightness; b != 25 {
		t.Errorf("brightness = %d, want 25", b)
	}

	want := []model.Command{
		{Kind: model.CmdToggleRoom, Target: "hall", Value: 1},
		{Kind: model.CmdSetBrightness, Target: "hall", Value: 30},
		{Kind: model.CmdSetBrightness, Target: "hall", Value: 25},
	}
	if len(sink.cmds) != len(want) {
		t.Fatalf("commands = %+v", sink.cmds)
	}
	for i := range want {
		if sink.cmds[i] != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, sink.cmds[i], want[i])
		}
	}

	if l.HandleEvent(nav.Back) {
		t.Error("BACK should be left to the engine")
	}
}

func TestClimateSetpointClamped(t *testing.T) {
	sink := &recordSink{}
	s := NewClimate(geom.R(0, 0, 300, 200), sink)
	s.SetZones([]model.ClimateZone{{ID: "lr", Name: "Living", Current: 20, Setpoint: 29}})

	s.HandleTrigger(false, 30)
	if sp := s.zones[0].Setpoint; sp != maxSetpoint {
		t.Errorf("setpoint = %v, want %v", sp, maxSetpoint)
	}
	if s.HandleTrigger(false, 10) {
		t.Error("trigger at the limit reported a change")
	}
	if len(sink.cmds) != 1 {
		t.Errorf("commands = %+v", sink.cmds)
	}
}

func TestMessagesConfirmMarksRead(t *testing.T) {
	sink := &recordSink{}
	m := NewMessages(geom.R(0, 0, 300, 200), sink)
	m.SetMessages([]model.Message{{ID: "1", From: "Ana", Subject: "Hi"}, {ID: "2", From: "Bo", Subject: "Yo"}})

	m.HandleEvent(nav.SelectDown)
	m.HandleEvent(nav.Confirm)
	if m.Unread() != 1 || !m.msgs[1].Read {
		t.Errorf("unread = %d", m.Unread())
	}
	if m.HandleEvent(nav.Confirm) {
		t.Error("confirming a read message should do nothing")
	}
	if len(sink.cmds) != 1 || sink.cmds[0].Target != "2" {
		t.Errorf("commands = %+v", sink.cmds)
	}
}

func TestHomeConfirmNavigates(t *testing.T) {
	var went []nav.PageID
	h := NewHome(geom.R(0, 0, 300, 200), func(p nav.PageID) { went = append(went, p) })

	h.HandleEvent(nav.SelectRight)
	h.HandleEvent(nav.Confirm)
	if len(went) != 1 || went[0] != nav.PageClimate {
		t.Errorf("navigated to %v", went)
	}
}

func TestDisplaySettingsRequestsFullRefresh(t *testing.T) {
	calls := 0
	d := NewDisplaySettings(geom.R(0, 0, 300, 200), func() RefreshStats {
		calls++
		return RefreshStats{Full: 3}
	})
	d.OnEnter()
	if calls != 2 {
		t.Errorf("stats sampled %d times, want 2", calls)
	}

	if !d.HandleEvent(nav.Confirm) || !d.TakeFullRefreshRequest() {
		t.Fatal("confirm on first row did not request a full refresh")
	}
	if d.TakeFullRefreshRequest() {
		t.Error("request delivered twice")
	}

	d.HandleEvent(nav.SelectDown)
	d.HandleEvent(nav.Confirm)
	if d.TakeFullRefreshRequest() {
		t.Error("other rows should not request a refresh")
	}
}

func TestStatusBarDirtyOnlyOnChange(t *testing.T) {
	c := newComp(t)
	s := NewStatusBar(Zones(c.Bounds()))
	s.Render(c)

	s.SetController(controller.Disconnected)
	s.SetTitle("")
	if s.Dirty() {
		t.Error("unchanged setters marked the bar dirty")
	}
	s.SetController(controller.Active)
	if !s.Dirty() {
		t.Error("controller change not marked")
	}
}

func TestErrorScreenIgnoresEvents(t *testing.T) {
	c := newComp(t)
	e := NewErrorScreen(geom.R(0, 24, 400, 256))
	e.SetError(errors.New("epd: hardware fault: spi"))

	for _, ev := range []nav.Event{nav.Confirm, nav.SelectDown, nav.Back} {
		if e.HandleEvent(ev) {
			t.Errorf("%v handled", ev)
		}
	}
	if !e.SelectionRect().Empty() {
		t.Error("error screen has a selection")
	}
	c.BeginFrame()
	e.Render(c, true)
	if c.Dirty().Empty() {
		t.Error("error screen drew nothing")
	}
}

func TestSetRoutesByID(t *testing.T) {
	s := NewSet(geom.R(0, 0, 800, 480), Options{})
	for _, id := range append(append([]nav.PageID{}, nav.MainPages...), nav.SettingsPages...) {
		scr := s.Get(id)
		if scr == nil || scr.ID() != id {
			t.Errorf("Get(%v) = %v", id, scr)
		}
	}

	s.SetRooms(rooms())
	if s.Home.tiles[0].detail != "1 of 3 on" {
		t.Errorf("home lights tile = %q", s.Home.tiles[0].detail)
	}
}

func TestLightsReachesRoomsPastTheFirstPage(t *testing.T) {
	sink := &recordSink{}
	l := NewLights(geom.R(0, 0, 300, 300), sink)
	var rs []model.Room
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "attic"} {
		rs = append(rs, model.Room{ID: id, Name: id})
	}
	l.SetRooms(rs)
	l.Render(newComp(t), true)

	for i := 0; i < 3; i++ {
		l.HandleEvent(nav.SelectDown)
	}
	if got := l.Dirty(); got != l.Area() {
		t.Errorf("page flip dirty = %v, want whole body", got)
	}
	if !l.HandleEvent(nav.Confirm) {
		t.Fatal("confirm not handled")
	}
	if len(sink.cmds) != 1 || sink.cmds[0].Target != "attic" {
		t.Errorf("commands = %+v, want toggle of attic", sink.cmds)
	}
}
