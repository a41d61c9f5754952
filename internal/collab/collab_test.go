package collab

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hubpanel/internal/battery"
	"hubpanel/internal/engine"
	"hubpanel/internal/geom"
	"hubpanel/internal/model"
	"hubpanel/internal/screen"
)

// recorder applies posted updates to a real screen set.
type recorder struct {
	mu    sync.Mutex
	set   *screen.Set
	posts int
	full  bool
}

func newRecorder() *recorder {
	return &recorder{set: screen.NewSet(geom.R(0, 0, 400, 300), screen.Options{})}
}

func (r *recorder) Post(u engine.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return engine.ErrQueueFull
	}
	u(r.set)
	r.posts++
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

type fixedGauge struct{ b model.Battery }

func (g fixedGauge) Read(context.Context) (model.Battery, error) { return g.b, nil }

type brokenGauge struct{}

func (brokenGauge) Read(context.Context) (model.Battery, error) {
	return model.Battery{}, errors.New("i2c: nack")
}

var _ battery.Reader = fixedGauge{}

func TestSchedulerRunsJobsAtStart(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec, time.UTC)
	if err := s.AddBattery("@every 1h", fixedGauge{model.Battery{Present: true, Percent: 77}}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDemo("@every 1h", NewDemo(1)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	waitFor(t, func() bool { return rec.count() >= 2 })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.set.Status.Dirty() {
		t.Error("battery post did not reach the status bar")
	}
	if n := rec.set.Lights.Selector().Count(); n != 7 {
		t.Errorf("demo rooms = %d", n)
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(newRecorder(), nil)
	if err := s.Add("bad", "every tuesday", func(context.Context) {}); err == nil {
		t.Error("bad spec accepted")
	}
	if s.Trigger("bad") {
		t.Error("unregistered job triggered")
	}
}

func TestBatteryFailurePostsAbsentGauge(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(rec, time.UTC)
	if err := s.AddBattery("@every 1h", brokenGauge{}); err != nil {
		t.Fatal(err)
	}
	if !s.Trigger("battery") {
		t.Fatal("battery job not registered")
	}
	waitFor(t, func() bool { return rec.count() == 1 })
}

func TestDroppedPostIsNotFatal(t *testing.T) {
	rec := newRecorder()
	rec.full = true
	s := NewScheduler(rec, time.UTC)
	s.post("clock", func(*screen.Set) {})
	if rec.count() != 0 {
		t.Error("post counted while queue full")
	}
}

func TestDemoApply(t *testing.T) {
	d := NewDemo(7)

	cases := []struct {
		cmd  model.Command
		want bool
	}{
		{model.Command{Kind: model.CmdToggleRoom, Target: "kitchen", Value: 1}, true},
		{model.Command{Kind: model.CmdToggleRoom, Target: "garage", Value: 1}, false},
		{model.Command{Kind: model.CmdSetBrightness, Target: "hall", Value: 140}, true},
		{model.Command{Kind: model.CmdSetSetpoint, Target: "up", Value: 22.5}, true},
		{model.Command{Kind: model.CmdMarkRead, Target: "m1"}, true},
		{model.Command{Kind: model.CmdRefreshAgenda}, false},
	}
	for _, tc := range cases {
		if got := d.Apply(tc.cmd); got != tc.want {
			t.Errorf("Apply(%+v) = %v, want %v", tc.cmd, got, tc.want)
		}
	}

	if r := d.room("kitchen"); !r.On {
		t.Error("kitchen not switched on")
	}
	if r := d.room("hall"); r.Brightness != 100 || !r.On {
		t.Errorf("hall = %+v, want clamped to 100 and on", *r)
	}
	if d.zones[1].Setpoint != 22.5 {
		t.Errorf("setpoint = %v", d.zones[1].Setpoint)
	}
	if !d.messages[0].Read {
		t.Error("message not marked read")
	}

	d.Apply(model.Command{Kind: model.CmdQuickAction})
	for _, r := range d.rooms {
		if r.On {
			t.Errorf("%s still on after all-off", r.ID)
		}
	}
}

func TestDemoTickKeepsZonesInRange(t *testing.T) {
	d := NewDemo(3)
	for i := 0; i < 500; i++ {
		d.Tick()
	}
	for _, z := range d.zones {
		if z.Current < 5 || z.Current > 35 {
			t.Errorf("%s drifted to %v", z.ID, z.Current)
		}
	}
}

func TestRouterDispatch(t *testing.T) {
	rec := newRecorder()
	d := NewDemo(1)
	r := NewRouter()
	r.Handle(model.CmdToggleRoom, DemoHandler(d, rec))

	var refreshed sync.WaitGroup
	refreshed.Add(1)
	s := NewScheduler(rec, time.UTC)
	if err := s.Add("agenda", "@every 1h", func(context.Context) { refreshed.Done() }); err != nil {
		t.Fatal(err)
	}
	r.Handle(model.CmdRefreshAgenda, TriggerHandler(s, "agenda"))

	cmds := make(chan model.Command, 4)
	cmds <- model.Command{Kind: model.CmdToggleRoom, Target: "porch", Value: 1}
	cmds <- model.Command{Kind: model.CmdMarkRead, Target: "m2"}
	cmds <- model.Command{Kind: model.CmdRefreshAgenda}
	close(cmds)

	if err := r.Run(context.Background(), cmds); err != nil {
		t.Fatalf("Run: %v", err)
	}
	refreshed.Wait()

	if rec.count() != 1 {
		t.Errorf("posts = %d, want 1", rec.count())
	}
	if !d.room("porch").On {
		t.Error("porch not toggled")
	}
}
