// Package collab hosts the collaborators that feed the panel: scheduled
// jobs that post snapshots to the engine and the router that executes the
// commands screens emit.
package collab

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"hubpanel/internal/agenda"
	"hubpanel/internal/battery"
	"hubpanel/internal/engine"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
	"hubpanel/internal/screen"
)

// Poster is the engine side a collaborator talks to.
type Poster interface {
	Post(u engine.Update) error
}

// cronLogger routes cron's own messages through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}

// Scheduler runs collaborator jobs on cron schedules. Every job also runs
// once when the scheduler starts so the panel is populated at boot.
type Scheduler struct {
	poster Poster
	cron   *cron.Cron

	mu   sync.Mutex
	jobs map[string]func(ctx context.Context)
	ctx  context.Context
}

func NewScheduler(p Poster, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	l := cronLogger{}
	return &Scheduler{
		poster: p,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		jobs: map[string]func(context.Context){},
		ctx:  context.Background(),
	}
}

// Add registers fn under name with a standard 5-field spec or a descriptor
// such as "@every 1m".
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context)) error {
	if _, err := s.cron.AddFunc(spec, func() { fn(s.context()) }); err != nil {
		return fmt.Errorf("collab: schedule %s %q: %w", name, spec, err)
	}
	s.mu.Lock()
	s.jobs[name] = fn
	s.mu.Unlock()
	appLog.Info("collab: job scheduled", "job", name, "spec", spec)
	return nil
}

// Trigger runs a registered job now, outside its schedule.
func (s *Scheduler) Trigger(name string) bool {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if ok {
		go fn(s.context())
	}
	return ok
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Start runs every job once and starts the cron loop. Jobs see ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	jobs := make([]func(context.Context), 0, len(s.jobs))
	for _, fn := range s.jobs {
		jobs = append(jobs, fn)
	}
	s.mu.Unlock()

	for _, fn := range jobs {
		go fn(ctx)
	}
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) post(job string, u engine.Update) {
	if err := s.poster.Post(u); err != nil {
		appLog.Warn("collab: update dropped", "job", job, "err", err)
	}
}

// AddBattery polls the gauge.
func (s *Scheduler) AddBattery(spec string, r battery.Reader) error {
	return s.Add("battery", spec, func(ctx context.Context) {
		b, err := r.Read(ctx)
		if err != nil {
			appLog.Error("collab: battery read failed", err)
			b = model.Battery{}
		}
		s.post("battery", func(set *screen.Set) { set.SetBattery(b) })
	})
}

// AddAgenda refetches the ICS feeds.
func (s *Scheduler) AddAgenda(spec string, svc *agenda.Service) error {
	return s.Add("agenda", spec, func(ctx context.Context) {
		items, err := svc.Refresh(ctx)
		if err != nil {
			appLog.Warn("collab: agenda refresh incomplete", "err", err)
		}
		s.post("agenda", func(set *screen.Set) { set.SetAgenda(items) })
	})
}

// AddClock keeps the status bar clock moving while the panel is idle.
func (s *Scheduler) AddClock(now func() time.Time) error {
	return s.Add("clock", "* * * * *", func(context.Context) {
		t := now()
		s.post("clock", func(set *screen.Set) { set.SetClock(t) })
	})
}

// AddDevice refreshes the device page.
func (s *Scheduler) AddDevice(spec string, info func() model.DeviceInfo) error {
	return s.Add("device", spec, func(context.Context) {
		di := info()
		s.post("device", func(set *screen.Set) { set.SetDeviceInfo(di) })
	})
}

// AddDemo drifts the simulated home.
func (s *Scheduler) AddDemo(spec string, d *Demo) error {
	return s.Add("demo", spec, func(context.Context) {
		d.Tick()
		s.post("demo", d.Snapshot())
	})
}
