// Package app composes the panel: backend, engine, collaborators and the
// diagnostics endpoint. Both commands run it.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"hubpanel/internal/agenda"
	"hubpanel/internal/battery"
	"hubpanel/internal/collab"
	"hubpanel/internal/config"
	"hubpanel/internal/controller"
	"hubpanel/internal/diag"
	"hubpanel/internal/engine"
	"hubpanel/internal/epd"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
)

// Options are the parts that differ between the device and the simulator.
type Options struct {
	Version string
	// Pad is the controller link; nil means none is attached.
	Pad controller.Driver
	// Panel overrides the backend named in the config.
	Panel epd.Panel
	// OnFrame receives every refreshed frame.
	OnFrame func(img *image.Gray)
	// DumpPath, when set, receives a PNG of every refreshed frame.
	DumpPath string
}

// Run blocks until ctx is done or a loop fails. The panel is powered off
// before it returns.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	panel := opts.Panel
	if panel == nil {
		var err error
		if panel, err = epd.Open(cfg.Display); err != nil {
			return err
		}
	}
	pad := opts.Pad
	if pad == nil {
		pad = controller.NewSim()
	}

	drv := epd.NewDriver(panel, cfg.Display.Stabilize)

	var srv *diag.Server
	hooks := []func(*image.Gray){}
	if opts.OnFrame != nil {
		hooks = append(hooks, opts.OnFrame)
	}
	if opts.DumpPath != "" {
		hooks = append(hooks, dumper(opts.DumpPath))
	}

	eng := engine.New(drv, pad, cfg, engine.Options{
		OnFrame: func(img *image.Gray) {
			if srv != nil {
				srv.SetPreview(img)
			}
			for _, h := range hooks {
				h(img)
			}
		},
	})
	if cfg.Diag.Listen != "" {
		srv = diag.NewServer(cfg.Diag, eng)
	}

	sched, router, err := collaborators(ctx, cfg, eng, opts.Version)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(eng.RunIO(gctx)) })
	g.Go(func() error {
		// A hardware fault keeps the process alive on the error screen.
		err := eng.RunDisplay(gctx)
		if errors.Is(err, epd.ErrHardwareFault) {
			appLog.Error("app: display faulted", err)
			return nil
		}
		return err
	})
	g.Go(func() error { return ignoreCanceled(router.Run(gctx, eng.Commands())) })
	if srv != nil {
		g.Go(func() error { return srv.Run(gctx) })
	}

	sched.Start(gctx)
	defer sched.Stop()

	appLog.Info("app: running", "backend", cfg.Display.Backend, "size", fmt.Sprintf("%dx%d", cfg.Display.Width, cfg.Display.Height), "demo", cfg.Demo)
	return g.Wait()
}

func collaborators(ctx context.Context, cfg *config.Config, eng *engine.Engine, version string) (*collab.Scheduler, *collab.Router, error) {
	loc, err := time.LoadLocation(cfg.Agenda.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("app: timezone: %w", err)
	}
	sched := collab.NewScheduler(eng, loc)
	router := collab.NewRouter()

	if r := battery.Open(ctx, cfg.Battery); r != nil {
		if err := sched.AddBattery(cfg.Battery.Schedule, r); err != nil {
			return nil, nil, err
		}
	}

	if err := sched.AddClock(time.Now); err != nil {
		return nil, nil, err
	}

	started := time.Now()
	host, _ := os.Hostname()
	info := func() model.DeviceInfo {
		return model.DeviceInfo{
			Name:    host,
			Version: version,
			Address: cfg.Diag.Listen,
			Uptime:  time.Since(started).Truncate(time.Second),
		}
	}
	if err := sched.AddDevice("@every 1m", info); err != nil {
		return nil, nil, err
	}

	svc, err := agenda.NewService(cfg.Agenda)
	if err != nil {
		return nil, nil, err
	}
	if svc.Enabled() {
		if err := sched.AddAgenda(cfg.Agenda.Schedule, svc); err != nil {
			return nil, nil, err
		}
		router.Handle(model.CmdRefreshAgenda, collab.TriggerHandler(sched, "agenda"))
	}

	if cfg.Demo {
		demo := collab.NewDemo(0)
		if err := sched.AddDemo("@every 30s", demo); err != nil {
			return nil, nil, err
		}
		h := collab.DemoHandler(demo, eng)
		for _, k := range []model.CommandKind{
			model.CmdToggleRoom, model.CmdSetBrightness, model.CmdSetSetpoint,
			model.CmdMarkRead, model.CmdQuickAction,
		} {
			router.Handle(k, h)
		}
	}
	return sched, router, nil
}

// dumper writes each frame to path through a temp file.
func dumper(path string) func(*image.Gray) {
	return func(img *image.Gray) {
		dir := filepath.Dir(path)
		tmp, err := os.CreateTemp(dir, ".preview-*.png")
		if err != nil {
			appLog.Error("app: dump failed", err, "path", path)
			return
		}
		defer os.Remove(tmp.Name())
		if err := png.Encode(tmp, img); err != nil {
			tmp.Close()
			appLog.Error("app: dump encode failed", err)
			return
		}
		if err := tmp.Close(); err != nil {
			appLog.Error("app: dump close failed", err, "path", path)
			return
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			appLog.Error("app: dump rename failed", err, "path", path)
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
