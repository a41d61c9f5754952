// Command hubpanel-sim runs the panel against the simulated backend in a
// desktop window. A gamepad drives input; without one the keyboard does.
package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"hubpanel/internal/app"
	"hubpanel/internal/config"
	"hubpanel/internal/controller/ebitenpad"
	"hubpanel/internal/epd"
	appLog "hubpanel/internal/log"
)

var errClosed = errors.New("hubpanel-sim: panel stopped")

type game struct {
	pad  *ebitenpad.Pad
	w, h int
	done <-chan struct{}

	mu    sync.Mutex
	frame *image.Gray
	dirty bool
	glass *ebiten.Image
	rgba  []byte
}

func (g *game) setFrame(img *image.Gray) {
	g.mu.Lock()
	g.frame = img
	g.dirty = true
	g.mu.Unlock()
}

func (g *game) Update() error {
	select {
	case <-g.done:
		return errClosed
	default:
	}
	g.pad.Sample()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	if g.dirty && g.frame != nil {
		for i, v := range g.frame.Pix {
			g.rgba[i*4], g.rgba[i*4+1], g.rgba[i*4+2], g.rgba[i*4+3] = v, v, v, 0xff
		}
		g.glass.WritePixels(g.rgba)
		g.dirty = false
	}
	g.mu.Unlock()
	screen.DrawImage(g.glass, nil)
}

func (g *game) Layout(int, int) (int, int) {
	return g.w, g.h
}

func main() {
	configPath := flag.String("config", "hubpanel-sim.yaml", "Path to config file")
	scale := flag.Int("scale", 2, "Window scale factor")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", *configPath)
		os.Exit(1)
	}
	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	conf.Display.Backend = "sim"

	w, h := conf.Display.Width, conf.Display.Height
	panel := epd.NewSimPanel(w, h)
	panel.FullDelay = conf.Display.SimFull
	panel.PartialDelay = conf.Display.SimPartial

	pad := ebitenpad.New()
	pad.Keyboard = true

	done := make(chan struct{})
	g := &game{
		pad:   pad,
		w:     w,
		h:     h,
		done:  done,
		glass: ebiten.NewImage(w, h),
		rgba:  make([]byte, w*h*4),
	}
	// The window shows what the glass shows, not the frame buffer.
	panel.OnRefresh = g.setFrame

	ctx, cancel := context.WithCancel(context.Background())
	var runErr error
	go func() {
		defer close(done)
		runErr = app.Run(ctx, conf, app.Options{Version: "sim", Pad: pad, Panel: panel})
	}()

	ebiten.SetWindowSize(w*(*scale), h*(*scale))
	ebiten.SetWindowTitle("hubpanel")
	ebiten.SetTPS(100)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errClosed) {
		appLog.Error("window failed", err)
	}
	cancel()
	<-done
	if runErr != nil {
		appLog.Error("hubpanel-sim stopped", runErr)
		os.Exit(1)
	}
}
