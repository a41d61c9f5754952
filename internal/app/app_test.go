package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hubpanel/internal/config"
	"hubpanel/internal/epd"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Display.Width, cfg.Display.Height = 320, 240
	cfg.Display.Stabilize = 0
	cfg.Battery.Enabled = false
	cfg.Refresh.BatchWindow = 5 * time.Millisecond
	return cfg
}

func TestRunRendersAndPowersOff(t *testing.T) {
	cfg := testConfig()
	panel := epd.NewSimPanel(cfg.Display.Width, cfg.Display.Height)
	dump := filepath.Join(t.TempDir(), "preview.png")

	frames := make(chan *image.Gray, 64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, Options{
			Version:  "test",
			Panel:    panel,
			DumpPath: dump,
			OnFrame: func(img *image.Gray) {
				select {
				case frames <- img:
				default:
				}
			},
		})
	}()

	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame rendered")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}

	if on, _ := panel.Powered(); on {
		t.Error("panel left powered after shutdown")
	}

	f, err := os.Open(dump)
	if err != nil {
		t.Fatalf("dump not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("dump bounds = %v", b)
	}
}

func TestRunHardwareFaultStaysUp(t *testing.T) {
	cfg := testConfig()
	panel := epd.NewSimPanel(cfg.Display.Width, cfg.Display.Height)
	panel.InitErr = errors.New("busy pin stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := Run(ctx, cfg, Options{Panel: panel}); err != nil {
		t.Fatalf("Run with faulted panel = %v, want nil after shutdown", err)
	}
	if n := len(panel.Calls()); n != 0 {
		t.Errorf("faulted panel refreshed %d times", n)
	}
}

func TestRunBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Agenda.Timezone = "Nowhere/Special"
	err := Run(context.Background(), cfg, Options{Panel: epd.NewSimPanel(320, 240)})
	if err == nil {
		t.Error("bad timezone accepted")
	}
}

func TestDumperReplacesPreviewAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.png")
	dump := dumper(path)

	for _, w := range []int{8, 16} {
		dump(image.NewGray(image.Rect(0, 0, w, 4)))
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if got := img.Bounds().Dx(); got != w {
			t.Errorf("preview width = %d, want %d", got, w)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir holds %d files, want only the preview", len(entries))
	}
}

func TestDumperMissingDirLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "preview.png")
	dumper(path)(image.NewGray(image.Rect(0, 0, 4, 4)))
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stat = %v, want not exist", err)
	}
}
