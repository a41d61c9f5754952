package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "hubpanel.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Refresh.MaxPartials != 10 {
		t.Errorf("max_partials = %d, want default 10", cfg.Refresh.MaxPartials)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := st.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestLoadPartialFileIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubpanel.yaml")
	body := `
log_level: debug
display:
  backend: plasma
  width: 296
  height: 128
refresh:
  max_partials: 4
  batch_window: 25ms
input:
  trigger_threshold: 5000
demo: false
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Display.Backend != "sim" {
		t.Errorf("unknown backend should fall back to sim, got %q", cfg.Display.Backend)
	}
	if cfg.Display.Width != 296 || cfg.Display.Height != 128 {
		t.Errorf("size = %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if cfg.Refresh.MaxPartials != 4 {
		t.Errorf("max_partials = %d", cfg.Refresh.MaxPartials)
	}
	if cfg.Refresh.BatchWindow != 25*time.Millisecond {
		t.Errorf("batch_window = %v", cfg.Refresh.BatchWindow)
	}
	if cfg.Refresh.MaxInterval != 10*time.Minute {
		t.Errorf("max_interval default not applied: %v", cfg.Refresh.MaxInterval)
	}
	if cfg.Input.TriggerThreshold != 100 {
		t.Errorf("out of range trigger threshold kept: %d", cfg.Input.TriggerThreshold)
	}
	if cfg.Demo {
		t.Errorf("demo: false was overridden")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubpanel.yaml")

	in := DefaultConfig()
	in.Agenda.Sources = []ICSConfig{{ID: "home", Name: "Home", URL: "https://example.com/home.ics"}}
	in.Input.NavDebounce = 150 * time.Millisecond
	if err := in.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Agenda.Sources) != 1 || out.Agenda.Sources[0].ID != "home" {
		t.Errorf("sources = %+v", out.Agenda.Sources)
	}
	if out.Input.NavDebounce != 150*time.Millisecond {
		t.Errorf("nav_debounce = %v", out.Input.NavDebounce)
	}
}

func TestEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") should fail")
	}
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("Save(\"\") should fail")
	}
}
