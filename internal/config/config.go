package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SPIConfig describes the wiring of a SPI-attached e-paper panel.
type SPIConfig struct {
	// Port is the periph.io SPI port name ("" selects the default spidev).
	Port  string `yaml:"port"`
	MaxHz int64  `yaml:"max_hz"`
	// BCM pin numbers.
	DCPin   int `yaml:"dc_pin"`
	RSTPin  int `yaml:"rst_pin"`
	BusyPin int `yaml:"busy_pin"`
	CSPin   int `yaml:"cs_pin"`
}

// DisplayConfig selects the panel backend and its geometry.
type DisplayConfig struct {
	// Backend is one of "sim", "spi" (linux/arm) or "uc8151" (tinygo).
	Backend string `yaml:"backend"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`

	// Stabilize is how long PowerOn waits for the panel rails to settle.
	Stabilize time.Duration `yaml:"stabilize"`

	// SimFull / SimPartial emulate refresh latency for the sim backend.
	SimFull    time.Duration `yaml:"sim_full"`
	SimPartial time.Duration `yaml:"sim_partial"`

	SPI SPIConfig `yaml:"spi"`
}

// RefreshConfig holds the anti-ghosting thresholds and the batching window.
type RefreshConfig struct {
	// MaxPartials forces a full refresh after this many partial refreshes.
	MaxPartials int `yaml:"max_partials"`
	// MaxInterval forces a full refresh once this long has passed since the
	// last one.
	MaxInterval time.Duration `yaml:"max_interval"`
	// BatchWindow is how long the display loop coalesces events after the
	// first event of an idle cycle.
	BatchWindow time.Duration `yaml:"batch_window"`
	// Maintenance is the idle period after which the display loop checks
	// whether the time threshold has expired with partials outstanding.
	Maintenance time.Duration `yaml:"maintenance"`
}

// InputConfig tunes controller sampling.
type InputConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	NavDebounce      time.Duration `yaml:"nav_debounce"`
	TriggerInterval  time.Duration `yaml:"trigger_interval"`
	StickThreshold   int           `yaml:"stick_threshold"`
	TriggerThreshold int           `yaml:"trigger_threshold"`
	QueueSize        int           `yaml:"queue_size"`
}

// BatteryConfig configures the I2C fuel gauge collaborator.
type BatteryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Bus      string `yaml:"bus"`
	Addr     uint16 `yaml:"addr"`
	Schedule string `yaml:"schedule"`
}

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id"`
	// Name is a human-friendly label shown on the agenda screen.
	Name string `yaml:"name"`
}

// AgendaConfig configures the calendar collaborator.
type AgendaConfig struct {
	Sources []ICSConfig `yaml:"sources"`
	// Timezone is the IANA zone occurrences are displayed in.
	Timezone    string `yaml:"timezone"`
	HorizonDays int    `yaml:"horizon_days"`
	CacheDir    string `yaml:"cache_dir"`
	// Schedule is a cron spec for refetching the feeds.
	Schedule string `yaml:"schedule"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the diagnostics endpoint.
type BasicAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DiagConfig configures the local diagnostics endpoint.
type DiagConfig struct {
	// Listen is the HTTP listen address; empty disables the endpoint.
	Listen    string           `yaml:"listen"`
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Display DisplayConfig `yaml:"display"`
	Refresh RefreshConfig `yaml:"refresh"`
	Input   InputConfig   `yaml:"input"`

	Battery BatteryConfig `yaml:"battery"`
	Agenda  AgendaConfig  `yaml:"agenda"`

	// Demo populates the lighting/climate/sensor/message screens with
	// generated data when no real collaborator is attached.
	Demo bool `yaml:"demo"`

	Diag DiagConfig `yaml:"diag"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Display: DisplayConfig{
			Backend:    "sim",
			Width:      800,
			Height:     480,
			Stabilize:  100 * time.Millisecond,
			SimFull:    0,
			SimPartial: 0,
			SPI: SPIConfig{
				MaxHz:   4_000_000,
				DCPin:   25,
				RSTPin:  17,
				BusyPin: 24,
				CSPin:   8,
			},
		},
		Refresh: RefreshConfig{
			MaxPartials: 10,
			MaxInterval: 10 * time.Minute,
			BatchWindow: 40 * time.Millisecond,
			Maintenance: 30 * time.Second,
		},
		Input: InputConfig{
			PollInterval:     10 * time.Millisecond,
			NavDebounce:      200 * time.Millisecond,
			TriggerInterval:  120 * time.Millisecond,
			StickThreshold:   16000,
			TriggerThreshold: 100,
			QueueSize:        16,
		},
		Battery: BatteryConfig{
			Enabled:  true,
			Addr:     0x57,
			Schedule: "@every 1m",
		},
		Agenda: AgendaConfig{
			Sources:     []ICSConfig{},
			Timezone:    "UTC",
			HorizonDays: 7,
			CacheDir:    "/var/lib/hubpanel/ics-cache",
			Schedule:    "*/15 * * * *",
		},
		Demo: true,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()

	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}

	switch c.Display.Backend {
	case "sim", "spi", "uc8151":
	default:
		c.Display.Backend = d.Display.Backend
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		c.Display.Width = d.Display.Width
		c.Display.Height = d.Display.Height
	}
	if c.Display.Stabilize < 0 {
		c.Display.Stabilize = d.Display.Stabilize
	}
	if c.Display.SPI.MaxHz <= 0 {
		c.Display.SPI.MaxHz = d.Display.SPI.MaxHz
	}

	if c.Refresh.MaxPartials <= 0 {
		c.Refresh.MaxPartials = d.Refresh.MaxPartials
	}
	if c.Refresh.MaxInterval <= 0 {
		c.Refresh.MaxInterval = d.Refresh.MaxInterval
	}
	if c.Refresh.BatchWindow <= 0 {
		c.Refresh.BatchWindow = d.Refresh.BatchWindow
	}
	if c.Refresh.Maintenance <= 0 {
		c.Refresh.Maintenance = d.Refresh.Maintenance
	}

	if c.Input.PollInterval <= 0 {
		c.Input.PollInterval = d.Input.PollInterval
	}
	if c.Input.NavDebounce <= 0 {
		c.Input.NavDebounce = d.Input.NavDebounce
	}
	if c.Input.TriggerInterval <= 0 {
		c.Input.TriggerInterval = d.Input.TriggerInterval
	}
	if c.Input.StickThreshold <= 0 || c.Input.StickThreshold > 32767 {
		c.Input.StickThreshold = d.Input.StickThreshold
	}
	// The threshold must leave room below the 1023 maximum for the
	// intensity mapping.
	if c.Input.TriggerThreshold <= 0 || c.Input.TriggerThreshold >= 1023 {
		c.Input.TriggerThreshold = d.Input.TriggerThreshold
	}
	if c.Input.QueueSize <= 0 {
		c.Input.QueueSize = d.Input.QueueSize
	}

	if c.Battery.Addr == 0 {
		c.Battery.Addr = d.Battery.Addr
	}
	if c.Battery.Schedule == "" {
		c.Battery.Schedule = d.Battery.Schedule
	}

	if c.Agenda.Sources == nil {
		c.Agenda.Sources = []ICSConfig{}
	}
	if c.Agenda.Timezone == "" {
		c.Agenda.Timezone = d.Agenda.Timezone
	}
	if c.Agenda.HorizonDays <= 0 {
		c.Agenda.HorizonDays = d.Agenda.HorizonDays
	}
	if c.Agenda.CacheDir == "" {
		c.Agenda.CacheDir = d.Agenda.CacheDir
	}
	if c.Agenda.Schedule == "" {
		c.Agenda.Schedule = d.Agenda.Schedule
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created as needed) and returned.
//   - If the file exists, it is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Start from defaults so that booleans absent from the file keep their
	// default value.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".hubpanel-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
