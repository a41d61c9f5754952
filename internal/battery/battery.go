// Package battery reads the fuel gauge shown in the status bar and on the
// device page.
package battery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"hubpanel/internal/config"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
)

// ErrUnavailable is returned when no gauge can be reached on this platform.
var ErrUnavailable = errors.New("battery: i2c reader unavailable on this platform")

// Reader abstracts how we obtain battery information.
type Reader interface {
	Read(ctx context.Context) (model.Battery, error)
}

// PiSugar3 register map.
const (
	regControl  = 0x02
	regVoltHigh = 0x22
	regVoltLow  = 0x23
	regPercent  = 0x2A

	// Bit 7 of the control register is set while external power is present.
	ctrlExternalPower = 0x80
)

// MockReader simulates a slowly draining cell. When it reaches the floor it
// "plugs in" and charges back up.
type MockReader struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	percent  int
	charging bool
}

// NewMockReader starts the simulated cell at a random level between 40 and
// 100 percent. seed 0 uses the clock.
func NewMockReader(seed int64) *MockReader {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	return &MockReader{rnd: rnd, percent: 40 + rnd.Intn(61)}
}

func (m *MockReader) Read(_ context.Context) (model.Battery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.charging && m.percent >= 100:
		m.charging = false
	case !m.charging && m.percent <= 20:
		m.charging = true
	}
	if m.charging {
		m.percent += 1 + m.rnd.Intn(3)
	} else if m.rnd.Intn(2) == 0 {
		m.percent--
	}
	if m.percent > 100 {
		m.percent = 100
	}

	return model.Battery{
		Present:   true,
		Percent:   m.percent,
		VoltageMv: 3300 + m.percent*9,
		Charging:  m.charging,
	}, nil
}

// I2CReader talks to a PiSugar3 style gauge:
//   - 0x22 (high), 0x23 (low): battery voltage in millivolts
//   - 0x2A: battery percentage (0-100)
//   - 0x02 bit 7: external power present
type I2CReader struct {
	busName string
	addr    uint16
}

// NewI2CReader only stores the configuration. The bus is opened on every
// Read so a gauge that appears later is picked up.
//
//   - busName: periph.io bus name ("" for the default, /dev/i2c-1 on a Pi)
//   - addr:    7-bit I2C address of the gauge
func NewI2CReader(busName string, addr uint16) *I2CReader {
	return &I2CReader{busName: busName, addr: addr}
}

func (r *I2CReader) Read(_ context.Context) (model.Battery, error) {
	if runtime.GOOS != "linux" {
		return model.Battery{}, ErrUnavailable
	}
	if _, err := host.Init(); err != nil {
		return model.Battery{}, fmt.Errorf("battery: host init: %w", err)
	}

	bus, err := i2creg.Open(r.busName)
	if err != nil {
		return model.Battery{}, fmt.Errorf("battery: open %q: %w", r.busName, err)
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: r.addr}
	readReg := func(reg byte) (byte, error) {
		buf := []byte{0}
		if err := dev.Tx([]byte{reg}, buf); err != nil {
			return 0, fmt.Errorf("battery: read 0x%02x: %w", reg, err)
		}
		return buf[0], nil
	}

	var regs [4]byte
	for i, reg := range []byte{regVoltHigh, regVoltLow, regPercent, regControl} {
		if regs[i], err = readReg(reg); err != nil {
			return model.Battery{}, err
		}
	}
	return decode(regs[0], regs[1], regs[2], regs[3]), nil
}

func decode(high, low, pct, ctrl byte) model.Battery {
	if pct > 100 {
		pct = 100
	}
	return model.Battery{
		Present:   true,
		Percent:   int(pct),
		VoltageMv: int(uint16(high)<<8 | uint16(low)),
		Charging:  ctrl&ctrlExternalPower != 0,
	}
}

// Open returns the Reader for cfg. On linux the gauge is detected once and
// the mock reader is used when detection fails; elsewhere the mock reader
// is used directly. A disabled gauge returns nil.
func Open(ctx context.Context, cfg config.BatteryConfig) Reader {
	if !cfg.Enabled {
		return nil
	}
	if runtime.GOOS != "linux" {
		return NewMockReader(0)
	}

	r := NewI2CReader(cfg.Bus, cfg.Addr)
	if _, err := r.Read(ctx); err != nil {
		appLog.Warn("battery: gauge not detected, using simulated cell", "bus", cfg.Bus, "addr", fmt.Sprintf("0x%02x", cfg.Addr), "err", err)
		return NewMockReader(0)
	}
	return r
}
