//go:build linux && arm && !tinygo

package epd

import (
	"fmt"
	"time"

	"hubpanel/internal/config"
	"hubpanel/internal/convert"
	"hubpanel/internal/geom"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// UC8179 command set (Waveshare 7.5" V2 class panels).
const (
	cmdPanelSetting     = 0x00
	cmdPowerSetting     = 0x01
	cmdPowerOff         = 0x02
	cmdPowerOn          = 0x04
	cmdBoosterSoftStart = 0x06
	cmdDeepSleep        = 0x07
	cmdDataOld          = 0x10
	cmdDisplayRefresh   = 0x12
	cmdDataNew          = 0x13
	cmdDualSPI          = 0x15
	cmdVCOMInterval     = 0x50
	cmdTCONSetting      = 0x60
	cmdResolution       = 0x61
	cmdGetStatus        = 0x71
	cmdPartialWindow    = 0x90
	cmdPartialIn        = 0x91
	cmdPartialOut       = 0x92
)

// spiPanel drives a single-controller UC8179 panel over periph.io SPI/GPIO.
type spiPanel struct {
	cfg config.SPIConfig
	w   int
	h   int

	port spi.PortCloser
	conn spi.Conn

	cs   gpio.PinOut
	dc   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	// old holds what the controller believes is on the glass, needed as
	// the "old" plane for partial waveforms.
	old []byte
}

func openSPI(cfg config.DisplayConfig) (Panel, error) {
	return &spiPanel{cfg: cfg.SPI, w: cfg.Width, h: cfg.Height}, nil
}

func (p *spiPanel) Size() (int, int) {
	return p.w, p.h
}

// Init opens the bus, claims the pins and runs the panel init sequence.
func (p *spiPanel) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("epd: periph host init failed: %w", err)
	}

	port, err := spireg.Open(p.cfg.Port)
	if err != nil {
		return fmt.Errorf("epd: failed to open SPI port: %w", err)
	}
	conn, err := port.Connect(physic.Frequency(p.cfg.MaxHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("epd: failed to connect SPI: %w", err)
	}
	p.port = port
	p.conn = conn

	if p.cs, err = gpioOut(p.cfg.CSPin, gpio.High); err != nil {
		return err
	}
	if p.dc, err = gpioOut(p.cfg.DCPin, gpio.Low); err != nil {
		return err
	}
	if p.rst, err = gpioOut(p.cfg.RSTPin, gpio.High); err != nil {
		return err
	}
	if p.busy, err = gpioIn(p.cfg.BusyPin); err != nil {
		return err
	}

	p.reset()

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{cmdPowerSetting, []byte{0x07, 0x07, 0x3F, 0x3F}},
		{cmdBoosterSoftStart, []byte{0x17, 0x17, 0x28, 0x17}},
		{cmdPanelSetting, []byte{0x1F}},
		{cmdResolution, []byte{byte(p.w >> 8), byte(p.w), byte(p.h >> 8), byte(p.h)}},
		{cmdDualSPI, []byte{0x00}},
		{cmdVCOMInterval, []byte{0x10, 0x07}},
		{cmdTCONSetting, []byte{0x22}},
	}
	for _, s := range steps {
		if err := p.send(s.cmd, s.data...); err != nil {
			return fmt.Errorf("epd: init command 0x%02x: %w", s.cmd, err)
		}
	}

	p.old = convert.NewPlane(p.w, p.h)
	return nil
}

func (p *spiPanel) PowerOn() error {
	if err := p.send(cmdPowerOn); err != nil {
		return err
	}
	p.waitIdle()
	return nil
}

func (p *spiPanel) PowerOff() error {
	if err := p.send(cmdPowerOff); err != nil {
		return err
	}
	p.waitIdle()
	return p.send(cmdDeepSleep, 0xA5)
}

// Full writes both planes and triggers the full waveform.
func (p *spiPanel) Full(plane []byte) error {
	if err := p.send(cmdDataOld, p.old...); err != nil {
		return err
	}
	if err := p.send(cmdDataNew, plane...); err != nil {
		return err
	}
	if err := p.send(cmdDisplayRefresh); err != nil {
		return err
	}
	p.waitIdle()
	copy(p.old, plane)
	return nil
}

// Partial opens a partial window around r (X widened to byte boundaries)
// and refreshes only that window.
func (p *spiPanel) Partial(plane []byte, r geom.Rect) error {
	x0 := r.X &^ 7
	x1 := (r.X + r.W + 7) &^ 7
	y0, y1 := r.Y, r.Y+r.H

	if err := p.send(cmdVCOMInterval, 0xA9, 0x07); err != nil {
		return err
	}
	if err := p.send(cmdPartialIn); err != nil {
		return err
	}
	win := []byte{
		byte(x0 >> 8), byte(x0),
		byte((x1 - 1) >> 8), byte(x1 - 1),
		byte(y0 >> 8), byte(y0),
		byte((y1 - 1) >> 8), byte(y1 - 1),
		0x01,
	}
	if err := p.send(cmdPartialWindow, win...); err != nil {
		return err
	}

	stride := convert.Stride(p.w)
	window := make([]byte, 0, (x1-x0)/8*(y1-y0))
	for y := y0; y < y1; y++ {
		row := y * stride
		window = append(window, plane[row+x0/8:row+x1/8]...)
	}
	if err := p.send(cmdDataNew, window...); err != nil {
		return err
	}
	if err := p.send(cmdDisplayRefresh); err != nil {
		return err
	}
	p.waitIdle()
	if err := p.send(cmdPartialOut); err != nil {
		return err
	}

	for y := y0; y < y1; y++ {
		row := y * stride
		copy(p.old[row+x0/8:row+x1/8], plane[row+x0/8:row+x1/8])
	}
	return nil
}

func (p *spiPanel) reset() {
	digitalWrite(p.rst, true)
	delayMs(20)
	digitalWrite(p.rst, false)
	delayMs(2)
	digitalWrite(p.rst, true)
	delayMs(20)
}

// send writes a command byte followed by optional data bytes.
func (p *spiPanel) send(cmd byte, data ...byte) error {
	digitalWrite(p.dc, false)
	digitalWrite(p.cs, false)
	err := p.conn.Tx([]byte{cmd}, nil)
	digitalWrite(p.cs, true)
	if err != nil || len(data) == 0 {
		return err
	}

	digitalWrite(p.dc, true)
	digitalWrite(p.cs, false)
	defer digitalWrite(p.cs, true)
	// spidev caps a single transfer at 4096 bytes.
	for len(data) > 0 {
		n := min(len(data), 4096)
		if err := p.conn.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// waitIdle polls the status register until BUSY reads high (idle).
func (p *spiPanel) waitIdle() {
	for {
		_ = p.send(cmdGetStatus)
		if digitalRead(p.busy) {
			break
		}
		delayMs(5)
	}
}

func gpioOut(num int, initial gpio.Level) (gpio.PinOut, error) {
	name := fmt.Sprintf("GPIO%d", num)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("epd: gpio %s not found", name)
	}
	if err := pin.Out(initial); err != nil {
		return nil, fmt.Errorf("epd: gpio %s Out failed: %w", name, err)
	}
	return pin, nil
}

func gpioIn(num int) (gpio.PinIn, error) {
	name := fmt.Sprintf("GPIO%d", num)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("epd: gpio %s not found", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("epd: gpio %s In failed: %w", name, err)
	}
	return pin, nil
}

func digitalWrite(pin gpio.PinOut, value bool) {
	if value {
		_ = pin.Out(gpio.High)
	} else {
		_ = pin.Out(gpio.Low)
	}
}

func digitalRead(pin gpio.PinIn) bool {
	return pin.Read() == gpio.High
}

func delayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
