//go:build tinygo && (badger2040 || badger2040_w)

package epd

import (
	"image/color"
	"machine"

	"hubpanel/internal/config"
	"hubpanel/internal/convert"
	"hubpanel/internal/geom"

	"tinygo.org/x/drivers/uc8151"
)

// uc8151Panel is the Badger 2040 panel. The uc8151 driver keeps its own
// buffer, so every refresh copies the affected part of our plane into it.
type uc8151Panel struct {
	dev *uc8151.Device
	w   int
	h   int
}

func openUC8151(cfg config.DisplayConfig) (Panel, error) {
	return &uc8151Panel{w: cfg.Width, h: cfg.Height}, nil
}

func (p *uc8151Panel) Size() (int, int) {
	return p.w, p.h
}

func (p *uc8151Panel) Init() error {
	en := machine.ENABLE_3V3
	en.Configure(machine.PinConfig{Mode: machine.PinOutput})
	en.High()

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 12000000,
		SCK:       machine.EPD_SCK_PIN,
		SDO:       machine.EPD_SDO_PIN,
	}); err != nil {
		return err
	}

	dev := uc8151.New(machine.SPI0, machine.EPD_CS_PIN, machine.EPD_DC_PIN, machine.EPD_RESET_PIN, machine.EPD_BUSY_PIN)
	dev.Configure(uc8151.Config{
		Speed:       uc8151.MEDIUM,
		FlickerFree: true,
		Rotation:    uc8151.ROTATION_270,
		Blocking:    true,
	})
	p.dev = &dev

	x, y := dev.Size()
	p.w, p.h = int(x), int(y)
	return nil
}

func (p *uc8151Panel) PowerOn() error {
	p.dev.PowerOn()
	return nil
}

func (p *uc8151Panel) PowerOff() error {
	p.dev.PowerOff()
	return nil
}

func (p *uc8151Panel) Full(plane []byte) error {
	p.copyRect(plane, geom.R(0, 0, p.w, p.h))
	return p.dev.Display()
}

func (p *uc8151Panel) Partial(plane []byte, r geom.Rect) error {
	p.copyRect(plane, r)
	return p.dev.DisplayRect(int16(r.X), int16(r.Y), int16(r.W), int16(r.H))
}

func (p *uc8151Panel) copyRect(plane []byte, r geom.Rect) {
	stride := convert.Stride(p.w)
	ink := color.RGBA{A: 0xFF, R: 1}
	paper := color.RGBA{}
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			// The driver sets the ink bit for any non-zero RGB.
			if plane[y*stride+(x>>3)]&byte(0x80>>(x&7)) == 0 {
				p.dev.SetPixel(int16(x), int16(y), ink)
			} else {
				p.dev.SetPixel(int16(x), int16(y), paper)
			}
		}
	}
}
