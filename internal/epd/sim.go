package epd

import (
	"image"
	"sync"
	"time"

	"hubpanel/internal/convert"
	"hubpanel/internal/geom"
)

// RefreshKind tags a recorded SimPanel call.
type RefreshKind string

const (
	KindFull    RefreshKind = "FULL"
	KindPartial RefreshKind = "PARTIAL"
)

// SimCall is one refresh seen by a SimPanel.
type SimCall struct {
	Kind RefreshKind
	Rect geom.Rect
	At   time.Time
}

// SimPanel is an in-memory backend. It keeps a copy of what the glass would
// show, updated only for the regions actually refreshed, and records every
// call for assertions.
type SimPanel struct {
	FullDelay    time.Duration
	PartialDelay time.Duration
	// InitErr makes Init fail, simulating a dead bus.
	InitErr error

	w, h int

	mu      sync.Mutex
	glass   []byte
	calls   []SimCall
	powered bool
	powerOn int
	// OnRefresh, if set, is called after every refresh with the glass image.
	OnRefresh func(img *image.Gray)
}

func NewSimPanel(w, h int) *SimPanel {
	return &SimPanel{w: w, h: h, glass: convert.NewPlane(w, h)}
}

func (p *SimPanel) Size() (int, int) {
	return p.w, p.h
}

func (p *SimPanel) Init() error {
	return p.InitErr
}

func (p *SimPanel) PowerOn() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.powered = true
	p.powerOn++
	return nil
}

func (p *SimPanel) PowerOff() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.powered = false
	return nil
}

func (p *SimPanel) Full(plane []byte) error {
	if p.FullDelay > 0 {
		time.Sleep(p.FullDelay)
	}
	p.mu.Lock()
	copy(p.glass, plane)
	p.calls = append(p.calls, SimCall{Kind: KindFull, Rect: geom.R(0, 0, p.w, p.h), At: time.Now()})
	img := p.glassLocked()
	cb := p.OnRefresh
	p.mu.Unlock()
	if cb != nil {
		cb(img)
	}
	return nil
}

func (p *SimPanel) Partial(plane []byte, r geom.Rect) error {
	if p.PartialDelay > 0 {
		time.Sleep(p.PartialDelay)
	}
	p.mu.Lock()
	stride := convert.Stride(p.w)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			i := y*stride + (x >> 3)
			mask := byte(0x80 >> (x & 7))
			p.glass[i] = p.glass[i]&^mask | plane[i]&mask
		}
	}
	p.calls = append(p.calls, SimCall{Kind: KindPartial, Rect: r, At: time.Now()})
	img := p.glassLocked()
	cb := p.OnRefresh
	p.mu.Unlock()
	if cb != nil {
		cb(img)
	}
	return nil
}

// Calls returns a copy of the recorded refreshes.
func (p *SimPanel) Calls() []SimCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SimCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// Powered reports the simulated rail state and how often PowerOn was called.
func (p *SimPanel) Powered() (on bool, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.powered, p.powerOn
}

// Glass renders what is currently visible.
func (p *SimPanel) Glass() *image.Gray {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.glassLocked()
}

func (p *SimPanel) glassLocked() *image.Gray {
	return convert.ToGray(p.glass, p.w, p.h)
}
