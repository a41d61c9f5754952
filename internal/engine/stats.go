package engine

import (
	"time"

	"hubpanel/internal/epd"
	"hubpanel/internal/screen"
)

const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateFaulted  = "faulted"
)

// Stats is a snapshot of the engine counters, safe to read from any
// goroutine.
type Stats struct {
	State string `json:"state"`
	Fault string `json:"fault,omitempty"`
	Page  string `json:"page"`
	Stack string `json:"stack"`

	FullRenders       int       `json:"full_renders"`
	PartialRenders    int       `json:"partial_renders"`
	SelectionRenders  int       `json:"selection_renders"`
	PartialsSinceFull int       `json:"partials_since_full"`
	LastFull          time.Time `json:"last_full"`
	LastDecision      string    `json:"last_decision"`
	LastInput         time.Time `json:"last_input"`
	DroppedActions    int       `json:"dropped_actions"`
	DroppedUpdates    int       `json:"dropped_updates"`
	DroppedCommands   int       `json:"dropped_commands"`
	Driver            epd.Stats `json:"driver"`
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	s := e.stats
	e.mu.Unlock()
	s.Driver = e.drv.Stats()
	return s
}

func (e *Engine) setState(state string) {
	e.mu.Lock()
	e.stats.State = state
	e.mu.Unlock()
}

// record runs on the display goroutine after a refresh.
func (e *Engine) record(d Decision, scr screen.Screen) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch d {
	case DecisionFull:
		e.stats.FullRenders++
	case DecisionPartialRegion:
		e.stats.PartialRenders++
	case DecisionSelectionOnly:
		e.stats.SelectionRenders++
	}
	e.stats.PartialsSinceFull = e.partials
	e.stats.LastFull = e.lastFull
	e.stats.LastDecision = d.String()
	e.stats.Page = scr.ID().String()
	e.stats.Stack = e.nav.Stack().String()
}

// refreshStats feeds the display settings page.
func (e *Engine) refreshStats() screen.RefreshStats {
	s := e.Stats()
	return screen.RefreshStats{
		Full:          s.FullRenders,
		Partial:       s.PartialRenders + s.SelectionRenders,
		SinceFull:     s.PartialsSinceFull,
		LastFull:      s.LastFull,
		DroppedEvents: s.DroppedActions,
	}
}
