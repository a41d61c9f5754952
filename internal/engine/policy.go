package engine

import "time"

// Decision is how much of the panel a display cycle repaints.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionSelectionOnly
	DecisionPartialRegion
	DecisionFull
)

func (d Decision) String() string {
	switch d {
	case DecisionSelectionOnly:
		return "SELECTION_ONLY"
	case DecisionPartialRegion:
		return "PARTIAL_REGION"
	case DecisionFull:
		return "FULL"
	default:
		return "NONE"
	}
}

// Classification is the net effect of one batch.
type Classification struct {
	// First is set for the very first render after boot.
	First bool
	// Transition means the visible page changed.
	Transition bool
	// Forced is an explicit full refresh request.
	Forced bool
	// Selection means the highlight moved on the same page.
	Selection bool
	// Status means the status bar changed.
	Status bool
	// Tiles means some items of the visible page must be repainted.
	Tiles bool
}

// Policy holds the anti-ghosting thresholds.
type Policy struct {
	MaxPartials int
	MaxInterval time.Duration
}

// Decide maps a classification and the anti-ghosting counters to a refresh
// decision. Any decision other than None is upgraded to Full once either
// threshold is reached.
func Decide(c Classification, partials int, sinceFull time.Duration, p Policy) Decision {
	var d Decision
	switch {
	case c.First, c.Transition, c.Forced:
		return DecisionFull
	case c.Tiles, c.Status:
		d = DecisionPartialRegion
	case c.Selection:
		d = DecisionSelectionOnly
	default:
		return DecisionNone
	}
	if partials >= p.MaxPartials || sinceFull >= p.MaxInterval {
		return DecisionFull
	}
	return d
}
