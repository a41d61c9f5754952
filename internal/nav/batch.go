package nav

import (
	"time"

	"hubpanel/internal/input"
)

// Batcher collects actions for a fixed window measured from the first
// action of an idle cycle.
type Batcher struct {
	window  time.Duration
	now     func() time.Time
	pending []input.Action
	first   time.Time
}

func NewBatcher(window time.Duration) *Batcher {
	return &Batcher{window: window, now: time.Now}
}

// Add queues a action. It never blocks.
func (b *Batcher) Add(a input.Action) {
	if len(b.pending) == 0 {
		b.first = b.now()
	}
	b.pending = append(b.pending, a)
}

func (b *Batcher) Len() int {
	return len(b.pending)
}

// Ready reports whether the window of the current batch has elapsed.
func (b *Batcher) Ready() bool {
	return len(b.pending) > 0 && b.now().Sub(b.first) >= b.window
}

// Deadline is when the current batch becomes ready; zero when empty.
func (b *Batcher) Deadline() time.Time {
	if len(b.pending) == 0 {
		return time.Time{}
	}
	return b.first.Add(b.window)
}

// Drain returns the batch in arrival order once it is ready, else nil.
func (b *Batcher) Drain() []input.Action {
	if !b.Ready() {
		return nil
	}
	return b.Flush()
}

// Flush returns everything queued regardless of the window.
func (b *Batcher) Flush() []input.Action {
	out := b.pending
	b.pending = nil
	b.first = time.Time{}
	return out
}
