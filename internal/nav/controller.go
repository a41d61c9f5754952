package nav

import (
	"time"

	"hubpanel/internal/input"
	appLog "hubpanel/internal/log"
)

// PageChangeFunc is notified whenever the visible page changes.
type PageChangeFunc func(stack Stack, page PageID)

// Trigger is a trigger action passed through to the active screen.
type Trigger struct {
	Left      bool
	Intensity int
}

// Controller owns navigation state. All methods must be called from the
// display goroutine.
type Controller struct {
	stack Stack
	// page holds the ordinal index per stack.
	page [2]int

	batch    *Batcher
	events   []Event
	triggers []Trigger
	// held is the rest of a batch stopped at a page-level event while
	// in-screen events were still undelivered.
	held []input.Action

	onChange []PageChangeFunc
}

// NewController starts on the first main page.
func NewController(window time.Duration) *Controller {
	return &Controller{
		stack: StackMain,
		batch: NewBatcher(window),
	}
}

// SetClock replaces the batcher clock, for tests.
func (c *Controller) SetClock(now func() time.Time) {
	c.batch.now = now
}

// OnPageChange registers a page change callback.
func (c *Controller) OnPageChange(fn PageChangeFunc) {
	c.onChange = append(c.onChange, fn)
}

func (c *Controller) Stack() Stack {
	return c.stack
}

// Current is the visible page.
func (c *Controller) Current() PageID {
	return Pages(c.stack)[c.page[c.stack]]
}

// HandleInput queues a into the batcher.
func (c *Controller) HandleInput(a input.Action) {
	if a.Event == input.None {
		return
	}
	c.batch.Add(a)
}

// Pending reports how many actions wait in the batcher or behind a page
// change.
func (c *Controller) Pending() int {
	return c.batch.Len() + len(c.held)
}

// Deadline is when the batch in progress becomes ready; zero when empty.
func (c *Controller) Deadline() time.Time {
	return c.batch.Deadline()
}

// Update processes the batch once its window has elapsed. It reports
// whether any event was processed.
//
// A page or stack change never overtakes an in-screen event: processing
// stops in front of it while events or triggers are still queued, and the
// rest of the batch resumes on the next Update or Flush after the screen
// has polled them.
func (c *Controller) Update() bool {
	return c.process(c.batch.Drain())
}

// Flush processes every queued action without waiting for the window.
func (c *Controller) Flush() bool {
	return c.process(c.batch.Flush())
}

func (c *Controller) process(actions []input.Action) bool {
	if len(c.held) > 0 {
		actions = append(c.held, actions...)
		c.held = nil
	}
	processed := false
	for i, a := range actions {
		if a.Event.IsTrigger() {
			c.triggers = append(c.triggers, Trigger{Left: a.Event == input.TriggerLeft, Intensity: a.Intensity})
			processed = true
			continue
		}
		ev := c.Map(a.Event)
		if ev == None {
			continue
		}
		if ev.IsPageLevel() && (len(c.events) > 0 || len(c.triggers) > 0) {
			c.held = actions[i:]
			return processed
		}
		processed = true
		switch ev {
		case PagePrev:
			c.cycle(-1)
		case PageNext:
			c.cycle(1)
		case OpenSettings:
			c.switchTo(StackSettings, true)
		case CloseSettings:
			c.switchTo(StackMain, false)
		case GoHome:
			c.switchTo(StackMain, true)
		default:
			c.events = append(c.events, ev)
		}
	}
	return processed
}

// Map translates a raw event into a navigation event in the current
// context.
func (c *Controller) Map(e input.Event) Event {
	switch e {
	case input.NavUp:
		return SelectUp
	case input.NavDown:
		return SelectDown
	case input.NavLeft:
		return SelectLeft
	case input.NavRight:
		return SelectRight
	case input.ButtonA:
		return Confirm
	case input.ButtonB:
		if c.stack == StackSettings {
			return CloseSettings
		}
		return Back
	case input.ButtonX:
		return QuickAction
	case input.ButtonY:
		return ForceRefresh
	case input.ButtonMenu:
		return OpenSettings
	case input.ButtonView, input.ButtonXbox:
		return GoHome
	case input.BumperLeft:
		return PagePrev
	case input.BumperRight:
		return PageNext
	default:
		return None
	}
}

func (c *Controller) cycle(dir int) {
	n := len(Pages(c.stack))
	c.page[c.stack] = (c.page[c.stack] + dir + n) % n
	c.notify()
}

// switchTo changes stack, optionally entering it at its first page, and
// notifies if the visible page changed.
func (c *Controller) switchTo(s Stack, first bool) {
	before := c.Current()
	c.stack = s
	if first {
		c.page[s] = 0
	}
	if c.Current() != before {
		c.notify()
	}
}

// NavigateTo jumps straight to id and always notifies.
func (c *Controller) NavigateTo(id PageID) {
	s, idx, ok := StackOf(id)
	if !ok {
		appLog.Warn("nav: navigate to unknown page", "page", id)
		return
	}
	c.stack = s
	c.page[s] = idx
	c.notify()
}

func (c *Controller) notify() {
	cur := c.Current()
	appLog.Debug("nav: page change", "stack", c.stack, "page", cur)
	for _, fn := range c.onChange {
		fn(c.stack, cur)
	}
}

// PollNavEvent returns the next queued in-screen event, or None. Each event
// is delivered once.
func (c *Controller) PollNavEvent() Event {
	if len(c.events) == 0 {
		return None
	}
	ev := c.events[0]
	c.events = c.events[1:]
	return ev
}

// PollTrigger returns the next queued trigger.
func (c *Controller) PollTrigger() (Trigger, bool) {
	if len(c.triggers) == 0 {
		return Trigger{}, false
	}
	t := c.triggers[0]
	c.triggers = c.triggers[1:]
	return t, true
}
