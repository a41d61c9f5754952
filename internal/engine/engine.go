// Package engine runs the two halves of the panel: an I/O loop that samples
// the controller and feeds a bounded queue, and a display loop that batches
// the queue, updates navigation and screens, and renders exactly one frame
// per batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"hubpanel/internal/compositor"
	"hubpanel/internal/config"
	"hubpanel/internal/controller"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
	"hubpanel/internal/input"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
	"hubpanel/internal/nav"
	"hubpanel/internal/screen"
)

// ErrQueueFull is returned when an event is dropped because the queue is
// full.
var ErrQueueFull = errors.New("engine: queue full")

// Update is a collaborator setter. It runs on the display goroutine between
// render passes.
type Update func(s *screen.Set)

// Options are the optional hooks of an Engine.
type Options struct {
	// OnFrame receives the framebuffer after every refresh.
	OnFrame func(img *image.Gray)
	// Now replaces time.Now for the anti-ghosting timer.
	Now func() time.Time
}

// Engine owns the queues and, on the display goroutine, every piece of UI
// state.
type Engine struct {
	drv     *epd.Driver
	comp    *compositor.Compositor
	pad     controller.Driver
	input   *input.Handler
	nav     *nav.Controller
	screens *screen.Set

	actions  chan input.Action
	updates  chan Update
	commands chan model.Command

	policy      Policy
	batchWindow time.Duration
	maintenance time.Duration
	poll        time.Duration
	opts        Options

	// Display goroutine state.
	first      bool
	transition bool
	forced     bool
	partials   int
	lastFull   time.Time

	mu    sync.Mutex
	stats Stats
}

// New wires an engine. Nothing runs until RunIO and RunDisplay are started.
func New(drv *epd.Driver, pad controller.Driver, cfg *config.Config, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		drv:  drv,
		comp: compositor.New(drv),
		pad:  pad,
		input: input.NewHandler(pad, input.Config{
			NavDebounce:      cfg.Input.NavDebounce,
			TriggerInterval:  cfg.Input.TriggerInterval,
			StickThreshold:   cfg.Input.StickThreshold,
			TriggerThreshold: cfg.Input.TriggerThreshold,
		}),
		nav:         nav.NewController(cfg.Refresh.BatchWindow),
		actions:     make(chan input.Action, cfg.Input.QueueSize),
		updates:     make(chan Update, cfg.Input.QueueSize),
		commands:    make(chan model.Command, cfg.Input.QueueSize),
		policy:      Policy{MaxPartials: cfg.Refresh.MaxPartials, MaxInterval: cfg.Refresh.MaxInterval},
		batchWindow: cfg.Refresh.BatchWindow,
		maintenance: cfg.Refresh.Maintenance,
		poll:        cfg.Input.PollInterval,
		opts:        opts,
		first:       true,
	}
	e.screens = screen.NewSet(drv.Bounds(), screen.Options{
		Sink:            screen.SinkFunc(e.sendCommand),
		Navigate:        e.nav.NavigateTo,
		Stats:           e.refreshStats,
		NavDebounce:     cfg.Input.NavDebounce,
		TriggerInterval: cfg.Input.TriggerInterval,
	})
	e.nav.OnPageChange(e.pageChanged)
	e.stats.State = StateStarting
	return e
}

// Submit queues an input action. When the queue is full the action is
// dropped, logged and ErrQueueFull returned.
func (e *Engine) Submit(a input.Action) error {
	select {
	case e.actions <- a:
		return nil
	default:
		e.mu.Lock()
		e.stats.DroppedActions++
		e.mu.Unlock()
		appLog.Warn("engine: action queue full, dropping event", "event", a.Event)
		return ErrQueueFull
	}
}

// Post queues a collaborator setter with the same drop-newest policy as
// Submit.
func (e *Engine) Post(u Update) error {
	select {
	case e.updates <- u:
		return nil
	default:
		e.mu.Lock()
		e.stats.DroppedUpdates++
		e.mu.Unlock()
		appLog.Warn("engine: update queue full, dropping update")
		return ErrQueueFull
	}
}

// Commands delivers commands produced by screens to the I/O side.
func (e *Engine) Commands() <-chan model.Command {
	return e.commands
}

func (e *Engine) sendCommand(cmd model.Command) {
	select {
	case e.commands <- cmd:
	default:
		e.mu.Lock()
		e.stats.DroppedCommands++
		e.mu.Unlock()
		appLog.Warn("engine: command queue full, dropping command", "kind", cmd.Kind, "target", cmd.Target)
	}
}

// RunIO polls the controller every poll interval and submits the resulting
// actions. It returns when ctx is done.
func (e *Engine) RunIO(ctx context.Context) error {
	t := time.NewTicker(e.poll)
	defer t.Stop()

	e.input.OnActivity(func(at time.Time) {
		e.mu.Lock()
		e.stats.LastInput = at
		e.mu.Unlock()
	})

	lastState := controller.State(-1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		if st := e.pad.State(); st != lastState {
			lastState = st
			_ = e.Post(func(s *screen.Set) { s.SetControllerState(st) })
		}
		if a := e.input.Poll(); !a.IsNone() {
			_ = e.Submit(a)
		}
	}
}

// batch holds the collaborator updates of one cycle. Input actions go
// straight into the navigation batcher, which keeps their window.
type batch struct {
	updates []Update
}

func (b *batch) post(u Update) { b.updates = append(b.updates, u) }

// RunDisplay initializes the panel, renders the first frame and then
// services batches until ctx is done. A panel init failure switches the
// engine to the terminal error state: the error screen is painted into the
// buffer only, queued work is drained and no refresh is ever attempted. The
// init error is returned once ctx is done.
func (e *Engine) RunDisplay(ctx context.Context) error {
	if err := e.drv.Init(); err != nil {
		appLog.Error("engine: display init failed", err)
		e.fault(err)
		e.drain(ctx)
		return err
	}
	defer func() {
		if err := e.drv.PowerOff(); err != nil {
			appLog.Error("engine: power off failed", err)
		}
	}()

	e.setState(StateRunning)
	e.cycle(batch{})

	maint := time.NewTimer(e.maintenance)
	defer maint.Stop()

	for {
		var b batch
		start := time.Now()
		select {
		case <-ctx.Done():
			return nil
		case a := <-e.actions:
			e.nav.HandleInput(a)
		case u := <-e.updates:
			b.post(u)
		case <-maint.C:
			e.maintain()
			maint.Reset(e.maintenance)
			continue
		}

		e.collect(ctx, &b, start)
		e.cycle(b)

		if !maint.Stop() {
			select {
			case <-maint.C:
			default:
			}
		}
		maint.Reset(e.maintenance)
	}
}

// collect keeps receiving until the batch window has elapsed. The window
// runs from the first queued action, or from start when the cycle began
// with an update.
func (e *Engine) collect(ctx context.Context, b *batch, start time.Time) {
	deadline := e.nav.Deadline()
	if deadline.IsZero() {
		deadline = start.Add(e.batchWindow)
	}
	window := time.NewTimer(time.Until(deadline))
	defer window.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-window.C:
			return
		case a := <-e.actions:
			e.nav.HandleInput(a)
		case u := <-e.updates:
			b.post(u)
		}
	}
}

func (e *Engine) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.actions:
		case <-e.updates:
		}
	}
}

func (e *Engine) current() screen.Screen {
	return e.screens.Get(e.nav.Current())
}

func (e *Engine) pageChanged(_ nav.Stack, page nav.PageID) {
	e.transition = true
	if s := e.screens.Get(page); s != nil {
		s.OnEnter()
	}
}

// cycle applies one batch and renders exactly one frame for it.
func (e *Engine) cycle(b batch) {
	start := e.current()
	startSel := start.SelectionRect()

	e.nav.Update()
	e.deliver()
	// Actions held behind a page change, or queued after a cycle that began
	// with an update, resume once the screen has seen its events.
	for e.nav.Pending() > 0 {
		e.nav.Flush()
		e.deliver()
	}
	for _, u := range b.updates {
		u(e.screens)
	}

	cur := e.current()
	if fr, ok := cur.(screen.FullRefreshRequester); ok && fr.TakeFullRefreshRequest() {
		e.forced = true
	}
	e.screens.Status.SetTitle(cur.Title())
	e.screens.SetClock(e.opts.Now())

	endSel := cur.SelectionRect()
	c := Classification{
		First:      e.first,
		Transition: e.transition || cur != start,
		Forced:     e.forced,
		Status:     e.screens.Status.Dirty(),
		Tiles:      !cur.Dirty().Empty(),
	}
	c.Selection = !c.Transition && startSel != endSel

	d := Decide(c, e.partials, e.opts.Now().Sub(e.lastFull), e.policy)
	e.render(d, cur, startSel, endSel)

	e.first, e.transition, e.forced = false, false, false
}

// deliver hands queued in-screen events and triggers to the visible
// screen.
func (e *Engine) deliver() {
	for ev := e.nav.PollNavEvent(); ev != nav.None; ev = e.nav.PollNavEvent() {
		e.dispatch(ev)
	}
	for t, ok := e.nav.PollTrigger(); ok; t, ok = e.nav.PollTrigger() {
		if th, ok := e.current().(screen.TriggerHandler); ok {
			th.HandleTrigger(t.Left, t.Intensity)
		}
	}
}

// dispatch hands an in-screen event to the visible screen. BACK that the
// screen does not use returns to the home page.
func (e *Engine) dispatch(ev nav.Event) {
	if ev == nav.ForceRefresh {
		e.forced = true
		return
	}
	if e.current().HandleEvent(ev) {
		return
	}
	if ev == nav.Back && e.nav.Current() != nav.PageHome {
		e.nav.NavigateTo(nav.PageHome)
	}
}

func (e *Engine) render(d Decision, scr screen.Screen, oldSel, newSel geom.Rect) {
	if d == DecisionNone {
		return
	}

	var err error
	refreshed := true
	e.comp.BeginFrame()
	switch d {
	case DecisionFull:
		e.comp.Clear()
		e.screens.Status.Render(e.comp)
		screen.DrawFooter(e.comp, e.screens.Zones, screen.FooterHint)
		scr.Render(e.comp, true)
		e.comp.Highlight(scr.SelectionRect())
		err = e.comp.EndFrameFull()

	case DecisionSelectionOnly:
		e.comp.UpdateSelection(oldSel, newSel)
		refreshed, err = e.comp.EndFrame()

	case DecisionPartialRegion:
		if e.screens.Status.Dirty() {
			e.screens.Status.Render(e.comp)
		}
		dirty := scr.Dirty()
		moveSel := oldSel != newSel || !geom.Intersect(dirty, newSel).Empty()
		if moveSel {
			e.comp.Highlight(oldSel)
		}
		scr.Render(e.comp, false)
		if moveSel {
			e.comp.Highlight(newSel)
		}
		refreshed, err = e.comp.EndFrame()
	}

	if err != nil {
		appLog.Error("engine: refresh failed", err, "decision", d)
		return
	}
	if !refreshed {
		return
	}

	now := e.opts.Now()
	if d == DecisionFull {
		e.partials = 0
		e.lastFull = now
	} else {
		e.partials++
	}
	appLog.Debug("engine: rendered", "decision", d, "page", scr.ID(), "partials", e.partials)
	e.record(d, scr)
	if e.opts.OnFrame != nil {
		e.opts.OnFrame(e.drv.Frame().Gray())
	}
}

// maintain runs on an idle tick: if the time threshold expired with partial
// refreshes outstanding, the current page is repainted in full.
func (e *Engine) maintain() {
	if e.partials == 0 || e.opts.Now().Sub(e.lastFull) < e.policy.MaxInterval {
		return
	}
	appLog.Info("engine: anti-ghosting full refresh", "partials", e.partials)
	cur := e.current()
	e.render(DecisionFull, cur, cur.SelectionRect(), cur.SelectionRect())
}

func (e *Engine) fault(err error) {
	e.setState(StateFaulted)
	e.mu.Lock()
	e.stats.Fault = err.Error()
	e.mu.Unlock()

	e.screens.Error.SetError(err)
	e.screens.Status.SetTitle(e.screens.Error.Title())
	e.comp.BeginFrame()
	e.comp.Clear()
	e.screens.Status.Render(e.comp)
	e.screens.Error.Render(e.comp, true)
	// No EndFrame: the panel cannot be refreshed.
}

// Screens exposes the screen set for wiring collaborators in tests. It must
// only be used from the display goroutine or before RunDisplay starts.
func (e *Engine) Screens() *screen.Set {
	return e.screens
}

func (e *Engine) String() string {
	s := e.Stats()
	return fmt.Sprintf("engine(%s page=%s full=%d partial=%d)", s.State, s.Page, s.FullRenders, s.PartialRenders)
}
