package collab

import (
	"context"

	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
)

// Handler executes one command.
type Handler func(ctx context.Context, cmd model.Command)

// Router dispatches commands from the screens to their owners by kind.
type Router struct {
	handlers map[model.CommandKind]Handler
}

func NewRouter() *Router {
	return &Router{handlers: map[model.CommandKind]Handler{}}
}

// Handle registers h for kind, replacing any earlier handler.
func (r *Router) Handle(kind model.CommandKind, h Handler) {
	r.handlers[kind] = h
}

// Run reads cmds until ctx is done or cmds is closed.
func (r *Router) Run(ctx context.Context, cmds <-chan model.Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				return nil
			}
			r.dispatch(ctx, cmd)
		}
	}
}

func (r *Router) dispatch(ctx context.Context, cmd model.Command) {
	h, ok := r.handlers[cmd.Kind]
	if !ok {
		appLog.Warn("collab: no handler for command", "kind", cmd.Kind, "target", cmd.Target)
		return
	}
	appLog.Debug("collab: command", "kind", cmd.Kind, "target", cmd.Target, "value", cmd.Value)
	h(ctx, cmd)
}

// DemoHandler applies commands to d and posts the new state.
func DemoHandler(d *Demo, p Poster) Handler {
	return func(_ context.Context, cmd model.Command) {
		if !d.Apply(cmd) {
			appLog.Warn("collab: demo ignored command", "kind", cmd.Kind, "target", cmd.Target)
			return
		}
		if err := p.Post(d.Snapshot()); err != nil {
			appLog.Warn("collab: update dropped", "job", "demo", "err", err)
		}
	}
}

// TriggerHandler runs a scheduled job on demand.
func TriggerHandler(s *Scheduler, job string) Handler {
	return func(context.Context, model.Command) {
		if !s.Trigger(job) {
			appLog.Warn("collab: unknown job", "job", job)
		}
	}
}
