package agenda

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
)

const defaultMaxPerEvent = 500

// Window bounds an expansion.
type Window struct {
	Start, End time.Time
	// Location is the display timezone; nil means time.Local.
	Location *time.Location
	// MaxPerEvent caps the occurrences of one recurring event.
	MaxPerEvent int
}

// Expand turns events into concrete occurrences overlapping w, converted to
// the display timezone and ordered by start time. Overrides replace the
// instance their RECURRENCE-ID names; EXDATEs remove instances.
func Expand(events []Event, w Window) ([]model.AgendaItem, error) {
	if w.End.Before(w.Start) {
		return nil, errors.New("agenda: window ends before it starts")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxPerEvent <= 0 {
		w.MaxPerEvent = defaultMaxPerEvent
	}

	base := map[string][]Event{}
	overrides := map[string][]Event{}
	for _, ev := range events {
		key := ev.Source.ID + "\x00" + ev.UID
		if ev.RecurrenceID != nil {
			overrides[key] = append(overrides[key], ev)
		} else {
			base[key] = append(base[key], ev)
		}
	}

	var out []model.AgendaItem
	for key, evs := range base {
		for _, ev := range evs {
			out = append(out, expandEvent(ev, overrides[key], w)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		if out[i].AllDay != out[j].AllDay {
			return out[i].AllDay
		}
		return out[i].Summary < out[j].Summary
	})
	return out, nil
}

func expandEvent(ev Event, overrides []Event, w Window) []model.AgendaItem {
	if ev.RRule == "" {
		start, end, inst := ev.Start, ev.End, ev
		if o, ok := findOverride(overrides, start); ok {
			start, end, inst = o.Start, o.End, o
		}
		if !overlaps(start, end, w.Start, w.End) {
			return nil
		}
		return []model.AgendaItem{item(inst, start, end, w.Location)}
	}

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		appLog.Warn("agenda: bad RRULE", "uid", ev.UID, "rrule", ev.RRule, "err", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	loc := ev.Start.Location()
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(loc))
	}

	dur := ev.End.Sub(ev.Start)
	// Instances that started before the window may still be running.
	starts := set.Between(w.Start.In(loc).Add(-dur), w.End.In(loc), true)
	if len(starts) > w.MaxPerEvent {
		appLog.Warn("agenda: occurrences truncated", "uid", ev.UID, "cap", w.MaxPerEvent)
		starts = starts[:w.MaxPerEvent]
	}

	out := make([]model.AgendaItem, 0, len(starts))
	for _, s := range starts {
		start, end, inst := s, s.Add(dur), ev
		if ev.AllDay {
			start = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			end = start.AddDate(0, 0, int(dur.Hours()/24+0.5))
		}
		if o, ok := findOverride(overrides, s); ok {
			start, end, inst = o.Start, o.End, o
		}
		if !overlaps(start, end, w.Start, w.End) {
			continue
		}
		out = append(out, item(inst, start, end, w.Location))
	}
	return out
}

func findOverride(overrides []Event, start time.Time) (Event, bool) {
	for _, o := range overrides {
		if o.RecurrenceID.Equal(start) {
			return o, true
		}
	}
	return Event{}, false
}

func item(ev Event, start, end time.Time, loc *time.Location) model.AgendaItem {
	it := model.AgendaItem{
		SourceID: ev.Source.ID,
		UID:      ev.UID,
		Summary:  ev.Summary,
		Location: ev.Location,
		AllDay:   ev.AllDay,
		Start:    start.In(loc),
		End:      end.In(loc),
	}
	if ev.AllDay {
		// All-day dates do not move with the display zone.
		it.Start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		it.End = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	}
	it.InstanceKey = ev.UID + "@" + start.UTC().Format(time.RFC3339)
	return it
}

// overlaps treats zero-length events as a point that must lie in the window.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Equal(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
