// Package agenda fetches ICS subscriptions, expands recurrences and turns
// them into the items shown on the agenda page.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hubpanel/internal/config"
	appLog "hubpanel/internal/log"
	"hubpanel/internal/model"
)

// MaxItems is the most items handed to the agenda page.
const MaxItems = 50

// Service owns the fetcher and the last good result.
type Service struct {
	sources  []Source
	fetcher  *Fetcher
	location *time.Location
	horizon  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	items   []model.AgendaItem
	updated time.Time
}

// NewService builds a service from the agenda config. An unknown timezone
// is an error.
func NewService(cfg config.AgendaConfig) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("agenda: timezone %q: %w", cfg.Timezone, err)
	}
	return &Service{
		sources:  SourcesFrom(cfg.Sources),
		fetcher:  NewFetcher(cfg.CacheDir, 0),
		location: loc,
		horizon:  time.Duration(cfg.HorizonDays) * 24 * time.Hour,
		now:      time.Now,
	}, nil
}

// Enabled reports whether any source is configured.
func (s *Service) Enabled() bool {
	return len(s.sources) > 0
}

// Refresh fetches, parses and expands every source. Sources that fail keep
// no items; when every source fails the previous result is kept and the
// joined error returned.
func (s *Service) Refresh(ctx context.Context) ([]model.AgendaItem, error) {
	feeds, errs := s.fetcher.FetchAll(ctx, s.sources)

	var events []Event
	for _, f := range feeds {
		evs, err := Parse(f.Source, f.Body)
		if err != nil {
			appLog.Error("agenda: parse failed", err, "id", f.Source.ID)
			errs = append(errs, fmt.Errorf("agenda: %s: %w", f.Source.ID, err))
			continue
		}
		events = append(events, evs...)
	}

	if len(events) == 0 && len(errs) > 0 && len(errs) >= len(s.sources) {
		return s.Items(), errors.Join(errs...)
	}

	now := s.now()
	items, err := Expand(events, Window{Start: now, End: now.Add(s.horizon), Location: s.location})
	if err != nil {
		return s.Items(), err
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	s.mu.Lock()
	s.items = items
	s.updated = now
	s.mu.Unlock()

	appLog.Info("agenda: refreshed", "sources", len(s.sources), "items", len(items), "errors", len(errs))
	return items, errors.Join(errs...)
}

// Items returns the last good result.
func (s *Service) Items() []model.AgendaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AgendaItem(nil), s.items...)
}

// Updated is when Items was last replaced.
func (s *Service) Updated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}
