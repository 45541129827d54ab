// Package source owns the in-memory registry of loaded timetables. Each
// registered source is fetched and parsed at most once per process; the
// resulting grid and inferred layout are immutable afterwards.
package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glebkhr/schedbot-go/internal/config"
	errs "github.com/glebkhr/schedbot-go/internal/errors"
	"github.com/glebkhr/schedbot-go/internal/logger"
	"github.com/glebkhr/schedbot-go/internal/metrics"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// Fetcher delivers the raw grid of a source.
type Fetcher interface {
	FetchGrid(ctx context.Context, src config.Source) (timetable.Grid, error)
}

// Entry is one loaded source: the preprocessed grid plus the layout inferred
// from it. Never modified after the store publishes it.
type Entry struct {
	Source config.Source
	Grid   timetable.Grid
	Layout *timetable.Layout
}

// Usable reports whether the entry can drive menu navigation. A source whose
// header band yielded no streams stays cached (re-fetching cannot fix it) but
// cannot be browsed; whole-grid search and occupancy still work on it.
func (e *Entry) Usable() error {
	if e.Layout.Empty() {
		return fmt.Errorf("%w: %s", errs.ErrLayoutUnrecoverable, e.Source.ID)
	}
	return nil
}

// Store loads sources on first access and serves them from memory for the
// rest of the process lifetime. Concurrent cold requests for the same source
// collapse into one fetch.
type Store struct {
	fetcher    Fetcher
	classifier *timetable.Classifier
	registry   map[string]config.Source
	log        *logger.Logger
	metrics    *metrics.Metrics

	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

// NewStore creates a store over the given source registry.
func NewStore(fetcher Fetcher, cls *timetable.Classifier, sources []config.Source, log *logger.Logger, m *metrics.Metrics) *Store {
	registry := make(map[string]config.Source, len(sources))
	for _, s := range sources {
		registry[s.ID] = s
	}
	return &Store{
		fetcher:    fetcher,
		classifier: cls,
		registry:   registry,
		log:        log.WithModule("source"),
		metrics:    m,
		entries:    make(map[string]*Entry),
	}
}

// Sources returns the registered sources in registration-independent order.
func (s *Store) Sources() []config.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]config.Source, 0, len(s.registry))
	for _, src := range s.registry {
		out = append(out, src)
	}
	return out
}

// Register adds a source at runtime. Replacing an id drops its cached entry.
func (s *Store) Register(src config.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[src.ID] = src
	delete(s.entries, src.ID)
	s.group.Forget(src.ID)
}

// Get returns the entry for a source id, fetching and parsing it on first
// access. Unknown ids fail with ErrUnknownSource; fetch or parse failures
// wrap ErrSourceUnavailable and are not cached, so the next request retries.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	src, registered := s.registry[id]
	s.mu.RUnlock()

	if ok {
		s.metrics.RecordCacheHit(id)
		return entry, nil
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownSource, id)
	}
	s.metrics.RecordCacheMiss(id)

	result, err, shared := s.group.Do(id, func() (interface{}, error) {
		// A loser of an earlier race may find the entry already built.
		s.mu.RLock()
		entry, ok := s.entries[id]
		s.mu.RUnlock()
		if ok {
			return entry, nil
		}
		return s.build(ctx, src)
	})
	if shared {
		s.metrics.RecordSingleflightDedup(id)
	}
	if err != nil {
		return nil, err
	}

	entry = result.(*Entry)
	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return entry, nil
}

// build fetches the workbook, reconstructs merged cells and infers the
// layout.
func (s *Store) build(ctx context.Context, src config.Source) (*Entry, error) {
	start := time.Now()
	raw, err := s.fetcher.FetchGrid(ctx, src)
	if err != nil {
		s.metrics.RecordFetch(src.ID, "error", time.Since(start).Seconds())
		s.log.WithSource(src.ID).WithError(err).Errorf("fetch failed")
		return nil, err
	}
	s.metrics.RecordFetch(src.ID, "success", time.Since(start).Seconds())

	grid := raw.Preprocess()
	layout := timetable.InferLayout(grid, s.classifier)
	if layout.Empty() {
		s.metrics.RecordLayoutBuild(src.ID, "empty")
		s.log.WithSource(src.ID).WithError(errs.ErrLayoutUnrecoverable).Warnf("no group header found, layout empty")
	} else {
		s.metrics.RecordLayoutBuild(src.ID, "ok")
	}
	s.log.WithSource(src.ID).WithFields(map[string]any{
		"rows":    grid.Rows(),
		"streams": len(layout.Streams()),
	}).Infof("source loaded")

	return &Entry{Source: src, Grid: grid, Layout: layout}, nil
}

// Loaded reports whether a source has been fetched already.
func (s *Store) Loaded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}
