// Package planner decides whether an invocation starts a new trip search,
// changes the time of the cached one, or continues it with a page token, and
// keeps the cached snapshot consistent across pages.
package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/glundgren93/fahrplan/internal/api"
	"github.com/glundgren93/fahrplan/internal/model"
)

var (
	// ErrInvalidSearch means the parameters do not describe a search.
	ErrInvalidSearch = errors.New("invalid search")
	// ErrNoResults means the backend answered with no usable trips.
	ErrNoResults = errors.New("no results")
	// ErrNoCachedData means a cached view was requested but nothing is cached.
	ErrNoCachedData = errors.New("no cached trips")
)

// Gateway runs trip searches against the backend.
type Gateway interface {
	SearchTrips(ctx context.Context, s model.Search) (*api.TripsResult, error)
}

// SnapshotStore holds the single cached snapshot.
type SnapshotStore interface {
	Read() (*model.Snapshot, bool)
	Write(snap model.Snapshot)
}

// Request carries the invocation parameters. Zero values mean "not given".
type Request struct {
	OriginID      string
	DestinationID string
	DateTime      time.Time
	IsArrival     *bool
	Paging        string
}

// Planner runs searches and maintains the snapshot.
type Planner struct {
	gateway Gateway
	store   SnapshotStore
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// New creates a Planner.
func New(gateway Gateway, store SnapshotStore, opts ...Option) *Planner {
	p := &Planner{
		gateway: gateway,
		store:   store,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type resolution int

const (
	resolvedContinuation resolution = iota + 1
	resolvedFresh
	resolvedRetimed
)

func (r resolution) String() string {
	switch r {
	case resolvedContinuation:
		return "continuation"
	case resolvedFresh:
		return "fresh"
	case resolvedRetimed:
		return "retimed"
	default:
		return "unknown"
	}
}

// resolve derives the effective search; the first matching rule wins:
//
//  1. a page token with a cached snapshot continues the cached search with
//     only the token replaced;
//  2. explicit origin and destination start a new search without a token;
//  3. an explicit time alone re-times the cached search.
func (p *Planner) resolve(req Request, cached *model.Snapshot) (model.Search, resolution, error) {
	switch {
	case req.Paging != "" && cached != nil:
		return cached.Search.With(model.WithPaging(req.Paging)), resolvedContinuation, nil

	case req.OriginID != "" && req.DestinationID != "":
		opts := []model.SearchOption{model.WithDateTime(req.DateTime)}
		if req.IsArrival != nil {
			opts = append(opts, model.WithArrival(*req.IsArrival))
		}
		return model.NewSearch(req.OriginID, req.DestinationID, p.now(), opts...), resolvedFresh, nil

	case !req.DateTime.IsZero() && cached != nil:
		s := cached.Search.With(model.WithDateTime(req.DateTime))
		if req.IsArrival != nil {
			s = s.With(model.WithArrival(*req.IsArrival))
		}
		s.Paging = ""
		return s, resolvedRetimed, nil
	}
	return model.Search{}, 0, ErrInvalidSearch
}

// Search resolves, fetches and persists. A continuation of the cached search
// merges the new page into the cached trips ordered by departure; anything
// else replaces them. The snapshot is read again before merging so a search
// stored by another invocation in the meantime is replaced rather than mixed
// with this page. Trips are not deduplicated across pages.
func (p *Planner) Search(ctx context.Context, req Request) (*model.Snapshot, error) {
	cached, _ := p.store.Read()

	search, how, err := p.resolve(req, cached)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("resolved search",
		slog.String("resolution", how.String()),
		slog.String("origin", search.OriginID),
		slog.String("destination", search.DestinationID),
		slog.Time("date_time", search.DateTime),
		slog.Bool("arrival", search.IsArrival),
	)

	res, err := p.gateway.SearchTrips(ctx, search)
	if err != nil {
		return nil, err
	}

	trips := res.Trips
	if how == resolvedContinuation {
		if current, ok := p.store.Read(); ok {
			cached = current
		}
		if cached.Search.Equal(search) {
			merged := make([]model.Trip, 0, len(cached.Trips)+len(res.Trips))
			merged = append(merged, cached.Trips...)
			merged = append(merged, res.Trips...)
			model.SortByDeparture(merged)
			trips = merged
		}
	}
	if len(trips) == 0 {
		return nil, ErrNoResults
	}

	snap := model.Snapshot{Search: search, Trips: trips, References: res.References}
	p.store.Write(snap)
	return &snap, nil
}

// Cached returns the snapshot of the last successful search.
func (p *Planner) Cached() (*model.Snapshot, error) {
	snap, ok := p.store.Read()
	if !ok {
		return nil, ErrNoCachedData
	}
	return snap, nil
}
