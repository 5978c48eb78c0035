package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glundgren93/fahrplan/internal/api"
	"github.com/glundgren93/fahrplan/internal/cache"
	"github.com/glundgren93/fahrplan/internal/model"
)

var now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type fakeGateway struct {
	result   *api.TripsResult
	err      error
	searches []model.Search
	onSearch func()
}

func (g *fakeGateway) SearchTrips(_ context.Context, s model.Search) (*api.TripsResult, error) {
	g.searches = append(g.searches, s)
	if g.onSearch != nil {
		g.onSearch()
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type memoryStore struct {
	snap   *model.Snapshot
	writes int
}

func (m *memoryStore) Read() (*model.Snapshot, bool) {
	if m.snap == nil {
		return nil, false
	}
	c := *m.snap
	return &c, true
}

func (m *memoryStore) Write(snap model.Snapshot) {
	m.writes++
	m.snap = &snap
}

func tripAt(id string, hour, minute int) model.Trip {
	dep := time.Date(2024, 6, 1, hour, minute, 0, 0, time.UTC)
	return model.Trip{
		ID: id,
		Segments: []model.Segment{{
			Departure: &model.Stop{Place: "A", Time: dep},
			Arrival:   &model.Stop{Place: "B", Time: dep.Add(time.Hour)},
			By:        &model.Conveyance{Name: "RE 1"},
		}},
	}
}

func ids(trips []model.Trip) []string {
	out := make([]string, 0, len(trips))
	for _, t := range trips {
		out = append(out, t.ID)
	}
	return out
}

func page(trips ...model.Trip) *api.TripsResult {
	return &api.TripsResult{
		Trips:      trips,
		References: map[string]string{model.PageEarlier: "earlier-2", model.PageLater: "later-2"},
	}
}

func cachedSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Search:     model.NewSearch("origin", "destination", now, model.WithPaging("first")),
		Trips:      []model.Trip{tripAt("10:00", 10, 0), tripAt("10:30", 10, 30)},
		References: map[string]string{model.PageEarlier: "earlier-1", model.PageLater: "later-1"},
	}
}

func newPlanner(g Gateway, s SnapshotStore) *Planner {
	return New(g, s, WithClock(func() time.Time { return now }))
}

func boolPtr(b bool) *bool { return &b }

func TestSearchWithoutParameters(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		store *memoryStore
	}{
		{"nothing at all", Request{}, &memoryStore{}},
		{"time without cache", Request{DateTime: now}, &memoryStore{}},
		{"paging without cache", Request{Paging: "p"}, &memoryStore{}},
		{"origin only", Request{OriginID: "origin"}, &memoryStore{snap: cachedSnapshot()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{result: page(tripAt("x", 9, 0))}
			_, err := newPlanner(gw, tt.store).Search(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidSearch)
			assert.Empty(t, gw.searches, "no request may be sent")
		})
	}
}

func TestFreshSearch(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("a", 9, 0))}
	store := &memoryStore{snap: cachedSnapshot()}

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{OriginID: "o2", DestinationID: "d2"})
	require.NoError(t, err)

	require.Len(t, gw.searches, 1)
	sent := gw.searches[0]
	assert.Equal(t, "o2", sent.OriginID)
	assert.Equal(t, "d2", sent.DestinationID)
	assert.Equal(t, now.Add(model.DefaultLeadTime), sent.DateTime)
	assert.False(t, sent.IsArrival)

	assert.Equal(t, []string{"a"}, ids(snap.Trips))
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, "later-2", store.snap.References[model.PageLater])
	assert.True(t, store.snap.Search.Equal(sent))
}

func TestFreshSearchExplicitTimeAndArrival(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("a", 9, 0))}
	at := now.Add(5 * time.Hour)

	_, err := newPlanner(gw, &memoryStore{}).Search(context.Background(), Request{
		OriginID: "o", DestinationID: "d", DateTime: at, IsArrival: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, at, gw.searches[0].DateTime)
	assert.True(t, gw.searches[0].IsArrival)
}

func TestRetimedSearchReplacesTrips(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("late", 18, 0))}
	store := &memoryStore{snap: cachedSnapshot()}
	at := time.Date(2024, 6, 1, 17, 45, 0, 0, time.UTC)

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{DateTime: at, IsArrival: boolPtr(true)})
	require.NoError(t, err)

	sent := gw.searches[0]
	assert.Equal(t, "origin", sent.OriginID)
	assert.Equal(t, "destination", sent.DestinationID)
	assert.Equal(t, at, sent.DateTime)
	assert.True(t, sent.IsArrival)
	assert.Empty(t, sent.Paging, "old page token must not leak into a new search")
	assert.Equal(t, []string{"late"}, ids(snap.Trips))
}

func TestContinuationMergesSorted(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("09:00", 9, 0), tripAt("09:45", 9, 45))}
	store := &memoryStore{snap: cachedSnapshot()}

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{Paging: "earlier-1"})
	require.NoError(t, err)

	sent := gw.searches[0]
	assert.Equal(t, "earlier-1", sent.Paging)
	assert.True(t, sent.Equal(cachedSnapshot().Search))

	assert.Equal(t, []string{"09:00", "09:45", "10:00", "10:30"}, ids(snap.Trips))
	assert.Equal(t, []string{"09:00", "09:45", "10:00", "10:30"}, ids(store.snap.Trips))
	assert.Equal(t, "earlier-2", store.snap.References[model.PageEarlier])
}

func TestContinuationKeepsDuplicates(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("10:30", 10, 30), tripAt("11:00", 11, 0))}
	store := &memoryStore{snap: cachedSnapshot()}

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{Paging: "later-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "10:30", "11:00"}, ids(snap.Trips))
}

func TestContinuationIgnoresExplicitParameters(t *testing.T) {
	gw := &fakeGateway{result: page(tripAt("11:00", 11, 0))}
	store := &memoryStore{snap: cachedSnapshot()}

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{
		Paging:        "later-1",
		OriginID:      "other",
		DestinationID: "elsewhere",
		DateTime:      time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
		IsArrival:     boolPtr(true),
	})
	require.NoError(t, err)

	require.Len(t, gw.searches, 1)
	sent := gw.searches[0]
	assert.Equal(t, "origin", sent.OriginID)
	assert.Equal(t, "destination", sent.DestinationID)
	assert.Equal(t, now.Add(model.DefaultLeadTime), sent.DateTime)
	assert.False(t, sent.IsArrival)
	assert.Equal(t, "later-1", sent.Paging)

	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, ids(snap.Trips))
	assert.True(t, store.snap.Search.Equal(cachedSnapshot().Search))
}

func TestContinuationReplacesWhenCacheChangedMeanwhile(t *testing.T) {
	store := &memoryStore{snap: cachedSnapshot()}
	gw := &fakeGateway{result: page(tripAt("11:00", 11, 0))}
	gw.onSearch = func() {
		store.snap = &model.Snapshot{
			Search: model.NewSearch("o2", "d2", now),
			Trips:  []model.Trip{tripAt("other", 9, 0)},
		}
	}

	snap, err := newPlanner(gw, store).Search(context.Background(), Request{Paging: "later-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"11:00"}, ids(snap.Trips))
	assert.Equal(t, "origin", store.snap.Search.OriginID)
	assert.Equal(t, []string{"11:00"}, ids(store.snap.Trips))
}

func TestFreshSearchSendsNoPageToken(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		store *memoryStore
	}{
		{"stale token without cache", Request{Paging: "stale", OriginID: "o", DestinationID: "d"}, &memoryStore{}},
		{"cached search has a token", Request{OriginID: "o", DestinationID: "d"}, &memoryStore{snap: cachedSnapshot()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{result: page(tripAt("a", 9, 0))}

			_, err := newPlanner(gw, tt.store).Search(context.Background(), tt.req)
			require.NoError(t, err)
			require.Len(t, gw.searches, 1)
			assert.Equal(t, "o", gw.searches[0].OriginID)
			assert.Empty(t, gw.searches[0].Paging)
		})
	}
}

func TestEmptyResultDoesNotWrite(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"fresh", Request{OriginID: "o", DestinationID: "d"}},
		{"retimed", Request{DateTime: now.Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{result: page()}
			store := &memoryStore{snap: cachedSnapshot()}

			_, err := newPlanner(gw, store).Search(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrNoResults)
			assert.Equal(t, 0, store.writes)
			assert.Equal(t, ids(cachedSnapshot().Trips), ids(store.snap.Trips))
		})
	}
}

func TestEmptyResultLeavesCacheFileUntouched(t *testing.T) {
	dir := t.TempDir()
	store := cache.NewStore(dir, nil)
	store.Write(*cachedSnapshot())
	before, err := os.ReadFile(filepath.Join(dir, cache.TripsKey))
	require.NoError(t, err)

	gw := &fakeGateway{result: page()}
	_, err = newPlanner(gw, store).Search(context.Background(), Request{OriginID: "o", DestinationID: "d"})
	assert.ErrorIs(t, err, ErrNoResults)

	after, err := os.ReadFile(filepath.Join(dir, cache.TripsKey))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGatewayErrorIsSurfaced(t *testing.T) {
	gwErr := &api.Error{Kind: api.KindStatus, StatusCode: 502}
	gw := &fakeGateway{err: gwErr}
	store := &memoryStore{snap: cachedSnapshot()}

	_, err := newPlanner(gw, store).Search(context.Background(), Request{Paging: "later-1"})
	assert.ErrorIs(t, err, api.ErrStatus)
	assert.Same(t, gwErr, err)
	assert.Equal(t, 0, store.writes)
	assert.Len(t, gw.searches, 1, "no retry")
}

func TestCached(t *testing.T) {
	_, err := newPlanner(&fakeGateway{}, &memoryStore{}).Cached()
	assert.ErrorIs(t, err, ErrNoCachedData)

	snap, err := newPlanner(&fakeGateway{}, &memoryStore{snap: cachedSnapshot()}).Cached()
	require.NoError(t, err)
	assert.Len(t, snap.Trips, 2)
}
