package api

import (
	"log/slog"
	"time"

	"github.com/bluele/gcache"

	"github.com/glundgren93/fahrplan/internal/model"
)

const (
	placeCacheTTL  = 5 * time.Minute
	placeCacheSize = 64
)

// newPlaceCache memoizes keyword lookups so the home resolution and the typed
// query do not hit the backend twice for the same text.
func newPlaceCache() gcache.Cache {
	return gcache.New(placeCacheSize).
		LRU().
		Expiration(placeCacheTTL).
		Build()
}

func (c *Client) cachedPlaces(query string) ([]model.Place, bool) {
	v, err := c.places.Get(query)
	if err != nil {
		return nil, false
	}
	places, ok := v.([]model.Place)
	if !ok {
		return nil, false
	}
	return append([]model.Place(nil), places...), true
}

func (c *Client) storePlaces(query string, places []model.Place) {
	if err := c.places.Set(query, append([]model.Place(nil), places...)); err != nil {
		c.logger.Debug("caching places failed", slog.String("query", query), slog.String("error", err.Error()))
	}
}
