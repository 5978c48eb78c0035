// Package places assembles the place candidates offered while picking an
// origin or destination: saved favorites, the home place and keyword lookup
// results.
package places

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/glundgren93/fahrplan/internal/model"
)

// MinLookupLength is the query length above which the backend is asked for
// matching places.
const MinLookupLength = 5

// Favorites provides saved places and the home place.
type Favorites interface {
	List() []model.Place
	Home(ctx context.Context) (model.Place, error)
}

// Lookup finds places by keyword.
type Lookup interface {
	LookupPlaces(ctx context.Context, query string) ([]model.Place, error)
}

// Result is the ordered candidate list plus what is needed to decorate it.
type Result struct {
	Places    []model.Place
	Favorites []model.Place
	Home      *model.Place
	// Origin is set when an origin was already chosen; it is excluded from Places.
	Origin *model.Place
}

// IsHome reports whether p is the resolved home place.
func (r *Result) IsHome(p model.Place) bool {
	return r.Home != nil && r.Home.Equal(p)
}

// IsFavorite reports whether p is a saved place.
func (r *Result) IsFavorite(p model.Place) bool {
	return model.ContainsPlace(r.Favorites, p)
}

// Collector gathers candidates for a query.
type Collector struct {
	favorites Favorites
	lookup    Lookup
	logger    *slog.Logger
}

// NewCollector returns a collector.
func NewCollector(favorites Favorites, lookup Lookup, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{favorites: favorites, lookup: lookup, logger: logger}
}

// Collect resolves the home place and, for queries longer than
// MinLookupLength, looks up the query concurrently. Saved places and home are
// filtered by the query; lookup results not already listed are appended. A
// lookup error is returned only when nothing else matched.
func (c *Collector) Collect(ctx context.Context, query, originID string) (*Result, error) {
	query = Normalize(query)
	res := &Result{Favorites: c.favorites.List()}

	var found []model.Place
	var lookupErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		home, err := c.favorites.Home(gctx)
		if err != nil {
			c.logger.Debug("home unavailable", slog.String("error", err.Error()))
			return nil
		}
		res.Home = &home
		return nil
	})
	if utf8.RuneCountInString(query) > MinLookupLength {
		g.Go(func() error {
			found, lookupErr = c.lookup.LookupPlaces(gctx, query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := append([]model.Place{}, res.Favorites...)
	if res.Home != nil {
		candidates = append(candidates, *res.Home)
	}
	if query != "" {
		candidates = filter(candidates, query)
	}
	for _, p := range found {
		if !model.ContainsPlace(candidates, p) {
			candidates = append(candidates, p)
		}
	}

	if originID != "" {
		origin := model.NewPlace(originID)
		if res.IsHome(origin) {
			origin = *res.Home
		}
		res.Origin = &origin
		kept := candidates[:0]
		for _, p := range candidates {
			if !p.Equal(origin) {
				kept = append(kept, p)
			}
		}
		candidates = kept
	}
	res.Places = candidates

	if lookupErr != nil {
		if len(res.Places) == 0 {
			return res, lookupErr
		}
		c.logger.Warn("place lookup failed", slog.String("query", query), slog.String("error", lookupErr.Error()))
	}
	return res, nil
}

func filter(places []model.Place, query string) []model.Place {
	needle := Fold(query)
	var out []model.Place
	for _, p := range places {
		if strings.Contains(Fold(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Normalize trims surrounding whitespace and composes decomposed characters,
// so "u" followed by a combining diaeresis becomes "ü".
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Fold returns a case- and diacritic-insensitive form of s for matching.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}
