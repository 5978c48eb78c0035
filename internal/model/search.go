package model

import "time"

// DefaultLeadTime is added to the current time when a search has no explicit time.
const DefaultLeadTime = 2 * time.Minute

// Search holds the parameters of a trip search. Paging is an opaque token
// returned by the backend for the previous or next result page.
type Search struct {
	OriginID      string    `json:"SOID"`
	DestinationID string    `json:"ZOID"`
	IsArrival     bool      `json:"isArrival"`
	DateTime      time.Time `json:"dateTime"`
	Paging        string    `json:"paging,omitempty"`
}

// SearchOption overrides a field when creating or copying a Search.
type SearchOption func(*Search)

// WithDateTime sets the departure or arrival time. A zero time is ignored.
func WithDateTime(t time.Time) SearchOption {
	return func(s *Search) {
		if !t.IsZero() {
			s.DateTime = t
		}
	}
}

// WithArrival selects arrival (true) or departure (false) search mode.
func WithArrival(isArrival bool) SearchOption {
	return func(s *Search) {
		s.IsArrival = isArrival
	}
}

// WithPaging sets the page token. An empty token is ignored.
func WithPaging(token string) SearchOption {
	return func(s *Search) {
		if token != "" {
			s.Paging = token
		}
	}
}

// NewSearch creates a departure search between two place ids. Without a
// WithDateTime option the search time is now plus DefaultLeadTime.
func NewSearch(originID, destinationID string, now time.Time, opts ...SearchOption) Search {
	s := Search{
		OriginID:      originID,
		DestinationID: destinationID,
		DateTime:      now.Add(DefaultLeadTime),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// With returns a copy of s with the given options applied.
func (s Search) With(opts ...SearchOption) Search {
	c := s
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Equal reports whether two searches ask the same question. The paging token
// is not part of the comparison.
func (s Search) Equal(o Search) bool {
	return s.OriginID == o.OriginID &&
		s.DestinationID == o.DestinationID &&
		s.IsArrival == o.IsArrival &&
		s.DateTime.Equal(o.DateTime)
}
