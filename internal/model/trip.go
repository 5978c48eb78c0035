package model

import (
	"sort"
	"time"
)

// WalkName is the conveyance name the backend uses for walking transfers.
const WalkName = "Fußweg"

// Stop is one end of a segment.
type Stop struct {
	Place    string     `json:"place"`
	Time     time.Time  `json:"time"`
	EstTime  *time.Time `json:"estTime,omitempty"`
	Platform string     `json:"platform,omitempty"`
}

// EffectiveTime returns the estimated time when known, else the planned time.
func (s Stop) EffectiveTime() time.Time {
	if s.EstTime != nil {
		return *s.EstTime
	}
	return s.Time
}

// Delay returns the difference between estimated and planned time.
func (s Stop) Delay() time.Duration {
	if s.EstTime == nil {
		return 0
	}
	return s.EstTime.Sub(s.Time)
}

// Conveyance describes how a segment is travelled.
type Conveyance struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Direction string `json:"direction,omitempty"`
	// Distance in meters, only set for walking segments.
	Distance *int `json:"distance,omitempty"`
}

// Segment is one leg of a trip.
type Segment struct {
	Departure *Stop       `json:"departure,omitempty"`
	Arrival   *Stop       `json:"arrival,omitempty"`
	By        *Conveyance `json:"by,omitempty"`
	Duration  int         `json:"duration"`
}

// IsWalk reports whether the segment is a walking transfer.
func (s Segment) IsWalk() bool {
	return s.By != nil && s.By.Name == WalkName
}

// Trip is a complete itinerary. Segments is never empty for decoded trips.
type Trip struct {
	ID          string    `json:"id"`
	Segments    []Segment `json:"segments"`
	Changes     int       `json:"changes"`
	Duration    int       `json:"duration"`
	EstDuration *int      `json:"estDuration,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Departure returns the departure stop of the first segment.
func (t Trip) Departure() *Stop {
	if len(t.Segments) == 0 {
		return nil
	}
	return t.Segments[0].Departure
}

// Arrival returns the arrival stop of the last segment.
func (t Trip) Arrival() *Stop {
	if len(t.Segments) == 0 {
		return nil
	}
	return t.Segments[len(t.Segments)-1].Arrival
}

// DepartureTime returns the planned departure time, or the zero time.
func (t Trip) DepartureTime() time.Time {
	if dep := t.Departure(); dep != nil {
		return dep.Time
	}
	return time.Time{}
}

// Vehicles returns the segments that are not walking transfers.
func (t Trip) Vehicles() []Segment {
	var out []Segment
	for _, s := range t.Segments {
		if !s.IsWalk() {
			out = append(out, s)
		}
	}
	return out
}

// SortByDeparture orders trips by planned departure, keeping the relative
// order of trips that leave at the same time.
func SortByDeparture(trips []Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].DepartureTime().Before(trips[j].DepartureTime())
	})
}

// FindTrip returns the trip with the given id.
func FindTrip(trips []Trip, id string) (Trip, bool) {
	for _, t := range trips {
		if t.ID == id {
			return t, true
		}
	}
	return Trip{}, false
}

// Page reference keys in Snapshot.References.
const (
	PageEarlier = "earlier"
	PageLater   = "later"
)

// Snapshot is the persisted result of the most recent search.
type Snapshot struct {
	Search     Search            `json:"search"`
	Trips      []Trip            `json:"trips"`
	References map[string]string `json:"reference"`
}
