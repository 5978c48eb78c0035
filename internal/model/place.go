package model

import (
	"encoding/json"
	"strings"
)

// PlaceType distinguishes stations from addresses and points of interest.
type PlaceType string

const (
	PlaceStation PlaceType = "ST"
	PlaceAddress PlaceType = "ADR"
)

// Place is a location known to the journey planner. The ID is an opaque
// HAFAS location string such as "A=1@O=Hamburg Hbf@X=10006909@Y=53552733@L=8002549@".
type Place struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Type  PlaceType `json:"type"`
	ExtID string    `json:"extId,omitempty"`
}

// NewPlace builds a place from its id, inferring the name and type.
func NewPlace(id string) Place {
	return Place{ID: id, Name: nameFromID(id), Type: typeFromID(id)}
}

// Equal reports whether both places share the same id. Names are ignored.
func (p Place) Equal(o Place) bool {
	return p.ID == o.ID
}

// IsStation reports whether the place is a station.
func (p Place) IsStation() bool {
	return p.Type == PlaceStation
}

// UnmarshalJSON fills in a missing name or type from the id.
func (p *Place) UnmarshalJSON(data []byte) error {
	type rawPlace Place
	var raw rawPlace
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Place(raw)
	if p.Name == "" {
		p.Name = nameFromID(p.ID)
	}
	if p.Type == "" {
		p.Type = typeFromID(p.ID)
	}
	return nil
}

// ContainsPlace reports whether places holds a place equal to p.
func ContainsPlace(places []Place, p Place) bool {
	for _, q := range places {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// NameFromID extracts the "O=" component of a location id. ok is false when
// the id carries no name.
func NameFromID(id string) (name string, ok bool) {
	for _, part := range strings.Split(id, "@") {
		if strings.HasPrefix(part, "O=") {
			return part[2:], true
		}
	}
	return "", false
}

func nameFromID(id string) string {
	if name, ok := NameFromID(id); ok {
		return name
	}
	return id
}

func typeFromID(id string) PlaceType {
	if strings.HasPrefix(id, "A=1") {
		return PlaceStation
	}
	return PlaceAddress
}
