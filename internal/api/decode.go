package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/glundgren93/fahrplan/internal/model"
)

// Parts of a connection named in drop diagnostics.
const (
	partSegments   = "segments"
	partConveyance = "conveyance"
	partDeparture  = "departure"
	partArrival    = "arrival"
	partTrip       = "trip"
)

// recordError explains why a single connection was dropped.
type recordError struct {
	Part    string
	Field   string
	Segment int
}

func (e *recordError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("%s: segment %d: missing or invalid %q", e.Part, e.Segment, e.Field)
	}
	return fmt.Sprintf("%s: missing or invalid %q", e.Part, e.Field)
}

func tripFieldError(field string) error {
	return &recordError{Part: partTrip, Field: field, Segment: -1}
}

// decodeTrips reads the response into a generic tree first, then maps every
// connection on its own. Only a malformed top level is an error.
func (c *Client) decodeTrips(body []byte) (*TripsResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, newError(KindDecode, errors.Wrap(err, "parsing trips"))
	}
	doc, ok := root.(map[string]any)
	if !ok {
		return nil, newError(KindDecode, errors.New("response is not an object"))
	}
	connections, ok := objects(doc["verbindungen"])
	if !ok {
		return nil, newError(KindDecode, errors.New(`missing "verbindungen"`))
	}
	refs, ok := stringMap(doc["verbindungReference"])
	if !ok {
		return nil, newError(KindDecode, errors.New(`missing "verbindungReference"`))
	}

	trips := make([]model.Trip, 0, len(connections))
	for i, conn := range connections {
		trip, err := c.decodeTrip(conn)
		if err != nil {
			attrs := []any{slog.Int("connection", i), slog.String("error", err.Error())}
			var rerr *recordError
			if errors.As(err, &rerr) {
				attrs = append(attrs, slog.String("reason", rerr.Part))
			}
			c.logger.Warn("dropping connection", attrs...)
			continue
		}
		trips = append(trips, trip)
	}
	return &TripsResult{Trips: trips, References: refs}, nil
}

func (c *Client) decodeTrip(conn map[string]any) (model.Trip, error) {
	rawSegments, ok := objects(conn["verbindungsAbschnitte"])
	if !ok || len(rawSegments) == 0 {
		return model.Trip{}, &recordError{Part: partSegments, Field: "verbindungsAbschnitte", Segment: -1}
	}

	segments := make([]model.Segment, 0, len(rawSegments))
	for i, raw := range rawSegments {
		seg, err := c.decodeSegment(raw, i)
		if err != nil {
			return model.Trip{}, err
		}
		segments = append(segments, seg)
	}

	id, ok := str(conn, "tripId")
	if !ok {
		return model.Trip{}, tripFieldError("tripId")
	}
	duration, ok := integer(conn, "verbindungsDauerInSeconds")
	if !ok {
		return model.Trip{}, tripFieldError("verbindungsDauerInSeconds")
	}
	estDuration, ok := optionalInteger(conn, "ezVerbindungsDauerInSeconds")
	if !ok {
		return model.Trip{}, tripFieldError("ezVerbindungsDauerInSeconds")
	}
	changes, ok := integer(conn, "umstiegsAnzahl")
	if !ok {
		return model.Trip{}, tripFieldError("umstiegsAnzahl")
	}
	warnings, ok := messages(conn["meldungen"])
	if !ok {
		return model.Trip{}, tripFieldError("meldungen")
	}

	return model.Trip{
		ID:          id,
		Segments:    segments,
		Changes:     changes,
		Duration:    duration,
		EstDuration: estDuration,
		Warnings:    warnings,
	}, nil
}

func (c *Client) decodeSegment(s map[string]any, index int) (model.Segment, error) {
	fail := func(part, field string) (model.Segment, error) {
		return model.Segment{}, &recordError{Part: part, Field: field, Segment: index}
	}

	seg := model.Segment{}
	seg.Duration, _ = integer(s, "abschnittsDauer")

	vehicle, ok := s["verkehrsmittel"].(map[string]any)
	if !ok {
		return fail(partConveyance, "verkehrsmittel")
	}
	name, ok := str(vehicle, "name")
	if !ok {
		return fail(partConveyance, "name")
	}
	by := &model.Conveyance{Name: name}
	if distance, ok := integer(s, "distanz"); ok {
		by.Distance = &distance
	}
	by.ShortName, _ = str(vehicle, "kurzText")
	by.Direction, _ = str(vehicle, "richtung")
	seg.By = by

	stops, ok := objects(s["halte"])
	if !ok {
		return fail(partDeparture, "halte")
	}

	dep, field := c.decodeStop(s, "abfahrtsOrt", "abfahrtsZeitpunkt", "ezAbfahrtsZeitpunkt")
	if dep == nil {
		return fail(partDeparture, field)
	}
	if len(stops) > 0 {
		dep.Platform, _ = str(stops[0], "gleis")
	}
	seg.Departure = dep

	arr, field := c.decodeStop(s, "ankunftsOrt", "ankunftsZeitpunkt", "ezAnkunftsZeitpunkt")
	if arr == nil {
		return fail(partArrival, field)
	}
	if len(stops) > 0 {
		arr.Platform, _ = str(stops[len(stops)-1], "gleis")
	}
	seg.Arrival = arr

	return seg, nil
}

// decodeStop returns nil and the offending field when a required field is
// missing. The estimated time is optional and ignored when unparsable.
func (c *Client) decodeStop(s map[string]any, placeKey, timeKey, estKey string) (*model.Stop, string) {
	place, ok := str(s, placeKey)
	if !ok {
		return nil, placeKey
	}
	raw, ok := str(s, timeKey)
	if !ok {
		return nil, timeKey
	}
	t, err := c.parseTime(raw)
	if err != nil {
		return nil, timeKey
	}
	stop := &model.Stop{Place: place, Time: t}
	if raw, ok := str(s, estKey); ok {
		if est, err := c.parseTime(raw); err == nil {
			stop.EstTime = &est
		}
	}
	return stop, ""
}

func (c *Client) parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, c.loc)
}

func objects(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, obj)
	}
	return out, true
}

func stringMap(v any) (map[string]string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(obj))
	for k, item := range obj {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[k] = s
	}
	return out, true
}

func str(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

func integer(obj map[string]any, key string) (int, bool) {
	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// optionalInteger accepts an absent or null field; ok is false only when the
// field holds something other than an integer.
func optionalInteger(obj map[string]any, key string) (*int, bool) {
	if v, present := obj[key]; !present || v == nil {
		return nil, true
	}
	i, ok := integer(obj, key)
	if !ok {
		return nil, false
	}
	return &i, true
}

// messages reads trip notices. Entries are plain strings or objects with a
// "text" field; absent or null means no notices.
func messages(v any) ([]string, bool) {
	if v == nil {
		return nil, true
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch m := item.(type) {
		case string:
			out = append(out, m)
		case map[string]any:
			text, ok := str(m, "text")
			if !ok {
				return nil, false
			}
			out = append(out, text)
		default:
			return nil, false
		}
	}
	return out, true
}
