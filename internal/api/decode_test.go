package api

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecodeClient(logs *bytes.Buffer) *Client {
	logger := slog.New(slog.NewTextHandler(logs, nil))
	return NewClient(WithLocation(cet), WithLogger(logger))
}

func TestDecodeTrips(t *testing.T) {
	var logs bytes.Buffer
	client := newDecodeClient(&logs)

	res, err := client.decodeTrips(responseJSON(t, sampleConnection("t1")))
	require.NoError(t, err)
	require.Len(t, res.Trips, 1)
	assert.Empty(t, logs.String())

	trip := res.Trips[0]
	assert.Equal(t, "t1", trip.ID)
	assert.Equal(t, 16080, trip.Duration)
	require.NotNil(t, trip.EstDuration)
	assert.Equal(t, 15660, *trip.EstDuration)
	assert.Equal(t, 2, trip.Changes)
	assert.Equal(t, []string{"Bauarbeiten", "Zugausfall möglich"}, trip.Warnings)
	require.Len(t, trip.Segments, 3)

	first := trip.Segments[0]
	assert.Equal(t, "ICE 777", first.By.Name)
	assert.Equal(t, "ICE", first.By.ShortName)
	assert.Equal(t, "Frankfurt(Main)Hbf", first.By.Direction)
	assert.Nil(t, first.By.Distance)
	assert.Equal(t, 3600, first.Duration)
	assert.Equal(t, "Hamburg Hbf", first.Departure.Place)
	assert.Equal(t, "8", first.Departure.Platform)
	assert.Equal(t, "13", first.Arrival.Platform)
	assert.True(t, time.Date(2024, 6, 1, 12, 28, 0, 0, cet).Equal(first.Departure.Time))
	require.NotNil(t, first.Departure.EstTime)
	assert.Equal(t, 7*time.Minute, first.Departure.Delay())
	assert.Nil(t, first.Arrival.EstTime)

	walk := trip.Segments[2]
	assert.True(t, walk.IsWalk())
	require.NotNil(t, walk.By.Distance)
	assert.Equal(t, 154, *walk.By.Distance)
	assert.Empty(t, walk.Departure.Platform)

	assert.Equal(t, map[string]string{"earlier": "token-earlier", "later": "token-later"}, res.References)
}

func TestDecodeTripsIsIdempotent(t *testing.T) {
	var logs bytes.Buffer
	client := newDecodeClient(&logs)
	body := responseJSON(t, sampleConnection("t1"), sampleConnection("t2"))

	a, err := client.decodeTrips(body)
	require.NoError(t, err)
	b, err := client.decodeTrips(body)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeTripsDropsBrokenConnections(t *testing.T) {
	missingDepartureTime := sampleConnection("broken")
	seg := missingDepartureTime["verbindungsAbschnitte"].([]any)[1].(map[string]any)
	delete(seg, "abfahrtsZeitpunkt")

	var logs bytes.Buffer
	client := newDecodeClient(&logs)
	res, err := client.decodeTrips(responseJSON(t, sampleConnection("t1"), missingDepartureTime, sampleConnection("t3")))
	require.NoError(t, err)
	require.Len(t, res.Trips, 2)
	assert.Equal(t, "t1", res.Trips[0].ID)
	assert.Equal(t, "t3", res.Trips[1].ID)
	assert.Contains(t, logs.String(), "dropping connection")
	assert.Contains(t, logs.String(), "reason=departure")
	assert.Contains(t, logs.String(), "connection=1")
}

func TestDecodeTripsDropReasons(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(c map[string]any)
		wantReason string
	}{
		{"no segments", func(c map[string]any) { delete(c, "verbindungsAbschnitte") }, "segments"},
		{"empty segments", func(c map[string]any) { c["verbindungsAbschnitte"] = []any{} }, "segments"},
		{"segment not an object", func(c map[string]any) { c["verbindungsAbschnitte"] = []any{"x"} }, "segments"},
		{"no conveyance", func(c map[string]any) { firstSegment(c)["verkehrsmittel"] = nil }, "conveyance"},
		{"conveyance without name", func(c map[string]any) { firstSegment(c)["verkehrsmittel"] = map[string]any{"kurzText": "ICE"} }, "conveyance"},
		{"no stop list", func(c map[string]any) { delete(firstSegment(c), "halte") }, "departure"},
		{"bad departure time", func(c map[string]any) { firstSegment(c)["abfahrtsZeitpunkt"] = "12:28" }, "departure"},
		{"no arrival place", func(c map[string]any) { delete(firstSegment(c), "ankunftsOrt") }, "arrival"},
		{"no trip id", func(c map[string]any) { delete(c, "tripId") }, "trip"},
		{"fractional duration", func(c map[string]any) { c["verbindungsDauerInSeconds"] = 12.5 }, "trip"},
		{"no changes", func(c map[string]any) { delete(c, "umstiegsAnzahl") }, "trip"},
		{"estimated duration wrong type", func(c map[string]any) { c["ezVerbindungsDauerInSeconds"] = "soon" }, "trip"},
		{"warnings wrong type", func(c map[string]any) { c["meldungen"] = "Bauarbeiten" }, "trip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := sampleConnection("broken")
			tt.mutate(broken)

			var logs bytes.Buffer
			client := newDecodeClient(&logs)
			res, err := client.decodeTrips(responseJSON(t, broken, sampleConnection("ok")))
			require.NoError(t, err)
			require.Len(t, res.Trips, 1)
			assert.Equal(t, "ok", res.Trips[0].ID)
			assert.Contains(t, logs.String(), "reason="+tt.wantReason)
		})
	}
}

func firstSegment(c map[string]any) map[string]any {
	return c["verbindungsAbschnitte"].([]any)[0].(map[string]any)
}

func TestDecodeTripsOptionalFields(t *testing.T) {
	c := sampleConnection("t1")
	c["ezVerbindungsDauerInSeconds"] = nil
	delete(c, "meldungen")
	seg := firstSegment(c)
	seg["ezAbfahrtsZeitpunkt"] = "not a time"
	delete(seg, "abschnittsDauer")

	var logs bytes.Buffer
	client := newDecodeClient(&logs)
	res, err := client.decodeTrips(responseJSON(t, c))
	require.NoError(t, err)
	require.Len(t, res.Trips, 1)

	trip := res.Trips[0]
	assert.Nil(t, trip.EstDuration)
	assert.Nil(t, trip.Warnings)
	assert.Nil(t, trip.Segments[0].Departure.EstTime)
	assert.Equal(t, 0, trip.Segments[0].Duration)
}

func TestDecodeTripsTopLevelErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"array", `[]`},
		{"missing connections", `{"verbindungReference": {"later": "x"}}`},
		{"missing references", `{"verbindungen": []}`},
		{"references not strings", `{"verbindungen": [], "verbindungReference": {"later": 1}}`},
		{"connection not an object", `{"verbindungen": [1], "verbindungReference": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			client := newDecodeClient(&logs)
			_, err := client.decodeTrips([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
