package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func segmentJSON(from, dep, to, arr, vehicle string) map[string]any {
	return map[string]any{
		"abschnittsDauer":   3600,
		"abfahrtsOrt":       from,
		"abfahrtsZeitpunkt": dep,
		"ankunftsOrt":       to,
		"ankunftsZeitpunkt": arr,
		"verkehrsmittel": map[string]any{
			"name":     vehicle,
			"kurzText": "ICE",
			"richtung": to,
		},
		"halte": []any{
			map[string]any{"name": from, "gleis": "8"},
			map[string]any{"name": "Zwischenhalt"},
			map[string]any{"name": to, "gleis": "13"},
		},
	}
}

func walkJSON(from, dep, to, arr string, meters int) map[string]any {
	return map[string]any{
		"abschnittsDauer":   240,
		"abfahrtsOrt":       from,
		"abfahrtsZeitpunkt": dep,
		"ankunftsOrt":       to,
		"ankunftsZeitpunkt": arr,
		"distanz":           meters,
		"verkehrsmittel":    map[string]any{"name": "Fußweg"},
		"halte":             []any{},
	}
}

func connectionJSON(id string, segments ...map[string]any) map[string]any {
	list := make([]any, 0, len(segments))
	for _, s := range segments {
		list = append(list, s)
	}
	return map[string]any{
		"tripId":                    id,
		"verbindungsDauerInSeconds": 16080,
		"umstiegsAnzahl":            len(segments) - 1,
		"verbindungsAbschnitte":     list,
	}
}

func responseJSON(t *testing.T, connections ...map[string]any) []byte {
	t.Helper()
	list := make([]any, 0, len(connections))
	for _, c := range connections {
		list = append(list, c)
	}
	data, err := json.Marshal(map[string]any{
		"verbindungen": list,
		"verbindungReference": map[string]any{
			"earlier": "token-earlier",
			"later":   "token-later",
		},
	})
	require.NoError(t, err)
	return data
}

// sampleConnection is Hamburg -> Frankfurt -> Saarbrücken with a trailing walk.
func sampleConnection(id string) map[string]any {
	c := connectionJSON(id,
		segmentJSON("Hamburg Hbf", "2024-06-01T12:28:00", "Frankfurt(Main)Hbf", "2024-06-01T16:56:00", "ICE 777"),
		segmentJSON("Frankfurt(Main)Hbf", "2024-06-01T17:26:00", "Saarbrücken Hbf", "2024-06-01T20:13:00", "RE 3"),
		walkJSON("Saarbrücken Hbf", "2024-06-01T20:13:00", "Hauptbahnhof, Saarbrücken", "2024-06-01T20:18:00", 154),
	)
	first := c["verbindungsAbschnitte"].([]any)[0].(map[string]any)
	first["ezAbfahrtsZeitpunkt"] = "2024-06-01T12:35:00"
	c["ezVerbindungsDauerInSeconds"] = 15660
	c["meldungen"] = []any{"Bauarbeiten", map[string]any{"text": "Zugausfall möglich"}}
	return c
}
