// Package firestore fetches and decodes parking lot documents from a
// Firestore-style REST query endpoint. The wire format wraps every scalar in
// a one-key object naming its type ({"stringValue": ...}, {"doubleValue": ...},
// {"integerValue": "..."}); the decoder works on generically parsed JSON so it
// stays independent of any document-database client library.
package firestore

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"parkmap/internal/models"
)

// requiredFields are the wrappers a document must carry to produce a lot.
// A document missing any one of them is dropped whole; missing scalars
// inside a present wrapper are defaulted instead.
var requiredFields = []string{
	"name",
	"latitude",
	"longitude",
	"availableSpots",
	"available_ev_spots",
	"farePerDay",
	"open_time",
	"close_time",
}

// Stats counts what happened during one decode so that envelope, document
// and scalar level failures stay separately observable.
type Stats struct {
	EnvelopeInvalid  bool `json:"envelope_invalid"`
	Documents        int  `json:"documents"`
	Decoded          int  `json:"decoded"`
	Dropped          int  `json:"dropped"`
	DefaultedScalars int  `json:"defaulted_scalars"`
}

// Decode maps a raw query response body to parking lots. It never returns an
// error: a body that does not parse, or that lacks a top-level "documents"
// array, yields an empty slice with Stats.EnvelopeInvalid set; malformed
// documents are dropped individually; unparsable scalars inside a valid
// document fall back to their defaults. Output order follows document order.
func Decode(raw []byte) ([]models.ParkingLot, Stats) {
	var stats Stats

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		stats.EnvelopeInvalid = true
		return []models.ParkingLot{}, stats
	}

	docs, ok := body["documents"].([]any)
	if !ok {
		stats.EnvelopeInvalid = true
		return []models.ParkingLot{}, stats
	}
	stats.Documents = len(docs)

	lots := make([]models.ParkingLot, 0, len(docs))
	for _, entry := range docs {
		doc, ok := entry.(map[string]any)
		if !ok {
			stats.Dropped++
			continue
		}

		fields, ok := doc["fields"].(map[string]any)
		if !ok {
			stats.Dropped++
			continue
		}

		wrappers, ok := requireWrappers(fields)
		if !ok {
			stats.Dropped++
			continue
		}

		lots = append(lots, models.ParkingLot{
			ID:               documentID(doc),
			Name:             stringValue(wrappers["name"], "", &stats),
			Latitude:         doubleValue(wrappers["latitude"], &stats),
			Longitude:        doubleValue(wrappers["longitude"], &stats),
			AvailableSpots:   integerValue(wrappers["availableSpots"], &stats),
			AvailableEVSpots: integerValue(wrappers["available_ev_spots"], &stats),
			FarePerDay:       integerValue(wrappers["farePerDay"], &stats),
			OpenTime:         stringValue(wrappers["open_time"], "N/A", &stats),
			CloseTime:        stringValue(wrappers["close_time"], "N/A", &stats),
		})
		stats.Decoded++
	}

	return lots, stats
}

// requireWrappers applies the all-or-nothing structural gate: every required
// field must be present as a typed wrapper object.
func requireWrappers(fields map[string]any) (map[string]map[string]any, bool) {
	wrappers := make(map[string]map[string]any, len(requiredFields))
	for _, name := range requiredFields {
		wrapper, ok := fields[name].(map[string]any)
		if !ok {
			return nil, false
		}
		wrappers[name] = wrapper
	}
	return wrappers, true
}

// documentID prefers the document's own identifier and falls back to a
// freshly generated one.
func documentID(doc map[string]any) string {
	if id, ok := doc["name"].(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func stringValue(wrapper map[string]any, fallback string, stats *Stats) string {
	if s, ok := wrapper["stringValue"].(string); ok {
		return s
	}
	stats.DefaultedScalars++
	return fallback
}

func doubleValue(wrapper map[string]any, stats *Stats) float64 {
	if f, ok := wrapper["doubleValue"].(float64); ok {
		return f
	}
	stats.DefaultedScalars++
	return 0
}

func integerValue(wrapper map[string]any, stats *Stats) int {
	if s, ok := wrapper["integerValue"].(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	stats.DefaultedScalars++
	return 0
}
