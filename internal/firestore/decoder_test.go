package firestore

import (
	"encoding/json"
	"fmt"
	"testing"
)

const validDoc = `{
	"name": "d1",
	"fields": {
		"name": {"stringValue": "Lot A"},
		"latitude": {"doubleValue": 4.6},
		"longitude": {"doubleValue": -74.06},
		"availableSpots": {"integerValue": "3"},
		"available_ev_spots": {"integerValue": "1"},
		"farePerDay": {"integerValue": "16000"},
		"open_time": {"stringValue": "6:00 AM"},
		"close_time": {"stringValue": "10:00 PM"}
	}
}`

func envelope(docs ...string) []byte {
	body := `{"documents":[`
	for i, doc := range docs {
		if i > 0 {
			body += ","
		}
		body += doc
	}
	return []byte(body + `]}`)
}

func TestDecodeValidDocument(t *testing.T) {
	lots, stats := Decode(envelope(validDoc))

	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}

	lot := lots[0]
	if lot.ID != "d1" {
		t.Errorf("expected id d1, got %q", lot.ID)
	}
	if lot.Name != "Lot A" {
		t.Errorf("expected name Lot A, got %q", lot.Name)
	}
	if lot.Latitude != 4.6 || lot.Longitude != -74.06 {
		t.Errorf("unexpected coordinate (%v, %v)", lot.Latitude, lot.Longitude)
	}
	if lot.AvailableSpots != 3 || lot.AvailableEVSpots != 1 || lot.FarePerDay != 16000 {
		t.Errorf("unexpected counts %d/%d fare %d", lot.AvailableSpots, lot.AvailableEVSpots, lot.FarePerDay)
	}
	if lot.OpenTime != "6:00 AM" || lot.CloseTime != "10:00 PM" {
		t.Errorf("unexpected times %q/%q", lot.OpenTime, lot.CloseTime)
	}

	if stats.Documents != 1 || stats.Decoded != 1 || stats.Dropped != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.EnvelopeInvalid {
		t.Error("envelope should be valid")
	}
}

func TestDecodeEmptyAndMalformedBodies(t *testing.T) {
	cases := map[string][]byte{
		"empty documents":   []byte(`{"documents": []}`),
		"no documents key":  []byte(`{}`),
		"documents not arr": []byte(`{"documents": {"d": 1}}`),
		"not json":          []byte(`<html>not found</html>`),
		"empty body":        nil,
	}

	for name, body := range cases {
		lots, _ := Decode(body)
		if lots == nil {
			t.Errorf("%s: expected non-nil slice", name)
		}
		if len(lots) != 0 {
			t.Errorf("%s: expected empty result, got %d lots", name, len(lots))
		}
	}
}

func TestDecodeEnvelopeInvalidFlag(t *testing.T) {
	if _, stats := Decode([]byte(`not json`)); !stats.EnvelopeInvalid {
		t.Error("non-json body should set EnvelopeInvalid")
	}
	if _, stats := Decode([]byte(`{}`)); !stats.EnvelopeInvalid {
		t.Error("missing documents key should set EnvelopeInvalid")
	}
	if _, stats := Decode([]byte(`{"documents": []}`)); stats.EnvelopeInvalid {
		t.Error("empty documents array is a valid envelope")
	}
}

func TestDecodeDropsDocumentMissingRequiredWrapper(t *testing.T) {
	for _, field := range requiredFields {
		doc := docWithoutField(t, field)

		lots, stats := Decode(envelope(doc))
		if len(lots) != 0 {
			t.Errorf("document missing %s should be dropped", field)
		}
		if stats.Dropped != 1 {
			t.Errorf("document missing %s: expected Dropped=1, got %d", field, stats.Dropped)
		}
	}
}

// docWithoutField returns the valid document with one field wrapper removed.
func docWithoutField(t *testing.T, field string) string {
	t.Helper()

	var doc map[string]any
	if err := json.Unmarshal([]byte(validDoc), &doc); err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	fields := doc["fields"].(map[string]any)
	delete(fields, field)

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	return string(out)
}

func TestDecodeDropsDocumentWithNonObjectWrapper(t *testing.T) {
	doc := `{
		"name": "d1",
		"fields": {
			"name": "Lot A",
			"latitude": {"doubleValue": 4.6},
			"longitude": {"doubleValue": -74.06},
			"availableSpots": {"integerValue": "3"},
			"available_ev_spots": {"integerValue": "1"},
			"farePerDay": {"integerValue": "16000"},
			"open_time": {"stringValue": "6:00 AM"},
			"close_time": {"stringValue": "10:00 PM"}
		}
	}`

	if lots, _ := Decode(envelope(doc)); len(lots) != 0 {
		t.Error("bare scalar in place of a typed wrapper should drop the document")
	}
}

func TestDecodeDropsDocumentWithoutFields(t *testing.T) {
	lots, stats := Decode(envelope(`{"name": "d1"}`, validDoc))
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
	if stats.Dropped != 1 || stats.Decoded != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestDecodeDefaultsUnparsableScalars(t *testing.T) {
	doc := `{
		"name": "d1",
		"fields": {
			"name": {"other": 1},
			"latitude": {"doubleValue": "not a number"},
			"longitude": {"doubleValue": -74.06},
			"availableSpots": {"integerValue": "many"},
			"available_ev_spots": {"integerValue": "1"},
			"farePerDay": {},
			"open_time": {"stringValue": "6:00 AM"},
			"close_time": {}
		}
	}`

	lots, stats := Decode(envelope(doc))
	if len(lots) != 1 {
		t.Fatalf("scalar failures must not drop the document, got %d lots", len(lots))
	}

	lot := lots[0]
	if lot.Name != "" {
		t.Errorf("expected empty name, got %q", lot.Name)
	}
	if lot.Latitude != 0 {
		t.Errorf("expected latitude 0, got %v", lot.Latitude)
	}
	if lot.Longitude != -74.06 {
		t.Errorf("expected longitude -74.06, got %v", lot.Longitude)
	}
	if lot.AvailableSpots != 0 {
		t.Errorf("expected availableSpots 0, got %d", lot.AvailableSpots)
	}
	if lot.FarePerDay != 0 {
		t.Errorf("expected farePerDay 0, got %d", lot.FarePerDay)
	}
	if lot.OpenTime != "6:00 AM" {
		t.Errorf("expected open time kept, got %q", lot.OpenTime)
	}
	if lot.CloseTime != "N/A" {
		t.Errorf("expected close time N/A, got %q", lot.CloseTime)
	}
	if stats.DefaultedScalars != 5 {
		t.Errorf("expected 5 defaulted scalars, got %d", stats.DefaultedScalars)
	}
}

func TestDecodePreservesDocumentOrder(t *testing.T) {
	first := namedDoc("first", "Lot 1")
	broken := `{"name": "broken", "fields": {"name": {"stringValue": "x"}}}`
	second := namedDoc("second", "Lot 2")
	third := namedDoc("third", "Lot 3")

	lots, stats := Decode(envelope(first, broken, second, third))
	if len(lots) != 3 {
		t.Fatalf("expected 3 lots, got %d", len(lots))
	}
	for i, id := range []string{"first", "second", "third"} {
		if lots[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, lots[i].ID)
		}
	}
	if stats.Dropped != 1 {
		t.Errorf("expected 1 dropped document, got %d", stats.Dropped)
	}
}

func TestDecodeGeneratesIDWhenIdentifierMissing(t *testing.T) {
	doc := `{
		"fields": {
			"name": {"stringValue": "Lot A"},
			"latitude": {"doubleValue": 4.6},
			"longitude": {"doubleValue": -74.06},
			"availableSpots": {"integerValue": "3"},
			"available_ev_spots": {"integerValue": "1"},
			"farePerDay": {"integerValue": "16000"},
			"open_time": {"stringValue": "6:00 AM"},
			"close_time": {"stringValue": "10:00 PM"}
		}
	}`

	lots, _ := Decode(envelope(doc, doc))
	if len(lots) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(lots))
	}
	if lots[0].ID == "" || lots[1].ID == "" {
		t.Error("generated ids must not be empty")
	}
	if lots[0].ID == lots[1].ID {
		t.Error("generated ids must be unique")
	}
}

func namedDoc(id, name string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"fields": {
			"name": {"stringValue": %q},
			"latitude": {"doubleValue": 4.6},
			"longitude": {"doubleValue": -74.06},
			"availableSpots": {"integerValue": "3"},
			"available_ev_spots": {"integerValue": "1"},
			"farePerDay": {"integerValue": "16000"},
			"open_time": {"stringValue": "6:00 AM"},
			"close_time": {"stringValue": "10:00 PM"}
		}
	}`, id, name)
}
