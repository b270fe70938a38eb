package models

import "testing"

func sampleLots() []ParkingLot {
	return []ParkingLot{
		{ID: "a", AvailableSpots: 3, AvailableEVSpots: 1},
		{ID: "b", AvailableSpots: 5, AvailableEVSpots: 0},
		{ID: "c", AvailableSpots: 0, AvailableEVSpots: 0},
		{ID: "d", AvailableSpots: 2, AvailableEVSpots: 2},
	}
}

func TestFilterEVOffIsIdentity(t *testing.T) {
	lots := sampleLots()
	filtered := FilterEV(lots, false)

	if len(filtered) != len(lots) {
		t.Fatalf("expected %d lots, got %d", len(lots), len(filtered))
	}
	for i := range lots {
		if filtered[i].ID != lots[i].ID {
			t.Errorf("position %d: expected %s, got %s", i, lots[i].ID, filtered[i].ID)
		}
	}
}

func TestFilterEVOnKeepsOnlyEVLotsInOrder(t *testing.T) {
	filtered := FilterEV(sampleLots(), true)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 lots, got %d", len(filtered))
	}
	if filtered[0].ID != "a" || filtered[1].ID != "d" {
		t.Errorf("unexpected order %s, %s", filtered[0].ID, filtered[1].ID)
	}
}

func TestFilterEVEmptyInput(t *testing.T) {
	if filtered := FilterEV(nil, true); len(filtered) != 0 {
		t.Errorf("expected empty result, got %d lots", len(filtered))
	}
}

func TestMarkerColorRule(t *testing.T) {
	cases := []struct {
		spots, evSpots int
		want           MarkerColor
	}{
		{3, 1, MarkerEVAvailable},
		{0, 1, MarkerEVAvailable},
		{5, 0, MarkerAvailable},
		{0, 0, MarkerFull},
	}

	for _, tc := range cases {
		lot := ParkingLot{AvailableSpots: tc.spots, AvailableEVSpots: tc.evSpots}
		if got := lot.Marker(); got != tc.want {
			t.Errorf("spots=%d ev=%d: expected %s, got %s", tc.spots, tc.evSpots, tc.want, got)
		}
	}
}

func TestMarkersForProjection(t *testing.T) {
	lots := []ParkingLot{
		{ID: "a", Latitude: 4.6, Longitude: -74.06, AvailableSpots: 3, AvailableEVSpots: 1},
		{ID: "b", AvailableSpots: 0, AvailableEVSpots: 0},
	}

	markers := MarkersFor(lots)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].ID != "a" || markers[0].Color != MarkerEVAvailable {
		t.Errorf("unexpected first marker %+v", markers[0])
	}
	if markers[0].Latitude != 4.6 || markers[0].Longitude != -74.06 {
		t.Errorf("marker coordinate not carried over: %+v", markers[0])
	}
	if markers[1].Color != MarkerFull {
		t.Errorf("expected full marker, got %s", markers[1].Color)
	}
}
