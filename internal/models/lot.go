package models

// ParkingLot is one decoded lot record. Values are fixed at decode time;
// a new fetch produces a fresh slice rather than mutating existing lots.
type ParkingLot struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	AvailableSpots   int     `json:"available_spots"`
	AvailableEVSpots int     `json:"available_ev_spots"`
	FarePerDay       int     `json:"fare_per_day"`
	OpenTime         string  `json:"open_time"`
	CloseTime        string  `json:"close_time"`
}

// MarkerColor names the map marker color for a lot.
type MarkerColor string

const (
	MarkerEVAvailable MarkerColor = "green"
	MarkerAvailable   MarkerColor = "blue"
	MarkerFull        MarkerColor = "red"
)

// Marker returns the color for this lot: green when EV spots are free,
// blue when only regular spots are free, red when the lot is full.
func (l ParkingLot) Marker() MarkerColor {
	switch {
	case l.AvailableEVSpots > 0:
		return MarkerEVAvailable
	case l.AvailableSpots > 0:
		return MarkerAvailable
	default:
		return MarkerFull
	}
}

// FilterEV returns the lots to display for the given filter flag. With the
// flag off the input slice is returned as-is; with it on, only lots with at
// least one free EV spot survive, in their original order.
func FilterEV(lots []ParkingLot, evOnly bool) []ParkingLot {
	if !evOnly {
		return lots
	}
	filtered := make([]ParkingLot, 0, len(lots))
	for _, lot := range lots {
		if lot.AvailableEVSpots > 0 {
			filtered = append(filtered, lot)
		}
	}
	return filtered
}
