package models

// Marker is the reduced lot view a map renderer needs to place and color a
// pin.
type Marker struct {
	ID               string      `json:"id"`
	Latitude         float64     `json:"latitude"`
	Longitude        float64     `json:"longitude"`
	Color            MarkerColor `json:"color"`
	AvailableSpots   int         `json:"available_spots"`
	AvailableEVSpots int         `json:"available_ev_spots"`
}

// MarkersFor projects lots onto their markers, preserving order.
func MarkersFor(lots []ParkingLot) []Marker {
	markers := make([]Marker, 0, len(lots))
	for _, lot := range lots {
		markers = append(markers, Marker{
			ID:               lot.ID,
			Latitude:         lot.Latitude,
			Longitude:        lot.Longitude,
			Color:            lot.Marker(),
			AvailableSpots:   lot.AvailableSpots,
			AvailableEVSpots: lot.AvailableEVSpots,
		})
	}
	return markers
}
