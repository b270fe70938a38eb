package service

import (
	"sync"
	"time"

	"parkmap/internal/firestore"
	"parkmap/internal/models"
)

// Region is the map viewport framing the displayed lots.
type Region struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	SpanLat   float64 `json:"span_lat"`
	SpanLng   float64 `json:"span_lng"`
}

const minRegionSpan = 0.02

// Snapshot is a read-only copy of the view state, safe to hand to any
// goroutine.
type Snapshot struct {
	Lots      []models.ParkingLot `json:"lots"`
	EVOnly    bool                `json:"ev_only"`
	Region    Region              `json:"region"`
	Stats     firestore.Stats     `json:"stats"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ViewState owns the displayed lot list, the EV filter flag and the map
// region. It is mutated only through its action methods; readers get copies
// via Snapshot. A fetch result replaces the whole slice in one step, so no
// reader ever observes a partially built list.
type ViewState struct {
	mu            sync.RWMutex
	lots          []models.ParkingLot
	evOnly        bool
	region        Region
	defaultRegion Region
	stats         firestore.Stats
	updatedAt     time.Time
}

// NewViewState returns state seeded with the given default region, shown
// until the first fetch result arrives.
func NewViewState(defaultRegion Region) *ViewState {
	return &ViewState{
		region:        defaultRegion,
		defaultRegion: defaultRegion,
	}
}

// ApplyFetchResult replaces the lot list wholesale and reframes the region
// around the new lots. Later applications win over earlier ones regardless
// of fetch start order.
func (s *ViewState) ApplyFetchResult(lots []models.ParkingLot, stats firestore.Stats) {
	region := regionAround(lots)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots = lots
	s.stats = stats
	s.updatedAt = time.Now().UTC()
	if region != nil {
		s.region = *region
	} else {
		s.region = s.defaultRegion
	}
}

// Restore seeds the list from a persisted snapshot, keeping the original
// fetch time so readers can tell restored data from fresh data.
func (s *ViewState) Restore(lots []models.ParkingLot, fetchedAt time.Time) {
	region := regionAround(lots)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots = lots
	s.updatedAt = fetchedAt.UTC()
	if region != nil {
		s.region = *region
	}
}

// SetEVOnly records the filter toggle.
func (s *ViewState) SetEVOnly(evOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evOnly = evOnly
}

// SetRegion records an explicit viewport change.
func (s *ViewState) SetRegion(region Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = region
}

// Snapshot returns a copy of the current state. The lot slice is copied so
// callers can hold it across later replacements.
func (s *ViewState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lots := make([]models.ParkingLot, len(s.lots))
	copy(lots, s.lots)
	return Snapshot{
		Lots:      lots,
		EVOnly:    s.evOnly,
		Region:    s.region,
		Stats:     s.stats,
		UpdatedAt: s.updatedAt,
	}
}

// regionAround frames the bounding box of the lots with a minimum span, or
// nil when there is nothing to frame.
func regionAround(lots []models.ParkingLot) *Region {
	if len(lots) == 0 {
		return nil
	}

	minLat, maxLat := lots[0].Latitude, lots[0].Latitude
	minLng, maxLng := lots[0].Longitude, lots[0].Longitude
	for _, lot := range lots[1:] {
		if lot.Latitude < minLat {
			minLat = lot.Latitude
		}
		if lot.Latitude > maxLat {
			maxLat = lot.Latitude
		}
		if lot.Longitude < minLng {
			minLng = lot.Longitude
		}
		if lot.Longitude > maxLng {
			maxLng = lot.Longitude
		}
	}

	region := Region{
		CenterLat: (minLat + maxLat) / 2,
		CenterLng: (minLng + maxLng) / 2,
		SpanLat:   (maxLat - minLat) * 1.2,
		SpanLng:   (maxLng - minLng) * 1.2,
	}
	if region.SpanLat < minRegionSpan {
		region.SpanLat = minRegionSpan
	}
	if region.SpanLng < minRegionSpan {
		region.SpanLng = minRegionSpan
	}
	return &region
}
