package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"parkmap/internal/cache"
	"parkmap/internal/firestore"
	"parkmap/internal/models"
)

// DocumentsFetcher fetches a raw query response body.
type DocumentsFetcher interface {
	FetchDocuments(ctx context.Context) ([]byte, error)
}

// SnapshotListener is notified after every state replacement. The websocket
// hub implements it to push fresh snapshots to subscribers.
type SnapshotListener interface {
	SnapshotReplaced(Snapshot)
}

// Report aggregates the failure counters for diagnostics: transport failures
// here, envelope/document/scalar failures inside the decode stats.
type Report struct {
	FetchAttempts int64           `json:"fetch_attempts"`
	FetchFailures int64           `json:"fetch_failures"`
	Lots          int             `json:"lots"`
	LastStats     firestore.Stats `json:"last_decode"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LotsService ties the upstream fetch, the decode step and the view state
// together.
type LotsService struct {
	fetcher DocumentsFetcher
	state   *ViewState
	store   *cache.SnapshotStore
	logger  *zap.Logger

	mu        sync.Mutex
	listeners []SnapshotListener

	fetchAttempts atomic.Int64
	fetchFailures atomic.Int64
}

// NewLotsService builds service. The snapshot store may be nil when redis
// is not configured.
func NewLotsService(
	fetcher DocumentsFetcher,
	state *ViewState,
	store *cache.SnapshotStore,
	logger *zap.Logger,
) *LotsService {
	return &LotsService{
		fetcher: fetcher,
		state:   state,
		store:   store,
		logger:  logger,
	}
}

// AddListener registers a snapshot listener.
func (s *LotsService) AddListener(listener SnapshotListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Refresh fetches, decodes and replaces the displayed list. A transport
// failure leaves the previous list in place; a response that is not the
// expected envelope replaces it with an empty one. Overlapping refreshes are
// not serialized, the later completion wins.
func (s *LotsService) Refresh(ctx context.Context) error {
	s.fetchAttempts.Add(1)

	raw, err := s.fetcher.FetchDocuments(ctx)
	if err != nil {
		s.fetchFailures.Add(1)
		s.logger.Warn("lot fetch failed, keeping previous list", zap.Error(err))
		return err
	}

	lots, stats := firestore.Decode(raw)
	s.state.ApplyFetchResult(lots, stats)

	if s.store != nil {
		saveErr := s.store.Save(ctx, cache.StoredSnapshot{
			Lots:      lots,
			FetchedAt: time.Now().UTC(),
		})
		if saveErr != nil {
			s.logger.Warn("failed to save lot snapshot", zap.Error(saveErr))
		}
	}

	s.notify()
	s.logger.Info("lot list replaced",
		zap.Int("documents", stats.Documents),
		zap.Int("decoded", stats.Decoded),
		zap.Int("dropped", stats.Dropped),
		zap.Bool("envelope_invalid", stats.EnvelopeInvalid),
	)
	return nil
}

// WarmStart restores the last persisted snapshot so the instance serves
// something before its first refresh. Missing store or empty cache is not
// an error.
func (s *LotsService) WarmStart(ctx context.Context) {
	if s.store == nil {
		return
	}
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load lot snapshot", zap.Error(err))
		return
	}
	if snapshot == nil || len(snapshot.Lots) == 0 {
		return
	}
	s.state.Restore(snapshot.Lots, snapshot.FetchedAt)
	s.notify()
	s.logger.Info("restored lot snapshot",
		zap.Int("lots", len(snapshot.Lots)),
		zap.Time("fetched_at", snapshot.FetchedAt),
	)
}

// SetEVOnly records the default EV filter applied when a request does not
// choose one.
func (s *LotsService) SetEVOnly(evOnly bool) {
	s.state.SetEVOnly(evOnly)
	s.notify()
}

// View returns the current snapshot.
func (s *LotsService) View() Snapshot {
	return s.state.Snapshot()
}

// Lots returns the display list for the given filter flag.
func (s *LotsService) Lots(evOnly bool) ([]models.ParkingLot, time.Time) {
	snapshot := s.state.Snapshot()
	return models.FilterEV(snapshot.Lots, evOnly), snapshot.UpdatedAt
}

// Markers returns the marker view of the current list, unfiltered.
func (s *LotsService) Markers() []models.Marker {
	snapshot := s.state.Snapshot()
	return models.MarkersFor(snapshot.Lots)
}

// Stats reports the accumulated failure counters.
func (s *LotsService) Stats() Report {
	snapshot := s.state.Snapshot()
	return Report{
		FetchAttempts: s.fetchAttempts.Load(),
		FetchFailures: s.fetchFailures.Load(),
		Lots:          len(snapshot.Lots),
		LastStats:     snapshot.Stats,
		UpdatedAt:     snapshot.UpdatedAt,
	}
}

func (s *LotsService) notify() {
	snapshot := s.state.Snapshot()
	s.mu.Lock()
	listeners := make([]SnapshotListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, listener := range listeners {
		listener.SnapshotReplaced(snapshot)
	}
}
