package collections

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flicksift/flicksift/internal/events"
)

// Service ties the store, the discovery checker, and the event broadcaster
// together. The scheduler and the API handlers both drive it.
type Service struct {
	store       *Store
	checker     *Checker
	broadcaster events.Broadcaster
	logger      zerolog.Logger
}

// RefreshSummary reports the outcome of one refresh pass.
type RefreshSummary struct {
	Checked  int            `json:"checked"`
	Updated  int            `json:"updated"`
	NewItems map[string]int `json:"newItems"` // collection ID -> count
}

// NewService creates a collections service.
func NewService(store *Store, checker *Checker, broadcaster events.Broadcaster, logger zerolog.Logger) *Service {
	if broadcaster == nil {
		broadcaster = events.Nop{}
	}
	return &Service{
		store:       store,
		checker:     checker,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "collections").Logger(),
	}
}

// Create stores a new collection.
func (s *Service) Create(ctx context.Context, col *Collection) error {
	if col.UpdateFrequency == "" {
		col.UpdateFrequency = FrequencyDaily
	}
	if err := s.store.Create(ctx, col); err != nil {
		return err
	}
	s.broadcaster.Broadcast(events.CollectionUpdated, col)
	return nil
}

// Get fetches a collection by ID.
func (s *Service) Get(ctx context.Context, id string) (*Collection, error) {
	return s.store.Get(ctx, id)
}

// List returns all collections.
func (s *Service) List(ctx context.Context) ([]*Collection, error) {
	return s.store.List(ctx)
}

// Update rewrites a collection.
func (s *Service) Update(ctx context.Context, col *Collection) error {
	if err := s.store.Update(ctx, col); err != nil {
		return err
	}
	s.broadcaster.Broadcast(events.CollectionUpdated, col)
	return nil
}

// Delete removes a collection.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.broadcaster.Broadcast(events.CollectionDeleted, map[string]string{"id": id})
	return nil
}

// RefreshDue runs the auto-discovery job for every collection that is due.
// Per-collection failures are logged and skipped so one bad collection
// cannot stall the pass.
func (s *Service) RefreshDue(ctx context.Context) error {
	cols, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	s.broadcaster.Broadcast(events.CollectionRefreshStarted, map[string]int{"total": len(cols)})

	summary := RefreshSummary{NewItems: make(map[string]int)}
	for _, col := range cols {
		if ctx.Err() != nil {
			s.logger.Info().Msg("Refresh pass cancelled")
			break
		}
		if !s.checker.Due(col) {
			continue
		}
		summary.Checked++

		newIDs, err := s.refreshOne(ctx, col)
		if err != nil {
			s.logger.Warn().Err(err).Str("collection", col.ID).Msg("Failed to refresh collection")
			continue
		}
		if len(newIDs) > 0 {
			summary.Updated++
			summary.NewItems[col.ID] = len(newIDs)
		}
	}

	s.broadcaster.Broadcast(events.CollectionRefreshCompleted, summary)

	s.logger.Info().
		Int("checked", summary.Checked).
		Int("updated", summary.Updated).
		Msg("Collection refresh pass completed")

	return nil
}

// Refresh runs the auto-discovery job for a single collection immediately,
// regardless of its schedule. Returns the newly discovered IDs.
func (s *Service) Refresh(ctx context.Context, id string) ([]int, error) {
	col, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refreshOne(ctx, col)
}

func (s *Service) refreshOne(ctx context.Context, col *Collection) ([]int, error) {
	newIDs := s.checker.CheckForNewContent(ctx, col)

	if err := s.store.RecordCheck(ctx, col, newIDs, time.Now()); err != nil {
		return nil, err
	}

	if len(newIDs) > 0 {
		s.broadcaster.Broadcast(events.CollectionUpdated, col)
		s.logger.Info().
			Str("collection", col.ID).
			Str("name", col.Name).
			Int("newItems", len(newIDs)).
			Msg("Discovered new content for collection")
	}

	return newIDs, nil
}
