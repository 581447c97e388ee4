package status

import (
	"context"
	"log"
	"sync"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/models"
)

// StatusService is the only mutable source of truth for the global "visited"
// fact. It keeps the full status set in memory and treats the database as
// best-effort durability: a failed write is logged and the in-memory value
// still applies to the current render pass.
//
// Per-campaign visited flags are deliberately independent of this store; they
// live on the campaign markers and are toggled through the campaign service.
type StatusService struct {
	repo      db.StatusRepository
	dbManager *db.DBManager

	mu       sync.RWMutex
	statuses map[int64]*models.VisitStatus
}

// NewStatusService creates the status store and warms it from the database.
// A failed read degrades to an empty store.
func NewStatusService(repo db.StatusRepository, dbManager *db.DBManager) *StatusService {
	s := &StatusService{
		repo:      repo,
		dbManager: dbManager,
		statuses:  make(map[int64]*models.VisitStatus),
	}
	if err := s.Reload(context.Background()); err != nil {
		log.Printf("Failed to load visit statuses, starting empty: %v", err)
	}
	return s
}

// Reload replaces the in-memory set with the persisted one.
func (s *StatusService) Reload(ctx context.Context) error {
	statuses, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	loaded := make(map[int64]*models.VisitStatus, len(statuses))
	for _, status := range statuses {
		loaded[status.LocationID] = status
	}

	s.mu.Lock()
	s.statuses = loaded
	s.mu.Unlock()
	return nil
}

// Get returns the visited flag for a location; absence means not visited.
func (s *StatusService) Get(locationID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[locationID]
	return ok && status.Visited
}

// Timestamp returns when the location was marked visited, nil if it is not.
func (s *StatusService) Timestamp(locationID int64) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.statuses[locationID]; ok {
		return status.VisitedAt
	}
	return nil
}

// Set updates the visited flag. VisitedAt is set to now on a transition to
// true and cleared on a transition to false, keeping the invariant that a
// timestamp exists iff the location is visited. Setting the flag to its
// current value is a no-op, so the original visit time is preserved.
func (s *StatusService) Set(ctx context.Context, locationID int64, visited bool) *models.VisitStatus {
	s.mu.Lock()
	if prev, ok := s.statuses[locationID]; ok && prev.Visited == visited {
		s.mu.Unlock()
		return prev
	}

	status := &models.VisitStatus{LocationID: locationID, Visited: visited}
	if visited {
		now := time.Now()
		status.VisitedAt = &now
	}
	s.statuses[locationID] = status
	s.mu.Unlock()

	if err := s.dbManager.UpsertVisitStatus(s.repo, ctx, status); err != nil {
		log.Printf("Failed to persist visit status for %d, keeping in-memory value: %v", locationID, err)
	}

	return status
}

// Snapshot returns a copy of the current status map for one reconciliation
// pass.
func (s *StatusService) Snapshot() map[int64]*models.VisitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[int64]*models.VisitStatus, len(s.statuses))
	for id, status := range s.statuses {
		snapshot[id] = status
	}
	return snapshot
}
