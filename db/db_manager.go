package db

import (
	"context"
	"log"
	"time"

	"atlas-tracker/internal/util"
	"atlas-tracker/models"
)

// Operation represents a database write that needs to be executed
type Operation struct {
	Execute func() error
	Result  chan error
}

// DBManager funnels all state-changing database work through a single worker
// goroutine. The tracker is a single-user tool, but HTTP handlers still run
// on separate goroutines, and sqlite tolerates exactly one writer.
type DBManager struct {
	opQueue  chan Operation
	stopping chan struct{}
}

// NewDBManager creates a new database manager
func NewDBManager() *DBManager {
	m := &DBManager{
		opQueue:  make(chan Operation, 100),
		stopping: make(chan struct{}),
	}

	go m.worker()
	log.Println("Database access manager started")

	return m
}

// worker processes operations one at a time
func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.opQueue:
			op.Result <- util.RetryOnLock(op.Execute)
		case <-m.stopping:
			return
		}
	}
}

// ExecuteOperation runs a write on the worker goroutine and waits for it
func (m *DBManager) ExecuteOperation(execute func() error) error {
	resultChan := make(chan error, 1)
	m.opQueue <- Operation{
		Execute: execute,
		Result:  resultChan,
	}
	return <-resultChan
}

// Stop stops the database manager
func (m *DBManager) Stop() {
	close(m.stopping)
}

// Methods for specific repository operations

// UpsertVisitStatus serializes visit status writes
func (m *DBManager) UpsertVisitStatus(repo StatusRepository, ctx context.Context, status *models.VisitStatus) error {
	return m.ExecuteOperation(func() error {
		return repo.Upsert(ctx, status)
	})
}

// ReplaceLocations serializes wholesale base set replacement
func (m *DBManager) ReplaceLocations(repo LocationRepository, ctx context.Context, locations []*models.Location) error {
	return m.ExecuteOperation(func() error {
		return repo.ReplaceAll(ctx, locations)
	})
}

// UpsertCampaign serializes campaign metadata writes
func (m *DBManager) UpsertCampaign(repo CampaignRepository, ctx context.Context, campaign *models.Campaign) error {
	return m.ExecuteOperation(func() error {
		return repo.Upsert(ctx, campaign)
	})
}

// ReplaceCampaignMarkers serializes wholesale campaign marker replacement
func (m *DBManager) ReplaceCampaignMarkers(repo CampaignRepository, ctx context.Context, campaignID string, markers []*models.CampaignMarker) error {
	return m.ExecuteOperation(func() error {
		return repo.ReplaceMarkers(ctx, campaignID, markers)
	})
}

// DeleteCampaign serializes the atomic campaign delete
func (m *DBManager) DeleteCampaign(repo CampaignRepository, ctx context.Context, id string) error {
	return m.ExecuteOperation(func() error {
		return repo.Delete(ctx, id)
	})
}

// DeleteAllCampaigns serializes the clear-all delete
func (m *DBManager) DeleteAllCampaigns(repo CampaignRepository, ctx context.Context) error {
	return m.ExecuteOperation(func() error {
		return repo.DeleteAll(ctx)
	})
}

// SetCampaignMarkerVisited serializes per-marker status writes
func (m *DBManager) SetCampaignMarkerVisited(repo CampaignRepository, ctx context.Context, campaignID string, markerID int64, visited bool, visitedAt *time.Time) error {
	return m.ExecuteOperation(func() error {
		return repo.SetMarkerVisited(ctx, campaignID, markerID, visited, visitedAt)
	})
}

// ImportAll serializes the wholesale import replace
func (m *DBManager) ImportAll(repo ImportRepository, ctx context.Context, snapshot *ImportSnapshot) error {
	return m.ExecuteOperation(func() error {
		return repo.ReplaceAll(ctx, snapshot)
	})
}

// SavePreferences serializes preference writes
func (m *DBManager) SavePreferences(repo PreferencesRepository, ctx context.Context, prefs *models.Preferences) error {
	return m.ExecuteOperation(func() error {
		return repo.Save(ctx, prefs)
	})
}
