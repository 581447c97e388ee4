package planner

import (
	"context"
	"fmt"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/internal/campaign"
	"atlas-tracker/internal/cityfilter"
	"atlas-tracker/internal/fetch"
	"atlas-tracker/internal/metrics"
	"atlas-tracker/internal/preferences"
	"atlas-tracker/internal/reconcile"
	"atlas-tracker/internal/status"
	"atlas-tracker/models"
)

// LocationFetcher is the slice of the marker API client the base refresh needs.
type LocationFetcher interface {
	Locations(ctx context.Context) ([]*models.Location, error)
}

var _ LocationFetcher = (*fetch.Client)(nil)

// PlannerService assembles reconciliation snapshots from the stores and runs
// the reconciler after every state change. It owns no state itself.
type PlannerService struct {
	locationRepo    db.LocationRepository
	statusService   *status.StatusService
	campaignService *campaign.CampaignService
	prefsService    *preferences.PreferencesService
	fetcher         LocationFetcher
	dbManager       *db.DBManager
}

// NewPlannerService creates a new planner service
func NewPlannerService(
	locationRepo db.LocationRepository,
	statusService *status.StatusService,
	campaignService *campaign.CampaignService,
	prefsService *preferences.PreferencesService,
	fetcher LocationFetcher,
	dbManager *db.DBManager,
) *PlannerService {
	return &PlannerService{
		locationRepo:    locationRepo,
		statusService:   statusService,
		campaignService: campaignService,
		prefsService:    prefsService,
		fetcher:         fetcher,
		dbManager:       dbManager,
	}
}

// RenderPlan recomputes the full render plan from current state. Recomputing
// everything is the intended design: the reconciler is pure and linear in the
// number of markers.
func (s *PlannerService) RenderPlan(ctx context.Context) (*models.RenderPlan, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading locations: %w", err)
	}
	campaigns, markers, visible, err := s.campaignService.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	prefs := s.prefsService.Get(ctx)

	started := time.Now()
	plan := reconcile.Plan(reconcile.Input{
		Locations:        locations,
		CampaignMarkers:  markers,
		Statuses:         s.statusService.Snapshot(),
		Campaigns:        campaigns,
		ShowBaseMarkers:  prefs.ShowBaseMarkers,
		VisibleCampaigns: visible,
		CityFilter:       prefs.SelectedCity,
	})
	metrics.ObserveReconcile(time.Since(started).Seconds(), len(plan.Markers))

	return &plan, nil
}

// RefreshLocations refetches the paginated base listing and supersedes the
// persisted location set wholesale. Visit statuses are keyed by location id
// and survive the refresh.
func (s *PlannerService) RefreshLocations(ctx context.Context) (int, error) {
	locations, err := s.fetcher.Locations(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.dbManager.ReplaceLocations(s.locationRepo, ctx, locations); err != nil {
		return 0, fmt.Errorf("error replacing locations: %w", err)
	}
	return len(locations), nil
}

// Cities derives the selectable city list from the current base set.
func (s *PlannerService) Cities(ctx context.Context) ([]string, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading locations: %w", err)
	}
	return cityfilter.ExtractCities(locations), nil
}
