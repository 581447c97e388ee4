package planner

import (
	"context"
	"fmt"
	"testing"

	"atlas-tracker/db"
	"atlas-tracker/internal/campaign"
	"atlas-tracker/internal/fetch"
	"atlas-tracker/internal/preferences"
	"atlas-tracker/internal/status"
	"atlas-tracker/models"
	"atlas-tracker/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocationFetcher struct {
	locations []*models.Location
	err       error
}

func (f *fakeLocationFetcher) Locations(context.Context) ([]*models.Location, error) {
	return f.locations, f.err
}

type fakeCampaignFetcher struct {
	payloads map[string]*fetch.CampaignPayload
}

func (f *fakeCampaignFetcher) Campaign(_ context.Context, id string) (*fetch.CampaignPayload, error) {
	payload, ok := f.payloads[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s not found", id)
	}
	return payload, nil
}

type plannerEnv struct {
	planner         *PlannerService
	locationRepo    db.LocationRepository
	statusService   *status.StatusService
	campaignService *campaign.CampaignService
	prefsService    *preferences.PreferencesService
	locationFetcher *fakeLocationFetcher
	campaignFetcher *fakeCampaignFetcher
}

func setupPlanner(t *testing.T) (*plannerEnv, func()) {
	factory, cleanupDB := testutils.SetupTestRepositoryFactory(t)
	dbManager := db.NewDBManager()

	env := &plannerEnv{
		locationRepo:    factory.NewLocationRepository(),
		locationFetcher: &fakeLocationFetcher{},
		campaignFetcher: &fakeCampaignFetcher{payloads: map[string]*fetch.CampaignPayload{}},
	}
	env.statusService = status.NewStatusService(factory.NewStatusRepository(), dbManager)
	env.campaignService = campaign.NewCampaignService(factory.NewCampaignRepository(), env.campaignFetcher, dbManager)
	env.prefsService = preferences.NewPreferencesService(factory.NewPreferencesRepository(), dbManager)
	env.planner = NewPlannerService(env.locationRepo, env.statusService, env.campaignService,
		env.prefsService, env.locationFetcher, dbManager)

	cleanup := func() {
		dbManager.Stop()
		cleanupDB()
	}
	return env, cleanup
}

func TestRenderPlan_ReflectsAllStores(t *testing.T) {
	env, cleanup := setupPlanner(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.locationRepo.ReplaceAll(ctx, testutils.CreateTestLocations(5)))
	env.statusService.Set(ctx, 1, true)

	env.campaignFetcher.payloads["c1"] = &fetch.CampaignPayload{
		ID:   "c1",
		Name: "Campaign c1",
		Markers: []*models.CampaignMarker{
			testutils.CreateTestCampaignMarker("c1", 2, "Maxi Jyväskylä Kauppakatu 2"),
		},
	}
	_, err := env.campaignService.Load(ctx, "c1", false)
	require.NoError(t, err)

	plan, err := env.planner.RenderPlan(ctx)
	require.NoError(t, err)

	// 5 base ids, one claimed by the campaign.
	assert.Equal(t, 5, plan.Stats.Total)
	assert.Equal(t, 1, plan.Stats.Visited)

	var campaignPins, basePins int
	for _, marker := range plan.Markers {
		if marker.CampaignID != "" {
			campaignPins++
		} else {
			basePins++
		}
	}
	assert.Equal(t, 1, campaignPins)
	assert.Equal(t, 4, basePins)
}

func TestRenderPlan_HonorsPreferences(t *testing.T) {
	env, cleanup := setupPlanner(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.locationRepo.ReplaceAll(ctx, testutils.CreateTestLocations(3)))

	_, err := env.prefsService.Update(ctx, map[string]interface{}{"show_base_markers": false})
	require.NoError(t, err)

	plan, err := env.planner.RenderPlan(ctx)
	require.NoError(t, err)
	assert.Empty(t, plan.Markers)
	assert.Equal(t, 0, plan.Stats.Total)
}

func TestRefreshLocations_ReplacesWholesaleKeepsStatuses(t *testing.T) {
	env, cleanup := setupPlanner(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.locationRepo.ReplaceAll(ctx, testutils.CreateTestLocations(3)))
	env.statusService.Set(ctx, 2, true)

	env.locationFetcher.locations = []*models.Location{
		testutils.CreateTestLocation(2, "Maxi Jyväskylä Kauppakatu 2"),
		testutils.CreateTestLocation(10, "Maxi Tampere Hämeenkatu 10"),
	}

	count, err := env.planner.RefreshLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	locations, err := env.locationRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 2)

	// The surviving id keeps its visited flag.
	assert.True(t, env.statusService.Get(2))
}

func TestRefreshLocations_FetchErrorLeavesStateUntouched(t *testing.T) {
	env, cleanup := setupPlanner(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.locationRepo.ReplaceAll(ctx, testutils.CreateTestLocations(3)))
	env.locationFetcher.err = fmt.Errorf("upstream unavailable")

	_, err := env.planner.RefreshLocations(ctx)
	require.Error(t, err)

	locations, err := env.locationRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 3)
}

func TestCities(t *testing.T) {
	env, cleanup := setupPlanner(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, env.locationRepo.ReplaceAll(ctx, []*models.Location{
		testutils.CreateTestLocation(1, "Maxi Jyväskylä Kauppakatu 1"),
		testutils.CreateTestLocation(2, "Maxi Tampere Hämeenkatu 2"),
		testutils.CreateTestLocation(3, "Maxi jyväskylä Yliopistonkatu 3"),
	}))

	cities, err := env.planner.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jyväskylä", "Tampere"}, cities)
}
