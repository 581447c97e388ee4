package reconcile

import (
	"fmt"
	"testing"
	"time"

	"atlas-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	locations := make([]*models.Location, 0, 10)
	for i := int64(1); i <= 10; i++ {
		locations = append(locations, &models.Location{
			ID:   i,
			Name: fmt.Sprintf("Frame Jyväskylä Kauppakatu %d", i),
			Lat:  62.24, Lng: 25.74,
		})
	}
	return Input{
		Locations:        locations,
		Statuses:         map[int64]*models.VisitStatus{},
		Campaigns:        map[string]*models.Campaign{},
		VisibleCampaigns: map[string]bool{},
		ShowBaseMarkers:  true,
	}
}

func visitedStatus(id int64) *models.VisitStatus {
	now := time.Now()
	return &models.VisitStatus{LocationID: id, Visited: true, VisitedAt: &now}
}

func testCampaign(id string, seq int) *models.Campaign {
	return &models.Campaign{
		ID:       id,
		Name:     "Campaign " + id,
		Color:    models.PaletteColor(seq),
		ColorSeq: seq,
		Visible:  true,
	}
}

func campaignMarker(campaignID string, markerID int64) *models.CampaignMarker {
	return &models.CampaignMarker{
		CampaignID: campaignID,
		MarkerID:   markerID,
		Name:       fmt.Sprintf("Frame Jyväskylä Kauppakatu %d", markerID),
		Lat:        62.25, Lng: 25.75,
	}
}

func findMarker(plan models.RenderPlan, id int64, campaignID string) *models.RenderableMarker {
	for i := range plan.Markers {
		if plan.Markers[i].ID == id && plan.Markers[i].CampaignID == campaignID {
			return &plan.Markers[i]
		}
	}
	return nil
}

func TestPlan_Idempotence(t *testing.T) {
	in := baseInput()
	in.Statuses[4] = visitedStatus(4)
	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.VisibleCampaigns["c1"] = true
	in.CampaignMarkers = []*models.CampaignMarker{campaignMarker("c1", 2)}

	first := Plan(in)
	second := Plan(in)
	assert.Equal(t, first, second)
}

func TestPlan_CampaignSuppressesBase(t *testing.T) {
	in := baseInput()
	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.VisibleCampaigns["c1"] = true
	in.CampaignMarkers = []*models.CampaignMarker{campaignMarker("c1", 5)}

	plan := Plan(in)

	campaignPin := findMarker(plan, 5, "c1")
	require.NotNil(t, campaignPin)
	assert.Equal(t, models.PaletteColor(0), campaignPin.Color)

	assert.Nil(t, findMarker(plan, 5, ""), "base pin must be suppressed for a claimed id")
}

func TestPlan_BaseToggleDoesNotRevealClaimedID(t *testing.T) {
	in := baseInput()
	in.ShowBaseMarkers = true
	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.VisibleCampaigns["c1"] = true
	in.CampaignMarkers = []*models.CampaignMarker{campaignMarker("c1", 1)}

	plan := Plan(in)
	// 9 base pins plus 1 campaign pin
	assert.Len(t, plan.Markers, 10)
	assert.Nil(t, findMarker(plan, 1, ""))
}

func TestPlan_HiddenCampaignFallsBackToBase(t *testing.T) {
	in := baseInput()
	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.VisibleCampaigns = map[string]bool{} // c1 hidden
	in.CampaignMarkers = []*models.CampaignMarker{campaignMarker("c1", 5)}

	plan := Plan(in)
	assert.Nil(t, findMarker(plan, 5, "c1"))
	require.NotNil(t, findMarker(plan, 5, ""))
	assert.Equal(t, models.ColorDefault, findMarker(plan, 5, "").Color)
}

func TestPlan_VisitedChangesColorNotIdentity(t *testing.T) {
	in := baseInput()

	before := Plan(in)
	pin := findMarker(before, 7, "")
	require.NotNil(t, pin)
	assert.Equal(t, models.ColorDefault, pin.Color)

	in.Statuses[7] = visitedStatus(7)
	after := Plan(in)
	visitedPin := findMarker(after, 7, "")
	require.NotNil(t, visitedPin)

	assert.Equal(t, models.ColorVisited, visitedPin.Color)
	assert.Equal(t, pin.ID, visitedPin.ID)
	assert.Equal(t, pin.Shape, visitedPin.Shape)
	assert.Len(t, after.Markers, len(before.Markers))
}

func TestPlan_MultipleCampaignsOverlapSameID(t *testing.T) {
	in := baseInput()
	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.Campaigns["c2"] = testCampaign("c2", 1)
	in.VisibleCampaigns["c1"] = true
	in.VisibleCampaigns["c2"] = true
	in.CampaignMarkers = []*models.CampaignMarker{
		campaignMarker("c1", 3),
		campaignMarker("c2", 3),
	}

	plan := Plan(in)
	require.NotNil(t, findMarker(plan, 3, "c1"))
	require.NotNil(t, findMarker(plan, 3, "c2"))
	assert.Nil(t, findMarker(plan, 3, ""))
	assert.NotEqual(t, findMarker(plan, 3, "c1").Color, findMarker(plan, 3, "c2").Color)
}

func TestPlan_UnknownCampaignGetsReservedColor(t *testing.T) {
	in := baseInput()
	in.VisibleCampaigns["ghost"] = true
	in.CampaignMarkers = []*models.CampaignMarker{campaignMarker("ghost", 2)}

	plan := Plan(in)
	pin := findMarker(plan, 2, "ghost")
	require.NotNil(t, pin)
	assert.Equal(t, models.ColorDefault, pin.Color)
}

// Pins down the rule interactions of the statistics scenario: 10 base ids
// with 3 visited, one visible campaign with 4 markers of which one overlaps a
// non-visited base id and two are visited.
func TestPlan_Statistics(t *testing.T) {
	in := baseInput()
	in.Statuses[1] = visitedStatus(1)
	in.Statuses[2] = visitedStatus(2)
	in.Statuses[3] = visitedStatus(3)

	in.Campaigns["c1"] = testCampaign("c1", 0)
	in.VisibleCampaigns["c1"] = true
	// Overlaps visited base id 3; the campaign marker itself is not visited.
	overlap := campaignMarker("c1", 3)
	visited1 := campaignMarker("c1", 11)
	visited1.Visited = true
	now := time.Now()
	visited1.VisitedAt = &now
	visited2 := campaignMarker("c1", 12)
	visited2.Visited = true
	visited2.VisitedAt = &now
	in.CampaignMarkers = []*models.CampaignMarker{overlap, visited1, visited2, campaignMarker("c1", 13)}

	plan := Plan(in)

	// 10 base ids - 1 suppressed + 4 campaign markers
	assert.Equal(t, 13, plan.Stats.Total)
	// Base pins 1 and 2 plus campaign markers 11 and 12. The visited base pin
	// for id 3 is suppressed by the non-visited campaign marker.
	assert.Equal(t, 4, plan.Stats.Visited)
	assert.Equal(t, 9, plan.Stats.NotVisited)
	assert.Equal(t, 31, plan.Stats.Progress) // round(4/13*100)
}

func TestPlan_StatisticsEmpty(t *testing.T) {
	plan := Plan(Input{ShowBaseMarkers: true})
	assert.Equal(t, 0, plan.Stats.Total)
	assert.Equal(t, 0, plan.Stats.Progress)
}

func TestPlan_CityFilter(t *testing.T) {
	in := Input{
		Locations: []*models.Location{
			{ID: 1, Name: "Frame Jyväskylä Kauppakatu 1"},
			{ID: 2, Name: "Frame Tampere Hämeenkatu 2"},
			{ID: 3, Name: "Yksisanainen"},
		},
		Statuses:         map[int64]*models.VisitStatus{},
		Campaigns:        map[string]*models.Campaign{testCampaignID: testCampaign(testCampaignID, 0)},
		VisibleCampaigns: map[string]bool{testCampaignID: true},
		CampaignMarkers: []*models.CampaignMarker{
			{CampaignID: testCampaignID, MarkerID: 4, Name: "Frame Tampere Keskustori 4"},
		},
		ShowBaseMarkers: true,
		CityFilter:      "jyväskylä",
	}

	plan := Plan(in)
	require.Len(t, plan.Markers, 1)
	assert.Equal(t, int64(1), plan.Markers[0].ID)

	in.CityFilter = "tampere"
	plan = Plan(in)
	require.Len(t, plan.Markers, 2)
	assert.NotNil(t, findMarker(plan, 2, ""))
	assert.NotNil(t, findMarker(plan, 4, testCampaignID))
}

const testCampaignID = "c1"

func TestShapeOf(t *testing.T) {
	assert.Equal(t, models.ShapeCircle, ShapeOf("Frame Maxi Jyväskylä"))
	assert.Equal(t, models.ShapeRoundedRect, ShapeOf("Frame Classic keskisuuri"))
	assert.Equal(t, models.ShapeSmallCircle, ShapeOf("Frame Classic single pubi"))
	assert.Equal(t, models.ShapeCircle, ShapeOf("Frame tavallinen"))
	// First match wins regardless of later patterns in the name
	assert.Equal(t, models.ShapeCircle, ShapeOf("Frame maxi classic keski"))
	// Case-insensitive
	assert.Equal(t, models.ShapeRoundedRect, ShapeOf("FRAME CLASSIC KESKI"))
}

func TestPlan_PopupContent(t *testing.T) {
	in := baseInput()
	in.Campaigns["c1"] = &models.Campaign{
		ID: "c1", Name: "Acme Oy", Description: "Summer campaign",
		Color: models.PaletteColor(0), Visible: true,
	}
	in.VisibleCampaigns["c1"] = true
	marker := campaignMarker("c1", 2)
	marker.StartDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	marker.EndDate = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	in.CampaignMarkers = []*models.CampaignMarker{marker}

	plan := Plan(in)
	pin := findMarker(plan, 2, "c1")
	require.NotNil(t, pin)
	assert.Equal(t, "Acme Oy", pin.Popup.CampaignName)
	assert.Equal(t, "Summer campaign", pin.Popup.CampaignDescription)
	assert.Equal(t, "01-06-2025", pin.Popup.StartDate)
	assert.Equal(t, "30-06-2025", pin.Popup.EndDate)
	assert.Empty(t, pin.Popup.VisitedAt)

	basePin := findMarker(plan, 1, "")
	require.NotNil(t, basePin)
	assert.Empty(t, basePin.Popup.CampaignName)
}
