package testutils

import (
	"fmt"
	"time"

	"atlas-tracker/models"
)

func CreateTestLocation(id int64, name string) *models.Location {
	return &models.Location{
		ID:        id,
		Name:      name,
		Lat:       62.24 + float64(id)/1000,
		Lng:       25.74 + float64(id)/1000,
		FetchedAt: time.Now(),
	}
}

// CreateTestLocations builds n locations named "Maxi Jyväskylä Testikatu <i>".
func CreateTestLocations(n int) []*models.Location {
	locations := make([]*models.Location, 0, n)
	for i := 1; i <= n; i++ {
		locations = append(locations, CreateTestLocation(int64(i), fmt.Sprintf("Maxi Jyväskylä Testikatu %d", i)))
	}
	return locations
}

func CreateTestCampaign(id string, seq int) *models.Campaign {
	now := time.Now()
	return &models.Campaign{
		ID:          id,
		Name:        "Test Campaign " + id,
		Description: "Test campaign description",
		Color:       models.PaletteColor(seq),
		ColorSeq:    seq,
		Visible:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func CreateTestCampaignMarker(campaignID string, markerID int64, name string) *models.CampaignMarker {
	return &models.CampaignMarker{
		CampaignID: campaignID,
		MarkerID:   markerID,
		Name:       name,
		Lat:        62.24 + float64(markerID)/1000,
		Lng:        25.74 + float64(markerID)/1000,
		StartDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func CreateTestVisitStatus(locationID int64, visited bool) *models.VisitStatus {
	status := &models.VisitStatus{LocationID: locationID, Visited: visited}
	if visited {
		now := time.Now()
		status.VisitedAt = &now
	}
	return status
}
