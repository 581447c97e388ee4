package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/models"
)

// ErrInvalidFormat is returned when an import file is unparseable or is
// missing both required top-level arrays. Nothing is mutated in that case.
var ErrInvalidFormat = errors.New("import file is not in the expected format")

// ExportService writes and reads the progress file. An import is a wholesale,
// destructive replace of all persisted state and runs in one sqlite
// transaction: a failure anywhere rolls the whole replace back, so a
// half-applied file can never be observed and a bad file never costs data.
type ExportService struct {
	locationRepo db.LocationRepository
	statusRepo   db.StatusRepository
	campaignRepo db.CampaignRepository
	importRepo   db.ImportRepository
	dbManager    *db.DBManager
}

// NewExportService creates a new export service
func NewExportService(
	locationRepo db.LocationRepository,
	statusRepo db.StatusRepository,
	campaignRepo db.CampaignRepository,
	importRepo db.ImportRepository,
	dbManager *db.DBManager,
) *ExportService {
	return &ExportService{
		locationRepo: locationRepo,
		statusRepo:   statusRepo,
		campaignRepo: campaignRepo,
		importRepo:   importRepo,
		dbManager:    dbManager,
	}
}

// Export gathers all persisted state into one document.
func (s *ExportService) Export(ctx context.Context) (*models.ExportFile, error) {
	locations, err := s.locationRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting locations: %w", err)
	}
	statuses, err := s.statusRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting visit statuses: %w", err)
	}
	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting campaigns: %w", err)
	}
	markers, err := s.campaignRepo.FindAllMarkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting campaign markers: %w", err)
	}

	file := &models.ExportFile{
		AllMarkers:      make([]models.Location, 0, len(locations)),
		CampaignMarkers: make([]models.CampaignMarker, 0, len(markers)),
		ExportDate:      time.Now().UTC().Format(time.RFC3339),
	}
	for _, location := range locations {
		file.AllMarkers = append(file.AllMarkers, *location)
	}
	for _, marker := range markers {
		file.CampaignMarkers = append(file.CampaignMarkers, *marker)
	}
	for _, campaign := range campaigns {
		file.Campaigns = append(file.Campaigns, *campaign)
	}
	for _, status := range statuses {
		file.LocationStatus = append(file.LocationStatus, *status)
	}

	return file, nil
}

// Import validates the document and replaces all persisted state with its
// contents. Validation happens before any mutation: a rejected file leaves
// existing state untouched.
func (s *ExportService) Import(ctx context.Context, data []byte) error {
	var file models.ExportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if file.AllMarkers == nil && file.CampaignMarkers == nil {
		return ErrInvalidFormat
	}

	locations := make([]*models.Location, 0, len(file.AllMarkers))
	for i := range file.AllMarkers {
		locations = append(locations, &file.AllMarkers[i])
	}
	statuses := make([]*models.VisitStatus, 0, len(file.LocationStatus))
	for i := range file.LocationStatus {
		statuses = append(statuses, &file.LocationStatus[i])
	}
	campaigns := restoreCampaigns(&file)

	markersByCampaign := make(map[string][]*models.CampaignMarker)
	for i := range file.CampaignMarkers {
		marker := &file.CampaignMarkers[i]
		markersByCampaign[marker.CampaignID] = append(markersByCampaign[marker.CampaignID], marker)
	}

	return s.dbManager.ImportAll(s.importRepo, ctx, &db.ImportSnapshot{
		Locations:         locations,
		Statuses:          statuses,
		Campaigns:         campaigns,
		MarkersByCampaign: markersByCampaign,
	})
}

// restoreCampaigns returns the campaign metadata to recreate. Files written
// by older exports carry markers but no campaign metadata; those campaigns
// are synthesized with palette colors in order of first appearance so the
// registry never hands the reconciler an unknown campaign.
func restoreCampaigns(file *models.ExportFile) []*models.Campaign {
	if len(file.Campaigns) > 0 {
		campaigns := make([]*models.Campaign, 0, len(file.Campaigns))
		for i := range file.Campaigns {
			campaigns = append(campaigns, &file.Campaigns[i])
		}
		return campaigns
	}

	now := time.Now()
	var campaigns []*models.Campaign
	seen := make(map[string]bool)
	for _, marker := range file.CampaignMarkers {
		if seen[marker.CampaignID] {
			continue
		}
		seen[marker.CampaignID] = true
		seq := len(campaigns)
		campaigns = append(campaigns, &models.Campaign{
			ID:        marker.CampaignID,
			Name:      marker.CampaignID,
			Color:     models.PaletteColor(seq),
			ColorSeq:  seq,
			Visible:   true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return campaigns
}
