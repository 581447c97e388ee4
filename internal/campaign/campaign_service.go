package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/internal/fetch"
	"atlas-tracker/models"
)

// ErrCampaignLoaded is returned when a campaign id is loaded again without
// the overwrite flag. The caller is expected to ask the user to confirm.
var ErrCampaignLoaded = errors.New("campaign is already loaded")

// Fetcher is the slice of the marker API client the campaign pipeline needs.
type Fetcher interface {
	Campaign(ctx context.Context, id string) (*fetch.CampaignPayload, error)
}

// CampaignService owns the campaign registry: metadata, palette color
// assignment, visibility flags and the marker sets.
type CampaignService struct {
	repo      db.CampaignRepository
	fetcher   Fetcher
	dbManager *db.DBManager
}

// NewCampaignService creates a new campaign service
func NewCampaignService(repo db.CampaignRepository, fetcher Fetcher, dbManager *db.DBManager) *CampaignService {
	return &CampaignService{
		repo:      repo,
		fetcher:   fetcher,
		dbManager: dbManager,
	}
}

// Load fetches a campaign by id and stores its metadata and markers. A first
// load assigns the next palette color and visible=true; a confirmed reload
// (overwrite) replaces the marker set wholesale but preserves the assigned
// color and the visibility flag. Without overwrite a reload is refused with
// ErrCampaignLoaded and prior state is left untouched.
func (s *CampaignService) Load(ctx context.Context, id string, overwrite bool) (*models.Campaign, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil && err != db.ErrNotFound {
		return nil, fmt.Errorf("error looking up campaign %s: %w", id, err)
	}
	if existing != nil && !overwrite {
		return nil, ErrCampaignLoaded
	}

	payload, err := s.fetcher.Campaign(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	campaign := existing
	if campaign == nil {
		seq, err := s.repo.NextColorSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("error assigning campaign color: %w", err)
		}
		campaign = &models.Campaign{
			ID:        id,
			Color:     models.PaletteColor(seq),
			ColorSeq:  seq,
			Visible:   true,
			CreatedAt: now,
		}
	}
	campaign.Name = payload.Name
	campaign.Description = payload.Description
	campaign.UpdatedAt = now

	if err := s.dbManager.UpsertCampaign(s.repo, ctx, campaign); err != nil {
		return nil, fmt.Errorf("error saving campaign %s: %w", id, err)
	}
	if err := s.dbManager.ReplaceCampaignMarkers(s.repo, ctx, id, payload.Markers); err != nil {
		return nil, fmt.Errorf("error saving markers for campaign %s: %w", id, err)
	}

	return campaign, nil
}

// Remove deletes a campaign's metadata and all its markers atomically.
func (s *CampaignService) Remove(ctx context.Context, id string) error {
	return s.dbManager.DeleteCampaign(s.repo, ctx, id)
}

// ClearAll deletes every campaign and every campaign marker atomically.
func (s *CampaignService) ClearAll(ctx context.Context) error {
	return s.dbManager.DeleteAllCampaigns(s.repo, ctx)
}

// SetVisible flips a campaign's visibility flag.
func (s *CampaignService) SetVisible(ctx context.Context, id string, visible bool) error {
	return s.dbManager.ExecuteOperation(func() error {
		return s.repo.SetVisible(ctx, id, visible)
	})
}

// SetMarkerVisited toggles the independent visited flag of one campaign
// marker, keeping the timestamp invariant.
func (s *CampaignService) SetMarkerVisited(ctx context.Context, campaignID string, markerID int64, visited bool) error {
	var visitedAt *time.Time
	if visited {
		now := time.Now()
		visitedAt = &now
	}
	return s.dbManager.SetCampaignMarkerVisited(s.repo, ctx, campaignID, markerID, visited, visitedAt)
}

// ColorOf returns the campaign's assigned color, or the reserved default for
// an unknown id. It never returns an empty color.
func (s *CampaignService) ColorOf(ctx context.Context, id string) models.MarkerColor {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil || campaign.Color == "" {
		return models.ColorDefault
	}
	return campaign.Color
}

// List returns all campaigns in color assignment order.
func (s *CampaignService) List(ctx context.Context) ([]*models.Campaign, error) {
	return s.repo.FindAll(ctx)
}

// Snapshot returns the campaign metadata map, every campaign marker and the
// set of visible campaign ids for one reconciliation pass.
func (s *CampaignService) Snapshot(ctx context.Context) (map[string]*models.Campaign, []*models.CampaignMarker, map[string]bool, error) {
	campaigns, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error listing campaigns: %w", err)
	}
	markers, err := s.repo.FindAllMarkers(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error listing campaign markers: %w", err)
	}

	byID := make(map[string]*models.Campaign, len(campaigns))
	visible := make(map[string]bool)
	for _, campaign := range campaigns {
		byID[campaign.ID] = campaign
		if campaign.Visible {
			visible[campaign.ID] = true
		}
	}

	return byID, markers, visible, nil
}
