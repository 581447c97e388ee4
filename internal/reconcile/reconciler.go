package reconcile

import (
	"math"
	"sort"
	"strings"
	"time"

	"atlas-tracker/internal/cityfilter"
	"atlas-tracker/models"
)

// Input is one immutable snapshot of everything the reconciler needs. The
// reconciler never mutates it and produces identical plans for identical
// snapshots, which is what makes re-rendering everything on every change safe.
type Input struct {
	Locations        []*models.Location
	CampaignMarkers  []*models.CampaignMarker
	Statuses         map[int64]*models.VisitStatus
	Campaigns        map[string]*models.Campaign
	ShowBaseMarkers  bool
	VisibleCampaigns map[string]bool
	// CityFilter is the selected city, empty for no filter.
	CityFilter string
}

const (
	timestampFormat = "02-01-2006 15:04"
	dateFormat      = "02-01-2006"
)

// Plan resolves which markers are shown, with what color, shape and popup.
//
// Precedence per location id: a marker under a visible campaign is always
// rendered (one pin per such campaign, overlapping pins expected) and
// suppresses the base pin for that id regardless of the base toggle. A base
// pin is rendered only when the base toggle is on. The city filter is a
// post-filter over both kinds.
func Plan(in Input) models.RenderPlan {
	var markers []models.RenderableMarker

	// Visible campaign pins first; remember which ids they claim.
	claimed := make(map[int64]bool)
	for _, cm := range in.CampaignMarkers {
		if !in.VisibleCampaigns[cm.CampaignID] {
			continue
		}
		claimed[cm.MarkerID] = true
		if !cityfilter.Matches(cm.Name, in.CityFilter) {
			continue
		}
		markers = append(markers, campaignPin(cm, in.Campaigns[cm.CampaignID]))
	}

	if in.ShowBaseMarkers {
		for _, location := range in.Locations {
			if claimed[location.ID] {
				continue
			}
			if !cityfilter.Matches(location.Name, in.CityFilter) {
				continue
			}
			markers = append(markers, basePin(location, in.Statuses[location.ID]))
		}
	}

	// Deterministic order for set comparison and stable API output.
	sort.Slice(markers, func(i, j int) bool {
		if markers[i].ID != markers[j].ID {
			return markers[i].ID < markers[j].ID
		}
		return markers[i].CampaignID < markers[j].CampaignID
	})

	return models.RenderPlan{
		Markers: markers,
		Stats:   statistics(markers),
	}
}

func campaignPin(cm *models.CampaignMarker, campaign *models.Campaign) models.RenderableMarker {
	color := campaignColor(campaign)
	if cm.Visited {
		color = models.ColorVisited
	}

	popup := models.PopupSpec{
		Title:     cm.Name,
		Visited:   cm.Visited,
		VisitedAt: formatTimestamp(cm.VisitedAt),
		StartDate: formatDate(cm.StartDate),
		EndDate:   formatDate(cm.EndDate),
	}
	if campaign != nil {
		popup.CampaignName = campaign.Name
		popup.CampaignDescription = campaign.Description
	}

	return models.RenderableMarker{
		ID:         cm.MarkerID,
		CampaignID: cm.CampaignID,
		Lat:        cm.Lat,
		Lng:        cm.Lng,
		Color:      color,
		Shape:      ShapeOf(cm.Name),
		Visited:    cm.Visited,
		Popup:      popup,
	}
}

func basePin(location *models.Location, status *models.VisitStatus) models.RenderableMarker {
	visited := status != nil && status.Visited
	color := models.ColorDefault
	popup := models.PopupSpec{Title: location.Name, Visited: visited}
	if visited {
		color = models.ColorVisited
		popup.VisitedAt = formatTimestamp(status.VisitedAt)
	}

	return models.RenderableMarker{
		ID:      location.ID,
		Lat:     location.Lat,
		Lng:     location.Lng,
		Color:   color,
		Shape:   ShapeOf(location.Name),
		Visited: visited,
		Popup:   popup,
	}
}

// campaignColor never returns an empty color: unknown campaigns fall back to
// the reserved default.
func campaignColor(campaign *models.Campaign) models.MarkerColor {
	if campaign == nil || campaign.Color == "" {
		return models.ColorDefault
	}
	return campaign.Color
}

// ShapeOf classifies the advertisement type of a marker name by
// case-insensitive substring, first match wins.
func ShapeOf(name string) models.MarkerShape {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, " maxi"):
		return models.ShapeCircle
	case strings.Contains(lower, " classic keski"):
		return models.ShapeRoundedRect
	case strings.Contains(lower, " classic single"):
		return models.ShapeSmallCircle
	default:
		return models.ShapeCircle
	}
}

func statistics(markers []models.RenderableMarker) models.Statistics {
	stats := models.Statistics{Total: len(markers)}
	for _, marker := range markers {
		if marker.Visited {
			stats.Visited++
		}
	}
	stats.NotVisited = stats.Total - stats.Visited
	if stats.Total > 0 {
		stats.Progress = int(math.Round(float64(stats.Visited) / float64(stats.Total) * 100))
	}
	return stats
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampFormat)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}
