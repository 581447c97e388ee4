package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"atlas-tracker/internal/metrics"
	"atlas-tracker/models"
)

// Client talks to the public marker API. Failures are returned to the caller
// as-is; there is no automatic retry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mapID      string
}

// NewClient creates a marker API client for the given base URL and map id
func NewClient(baseURL, mapID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		mapID:   mapID,
	}
}

type locationRecord struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Lat  json.Number `json:"lat"`
	Lng  json.Number `json:"lng"`
}

type locationPage struct {
	Results []locationRecord `json:"results"`
	Next    *string          `json:"next"`
}

// Locations fetches the full base location set. The listing is paginated;
// pages are fetched sequentially until the API reports no further page, and
// all results are concatenated.
func (c *Client) Locations(ctx context.Context) ([]*models.Location, error) {
	pageURL := fmt.Sprintf("%s/public-map-point-markers/%s/?format=json&page=1", c.baseURL, c.mapID)
	fetchedAt := time.Now()

	var locations []*models.Location
	for pageURL != "" {
		var page locationPage
		if err := c.getJSON(ctx, pageURL, "locations", &page); err != nil {
			return nil, err
		}
		metrics.FetchPages.Inc()

		for _, record := range page.Results {
			location, err := record.toLocation(fetchedAt)
			if err != nil {
				log.Printf("Skipping malformed location record %d: %v", record.ID, err)
				continue
			}
			locations = append(locations, location)
		}

		pageURL = ""
		if page.Next != nil {
			pageURL = *page.Next
		}
	}

	return locations, nil
}

func (r locationRecord) toLocation(fetchedAt time.Time) (*models.Location, error) {
	lat, err := r.Lat.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", r.Lat, err)
	}
	lng, err := r.Lng.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q: %w", r.Lng, err)
	}
	return &models.Location{
		ID:        r.ID,
		Name:      r.Name,
		Lat:       lat,
		Lng:       lng,
		FetchedAt: fetchedAt,
	}, nil
}

type campaignDetail struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	ReservedResources []reservedResource `json:"reserved_resources"`
}

type reservedResource struct {
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	InventoryResource struct {
		MapPointMarkers []locationRecord `json:"map_point_markers"`
	} `json:"inventory_resource"`
}

// CampaignPayload is the flattened result of one campaign detail fetch.
type CampaignPayload struct {
	ID          string
	Name        string
	Description string
	Markers     []*models.CampaignMarker
}

// Campaign fetches one reservation-resource detail and flattens every map
// point marker of every reserved resource into campaign markers, each
// inheriting its resource's start and end dates. A marker id appearing under
// several resources is kept once, first resource wins.
func (c *Client) Campaign(ctx context.Context, id string) (*CampaignPayload, error) {
	url := fmt.Sprintf("%s/reservation-resources-map/%s/?format=json", c.baseURL, id)

	var detail campaignDetail
	if err := c.getJSON(ctx, url, "campaign", &detail); err != nil {
		return nil, err
	}

	payload := &CampaignPayload{
		ID:          id,
		Name:        detail.Name,
		Description: detail.Description,
	}

	seen := make(map[int64]bool)
	for _, resource := range detail.ReservedResources {
		startDate := parseDate(resource.StartDate)
		endDate := parseDate(resource.EndDate)
		for _, record := range resource.InventoryResource.MapPointMarkers {
			if seen[record.ID] {
				continue
			}
			location, err := record.toLocation(time.Time{})
			if err != nil {
				log.Printf("Skipping malformed campaign marker %d: %v", record.ID, err)
				continue
			}
			seen[record.ID] = true
			payload.Markers = append(payload.Markers, &models.CampaignMarker{
				CampaignID: id,
				MarkerID:   location.ID,
				Name:       location.Name,
				Lat:        location.Lat,
				Lng:        location.Lng,
				StartDate:  startDate,
				EndDate:    endDate,
			})
		}
	}

	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, url, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("error fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("marker API returned status %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.FetchFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("error decoding %s response: %w", endpoint, err)
	}

	return nil
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	log.Printf("Unrecognized date %q from marker API", value)
	return time.Time{}
}
