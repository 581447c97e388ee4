package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocations_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public-map-point-markers/100/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprintf(w, `{
				"results": [
					{"id": 1, "name": "Maxi Jyväskylä Kauppakatu 1", "lat": 62.24, "lng": 25.74},
					{"id": 2, "name": "Maxi Jyväskylä Kauppakatu 2", "lat": "62.25", "lng": "25.75"}
				],
				"next": "%s/api/v1/public-map-point-markers/100/?format=json&page=2"
			}`, server.URL)
		case "2":
			fmt.Fprint(w, `{
				"results": [{"id": 3, "name": "Maxi Tampere Hämeenkatu 3", "lat": 61.49, "lng": 23.76}],
				"next": null
			}`)
		default:
			http.NotFound(w, r)
		}
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL+"/api/v1", "100")
	locations, err := client.Locations(context.Background())
	require.NoError(t, err)

	require.Len(t, locations, 3)
	assert.Equal(t, int64(1), locations[0].ID)
	// String-quoted coordinates are accepted.
	assert.InDelta(t, 62.25, locations[1].Lat, 0.001)
	assert.Equal(t, int64(3), locations[2].ID)
	assert.False(t, locations[0].FetchedAt.IsZero())
}

func TestLocations_SkipsMalformedRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"results": [
				{"id": 1, "name": "Maxi Jyväskylä Kauppakatu 1", "lat": null, "lng": 25.74},
				{"id": 2, "name": "Maxi Jyväskylä Kauppakatu 2", "lat": 62.25, "lng": 25.75}
			],
			"next": null
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "100")
	locations, err := client.Locations(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, int64(2), locations[0].ID)
}

func TestLocations_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "100")
	_, err := client.Locations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCampaign_FlattensReservedResources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reservation-resources-map/c1/", r.URL.Path)
		fmt.Fprint(w, `{
			"id": "c1",
			"name": "Acme Oy",
			"description": "Summer campaign",
			"reserved_resources": [
				{
					"start_date": "2025-06-01",
					"end_date": "2025-06-30",
					"inventory_resource": {
						"map_point_markers": [
							{"id": 11, "name": "Maxi Jyväskylä Kauppakatu 11", "lat": 62.24, "lng": 25.74},
							{"id": 12, "name": "Classic keski Jyväskylä Yliopistonkatu 12", "lat": 62.23, "lng": 25.73}
						]
					}
				},
				{
					"start_date": "2025-07-01",
					"end_date": "2025-07-31",
					"inventory_resource": {
						"map_point_markers": [
							{"id": 12, "name": "Duplicate of 12", "lat": 0, "lng": 0},
							{"id": 13, "name": "Maxi Tampere Hämeenkatu 13", "lat": 61.49, "lng": 23.76}
						]
					}
				}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/v1", "100")
	payload, err := client.Campaign(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "c1", payload.ID)
	assert.Equal(t, "Acme Oy", payload.Name)
	assert.Equal(t, "Summer campaign", payload.Description)

	require.Len(t, payload.Markers, 3)
	byID := make(map[int64]int)
	for i, marker := range payload.Markers {
		byID[marker.MarkerID] = i
		assert.Equal(t, "c1", marker.CampaignID)
	}

	// First resource wins for the duplicated marker id.
	dup := payload.Markers[byID[12]]
	assert.Equal(t, "Classic keski Jyväskylä Yliopistonkatu 12", dup.Name)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), dup.StartDate)

	late := payload.Markers[byID[13]]
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), late.StartDate)
	assert.Equal(t, time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC), late.EndDate)
}

func TestCampaign_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "100")
	_, err := client.Campaign(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), parseDate("2025-06-01"))
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), parseDate("2025-06-01T12:30:00Z"))
	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseDate("nonsense").IsZero())
}
