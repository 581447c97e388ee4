package models

import (
	"time"
)

// Preferences stores the single user's persisted UI state: marker toggles,
// cluster radius, city filter and the last map viewport.
type Preferences struct {
	ID              string     `db:"id" json:"id"`
	ShowBaseMarkers bool       `db:"show_base_markers" json:"show_base_markers"`
	ClusterRadius   int        `db:"cluster_radius" json:"cluster_radius"`
	SelectedCity    string     `db:"selected_city" json:"selected_city"`
	MapZoom         int        `db:"map_zoom" json:"map_zoom"`
	MapLat          float64    `db:"map_lat" json:"map_lat"`
	MapLng          float64    `db:"map_lng" json:"map_lng"`
	CreatedAt       *time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPreferences returns the preferences used before the user has saved any.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ShowBaseMarkers: true,
		ClusterRadius:   70,
		MapZoom:         8,
		MapLat:          62.160871,
		MapLng:          25.6416672,
	}
}
