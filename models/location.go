package models

import (
	"time"
)

// Location represents a base map point fetched from the public marker API.
// Locations are immutable once fetched; a manual refresh replaces the whole set.
type Location struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Lat       float64   `db:"lat" json:"lat"`
	Lng       float64   `db:"lng" json:"lng"`
	FetchedAt time.Time `db:"fetched_at" json:"fetched_at"`
}

// VisitStatus is the global "has been visited" fact for a base location.
// Absence of a row means not visited. VisitedAt is non-nil iff Visited is true.
type VisitStatus struct {
	LocationID int64      `db:"location_id" json:"locationId"`
	Visited    bool       `db:"visited" json:"visited"`
	VisitedAt  *time.Time `db:"visited_at" json:"visitedAt"`
}
