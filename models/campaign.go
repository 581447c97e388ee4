package models

import (
	"time"
)

// Campaign represents a loaded company overlay: a named set of reserved
// markers with its own visibility flag and an assigned palette color.
type Campaign struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Color       MarkerColor `db:"color" json:"color"`
	ColorSeq    int         `db:"color_seq" json:"-"`
	Visible     bool        `db:"visible" json:"visible"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// CampaignMarker is one reserved map point belonging to a campaign. Identity
// is the (CampaignID, MarkerID) pair; the same marker id may appear under
// several campaigns at once. The visited flag is tracked independently per
// campaign and is not shared with the global VisitStatus for the same id.
type CampaignMarker struct {
	CampaignID string     `db:"campaign_id" json:"campaignId"`
	MarkerID   int64      `db:"marker_id" json:"markerId"`
	Name       string     `db:"name" json:"name"`
	Lat        float64    `db:"lat" json:"lat"`
	Lng        float64    `db:"lng" json:"lng"`
	StartDate  time.Time  `db:"start_date" json:"startDate"`
	EndDate    time.Time  `db:"end_date" json:"endDate"`
	Visited    bool       `db:"visited" json:"visited"`
	VisitedAt  *time.Time `db:"visited_at" json:"visitedAt"`
}
