package models

// ExportFile is the JSON document written by an export and read back by an
// import. AllMarkers and CampaignMarkers are the required arrays; an import
// missing both is rejected as invalid without touching existing state.
// Campaigns and LocationStatus let a round trip restore registry colors,
// visibility and visit history.
type ExportFile struct {
	AllMarkers      []Location       `json:"allMarkers"`
	CampaignMarkers []CampaignMarker `json:"campaignMarkers"`
	Campaigns       []Campaign       `json:"campaigns,omitempty"`
	LocationStatus  []VisitStatus    `json:"locationStatus,omitempty"`
	ExportDate      string           `json:"exportDate"`
}
