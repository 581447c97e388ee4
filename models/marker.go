package models

// MarkerColor is a CSS hex color resolved for one rendered pin.
type MarkerColor string

// Fixed colors for base markers. Campaign pins take their color from the
// campaign palette instead.
const (
	ColorVisited MarkerColor = "#2AAD27"
	ColorDefault MarkerColor = "#7B7B7B"
)

// CampaignPalette is the fixed rotation campaigns draw their colors from,
// first come first served. More than 20 concurrent campaigns wrap around;
// the resulting collision is accepted.
var CampaignPalette = [20]MarkerColor{
	"#CB2B3E", "#2A81CB", "#FFD326", "#9C2BCB", "#CB8427",
	"#146B3A", "#CB2B8F", "#0F4C81", "#76B041", "#7B2D26",
	"#00A6A6", "#E84855", "#403F4C", "#F18F01", "#5C80BC",
	"#A4036F", "#048BA8", "#CCFF66", "#6B2737", "#8D99AE",
}

// PaletteColor returns the palette entry for the given assignment sequence,
// cycling with wraparound.
func PaletteColor(seq int) MarkerColor {
	if seq < 0 {
		seq = -seq
	}
	return CampaignPalette[seq%len(CampaignPalette)]
}

// MarkerShape selects the glyph drawn for a pin. It is derived from the
// advertisement type of the location name, independently of color.
type MarkerShape string

const (
	ShapeCircle      MarkerShape = "circle"
	ShapeRoundedRect MarkerShape = "rounded-rect"
	ShapeSmallCircle MarkerShape = "small-circle"
)

// PopupSpec is the resolved popup payload for one rendered pin. Campaign
// fields are empty for base pins.
type PopupSpec struct {
	Title               string `json:"title"`
	Visited             bool   `json:"visited"`
	VisitedAt           string `json:"visited_at,omitempty"`
	CampaignName        string `json:"campaign_name,omitempty"`
	CampaignDescription string `json:"campaign_description,omitempty"`
	StartDate           string `json:"start_date,omitempty"`
	EndDate             string `json:"end_date,omitempty"`
}

// RenderableMarker is one pin the render adapter should draw. CampaignID is
// empty for base pins; for campaign pins the (ID, CampaignID) pair is unique
// within a plan, so overlapping pins from several campaigns are expected.
type RenderableMarker struct {
	ID         int64       `json:"id"`
	CampaignID string      `json:"campaign_id,omitempty"`
	Lat        float64     `json:"lat"`
	Lng        float64     `json:"lng"`
	Color      MarkerColor `json:"color"`
	Shape      MarkerShape `json:"shape"`
	Visited    bool        `json:"visited"`
	Popup      PopupSpec   `json:"popup"`
}

// Statistics summarizes one reconciliation pass over the rendered pins.
type Statistics struct {
	Total      int `json:"total"`
	Visited    int `json:"visited"`
	NotVisited int `json:"not_visited"`
	Progress   int `json:"progress"`
}

// RenderPlan is the full output of one reconciliation pass.
type RenderPlan struct {
	Markers []RenderableMarker `json:"markers"`
	Stats   Statistics         `json:"stats"`
}
