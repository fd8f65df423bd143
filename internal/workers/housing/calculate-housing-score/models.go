// internal/workers/housing/calculate-housing-score/models.go
package calculatehousingscore

import "homematch-workers/internal/models"

// Input carries either a full listing or the name of one in the loaded
// dataset. A full listing wins when both are set.
type Input struct {
	Listing     *models.Listing        `json:"listing,omitempty"`
	ListingName string                 `json:"listingName,omitempty"`
	Preferences map[string]interface{} `json:"preferences"`
}

type Output struct {
	ListingName  string          `json:"listingName"`
	Score        float64         `json:"score"`
	Explanation  string          `json:"explanation"`
	Factors      []models.Factor `json:"factors"`
	MatchPercent int             `json:"matchPercent"`
}
