// internal/models/listing.go
package models

// Listing is one housing option as normalized by the dataset loader.
type Listing struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	FeeText          string   `json:"feeText,omitempty"`
	WeeklyFee        float64  `json:"weeklyFee"`
	PrimaryFaculty   string   `json:"primaryFaculty"`
	SecondaryFaculty string   `json:"secondaryFaculty"`
	AirCon           bool     `json:"airCon"`
	MealPlan         bool     `json:"mealPlan"`
	Modules          bool     `json:"modules"`
	RoomTypes        []string `json:"roomTypes"`
	Vibes            []string `json:"vibes"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	VirtualTourURL   string   `json:"virtualTourUrl,omitempty"`
}

// Factor is one non-zero contribution to a listing's score.
type Factor struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Label  string  `json:"label"`
}

// Factor names.
const (
	FactorBase    = "base"
	FactorFaculty = "faculty"
	FactorVibe    = "vibe"
	FactorBudget  = "budget"
	FactorAirCon  = "aircon"
	FactorMeals   = "meals"
	FactorModules = "modules"
)

type ScoredListing struct {
	Listing      Listing  `json:"listing"`
	Score        float64  `json:"score"`
	Explanation  string   `json:"explanation"`
	Factors      []Factor `json:"factors"`
	Rank         int      `json:"rank,omitempty"`
	MatchPercent *int     `json:"matchPercent,omitempty"`
}

// Recommendation is the presentation-ready answer to one preference query.
type Recommendation struct {
	QueryID       string          `json:"queryId"`
	Title         string          `json:"title"`
	FiltersActive bool            `json:"filtersActive"`
	BudgetTip     string          `json:"budgetTip,omitempty"`
	Listings      []ScoredListing `json:"rankedListings"`
}

// VibeVocabulary is the tag pool used when a listing has no vibes of its own.
var VibeVocabulary = []string{
	"Sports", "Performing Arts", "Social", "Academic", "Relaxed",
	"Independent", "Balanced", "Leadership", "Cultural", "Quiet",
}
