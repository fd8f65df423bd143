// internal/workers/housing/apply-housing-ranking/models.go
package applyhousingranking

import "homematch-workers/internal/models"

type Input struct {
	Preferences map[string]interface{} `json:"preferences"`
	MaxResults  int                    `json:"maxResults,omitempty"`
}

type Output struct {
	QueryID        string                 `json:"queryId"`
	Title          string                 `json:"title"`
	FiltersActive  bool                   `json:"filtersActive"`
	BudgetTip      string                 `json:"budgetTip,omitempty"`
	RankedListings []models.ScoredListing `json:"rankedListings"`
}
