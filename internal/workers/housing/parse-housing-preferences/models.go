// internal/workers/housing/parse-housing-preferences/models.go
package parsehousingpreferences

import "homematch-workers/internal/models"

type Input struct {
	RawPreferences map[string]interface{} `json:"rawPreferences"`
}

type Output struct {
	Preferences   models.PreferenceSet `json:"preferences"`
	FiltersActive bool                 `json:"filtersActive"`
}
