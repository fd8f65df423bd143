// internal/models/preferences.go
package models

import "strings"

const (
	FacultyNone = "Select Faculty..."
	RoomAny     = "Any"

	DefaultBudget = 300.0
)

var (
	// DesiredVibeOptions are the vibes a student can ask for.
	DesiredVibeOptions = []string{
		"Sports", "Performing Arts", "Social", "Academic", "Relaxed", "Independent", "Balanced",
	}

	FacultyOptions = []string{
		FacultyNone, "SoC(Computing)", "FASS(Arts)", "Business", "FoS(Science)",
		"CDE (Engineering)", "SDE (Design)", "Law", "Medicine",
	}

	RoomOptions = []string{RoomAny, "Single", "Double", "Apt"}
)

// PreferenceSet is what one student asked for. Treat it as a value.
type PreferenceSet struct {
	Budget         float64  `json:"budget"`
	Vibes          []string `json:"vibes"`
	Faculty        string   `json:"faculty"`
	NeedsAirCon    bool     `json:"needsAirCon"`
	NeedsMeals     bool     `json:"needsMeals"`
	WantsModules   bool     `json:"wantsModules"`
	RoomPreference string   `json:"roomPreference"`
}

// DefaultPreferences is the "reset all filters" state.
func DefaultPreferences() PreferenceSet {
	return PreferenceSet{
		Budget:         DefaultBudget,
		Vibes:          []string{},
		Faculty:        FacultyNone,
		RoomPreference: RoomAny,
	}
}

// FacultySelected reports whether a real faculty was chosen.
func (p PreferenceSet) FacultySelected() bool {
	f := strings.TrimSpace(p.Faculty)
	return f != "" && f != FacultyNone
}
