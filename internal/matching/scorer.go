// internal/matching/scorer.go
package matching

import (
	"strings"

	"homematch-workers/internal/models"
)

// Factor weights.
const (
	BasePoints             = 10.0
	PrimaryFacultyPoints   = 20.0
	SecondaryFacultyPoints = 15.0
	WithinBudgetPoints     = 10.0
	AirConPoints           = 8.0
	MealsPoints            = 6.0
	ModulesPoints          = 6.0

	// MaxPossible is the nominal ceiling used for match percentages.
	MaxPossible = 75.0
)

// Result is the full outcome of scoring one listing.
type Result struct {
	Score       float64
	Explanation string
	Factors     []models.Factor
}

// Scorer is a pure function of (listing, preferences). It holds no state
// besides the vibe policy and is safe for concurrent use.
type Scorer struct {
	vibes VibePolicy
}

func NewScorer(policy VibePolicy) *Scorer {
	if policy == nil {
		policy = NewCountPolicy()
	}
	return &Scorer{vibes: policy}
}

func (s *Scorer) VibePolicy() VibePolicy {
	return s.vibes
}

// Score returns the total score and its human-readable explanation.
func (s *Scorer) Score(listing models.Listing, prefs models.PreferenceSet) (float64, string) {
	r := s.Evaluate(listing, prefs)
	return r.Score, r.Explanation
}

func (s *Scorer) Evaluate(listing models.Listing, prefs models.PreferenceSet) Result {
	factors := make([]models.Factor, 0, 7)
	add := func(name, label string, pts float64) {
		if pts <= 0 || !finite(pts) {
			return
		}
		factors = append(factors, models.Factor{Name: name, Points: pts, Label: Fragment(label, pts)})
	}

	add(models.FactorBase, labelBase, BasePoints)

	switch facultyProximity(listing, prefs) {
	case PrimaryFacultyPoints:
		add(models.FactorFaculty, labelPrimary, PrimaryFacultyPoints)
	case SecondaryFacultyPoints:
		add(models.FactorFaculty, labelSecondary, SecondaryFacultyPoints)
	}

	if len(prefs.Vibes) > 0 {
		add(models.FactorVibe, labelVibe, s.vibes.Points(prefs.Vibes, listing.Vibes))
	}

	if pts, within := budgetFit(listing.WeeklyFee, prefs.Budget); within {
		add(models.FactorBudget, labelWithinBudget, pts)
	} else {
		add(models.FactorBudget, labelPriceFit, pts)
	}

	if prefs.NeedsAirCon && listing.AirCon {
		add(models.FactorAirCon, labelAirCon, AirConPoints)
	}
	if prefs.NeedsMeals && listing.MealPlan {
		add(models.FactorMeals, labelMeals, MealsPoints)
	}
	if prefs.WantsModules && listing.Modules {
		add(models.FactorModules, labelModules, ModulesPoints)
	}

	var total float64
	for _, f := range factors {
		total += f.Points
	}
	return Result{Score: total, Explanation: Explain(factors), Factors: factors}
}

// FacultyKeyword is the selection text before any "(", trimmed:
// "SoC(Computing)" -> "SoC", "CDE (Engineering)" -> "CDE".
func FacultyKeyword(faculty string) string {
	kw, _, _ := strings.Cut(faculty, "(")
	return strings.TrimSpace(kw)
}

// facultyProximity returns exactly one of 20, 15 or 0.
func facultyProximity(listing models.Listing, prefs models.PreferenceSet) float64 {
	if !prefs.FacultySelected() {
		return 0
	}
	kw := FacultyKeyword(prefs.Faculty)
	if kw == "" {
		return 0
	}
	switch {
	case strings.Contains(listing.PrimaryFaculty, kw):
		return PrimaryFacultyPoints
	case strings.Contains(listing.SecondaryFaculty, kw):
		return SecondaryFacultyPoints
	default:
		return 0
	}
}

// budgetFit scores fee against budget. Fees at or under budget earn the
// full +10; over budget the points decay as budget/fee.
func budgetFit(fee, budget float64) (float64, bool) {
	if !finite(fee) || !finite(budget) || fee < 0 || budget < 0 {
		return 0, false
	}
	if fee <= budget {
		return WithinBudgetPoints, true
	}
	return round2(WithinBudgetPoints * budget / fee), false
}
