// internal/matching/explain.go
package matching

import (
	"math"
	"strconv"
	"strings"

	"homematch-workers/internal/models"
)

// ExplanationSeparator joins explanation fragments.
const ExplanationSeparator = " • "

const (
	labelBase         = "Base Experience"
	labelPrimary      = "Prime Location"
	labelSecondary    = "Convenient Location"
	labelVibe         = "Vibe Match"
	labelWithinBudget = "Within Budget"
	labelPriceFit     = "Price Fit"
	labelAirCon       = "Air-Con"
	labelMeals        = "Meals"
	labelModules      = "Modules"
)

// Fragment renders a label with its points, e.g. "Price Fit (+7.5)".
func Fragment(label string, points float64) string {
	return label + " (+" + FormatPoints(points) + ")"
}

// FormatPoints prints points in their shortest form: 10, 7.5, 3.33.
func FormatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}

// Explain joins the factor labels in evaluation order.
func Explain(factors []models.Factor) string {
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		parts = append(parts, f.Label)
	}
	return strings.Join(parts, ExplanationSeparator)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
