// internal/matching/vibe.go
package matching

import (
	"fmt"
	"math"
	"strings"
)

// VibePolicy turns desired vibes and a listing's vibe tags into points.
type VibePolicy interface {
	Name() string
	Points(desired, listingVibes []string) float64
}

// CountPolicy awards PerMatch points for every desired vibe found in the
// listing's vibe text, up to Cap.
type CountPolicy struct {
	PerMatch float64
	Cap      float64
}

func NewCountPolicy() CountPolicy {
	return CountPolicy{PerMatch: 5, Cap: 10}
}

func (CountPolicy) Name() string { return "count" }

func (p CountPolicy) Points(desired, listingVibes []string) float64 {
	if len(desired) == 0 {
		return 0
	}
	text := strings.ToLower(strings.Join(listingVibes, ", "))

	var pts float64
	for _, v := range desired {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(text, v) {
			pts += p.PerMatch
		}
	}
	return math.Min(pts, p.Cap)
}

// JaccardPolicy scales set overlap between desired and listed vibes to Weight.
type JaccardPolicy struct {
	Weight float64
}

func NewJaccardPolicy() JaccardPolicy {
	return JaccardPolicy{Weight: 20}
}

func (JaccardPolicy) Name() string { return "jaccard" }

func (p JaccardPolicy) Points(desired, listingVibes []string) float64 {
	a := tagSet(desired)
	if len(a) == 0 {
		return 0
	}
	b := tagSet(listingVibes)

	union := len(b)
	var inter int
	for tag := range a {
		if _, ok := b[tag]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return round2(p.Weight * float64(inter) / float64(union))
}

func tagSet(tags []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

// PolicyByName resolves the configured vibe policy.
func PolicyByName(name string) (VibePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "count":
		return NewCountPolicy(), nil
	case "jaccard":
		return NewJaccardPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown vibe policy %q", name)
	}
}
