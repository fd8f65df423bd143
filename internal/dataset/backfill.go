// internal/dataset/backfill.go
package dataset

import (
	"math/rand"

	"homematch-workers/internal/models"
)

const (
	minBackfillTags = 3
	maxBackfillTags = 6
)

// Backfill gives every listing without vibe tags a random sample of 3-6
// tags from the vocabulary. It mutates listings in place and returns how
// many were filled. rng must not be shared with other goroutines.
func Backfill(listings []models.Listing, rng *rand.Rand) int {
	var filled int
	for i := range listings {
		if len(listings[i].Vibes) > 0 {
			continue
		}
		listings[i].Vibes = sampleVibes(rng)
		filled++
	}
	return filled
}

func sampleVibes(rng *rand.Rand) []string {
	n := minBackfillTags + rng.Intn(maxBackfillTags-minBackfillTags+1)
	perm := rng.Perm(len(models.VibeVocabulary))

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = models.VibeVocabulary[perm[i]]
	}
	return out
}
