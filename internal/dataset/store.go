// internal/dataset/store.go
package dataset

import (
	"context"
	"strings"
	"sync"
	"time"

	"homematch-workers/internal/models"
)

// Store holds the dataset for the lifetime of the process. It is written
// once by Load and read by every query afterwards.
type Store struct {
	mu       sync.RWMutex
	listings []models.Listing
	sourceID string
	loadedAt time.Time
}

func NewStore() *Store {
	return &Store{}
}

// NewStaticStore wraps an in-memory dataset.
func NewStaticStore(listings []models.Listing) *Store {
	s := &Store{}
	s.set("static", listings)
	return s
}

func (s *Store) Load(ctx context.Context, loader *Loader) error {
	listings, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	s.set(loader.SourceID(), listings)
	return nil
}

func (s *Store) set(sourceID string, listings []models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = listings
	s.sourceID = sourceID
	s.loadedAt = time.Now()
}

// Listings returns a copy of the dataset slice. Listing values share their
// string slices with the store and must not be mutated.
func (s *Store) Listings() []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings) > 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *Store) SourceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceID
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Find looks a listing up by name, ignoring case and surrounding spaces.
func (s *Store) Find(name string) (models.Listing, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return models.Listing{}, false
}
