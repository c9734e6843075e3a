package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Longevitate/carefinder/pkg/geo"
)

// Snapshot is an immutable, point-in-time view of the corpus and its lookup
// tables. Requests read it without locking; refreshes replace it whole.
type Snapshot struct {
	Version     string
	LoadedAt    time.Time
	Facilities  []*FacilityRecord
	Providers   []*ProviderRecord
	PostalCodes map[string]geo.Coordinates
	// Embeddings holds precomputed document vectors keyed by record ID.
	Embeddings     map[string][]float32
	ServiceCatalog []string
}

// Validate checks the structural invariants every search relies on.
func (s *Snapshot) Validate() error {
	for i, f := range s.Facilities {
		if f == nil {
			return fmt.Errorf("facility at index %d is nil", i)
		}
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("facility at index %d has no id", i)
		}
		if !f.Coordinates.Valid() {
			return fmt.Errorf("facility %s has invalid coordinates (%v, %v)", f.ID, f.Coordinates.Latitude, f.Coordinates.Longitude)
		}
	}
	for i, p := range s.Providers {
		if p == nil {
			return fmt.Errorf("provider at index %d is nil", i)
		}
	}
	return nil
}

// Embedding returns the precomputed vector for a record.
func (s *Snapshot) Embedding(id string) ([]float32, bool) {
	if s == nil || s.Embeddings == nil {
		return nil, false
	}
	v, ok := s.Embeddings[id]
	return v, ok
}

// BuildServiceCatalog returns the sorted distinct service values offered
// across facilities, compared case-insensitively.
func BuildServiceCatalog(facilities []*FacilityRecord) []string {
	seen := make(map[string]string)
	for _, f := range facilities {
		if f == nil {
			continue
		}
		for _, svc := range f.Services {
			svc = strings.TrimSpace(svc)
			if svc == "" {
				continue
			}
			key := strings.ToLower(svc)
			if _, ok := seen[key]; !ok {
				seen[key] = svc
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
