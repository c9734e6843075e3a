package repositories

import (
	"context"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/geo"
)

// CorpusData is the raw material a snapshot is built from.
type CorpusData struct {
	Facilities  []*entities.FacilityRecord
	Providers   []*entities.ProviderRecord
	PostalCodes map[string]geo.Coordinates
}

// CorpusSource loads the facility, provider and postal code tables
type CorpusSource interface {
	// Load reads the full corpus; partial corpora are reported as errors
	Load(ctx context.Context) (*CorpusData, error)

	// Name identifies the source in logs
	Name() string
}
