package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
	"github.com/Longevitate/carefinder/pkg/geo"
)

// FileSource loads the corpus from JSON files on disk.
type FileSource struct {
	facilitiesPath  string
	providersPath   string
	postalCodesPath string
}

// NewFileSource creates a JSON file corpus source. providersPath may be
// empty, in which case no providers are loaded.
func NewFileSource(facilitiesPath, providersPath, postalCodesPath string) repositories.CorpusSource {
	return &FileSource{
		facilitiesPath:  facilitiesPath,
		providersPath:   providersPath,
		postalCodesPath: postalCodesPath,
	}
}

// Name implements repositories.CorpusSource.
func (s *FileSource) Name() string {
	return "file"
}

// Load implements repositories.CorpusSource.
func (s *FileSource) Load(ctx context.Context) (*repositories.CorpusData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var facilities []*entities.FacilityRecord
	if err := readJSON(s.facilitiesPath, &facilities); err != nil {
		return nil, apperrors.NewInvalidCorpusError("failed to read facilities", err)
	}

	var providers []*entities.ProviderRecord
	if s.providersPath != "" {
		if err := readJSON(s.providersPath, &providers); err != nil {
			return nil, apperrors.NewInvalidCorpusError("failed to read providers", err)
		}
	}

	postal, err := s.loadPostalCodes()
	if err != nil {
		return nil, err
	}

	return &repositories.CorpusData{
		Facilities:  facilities,
		Providers:   providers,
		PostalCodes: postal,
	}, nil
}

func (s *FileSource) loadPostalCodes() (map[string]geo.Coordinates, error) {
	if s.postalCodesPath == "" {
		return nil, apperrors.NewMissingLookupTableError("postal code")
	}
	raw := map[string]postalEntry{}
	if err := readJSON(s.postalCodesPath, &raw); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingLookupTableError("postal code")
		}
		return nil, apperrors.NewInvalidCorpusError("failed to read postal codes", err)
	}

	table := make(map[string]geo.Coordinates, len(raw))
	for code, entry := range raw {
		table[code] = geo.Coordinates(entry)
	}
	return table, nil
}

// postalEntry accepts either [lat, lng] or {"lat": .., "lng": ..}.
type postalEntry geo.Coordinates

func (p *postalEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("postal coordinates need 2 values, got %d", len(pair))
		}
		p.Latitude, p.Longitude = pair[0], pair[1]
		return nil
	}
	var c geo.Coordinates
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*p = postalEntry(c)
	return nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
