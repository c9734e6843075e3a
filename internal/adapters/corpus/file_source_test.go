package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

func TestFileSource_Load(t *testing.T) {
	source := NewFileSource("testdata/locations.json", "testdata/providers.json", "testdata/postal_codes.json")

	data, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "file", source.Name())
	require.Len(t, data.Facilities, 2)
	everett := data.Facilities[0]
	assert.Equal(t, "everett-walk-in", everett.ID)
	assert.InDelta(t, 47.979, everett.Coordinates.Latitude, 1e-9)
	assert.Equal(t, []string{"Cold and flu", "X-ray", "Lab testing"}, everett.Services)
	assert.Equal(t, "08:00", everett.Hours["monday"].Open)
	assert.True(t, everett.Hours["saturday"].Is24Hours)
	assert.True(t, everett.IsExpressCare)
	require.NotNil(t, everett.Rating)
	assert.Equal(t, 212, everett.Rating.Count)
	assert.True(t, data.Facilities[1].IsUrgentCare)

	require.Len(t, data.Providers, 1)
	require.NotNil(t, data.Providers[0].Locations[0].Coordinates)

	require.Len(t, data.PostalCodes, 2)
	assert.InDelta(t, 48.7519, data.PostalCodes["98229"].Latitude, 1e-9)
	assert.InDelta(t, -122.2021, data.PostalCodes["98201"].Longitude, 1e-9)
}

func TestFileSource_MissingPostalTable(t *testing.T) {
	source := NewFileSource("testdata/locations.json", "", filepath.Join(t.TempDir(), "absent.json"))

	_, err := source.Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeMissingLookupTable, apperrors.TypeOf(err))

	_, err = NewFileSource("testdata/locations.json", "", "").Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeMissingLookupTable, apperrors.TypeOf(err))
}

func TestFileSource_MalformedFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "a list"`), 0o600))

	_, err := NewFileSource(bad, "", "testdata/postal_codes.json").Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInvalidCorpus, apperrors.TypeOf(err))

	shortPair := filepath.Join(dir, "postal.json")
	require.NoError(t, os.WriteFile(shortPair, []byte(`{"98229": [48.75]}`), 0o600))
	_, err = NewFileSource("testdata/locations.json", "", shortPair).Load(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInvalidCorpus, apperrors.TypeOf(err))
}
