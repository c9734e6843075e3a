package geolocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/geo"
)

func testSnapshot() *entities.Snapshot {
	return &entities.Snapshot{
		PostalCodes: map[string]geo.Coordinates{
			"98229": {Latitude: 48.7519, Longitude: -122.4787},
			"98201": {Latitude: 47.9790, Longitude: -122.2021},
			"02139": {Latitude: 42.3647, Longitude: -71.1042},
		},
		Facilities: []*entities.FacilityRecord{
			{ID: "fac-1", Address: "1321 Colby Ave, Mukilteo, WA 98275", Coordinates: geo.Coordinates{Latitude: 47.94, Longitude: -122.30}},
		},
	}
}

func TestPostalCodeResolver_Resolve(t *testing.T) {
	r := NewPostalCodeResolver()
	snap := testSnapshot()

	coords, ok := r.Resolve(snap, "98229-0001")
	assert.True(t, ok)
	assert.InDelta(t, 48.75, coords.Latitude, 0.01)

	coords, ok = r.Resolve(snap, "2139")
	assert.True(t, ok)
	assert.InDelta(t, 42.36, coords.Latitude, 0.01)

	_, ok = r.Resolve(snap, "10001")
	assert.False(t, ok)

	_, ok = r.Resolve(snap, "")
	assert.False(t, ok)

	_, ok = r.Resolve(nil, "98229")
	assert.False(t, ok)
}

func TestPostalCodeResolver_ResolvedCoordinatesAreInRange(t *testing.T) {
	r := NewPostalCodeResolver()
	snap := testSnapshot()

	for code := range snap.PostalCodes {
		coords, ok := r.Resolve(snap, code)
		assert.True(t, ok, code)
		assert.True(t, coords.Latitude >= -90 && coords.Latitude <= 90, code)
		assert.True(t, coords.Longitude >= -180 && coords.Longitude <= 180, code)
	}
}

func TestPostalCodeResolver_CityFallback(t *testing.T) {
	r := NewPostalCodeResolver()
	snap := testSnapshot()

	for _, input := range []string{"Everett", "Everett, WA", "everett wa.", "EVERETT Washington"} {
		coords, ok := r.Resolve(snap, input)
		assert.True(t, ok, input)
		assert.InDelta(t, 47.979, coords.Latitude, 1e-6, input)
	}

	coords, ok := r.Resolve(snap, "Lake Oswego, OR")
	assert.True(t, ok)
	assert.InDelta(t, 45.4207, coords.Latitude, 1e-6)
}

func TestPostalCodeResolver_AddressSearchFallback(t *testing.T) {
	r := NewPostalCodeResolver()

	coords, ok := r.Resolve(testSnapshot(), "Mukilteo")
	assert.True(t, ok)
	assert.InDelta(t, 47.94, coords.Latitude, 1e-6)

	_, ok = r.Resolve(testSnapshot(), "Atlantis")
	assert.False(t, ok)
}
