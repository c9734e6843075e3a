package geolocation

import (
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/pkg/geo"
	"github.com/Longevitate/carefinder/pkg/utils"
)

// cityCoordinates is the fixed fallback table for the service area.
var cityCoordinates = map[string]geo.Coordinates{
	// Washington
	"everett":    {Latitude: 47.9790, Longitude: -122.2021},
	"seattle":    {Latitude: 47.6062, Longitude: -122.3321},
	"tacoma":     {Latitude: 47.2529, Longitude: -122.4443},
	"spokane":    {Latitude: 47.6588, Longitude: -117.4260},
	"bellingham": {Latitude: 48.7519, Longitude: -122.4787},
	"olympia":    {Latitude: 47.0379, Longitude: -122.9007},
	"vancouver":  {Latitude: 45.6387, Longitude: -122.6615},
	"kennewick":  {Latitude: 46.2112, Longitude: -119.1372},
	"yakima":     {Latitude: 46.6021, Longitude: -120.5059},
	"lacey":      {Latitude: 47.0343, Longitude: -122.8232},
	// Oregon
	"portland":    {Latitude: 45.5152, Longitude: -122.6784},
	"salem":       {Latitude: 44.9429, Longitude: -123.0351},
	"eugene":      {Latitude: 44.0521, Longitude: -123.0868},
	"medford":     {Latitude: 42.3265, Longitude: -122.8756},
	"bend":        {Latitude: 44.0582, Longitude: -121.3153},
	"corvallis":   {Latitude: 44.5646, Longitude: -123.2620},
	"tigard":      {Latitude: 45.4312, Longitude: -122.7714},
	"beaverton":   {Latitude: 45.4871, Longitude: -122.8037},
	"lake oswego": {Latitude: 45.4207, Longitude: -122.6706},
	// California
	"los angeles": {Latitude: 34.0522, Longitude: -118.2437},
	"torrance":    {Latitude: 33.8358, Longitude: -118.3406},
	"carson":      {Latitude: 33.8317, Longitude: -118.2820},
	"santa rosa":  {Latitude: 38.4404, Longitude: -122.7141},
	"petaluma":    {Latitude: 38.2324, Longitude: -122.6367},
}

var stateSuffixes = map[string]struct{}{
	"wa": {}, "washington": {}, "or": {}, "oregon": {}, "ca": {}, "california": {}, "usa": {}, "us": {},
}

// PostalCodeResolver resolves postal codes against the snapshot's table and
// falls back to city names for non-numeric input.
type PostalCodeResolver struct {
	cities map[string]geo.Coordinates
}

// NewPostalCodeResolver creates a resolver with the built-in city table.
func NewPostalCodeResolver() providers.CoordinateResolver {
	return &PostalCodeResolver{cities: cityCoordinates}
}

// Resolve implements providers.CoordinateResolver. It never fails loudly:
// anything it cannot place reports ok=false.
func (r *PostalCodeResolver) Resolve(snapshot *entities.Snapshot, input string) (geo.Coordinates, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return geo.Coordinates{}, false
	}

	if code, ok := geo.NormalizePostalCode(input); ok {
		if snapshot == nil {
			return geo.Coordinates{}, false
		}
		coords, found := snapshot.PostalCodes[code]
		if !found || !coords.Valid() {
			return geo.Coordinates{}, false
		}
		return coords, true
	}

	city := normalizeCity(input)
	if city == "" {
		return geo.Coordinates{}, false
	}
	if coords, ok := r.cities[city]; ok {
		return coords, true
	}
	return searchFacilityAddresses(snapshot, city)
}

// normalizeCity lowercases, strips punctuation and drops trailing state names.
func normalizeCity(input string) string {
	tokens := strings.Fields(utils.NormalizeText(input))
	for len(tokens) > 1 {
		if _, ok := stateSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func searchFacilityAddresses(snapshot *entities.Snapshot, city string) (geo.Coordinates, bool) {
	if snapshot == nil || len(city) < 3 {
		return geo.Coordinates{}, false
	}
	for _, f := range snapshot.Facilities {
		if strings.Contains(utils.NormalizeText(f.Address), city) {
			return f.Coordinates, true
		}
	}
	return geo.Coordinates{}, false
}
