package providers

import (
	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/geo"
)

// CoordinateResolver maps free-form location text (a postal code or a city
// name) to coordinates. Unresolvable input reports ok=false, never an error.
type CoordinateResolver interface {
	Resolve(snapshot *entities.Snapshot, input string) (geo.Coordinates, bool)
}
