package entities

import (
	"strings"

	"github.com/Longevitate/carefinder/pkg/geo"
)

// Age groups a provider may list as seen.
const (
	AgeGroupPediatrics = "Pediatrics"
	AgeGroupTeenagers  = "Teenagers"
	AgeGroupAdult      = "Adult"
	AgeGroupGeriatrics = "Geriatrics"
)

// KnownAgeGroups lists the accepted age-group filter values.
var KnownAgeGroups = []string{AgeGroupPediatrics, AgeGroupTeenagers, AgeGroupAdult, AgeGroupGeriatrics}

// ProviderRecord represents an individual clinician in the corpus snapshot
type ProviderRecord struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Credentials          []string           `json:"credentials,omitempty"`
	Gender               string             `json:"gender,omitempty"`
	Specialties          []string           `json:"specialties"`
	AcceptingNewPatients bool               `json:"accepting_new_patients"`
	VirtualCare          bool               `json:"virtual_care"`
	Languages            []string           `json:"languages,omitempty"`
	Insurance            []string           `json:"insurance,omitempty"`
	AgeGroups            []string           `json:"age_groups,omitempty"`
	Locations            []PracticeLocation `json:"locations,omitempty"`
	Rating               *Rating            `json:"rating,omitempty"`
	ProfileURL           string             `json:"profile_url,omitempty"`
	Phones               []string           `json:"phones,omitempty"`
	Statement            string             `json:"statement,omitempty"`
}

// PracticeLocation is one place a provider sees patients.
type PracticeLocation struct {
	Name        string           `json:"name"`
	Address     string           `json:"address,omitempty"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

// DisplayName joins the name and credentials the way listings show them.
func (p *ProviderRecord) DisplayName() string {
	if len(p.Credentials) == 0 {
		return p.Name
	}
	return p.Name + ", " + strings.Join(p.Credentials, ", ")
}

// Document projects the provider into matchable text units.
func (p *ProviderRecord) Document() MatchDocument {
	texts := make([]string, 0, len(p.Specialties)+2)
	if n := strings.TrimSpace(p.Name); n != "" {
		texts = append(texts, n)
	}
	for _, s := range p.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	if len(p.Credentials) > 0 {
		texts = append(texts, strings.Join(p.Credentials, " "))
	}
	return MatchDocument{ID: p.ID, Texts: texts}
}
