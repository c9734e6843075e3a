package entities

import (
	"github.com/Longevitate/carefinder/pkg/geo"
)

// MatchStrategy selects how reasons are compared with record text.
type MatchStrategy string

const (
	MatchStrategyKeyword  MatchStrategy = "keyword"
	MatchStrategySemantic MatchStrategy = "semantic"
	MatchStrategyHybrid   MatchStrategy = "hybrid"
)

// SearchRequest is a facility search.
type SearchRequest struct {
	Reason   string          `json:"reason,omitempty"`
	Location string          `json:"location,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Filters  FacilityFilters `json:"filters,omitempty"`
}

// FacilityFilters are structured constraints applied after matching.
type FacilityFilters struct {
	// RequiredServices must all be matched by the facility.
	RequiredServices []string `json:"required_services,omitempty"`
	OpenNowOnly      bool     `json:"open_now_only,omitempty"`
}

// ProviderSearchRequest is a provider search.
type ProviderSearchRequest struct {
	Search   string          `json:"search,omitempty"`
	Location string          `json:"location,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Filters  ProviderFilters `json:"filters,omitempty"`
}

// ProviderFilters narrow providers; nil or empty fields do not constrain.
type ProviderFilters struct {
	AcceptingNewPatients *bool    `json:"accepting_new_patients,omitempty"`
	VirtualCare          *bool    `json:"virtual_care,omitempty"`
	Languages            []string `json:"languages,omitempty"`
	Insurance            string   `json:"insurance,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	AgeGroup             string   `json:"age_group,omitempty"`
}

// MatchDocument is the matchable projection of a corpus record.
type MatchDocument struct {
	ID            string
	Texts         []string
	IsUrgentCare  bool
	IsExpressCare bool
}

// MatchResult is the outcome of matching one record against a reason.
type MatchResult struct {
	RecordID      string        `json:"record_id"`
	Matched       bool          `json:"matched"`
	Explanation   string        `json:"explanation,omitempty"`
	Score         float64       `json:"score,omitempty"`
	Strategy      MatchStrategy `json:"strategy,omitempty"`
	DistanceMiles *float64      `json:"distance_miles,omitempty"`
	OpenStatus    *OpenStatus   `json:"open_status,omitempty"`
}

// OpenStatus is a facility's open state at evaluation time.
type OpenStatus struct {
	IsOpen bool   `json:"is_open"`
	Text   string `json:"text"`
}

// EmergencyCategory names a red-flag family.
type EmergencyCategory string

const (
	EmergencyCardiac            EmergencyCategory = "cardiac"
	EmergencyRespiratory        EmergencyCategory = "respiratory"
	EmergencyStroke             EmergencyCategory = "stroke"
	EmergencyUnconscious        EmergencyCategory = "loss_of_consciousness"
	EmergencyAlteredMental      EmergencyCategory = "altered_mental_state"
	EmergencyBleedingTrauma     EmergencyCategory = "severe_bleeding_trauma"
	EmergencyHeadInjury         EmergencyCategory = "head_injury"
	EmergencyAllergic           EmergencyCategory = "severe_allergic_reaction"
	EmergencyAbdominal          EmergencyCategory = "severe_abdominal_pain"
	EmergencyInternalBleeding   EmergencyCategory = "internal_bleeding"
	EmergencySeizure            EmergencyCategory = "seizure"
	EmergencyMentalHealthCrisis EmergencyCategory = "mental_health_crisis"
)

// Emergency directives.
const (
	DirectiveCall911       = "call-911"
	DirectiveCrisisLine988 = "call-988"
)

// EmergencyVerdict is the triage gate's decision.
type EmergencyVerdict struct {
	Triggered     bool              `json:"triggered"`
	Category      EmergencyCategory `json:"category,omitempty"`
	MatchedPhrase string            `json:"matched_phrase,omitempty"`
	Warning       string            `json:"warning,omitempty"`
	Directive     string            `json:"directive,omitempty"`
}

// RankedFacility is one facility entry in a ranked result.
type RankedFacility struct {
	Facility *FacilityRecord `json:"facility"`
	Match    MatchResult     `json:"match"`
}

// RankedResult is the facility pipeline output.
type RankedResult struct {
	RequestID        string            `json:"request_id,omitempty"`
	Emergency        *EmergencyVerdict `json:"emergency,omitempty"`
	Entries          []RankedFacility  `json:"entries"`
	TotalMatched     int               `json:"total_matched"`
	Strategy         MatchStrategy     `json:"strategy"`
	UserCoordinates  *geo.Coordinates  `json:"user_coordinates,omitempty"`
	LocationResolved bool              `json:"location_resolved"`
	NoData           bool              `json:"no_data,omitempty"`
	NoServiceMatch   bool              `json:"no_service_match,omitempty"`
	Degraded         bool              `json:"degraded,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	Location         string            `json:"location,omitempty"`
}

// IsEmergency reports whether the result carries a triggered verdict.
func (r *RankedResult) IsEmergency() bool {
	return r != nil && r.Emergency != nil && r.Emergency.Triggered
}

// RankedProvider is one provider entry in a ranked result.
type RankedProvider struct {
	Provider        *ProviderRecord   `json:"provider"`
	Match           MatchResult       `json:"match"`
	NearestLocation *PracticeLocation `json:"nearest_location,omitempty"`
}

// RankedProviderResult is the provider pipeline output.
type RankedProviderResult struct {
	RequestID        string           `json:"request_id,omitempty"`
	Entries          []RankedProvider `json:"entries"`
	TotalMatched     int              `json:"total_matched"`
	Strategy         MatchStrategy    `json:"strategy"`
	UserCoordinates  *geo.Coordinates `json:"user_coordinates,omitempty"`
	LocationResolved bool             `json:"location_resolved"`
	NoData           bool             `json:"no_data,omitempty"`
	NoServiceMatch   bool             `json:"no_service_match,omitempty"`
	Degraded         bool             `json:"degraded,omitempty"`
	Search           string           `json:"search,omitempty"`
	Location         string           `json:"location,omitempty"`
}
