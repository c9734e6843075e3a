package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/geo"
)

const statementMaxLength = 200

var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// FacilityView is the presentation projection of one ranked facility.
type FacilityView struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Address           string           `json:"address,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	Coordinates       geo.Coordinates  `json:"coordinates"`
	DistanceMiles     *float64         `json:"distance_miles,omitempty"`
	IsOpen            bool             `json:"is_open"`
	OpenStatus        string           `json:"open_status,omitempty"`
	Rating            *entities.Rating `json:"rating,omitempty"`
	URL               string           `json:"url,omitempty"`
	BookingResourceID string           `json:"booking_resource_id,omitempty"`
	IsUrgentCare      bool             `json:"is_urgent_care"`
	IsExpressCare     bool             `json:"is_express_care"`
	Services          []string         `json:"services,omitempty"`
	MatchExplanation  string           `json:"match_explanation,omitempty"`
}

// FacilityPayload is the structured facility search response.
type FacilityPayload struct {
	RequestID        string                     `json:"request_id,omitempty"`
	Emergency        *entities.EmergencyVerdict `json:"emergency,omitempty"`
	Locations        []FacilityView             `json:"locations"`
	TotalMatched     int                        `json:"total_matched"`
	Strategy         entities.MatchStrategy     `json:"strategy"`
	Degraded         bool                       `json:"degraded,omitempty"`
	LocationResolved bool                       `json:"location_resolved"`
	UserCoordinates  *geo.Coordinates           `json:"user_coordinates,omitempty"`
	NoData           bool                       `json:"no_data,omitempty"`
	NoServiceMatch   bool                       `json:"no_service_match,omitempty"`
	Reason           string                     `json:"reason,omitempty"`
	Location         string                     `json:"location,omitempty"`
}

// ProviderView is the presentation projection of one ranked provider.
type ProviderView struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	Gender               string                     `json:"gender,omitempty"`
	Specialties          []string                   `json:"specialties,omitempty"`
	AcceptingNewPatients bool                       `json:"accepting_new_patients"`
	VirtualCare          bool                       `json:"virtual_care"`
	Languages            []string                   `json:"languages,omitempty"`
	AgeGroups            []string                   `json:"age_groups,omitempty"`
	DistanceMiles        *float64                   `json:"distance_miles,omitempty"`
	NearestLocation      *entities.PracticeLocation `json:"nearest_location,omitempty"`
	LocationCount        int                        `json:"location_count"`
	Phone                string                     `json:"phone,omitempty"`
	Statement            string                     `json:"statement,omitempty"`
	ProfileURL           string                     `json:"profile_url,omitempty"`
	Rating               *entities.Rating           `json:"rating,omitempty"`
	MatchExplanation     string                     `json:"match_explanation,omitempty"`
}

// ProviderPayload is the structured provider search response.
type ProviderPayload struct {
	RequestID        string                 `json:"request_id,omitempty"`
	Providers        []ProviderView         `json:"providers"`
	TotalMatched     int                    `json:"total_matched"`
	Strategy         entities.MatchStrategy `json:"strategy"`
	Degraded         bool                   `json:"degraded,omitempty"`
	LocationResolved bool                   `json:"location_resolved"`
	NoData           bool                   `json:"no_data,omitempty"`
	NoServiceMatch   bool                   `json:"no_service_match,omitempty"`
	Search           string                 `json:"search,omitempty"`
	Location         string                 `json:"location,omitempty"`
}

// ResultAssembler renders ranked results as structured payloads and markdown.
// Both renderings read the same projection so they never disagree.
type ResultAssembler struct{}

// NewResultAssembler creates an assembler.
func NewResultAssembler() *ResultAssembler {
	return &ResultAssembler{}
}

// Facilities builds the structured facility payload.
func (a *ResultAssembler) Facilities(result *entities.RankedResult) FacilityPayload {
	return FacilityPayload{
		RequestID:        result.RequestID,
		Emergency:        result.Emergency,
		Locations:        facilityViews(result.Entries),
		TotalMatched:     result.TotalMatched,
		Strategy:         result.Strategy,
		Degraded:         result.Degraded,
		LocationResolved: result.LocationResolved,
		UserCoordinates:  result.UserCoordinates,
		NoData:           result.NoData,
		NoServiceMatch:   result.NoServiceMatch,
		Reason:           result.Reason,
		Location:         result.Location,
	}
}

func facilityViews(entries []entities.RankedFacility) []FacilityView {
	views := make([]FacilityView, 0, len(entries))
	for _, e := range entries {
		f := e.Facility
		v := FacilityView{
			ID:                f.ID,
			Name:              f.Name,
			Address:           f.Address,
			Phone:             f.Phone,
			Coordinates:       f.Coordinates,
			DistanceMiles:     roundedDistance(e.Match.DistanceMiles),
			Rating:            f.Rating,
			URL:               f.URL,
			BookingResourceID: f.BookingResourceID,
			IsUrgentCare:      f.IsUrgentCare,
			IsExpressCare:     f.IsExpressCare,
			Services:          f.Services,
			MatchExplanation:  e.Match.Explanation,
		}
		if s := e.Match.OpenStatus; s != nil {
			v.IsOpen = s.IsOpen
			v.OpenStatus = s.Text
		}
		views = append(views, v)
	}
	return views
}

// FacilitiesText renders the facility result as markdown.
func (a *ResultAssembler) FacilitiesText(result *entities.RankedResult) string {
	var b strings.Builder

	if result.IsEmergency() {
		b.WriteString(a.EmergencyText(*result.Emergency))
		if len(result.Entries) == 0 {
			return b.String()
		}
		b.WriteString("\n## Nearest locations\n\n")
	} else {
		b.WriteString("# Care Locations\n\n")
	}

	views := facilityViews(result.Entries)
	if len(views) == 0 {
		switch {
		case result.NoData:
			b.WriteString("No care locations are available right now.\n\n")
		default:
			b.WriteString("No care locations found matching your criteria.\n\n")
		}
		if result.Reason != "" {
			fmt.Fprintf(&b, "*Searched for: %s*\n", result.Reason)
		}
		return b.String()
	}

	writeSearchContext(&b, "Reason", result.Reason, "Near", result.Location)
	if result.Location != "" && !result.LocationResolved {
		fmt.Fprintf(&b, "*Could not find %q, so results are not sorted by distance.*\n\n", result.Location)
	}
	fmt.Fprintf(&b, "Found **%d** care location%s:\n\n", len(views), plural(len(views)))
	b.WriteString("---\n\n")

	for i, v := range views {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, v.Name)
		switch {
		case v.IsExpressCare:
			b.WriteString("**ExpressCare Clinic**\n\n")
		case v.IsUrgentCare:
			b.WriteString("**Urgent Care Clinic**\n\n")
		}
		if v.DistanceMiles != nil {
			fmt.Fprintf(&b, "**%.1f miles away**\n\n", *v.DistanceMiles)
		}
		if v.Address != "" {
			fmt.Fprintf(&b, "%s\n\n", v.Address)
		}
		if v.OpenStatus != "" && v.OpenStatus != statusHoursUnavailable {
			fmt.Fprintf(&b, "**%s**\n\n", v.OpenStatus)
		}
		writeRating(&b, v.Rating)
		if v.Phone != "" {
			fmt.Fprintf(&b, "**Phone:** %s\n\n", v.Phone)
		}
		if v.URL != "" {
			fmt.Fprintf(&b, "[Book Appointment](%s)\n\n", v.URL)
		}
		if i < len(views)-1 {
			b.WriteString("---\n\n")
		}
	}

	b.WriteString("\n**Need help?** Call any location directly or book online through the links above.\n")
	return b.String()
}

// Providers builds the structured provider payload.
func (a *ResultAssembler) Providers(result *entities.RankedProviderResult) ProviderPayload {
	return ProviderPayload{
		RequestID:        result.RequestID,
		Providers:        providerViews(result.Entries),
		TotalMatched:     result.TotalMatched,
		Strategy:         result.Strategy,
		Degraded:         result.Degraded,
		LocationResolved: result.LocationResolved,
		NoData:           result.NoData,
		NoServiceMatch:   result.NoServiceMatch,
		Search:           result.Search,
		Location:         result.Location,
	}
}

func providerViews(entries []entities.RankedProvider) []ProviderView {
	views := make([]ProviderView, 0, len(entries))
	for _, e := range entries {
		p := e.Provider
		v := ProviderView{
			ID:                   p.ID,
			Name:                 p.DisplayName(),
			Gender:               p.Gender,
			Specialties:          p.Specialties,
			AcceptingNewPatients: p.AcceptingNewPatients,
			VirtualCare:          p.VirtualCare,
			Languages:            p.Languages,
			AgeGroups:            p.AgeGroups,
			DistanceMiles:        roundedDistance(e.Match.DistanceMiles),
			NearestLocation:      e.NearestLocation,
			LocationCount:        len(p.Locations),
			Statement:            cleanStatement(p.Statement),
			ProfileURL:           p.ProfileURL,
			Rating:               p.Rating,
			MatchExplanation:     e.Match.Explanation,
		}
		if v.NearestLocation == nil && len(p.Locations) > 0 {
			v.NearestLocation = &p.Locations[0]
		}
		if len(p.Phones) > 0 {
			v.Phone = p.Phones[0]
		}
		views = append(views, v)
	}
	return views
}

// ProvidersText renders the provider result as markdown.
func (a *ResultAssembler) ProvidersText(result *entities.RankedProviderResult) string {
	var b strings.Builder
	b.WriteString("# Provider Search Results\n\n")

	views := providerViews(result.Entries)
	if len(views) == 0 {
		b.WriteString("No providers found matching your criteria.\n\n")
		if result.Search != "" {
			fmt.Fprintf(&b, "*Searched for: %s*\n", result.Search)
		}
		if result.Location != "" {
			fmt.Fprintf(&b, "*Location: %s*\n", result.Location)
		}
		return b.String()
	}

	writeSearchContext(&b, "Search", result.Search, "Location", result.Location)
	if len(views) < result.TotalMatched {
		fmt.Fprintf(&b, "Showing **%d** of **%d** providers:\n\n", len(views), result.TotalMatched)
	} else {
		fmt.Fprintf(&b, "Found **%d** provider%s:\n\n", len(views), plural(len(views)))
	}
	b.WriteString("---\n\n")

	for i, v := range views {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, v.Name)
		if v.Gender != "" {
			fmt.Fprintf(&b, "**%s**\n\n", v.Gender)
		}
		if len(v.Specialties) > 0 {
			fmt.Fprintf(&b, "**Specialty:** %s\n\n", strings.Join(v.Specialties, ", "))
		}
		if v.DistanceMiles != nil {
			fmt.Fprintf(&b, "**%.1f miles away**\n\n", *v.DistanceMiles)
		}

		badges := []string{"Not Accepting New Patients"}
		if v.AcceptingNewPatients {
			badges[0] = "Accepting New Patients"
		}
		if v.VirtualCare {
			badges = append(badges, "Offers Virtual Care")
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Join(badges, " | "))

		writeRating(&b, v.Rating)
		if len(v.Languages) > 0 {
			fmt.Fprintf(&b, "**Languages:** %s\n\n", strings.Join(v.Languages, ", "))
		}
		if len(v.AgeGroups) > 0 {
			fmt.Fprintf(&b, "**Ages Seen:** %s\n\n", strings.Join(v.AgeGroups, ", "))
		}
		if loc := v.NearestLocation; loc != nil {
			fmt.Fprintf(&b, "**Practice Location%s:**\n\n", plural(v.LocationCount))
			if loc.Address != "" {
				fmt.Fprintf(&b, "  - **%s**\n    %s\n\n", loc.Name, loc.Address)
			} else {
				fmt.Fprintf(&b, "  - %s\n\n", loc.Name)
			}
			if v.LocationCount > 1 {
				fmt.Fprintf(&b, "  *Also practices at %d other location(s)*\n\n", v.LocationCount-1)
			}
		}
		if v.Phone != "" {
			fmt.Fprintf(&b, "**Phone:** %s\n\n", v.Phone)
		}
		if v.Statement != "" {
			fmt.Fprintf(&b, "*%s*\n\n", v.Statement)
		}
		if v.ProfileURL != "" {
			fmt.Fprintf(&b, "[View Profile & Book Appointment](%s)\n\n", v.ProfileURL)
		}
		if i < len(views)-1 {
			b.WriteString("---\n\n")
		}
	}

	b.WriteString("\n**Need to book an appointment?** Click the profile links above or call the provider directly.\n")
	return b.String()
}

// EmergencyText renders the verdict as an urgent directive.
func (a *ResultAssembler) EmergencyText(verdict entities.EmergencyVerdict) string {
	var b strings.Builder
	if verdict.Directive == entities.DirectiveCrisisLine988 {
		b.WriteString("# CRISIS SUPPORT - CALL OR TEXT 988 NOW\n\n")
		fmt.Fprintf(&b, "**%s**\n\n", capitalize(verdict.Warning))
		b.WriteString("You do not have to go through this alone. Trained counselors are available 24/7.\n\n")
		b.WriteString("- **988** - Suicide & Crisis Lifeline (call or text)\n")
		b.WriteString("- **911** - Emergency Services if you are in immediate danger\n")
		return b.String()
	}

	b.WriteString("# EMERGENCY - CALL 911 IMMEDIATELY\n\n")
	fmt.Fprintf(&b, "**%s**\n\n", capitalize(verdict.Warning))
	b.WriteString("**DO NOT go to urgent care for this condition.**\n\n")
	b.WriteString("**Call 911 or go to the nearest Emergency Room immediately.**\n\n")
	b.WriteString("For mental health crises, you can also call:\n")
	b.WriteString("- **988** - Suicide & Crisis Lifeline\n")
	b.WriteString("- **911** - Emergency Services\n")
	return b.String()
}

func writeSearchContext(b *strings.Builder, firstLabel, first, secondLabel, second string) {
	var parts []string
	if first != "" {
		parts = append(parts, fmt.Sprintf("**%s:** %s", firstLabel, first))
	}
	if second != "" {
		parts = append(parts, fmt.Sprintf("**%s:** %s", secondLabel, second))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n\n")
	}
}

func writeRating(b *strings.Builder, r *entities.Rating) {
	if r == nil || r.Value <= 0 || r.Count <= 0 {
		return
	}
	fmt.Fprintf(b, "%s **%.1f** (%d reviews)\n\n", strings.Repeat("★", int(r.Value)), r.Value, r.Count)
}

func roundedDistance(d *float64) *float64 {
	if d == nil {
		return nil
	}
	r := geo.RoundTenth(*d)
	return &r
}

// cleanStatement strips markup, collapses whitespace and truncates.
func cleanStatement(s string) string {
	s = strings.Join(strings.Fields(htmlTagPattern.ReplaceAllString(s, " ")), " ")
	if runes := []rune(s); len(runes) > statementMaxLength {
		s = strings.TrimSpace(string(runes[:statementMaxLength-3])) + "..."
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
