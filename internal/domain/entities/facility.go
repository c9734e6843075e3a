package entities

import (
	"strings"
	"time"

	"github.com/Longevitate/carefinder/pkg/geo"
)

// FacilityRecord represents a care location in the corpus snapshot
type FacilityRecord struct {
	ID                string          `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Coordinates       geo.Coordinates `json:"coordinates" db:"-"`
	Address           string          `json:"address" db:"address"`
	Phone             string          `json:"phone,omitempty" db:"phone"`
	Description       string          `json:"description" db:"description"`
	Services          []string        `json:"services" db:"services"`
	Hours             WeeklyHours     `json:"hours,omitempty" db:"-"`
	Rating            *Rating         `json:"rating,omitempty" db:"-"`
	BookingResourceID string          `json:"booking_resource_id,omitempty" db:"booking_resource_id"`
	URL               string          `json:"url,omitempty" db:"url"`
	IsUrgentCare      bool            `json:"is_urgent_care" db:"is_urgent_care"`
	IsExpressCare     bool            `json:"is_express_care" db:"is_express_care"`
}

// Rating is an aggregate review score
type Rating struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// DayHours is a single day's opening interval in facility-local wall time.
type DayHours struct {
	Open      string `json:"open,omitempty"`
	Close     string `json:"close,omitempty"`
	Is24Hours bool   `json:"is_24_hours,omitempty"`
}

// WeeklyHours maps lowercase English weekday names to opening intervals.
// A missing weekday means closed that day.
type WeeklyHours map[string]DayHours

// For returns the interval for the given weekday.
func (w WeeklyHours) For(day time.Weekday) (DayHours, bool) {
	if w == nil {
		return DayHours{}, false
	}
	h, ok := w[strings.ToLower(day.String())]
	return h, ok
}

// HasServiceData reports whether the record carries any matchable service text.
func (f *FacilityRecord) HasServiceData() bool {
	if strings.TrimSpace(f.Description) != "" {
		return true
	}
	for _, s := range f.Services {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Document projects the record into the text units the match engine reads.
func (f *FacilityRecord) Document() MatchDocument {
	texts := make([]string, 0, len(f.Services)+1)
	if d := strings.TrimSpace(f.Description); d != "" {
		texts = append(texts, d)
	}
	for _, s := range f.Services {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}
	return MatchDocument{
		ID:            f.ID,
		Texts:         texts,
		IsUrgentCare:  f.IsUrgentCare,
		IsExpressCare: f.IsExpressCare,
	}
}
