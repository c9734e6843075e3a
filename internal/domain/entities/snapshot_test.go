package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Longevitate/carefinder/pkg/geo"
)

func TestSnapshot_Validate(t *testing.T) {
	valid := &FacilityRecord{ID: "fac-1", Coordinates: geo.Coordinates{Latitude: 47.97, Longitude: -122.2}}

	assert.NoError(t, (&Snapshot{Facilities: []*FacilityRecord{valid}}).Validate())
	assert.NoError(t, (&Snapshot{}).Validate())

	bad := &FacilityRecord{ID: "fac-2", Coordinates: geo.Coordinates{Latitude: 123, Longitude: 0}}
	err := (&Snapshot{Facilities: []*FacilityRecord{valid, bad}}).Validate()
	assert.ErrorContains(t, err, "fac-2")

	err = (&Snapshot{Facilities: []*FacilityRecord{{Coordinates: valid.Coordinates}}}).Validate()
	assert.ErrorContains(t, err, "no id")
}

func TestBuildServiceCatalog_DedupesCaseInsensitively(t *testing.T) {
	facilities := []*FacilityRecord{
		{ID: "a", Services: []string{"X-ray", "Lab", " "}},
		{ID: "b", Services: []string{"lab", "Minor injuries"}},
		nil,
	}

	assert.Equal(t, []string{"Lab", "Minor injuries", "X-ray"}, BuildServiceCatalog(facilities))
}

func TestWeeklyHours_For(t *testing.T) {
	hours := WeeklyHours{"monday": {Open: "08:00", Close: "20:00"}}

	h, ok := hours.For(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, "08:00", h.Open)

	_, ok = hours.For(time.Sunday)
	assert.False(t, ok)

	_, ok = WeeklyHours(nil).For(time.Monday)
	assert.False(t, ok)
}

func TestFacilityRecord_Document(t *testing.T) {
	f := &FacilityRecord{
		ID:           "fac-1",
		Description:  " Same-day walk-in availability ",
		Services:     []string{"X-ray", ""},
		IsUrgentCare: true,
	}

	doc := f.Document()
	assert.Equal(t, []string{"Same-day walk-in availability", "X-ray"}, doc.Texts)
	assert.True(t, doc.IsUrgentCare)
	assert.True(t, f.HasServiceData())
	assert.False(t, (&FacilityRecord{Services: []string{" "}}).HasServiceData())
}

func TestProviderRecord_DisplayName(t *testing.T) {
	p := &ProviderRecord{Name: "Jordan Lee", Credentials: []string{"MD", "MPH"}}
	assert.Equal(t, "Jordan Lee, MD, MPH", p.DisplayName())
	assert.Equal(t, "Sam Ortiz", (&ProviderRecord{Name: "Sam Ortiz"}).DisplayName())
}
