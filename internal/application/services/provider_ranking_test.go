package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/geo"
)

func providerSnapshot() *entities.Snapshot {
	return &entities.Snapshot{
		Providers: []*entities.ProviderRecord{
			{ID: "blake", Name: "Blake Diaz", Credentials: []string{"MD"}, Gender: "Male",
				Specialties: []string{"Family Medicine"}, AgeGroups: []string{"Pediatrics"},
				Rating: &entities.Rating{Value: 4.8, Count: 40},
				Locations: []entities.PracticeLocation{
					{Name: "Portland Family Clinic", Coordinates: &geo.Coordinates{Latitude: 45.5152, Longitude: -122.6784}},
				}},
			{ID: "avery", Name: "Avery Chen", Credentials: []string{"MD", "MPH"}, Gender: "Female",
				Specialties: []string{"Family Medicine"}, AcceptingNewPatients: true, VirtualCare: true,
				Languages: []string{"English", "Spanish"}, Insurance: []string{"Premera Blue Cross"},
				AgeGroups: []string{"Adult", "Geriatrics"}, Rating: &entities.Rating{Value: 4.5, Count: 12},
				Locations: []entities.PracticeLocation{
					{Name: "Portland Annex", Coordinates: &geo.Coordinates{Latitude: 45.52, Longitude: -122.68}},
					{Name: "Everett Medical Plaza", Coordinates: &geo.Coordinates{Latitude: 47.9790, Longitude: -122.2021}},
				}},
			{ID: "casey", Name: "Casey Park", Specialties: []string{"Dermatology"}},
		},
		PostalCodes: map[string]geo.Coordinates{
			"98229": {Latitude: 48.7519, Longitude: -122.4787},
		},
	}
}

func providerIDs(result *entities.RankedProviderResult) []string {
	ids := make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		ids = append(ids, e.Provider.ID)
	}
	return ids
}

func TestRankProviders_NearestPracticeDecidesOrder(t *testing.T) {
	svc := newRankingService(t, &countingReader{snapshot: providerSnapshot()}, nil, DefaultRankingOptions())

	result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{
		Search: "family medicine", Location: "98229",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"avery", "blake"}, providerIDs(result))
	require.NotNil(t, result.Entries[0].NearestLocation)
	assert.Equal(t, "Everett Medical Plaza", result.Entries[0].NearestLocation.Name)
	require.NotNil(t, result.Entries[0].Match.DistanceMiles)
	assert.Less(t, *result.Entries[0].Match.DistanceMiles, 60.0)
}

func TestRankProviders_UnlocatedProvidersSortLast(t *testing.T) {
	svc := newRankingService(t, &countingReader{snapshot: providerSnapshot()}, nil, DefaultRankingOptions())

	result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{Location: "98229"})
	require.NoError(t, err)

	assert.Equal(t, []string{"avery", "blake", "casey"}, providerIDs(result))
	assert.Nil(t, result.Entries[2].NearestLocation)
	assert.Nil(t, result.Entries[2].Match.DistanceMiles)
}

func TestRankProviders_WithoutLocationSortsByRating(t *testing.T) {
	svc := newRankingService(t, &countingReader{snapshot: providerSnapshot()}, nil, DefaultRankingOptions())

	result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{Search: "family medicine"})
	require.NoError(t, err)
	assert.Equal(t, []string{"blake", "avery"}, providerIDs(result))
}

func TestRankProviders_Filters(t *testing.T) {
	yes := true
	tests := []struct {
		name    string
		filters entities.ProviderFilters
		want    []string
	}{
		{"accepting new patients", entities.ProviderFilters{AcceptingNewPatients: &yes}, []string{"avery"}},
		{"virtual care", entities.ProviderFilters{VirtualCare: &yes}, []string{"avery"}},
		{"any language", entities.ProviderFilters{Languages: []string{"French", "spanish"}}, []string{"avery"}},
		{"insurance substring", entities.ProviderFilters{Insurance: "blue cross"}, []string{"avery"}},
		{"gender", entities.ProviderFilters{Gender: "male"}, []string{"blake"}},
		{"unknown gender never matches", entities.ProviderFilters{Gender: "unspecified"}, []string{}},
		{"age group", entities.ProviderFilters{AgeGroup: "adult"}, []string{"avery"}},
		{"unknown age group never matches", entities.ProviderFilters{AgeGroup: "Toddlers"}, []string{}},
	}

	svc := newRankingService(t, &countingReader{snapshot: providerSnapshot()}, nil, DefaultRankingOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{
				Search: "family medicine", Filters: tt.filters,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, providerIDs(result))
		})
	}
}

func TestRankProviders_DefaultLimit(t *testing.T) {
	snap := providerSnapshot()
	for _, id := range []string{"d", "e", "f", "g"} {
		snap.Providers = append(snap.Providers, &entities.ProviderRecord{ID: id, Name: "Provider " + id})
	}
	svc := newRankingService(t, &countingReader{snapshot: snap}, nil, DefaultRankingOptions())

	result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 5)
	assert.Equal(t, 7, result.TotalMatched)
}

func TestRankProviders_NoMatchAndNoData(t *testing.T) {
	svc := newRankingService(t, &countingReader{snapshot: providerSnapshot()}, nil, DefaultRankingOptions())
	result, err := svc.RankProviders(context.Background(), entities.ProviderSearchRequest{Search: "podiatry"})
	require.NoError(t, err)
	assert.True(t, result.NoServiceMatch)
	assert.Empty(t, result.Entries)

	snap := providerSnapshot()
	snap.Providers = nil
	svc = newRankingService(t, &countingReader{snapshot: snap}, nil, DefaultRankingOptions())
	result, err = svc.RankProviders(context.Background(), entities.ProviderSearchRequest{Search: "family"})
	require.NoError(t, err)
	assert.True(t, result.NoData)
}
