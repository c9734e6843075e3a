package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
	"github.com/Longevitate/carefinder/pkg/geo"
)

func corpusData() *repositories.CorpusData {
	return &repositories.CorpusData{
		Facilities: []*entities.FacilityRecord{
			{ID: "fac-1", Name: "Everett Walk-In", Coordinates: geo.Coordinates{Latitude: 47.97, Longitude: -122.20},
				Description: "Same-day walk-in availability", Services: []string{"X-ray"}},
			{ID: "fac-2", Name: "Bare Urgent Care", Coordinates: geo.Coordinates{Latitude: 45.51, Longitude: -122.67},
				IsUrgentCare: true},
		},
		Providers: []*entities.ProviderRecord{
			{ID: "prov-1", Name: "Jordan Lee", Specialties: []string{"Family Medicine"},
				Locations: []entities.PracticeLocation{{Name: "Nowhere", Coordinates: &geo.Coordinates{Latitude: 200}}}},
		},
		PostalCodes: map[string]geo.Coordinates{
			"98229": {Latitude: 48.7519, Longitude: -122.4787},
			"99999": {Latitude: -100, Longitude: 0},
		},
	}
}

func TestSnapshotStore_RefreshBuildsSnapshot(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(corpusData(), nil)

	store := NewSnapshotStore(source, nil, nil)
	assert.Nil(t, store.Current())

	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)

	assert.Same(t, snap, store.Current())
	assert.NotEmpty(t, snap.Version)
	assert.Len(t, snap.Facilities, 2)
	assert.Len(t, snap.PostalCodes, 1)
	assert.Equal(t, []string{"X-ray"}, snap.ServiceCatalog)
	assert.Nil(t, snap.Providers[0].Locations[0].Coordinates)
	assert.Nil(t, snap.Embeddings)
}

func TestSnapshotStore_WarmsEmbeddingsOnce(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(corpusData(), nil)

	embedder := new(MockTextEmbedder)
	embedder.On("Embed", mock.Anything, []string{"Same-day walk-in availability. X-ray", "Jordan Lee. Family Medicine"}).
		Return([][]float32{{1, 0}, {0, 1}}, nil).Once()

	store := NewSnapshotStore(source, embedder, nil)
	snap, err := store.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0}, snap.Embeddings["fac-1"])
	assert.Equal(t, []float32{0, 1}, snap.Embeddings["prov-1"])
	_, ok := snap.Embeddings["fac-2"]
	assert.False(t, ok)
	embedder.AssertExpectations(t)
}

func TestSnapshotStore_EmbeddingFailureStillRefreshes(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(corpusData(), nil)
	embedder := new(MockTextEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	snap, err := NewSnapshotStore(source, embedder, nil).Refresh(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.Embeddings)
}

func TestSnapshotStore_RejectsInvalidCorpusAndKeepsPrevious(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(corpusData(), nil).Once()

	bad := corpusData()
	bad.Facilities[0].Coordinates = geo.Coordinates{Latitude: 91}
	source.On("Load", mock.Anything).Return(bad, nil).Once()

	store := NewSnapshotStore(source, nil, nil)
	first, err := store.Refresh(context.Background())
	require.NoError(t, err)

	_, err = store.Refresh(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInvalidCorpus, apperrors.TypeOf(err))
	assert.Same(t, first, store.Current())
}

func TestSnapshotStore_MissingPostalTable(t *testing.T) {
	data := corpusData()
	data.PostalCodes = nil
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(data, nil)

	_, err := NewSnapshotStore(source, nil, nil).Refresh(context.Background())

	assert.Equal(t, apperrors.ErrorTypeMissingLookupTable, apperrors.TypeOf(err))
}

func TestSnapshotStore_SourceError(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewSnapshotStore(source, nil, nil).Refresh(context.Background())

	assert.ErrorContains(t, err, "connection refused")
}

func TestSnapshotStore_WatchUpdatesRefreshes(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(corpusData(), nil)

	store := NewSnapshotStore(source, nil, nil)
	first, err := store.Refresh(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan *entities.CorpusEvent, 4)
	store.WatchUpdates(ctx, events)

	events <- &entities.CorpusEvent{ID: "evt-1", Type: entities.CorpusEventUpdated}
	assert.Eventually(t, func() bool {
		return store.Current().Version != first.Version
	}, 2*time.Second, 10*time.Millisecond)

	close(events)
}

func namedCorpus(facilityID string) *repositories.CorpusData {
	return &repositories.CorpusData{
		Facilities: []*entities.FacilityRecord{
			{ID: facilityID, Name: facilityID, Coordinates: geo.Coordinates{Latitude: 47.6, Longitude: -122.3}},
		},
		PostalCodes: map[string]geo.Coordinates{"98101": {Latitude: 47.61, Longitude: -122.33}},
	}
}

func TestSnapshotStore_ConcurrentRefreshKeepsLatestLoad(t *testing.T) {
	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(namedCorpus("old"), nil).After(200 * time.Millisecond).Once()
	source.On("Load", mock.Anything).Return(namedCorpus("new"), nil).After(10 * time.Millisecond).Once()

	store := NewSnapshotStore(source, nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := store.Refresh(context.Background())
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		_, err := store.Refresh(context.Background())
		assert.NoError(t, err)
	}()
	wg.Wait()

	require.NotNil(t, store.Current())
	assert.Equal(t, "new", store.Current().Facilities[0].ID)
	source.AssertNumberOfCalls(t, "Load", 2)
}

func TestSnapshotStore_RefreshLeavesSourceRecordsUntouched(t *testing.T) {
	data := corpusData()
	original := data.Providers[0]

	source := new(MockCorpusSource)
	source.On("Load", mock.Anything).Return(data, nil)

	snap, err := NewSnapshotStore(source, nil, nil).Refresh(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snap.Providers[0].Locations[0].Coordinates)
	require.NotNil(t, original.Locations[0].Coordinates)
	assert.Equal(t, 200.0, original.Locations[0].Coordinates.Latitude)
	assert.NotSame(t, original, snap.Providers[0])
}
