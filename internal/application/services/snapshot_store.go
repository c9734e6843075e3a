package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
	"github.com/Longevitate/carefinder/pkg/geo"
)

const embeddingBatchSize = 64

// SnapshotStore owns the current corpus snapshot. Readers load it without
// locking; Refresh builds a complete replacement and swaps the pointer.
type SnapshotStore struct {
	source   repositories.CorpusSource
	embedder providers.TextEmbedder
	metrics  *observability.Metrics
	current  atomic.Pointer[entities.Snapshot]

	// refreshMu serializes refreshes so a slow load never replaces a newer one.
	refreshMu sync.Mutex
}

// NewSnapshotStore creates a store. embedder may be nil, in which case no
// document embeddings are precomputed.
func NewSnapshotStore(source repositories.CorpusSource, embedder providers.TextEmbedder, metrics *observability.Metrics) *SnapshotStore {
	return &SnapshotStore{source: source, embedder: embedder, metrics: metrics}
}

// Current returns the active snapshot, or nil before the first successful refresh.
func (s *SnapshotStore) Current() *entities.Snapshot {
	return s.current.Load()
}

// Set installs a prepared snapshot, used by tests and one-shot tools.
func (s *SnapshotStore) Set(snapshot *entities.Snapshot) {
	s.current.Store(snapshot)
}

// Refresh loads the corpus, validates it, warms embeddings and swaps it in.
// On error the previous snapshot stays active. Concurrent calls run one at a time.
func (s *SnapshotStore) Refresh(ctx context.Context) (*entities.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	ctx, span := observability.StartSpan(ctx, "corpus.refresh")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	data, err := s.source.Load(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("failed to load corpus from %s: %w", s.source.Name(), err)
	}

	snapshot, err := s.build(ctx, data)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.current.Store(snapshot)
	observability.RecordCorpusLoad(ctx, s.metrics, s.source.Name(), time.Since(start))
	logger.Info().
		Str("source", s.source.Name()).
		Str("version", snapshot.Version).
		Int("facilities", len(snapshot.Facilities)).
		Int("providers", len(snapshot.Providers)).
		Int("postal_codes", len(snapshot.PostalCodes)).
		Int("embeddings", len(snapshot.Embeddings)).
		Dur("duration", time.Since(start)).
		Msg("Corpus snapshot refreshed")
	return snapshot, nil
}

func (s *SnapshotStore) build(ctx context.Context, data *repositories.CorpusData) (*entities.Snapshot, error) {
	if data == nil {
		return nil, apperrors.NewInvalidCorpusError("corpus source returned no data", nil)
	}
	if data.PostalCodes == nil {
		return nil, apperrors.NewMissingLookupTableError("postal code")
	}
	logger := observability.LoggerFromContext(ctx)

	postal, dropped := geo.FilterPostalTable(data.PostalCodes)
	if dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("Dropped postal code entries with invalid keys or coordinates")
	}

	providerRecords := make([]*entities.ProviderRecord, 0, len(data.Providers))
	for _, p := range data.Providers {
		if p == nil {
			providerRecords = append(providerRecords, p)
			continue
		}
		// Copy before clearing coordinates; source records may be shared.
		cp := *p
		cp.Locations = append([]entities.PracticeLocation(nil), p.Locations...)
		for i := range cp.Locations {
			if c := cp.Locations[i].Coordinates; c != nil && !c.Valid() {
				logger.Warn().Str("provider_id", cp.ID).Str("location", cp.Locations[i].Name).
					Msg("Ignoring practice location with invalid coordinates")
				cp.Locations[i].Coordinates = nil
			}
		}
		providerRecords = append(providerRecords, &cp)
	}

	snapshot := &entities.Snapshot{
		Version:        uuid.NewString(),
		LoadedAt:       time.Now().UTC(),
		Facilities:     data.Facilities,
		Providers:      providerRecords,
		PostalCodes:    postal,
		ServiceCatalog: entities.BuildServiceCatalog(data.Facilities),
	}
	if err := snapshot.Validate(); err != nil {
		return nil, apperrors.NewInvalidCorpusError("corpus snapshot failed validation", err)
	}

	snapshot.Embeddings = s.warmEmbeddings(ctx, snapshot)
	return snapshot, nil
}

// warmEmbeddings computes document vectors once per snapshot. Failures are
// logged and leave gaps; the semantic matcher embeds missing documents on demand.
func (s *SnapshotStore) warmEmbeddings(ctx context.Context, snapshot *entities.Snapshot) map[string][]float32 {
	if s.embedder == nil {
		return nil
	}
	logger := observability.LoggerFromContext(ctx)

	docs := make([]entities.MatchDocument, 0, len(snapshot.Facilities)+len(snapshot.Providers))
	for _, f := range snapshot.Facilities {
		docs = append(docs, f.Document())
	}
	for _, p := range snapshot.Providers {
		docs = append(docs, p.Document())
	}

	out := make(map[string][]float32, len(docs))
	for start := 0; start < len(docs); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := make([]entities.MatchDocument, 0, end-start)
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			if len(d.Texts) == 0 {
				continue
			}
			batch = append(batch, d)
			texts = append(texts, DocumentText(d))
		}
		if len(texts) == 0 {
			continue
		}

		vecs, err := s.embedder.Embed(ctx, texts)
		if err != nil || len(vecs) != len(texts) {
			logger.Warn().Err(err).Int("batch_start", start).Int("vectors", len(vecs)).
				Msg("Failed to precompute document embeddings for batch")
			continue
		}
		for i, d := range batch {
			out[d.ID] = vecs[i]
		}
	}
	return out
}

// StartPeriodicRefresh refreshes the snapshot on a fixed interval until ctx is done.
func (s *SnapshotStore) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("Stopping corpus refresh")
				return
			case <-ticker.C:
				if _, err := s.Refresh(ctx); err != nil {
					logger.Error().Err(err).Msg("Periodic corpus refresh failed, keeping previous snapshot")
				}
			}
		}
	}()
	logger.Info().Dur("interval", interval).Msg("Started periodic corpus refresh")
}

// WatchUpdates refreshes the snapshot for every event received until the
// channel closes or ctx is done. Events arriving during a refresh are
// coalesced into one follow-up refresh.
func (s *SnapshotStore) WatchUpdates(ctx context.Context, events <-chan *entities.CorpusEvent) {
	logger := observability.LoggerFromContext(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					logger.Info().Msg("Corpus update stream closed")
					return
				}
				drained := drain(events)
				logger.Info().
					Str("event_id", event.ID).
					Str("source", event.Source).
					Int("coalesced", drained).
					Msg("Corpus update received, refreshing snapshot")
				if _, err := s.Refresh(ctx); err != nil {
					logger.Error().Err(err).Msg("Corpus refresh after update failed, keeping previous snapshot")
				}
			}
		}
	}()
}

func drain(events <-chan *entities.CorpusEvent) int {
	n := 0
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}
