// Package bootstrap assembles the search pipeline from configuration. Both
// the API server and the evaluation command build it the same way.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Longevitate/carefinder/internal/adapters/cache"
	"github.com/Longevitate/carefinder/internal/adapters/corpus"
	"github.com/Longevitate/carefinder/internal/adapters/embedding"
	"github.com/Longevitate/carefinder/internal/adapters/events"
	"github.com/Longevitate/carefinder/internal/adapters/providers/geolocation"
	"github.com/Longevitate/carefinder/internal/application/services"
	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/internal/domain/repositories"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/openai"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/postgres"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/redis"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/pkg/config"
)

// Pipeline holds the wired search components.
type Pipeline struct {
	Store     *services.SnapshotStore
	Ranking   *services.SearchRankingService
	Assembler *services.ResultAssembler
	// Events is set when corpus update events are enabled.
	Events providers.EventBus

	redis   *redis.Client
	closers []func() error
}

// Close releases database and cache connections.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build connects the configured corpus source and embedder, loads the first
// snapshot and wires the ranking service. A failed first load is fatal.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Pipeline, error) {
	p := &Pipeline{Assembler: services.NewResultAssembler()}

	source, err := p.corpusSource(ctx, cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	embedder, err := p.textEmbedder(ctx, cfg, metrics)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	if cfg.Corpus.UpdateEvents {
		if client, err := p.redisClient(ctx, cfg); err != nil {
			log.Warn().Err(err).Msg("Corpus update events unavailable, relying on periodic refresh")
		} else {
			p.Events = events.NewRedisEventBus(client)
			p.closers = append(p.closers, p.Events.Close)
		}
	}

	p.Store = services.NewSnapshotStore(source, embedder, metrics)
	if _, err := p.Store.Refresh(ctx); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("initial corpus load: %w", err)
	}

	expansion, err := services.NewTermExpansionService(cfg.Matching.SynonymsFile)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("synonyms: %w", err)
	}
	hours, err := services.NewHoursEvaluator(cfg.Matching.HoursTimezone)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("hours timezone: %w", err)
	}

	var semantic *services.SemanticMatcher
	if embedder != nil {
		semantic = services.NewSemanticMatcher(embedder, cfg.Matching.SemanticThreshold)
	}
	engine := services.NewMatchEngine(entities.MatchStrategy(cfg.Matching.Strategy), services.NewKeywordMatcher(expansion), semantic)

	p.Ranking = services.NewSearchRankingService(
		p.Store,
		services.NewTriageService(),
		geolocation.NewPostalCodeResolver(),
		engine,
		hours,
		RankingOptions(cfg.Matching),
	)

	log.Info().
		Str("strategy", string(engine.Strategy())).
		Str("corpus_source", source.Name()).
		Msg("Search pipeline ready")
	return p, nil
}

// RankingOptions maps matching configuration onto ranking options.
func RankingOptions(m config.MatchingConfig) services.RankingOptions {
	return services.RankingOptions{
		DefaultFacilityLimit:   m.DefaultFacilityLimit,
		DefaultProviderLimit:   m.DefaultProviderLimit,
		MaxResultLimit:         m.MaxResultLimit,
		SkipRankingOnEmergency: m.SkipRankingOnEmergency,
	}
}

func (p *Pipeline) corpusSource(ctx context.Context, cfg *config.Config) (repositories.CorpusSource, error) {
	switch cfg.Corpus.Source {
	case "postgres":
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, pgClient.Close)
		return corpus.NewPostgresSource(pgClient), nil
	default:
		return corpus.NewFileSource(cfg.Corpus.FacilitiesPath, cfg.Corpus.ProvidersPath, cfg.Corpus.PostalCodesPath), nil
	}
}

// textEmbedder returns nil for keyword matching. The Redis cache is optional:
// when it cannot be reached the embedder runs uncached.
func (p *Pipeline) textEmbedder(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (providers.TextEmbedder, error) {
	if entities.MatchStrategy(cfg.Matching.Strategy) == entities.MatchStrategyKeyword {
		return nil, nil
	}

	client, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	var embedder providers.TextEmbedder = client

	if cfg.Redis.EmbeddingCache {
		redisClient, err := p.redisClient(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Embedding cache unavailable, continuing without it")
			return embedder, nil
		}
		embedder = embedding.NewCachedEmbedder(embedder, cache.NewRedisAdapter(redisClient), cfg.Redis.EmbeddingTTL, metrics)
	}
	return embedder, nil
}

// WatchCorpusUpdates subscribes the snapshot store to corpus update events.
// It is a no-op when events are disabled.
func (p *Pipeline) WatchCorpusUpdates(ctx context.Context) error {
	if p.Events == nil {
		return nil
	}
	updates, err := p.Events.Subscribe(ctx, providers.EventChannelCorpusUpdates)
	if err != nil {
		return err
	}
	p.Store.WatchUpdates(ctx, updates)
	return nil
}

// redisClient connects once and shares the client between the embedding
// cache and the event bus.
func (p *Pipeline) redisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if p.redis != nil {
		return p.redis, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	p.redis = client
	p.closers = append(p.closers, client.Close)
	return client, nil
}
