package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Longevitate/carefinder/internal/adapters/corpus"
	"github.com/Longevitate/carefinder/internal/adapters/events"
	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/postgres"
	"github.com/Longevitate/carefinder/internal/infrastructure/clients/redis"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/pkg/config"
)

// seed copies the JSON corpus files into Postgres so the API can run with
// CORPUS_SOURCE=postgres.
func main() {
	reset := flag.Bool("reset", os.Getenv("RESET_DB") == "true", "truncate corpus tables before seeding")
	migrationsPath := flag.String("migrations", "migrations", "directory of schema migrations to apply first, empty to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("carefinder-seed", cfg.Environment)

	ctx := context.Background()
	data, err := corpus.NewFileSource(cfg.Corpus.FacilitiesPath, cfg.Corpus.ProvidersPath, cfg.Corpus.PostalCodesPath).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read corpus files")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pgClient.Close()

	if *migrationsPath != "" {
		if err := postgres.RunMigrations(&cfg.Database, *migrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate corpus schema")
		}
	}

	if *reset {
		log.Info().Msg("Reset requested, truncating corpus tables before seeding")
	}
	if err := corpus.NewPostgresWriter(pgClient).Write(ctx, data, *reset); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed corpus")
	}

	log.Info().
		Int("facilities", len(data.Facilities)).
		Int("providers", len(data.Providers)).
		Int("postal_codes", len(data.PostalCodes)).
		Msg("Corpus seeded")

	if cfg.Corpus.UpdateEvents {
		notifyServers(ctx, cfg, &entities.CorpusEvent{
			ID:          uuid.NewString(),
			Type:        entities.CorpusEventUpdated,
			Source:      "postgres",
			Facilities:  len(data.Facilities),
			Providers:   len(data.Providers),
			PostalCodes: len(data.PostalCodes),
			Timestamp:   time.Now().UTC(),
		})
	}
}

// notifyServers tells running API servers to refresh. Servers also refresh on
// their interval, so a failure here is logged and not fatal.
func notifyServers(ctx context.Context, cfg *config.Config, event *entities.CorpusEvent) {
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis, servers will pick up the corpus on their next refresh")
		return
	}
	defer redisClient.Close()

	bus := events.NewRedisEventBus(redisClient)
	defer bus.Close()
	if err := bus.Publish(ctx, providers.EventChannelCorpusUpdates, event); err != nil {
		log.Warn().Err(err).Msg("Failed to publish corpus update event")
		return
	}
	log.Info().Str("event_id", event.ID).Msg("Published corpus update event")
}
