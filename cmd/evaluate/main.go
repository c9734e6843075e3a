package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Longevitate/carefinder/internal/bootstrap"
	"github.com/Longevitate/carefinder/internal/evaluation"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/pkg/config"
)

// evaluate runs the labeled query suite against the configured corpus and
// prints the summary as JSON.
func main() {
	suitePath := flag.String("suite", "config/query_suite.json", "path to the query suite")
	k := flag.Int("k", evaluation.DefaultK, "rank cutoff for recall and MRR")
	minEmergency := flag.Float64("min-emergency-accuracy", 1.0, "exit non-zero below this emergency accuracy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("carefinder-evaluate", cfg.Environment)

	cases, err := evaluation.LoadQueryCases(*suitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load query suite")
	}
	if err := evaluation.ValidateQueryCases(cases); err != nil {
		log.Fatal().Err(err).Msg("Invalid query suite")
	}

	ctx := context.Background()
	pipeline, err := bootstrap.Build(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build search pipeline")
	}

	summary := evaluation.NewRunner(pipeline.Ranking, *k).Run(ctx, cases)
	if err := pipeline.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close pipeline connections")
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if summary.EmergencyAccuracy < *minEmergency {
		log.Error().
			Float64("emergency_accuracy", summary.EmergencyAccuracy).
			Msg("Emergency accuracy below threshold")
		os.Exit(1)
	}
}
