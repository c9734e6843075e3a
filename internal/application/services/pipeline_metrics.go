package services

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	pipelineMetricsOnce sync.Once
	searchCounter       metric.Int64Counter
	emergencyCounter    metric.Int64Counter
	degradedCounter     metric.Int64Counter
	geocodeMissCounter  metric.Int64Counter
)

func initPipelineMetrics() {
	meter := otel.Meter("github.com/Longevitate/carefinder/search_pipeline")
	if c, err := meter.Int64Counter(
		"carefinder.search.count",
		metric.WithDescription("Searches handled, by corpus and outcome"),
	); err == nil {
		searchCounter = c
	}
	if c, err := meter.Int64Counter(
		"carefinder.emergency.count",
		metric.WithDescription("Searches short-circuited by the emergency gate"),
	); err == nil {
		emergencyCounter = c
	}
	if c, err := meter.Int64Counter(
		"carefinder.match.degraded.count",
		metric.WithDescription("Searches that fell back to keyword matching after an embedder failure"),
	); err == nil {
		degradedCounter = c
	}
	if c, err := meter.Int64Counter(
		"carefinder.geocode.miss.count",
		metric.WithDescription("Location inputs that could not be resolved to coordinates"),
	); err == nil {
		geocodeMissCounter = c
	}
}

func recordSearch(ctx context.Context, corpus, outcome string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if searchCounter == nil {
		return
	}
	searchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("search.corpus", corpus),
		attribute.String("search.outcome", outcome),
	))
}

func recordEmergency(ctx context.Context, category string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if emergencyCounter == nil {
		return
	}
	emergencyCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("emergency.category", category)))
}

func recordDegraded(ctx context.Context, strategy string) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if degradedCounter == nil {
		return
	}
	degradedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("match.strategy", strategy)))
}

func recordGeocodeMiss(ctx context.Context) {
	pipelineMetricsOnce.Do(initPipelineMetrics)
	if geocodeMissCounter == nil {
		return
	}
	geocodeMissCounter.Add(ctx, 1)
}
