package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/pkg/geo"
	"github.com/Longevitate/carefinder/pkg/utils"
)

// RankProviders runs the provider corpus through filtering, matching and
// distance ranking. There is no triage step for provider searches.
func (s *SearchRankingService) RankProviders(ctx context.Context, req entities.ProviderSearchRequest) (*entities.RankedProviderResult, error) {
	ctx, span := observability.StartSpan(ctx, "search.providers")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	result := &entities.RankedProviderResult{
		RequestID: requestID(ctx),
		Entries:   []entities.RankedProvider{},
		Strategy:  s.engine.Strategy(),
		Search:    req.Search,
		Location:  req.Location,
	}

	snapshot, err := s.snapshot()
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	userCoords, resolved := s.resolve(ctx, snapshot, req.Location)
	if resolved {
		result.UserCoordinates = &userCoords
		result.LocationResolved = true
	}

	if len(snapshot.Providers) == 0 {
		result.NoData = true
		recordSearch(ctx, "provider", "no_data")
		return result, nil
	}

	candidates := make([]*entities.ProviderRecord, 0, len(snapshot.Providers))
	for _, p := range snapshot.Providers {
		if p != nil && providerPassesFilters(p, req.Filters) {
			candidates = append(candidates, p)
		}
	}

	docs := make([]entities.MatchDocument, len(candidates))
	for i, p := range candidates {
		docs[i] = p.Document()
	}
	outcome := s.engine.MatchAll(ctx, snapshot, docs, req.Search)
	result.Strategy = outcome.Strategy
	result.Degraded = outcome.Degraded

	entries := make([]entities.RankedProvider, 0, len(candidates))
	for i, p := range candidates {
		match := outcome.Results[i]
		if !match.Matched {
			continue
		}
		entry := entities.RankedProvider{Provider: p, Match: match}
		if resolved {
			if loc, d, ok := nearestPractice(p, userCoords); ok {
				entry.NearestLocation = loc
				entry.Match.DistanceMiles = &d
			}
		}
		entries = append(entries, entry)
	}

	sortRanked(entries, resolved, func(e entities.RankedProvider) rankKey {
		return rankKey{distance: e.Match.DistanceMiles, rating: e.Provider.Rating, name: e.Provider.Name}
	})

	result.TotalMatched = len(entries)
	result.Entries = truncate(entries, s.limit(req.Limit, s.opts.DefaultProviderLimit))
	if len(entries) == 0 && !isBlank(req.Search) {
		result.NoServiceMatch = true
	}

	outcomeLabel := "ok"
	if result.NoServiceMatch {
		outcomeLabel = "no_service_match"
	}
	recordSearch(ctx, "provider", outcomeLabel)
	observability.SetSpanAttributes(span,
		attribute.Int("search.total_matched", result.TotalMatched),
		attribute.Bool("search.degraded", result.Degraded),
	)
	logger.Debug().
		Int("candidates", len(candidates)).
		Int("matched", result.TotalMatched).
		Int("returned", len(result.Entries)).
		Msg("Provider search ranked")
	return result, nil
}

// providerPassesFilters applies every set criterion; unset criteria pass.
func providerPassesFilters(p *entities.ProviderRecord, f entities.ProviderFilters) bool {
	if f.AcceptingNewPatients != nil && p.AcceptingNewPatients != *f.AcceptingNewPatients {
		return false
	}
	if f.VirtualCare != nil && p.VirtualCare != *f.VirtualCare {
		return false
	}
	if len(f.Languages) > 0 && !speaksAny(p.Languages, f.Languages) {
		return false
	}
	if insurance := strings.ToLower(strings.TrimSpace(f.Insurance)); insurance != "" {
		accepted := false
		for _, plan := range p.Insurance {
			if strings.Contains(strings.ToLower(plan), insurance) {
				accepted = true
				break
			}
		}
		if !accepted {
			return false
		}
	}
	if gender := strings.TrimSpace(f.Gender); gender != "" && !strings.EqualFold(p.Gender, gender) {
		return false
	}
	if group := strings.TrimSpace(f.AgeGroup); group != "" {
		if !utils.ContainsFold(entities.KnownAgeGroups, group) || !utils.ContainsFold(p.AgeGroups, group) {
			return false
		}
	}
	return true
}

func speaksAny(spoken, wanted []string) bool {
	for _, w := range wanted {
		if utils.ContainsFold(spoken, strings.TrimSpace(w)) {
			return true
		}
	}
	return false
}

// nearestPractice returns the closest located practice. Providers with no
// located practice report ok=false.
func nearestPractice(p *entities.ProviderRecord, from geo.Coordinates) (*entities.PracticeLocation, float64, bool) {
	var (
		best     *entities.PracticeLocation
		bestDist float64
	)
	for i := range p.Locations {
		loc := &p.Locations[i]
		if loc.Coordinates == nil || !loc.Coordinates.Valid() {
			continue
		}
		d := geo.Between(from, *loc.Coordinates)
		if best == nil || d < bestDist {
			best, bestDist = loc, d
		}
	}
	return best, bestDist, best != nil
}
