package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
	"github.com/Longevitate/carefinder/pkg/geo"
)

// SnapshotReader hands out the current corpus snapshot.
type SnapshotReader interface {
	Current() *entities.Snapshot
}

// RankingOptions are the pipeline knobs read from configuration.
type RankingOptions struct {
	DefaultFacilityLimit   int
	DefaultProviderLimit   int
	MaxResultLimit         int
	SkipRankingOnEmergency bool
}

// DefaultRankingOptions mirrors the configuration defaults.
func DefaultRankingOptions() RankingOptions {
	return RankingOptions{
		DefaultFacilityLimit:   7,
		DefaultProviderLimit:   5,
		MaxResultLimit:         20,
		SkipRankingOnEmergency: true,
	}
}

// SearchRankingService runs triage, matching, filtering and ranking over the
// current snapshot. It holds no per-request state.
type SearchRankingService struct {
	snapshots SnapshotReader
	triage    *TriageService
	resolver  providers.CoordinateResolver
	engine    *MatchEngine
	hours     *HoursEvaluator
	opts      RankingOptions
	now       func() time.Time
}

// NewSearchRankingService wires the pipeline stages together.
func NewSearchRankingService(
	snapshots SnapshotReader,
	triage *TriageService,
	resolver providers.CoordinateResolver,
	engine *MatchEngine,
	hours *HoursEvaluator,
	opts RankingOptions,
) *SearchRankingService {
	return &SearchRankingService{
		snapshots: snapshots,
		triage:    triage,
		resolver:  resolver,
		engine:    engine,
		hours:     hours,
		opts:      opts,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for open-now evaluation.
func (s *SearchRankingService) WithClock(now func() time.Time) *SearchRankingService {
	s.now = now
	return s
}

// Options returns the configured pipeline options.
func (s *SearchRankingService) Options() RankingOptions {
	return s.opts
}

// TriageAndRank is the facility search entry point. Only a missing or
// structurally invalid snapshot is returned as an error; every other
// condition is reported through result flags.
func (s *SearchRankingService) TriageAndRank(ctx context.Context, req entities.SearchRequest) (*entities.RankedResult, error) {
	ctx, span := observability.StartSpan(ctx, "search.facilities")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	result := &entities.RankedResult{
		RequestID: requestID(ctx),
		Entries:   []entities.RankedFacility{},
		Strategy:  s.engine.Strategy(),
		Reason:    req.Reason,
		Location:  req.Location,
	}

	reason := req.Reason
	verdict := s.triage.Evaluate(req.Reason)
	if verdict.Triggered {
		result.Emergency = &verdict
		recordEmergency(ctx, string(verdict.Category))
		observability.SetSpanAttributes(span, attribute.String("emergency.category", string(verdict.Category)))
		logger.Warn().
			Str("category", string(verdict.Category)).
			Str("directive", verdict.Directive).
			Msg("Emergency red flag detected")
		if s.opts.SkipRankingOnEmergency {
			recordSearch(ctx, "facility", "emergency")
			return result, nil
		}
		// Nearest locations only: matching is disabled for emergencies.
		reason = ""
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

	if len(snapshot.Facilities) == 0 {
		result.NoData = true
		recordSearch(ctx, "facility", "no_data")
		return result, nil
	}

	docs := make([]entities.MatchDocument, len(snapshot.Facilities))
	for i, f := range snapshot.Facilities {
		docs[i] = f.Document()
	}
	outcome := s.engine.MatchAll(ctx, snapshot, docs, reason)
	result.Strategy = outcome.Strategy
	result.Degraded = outcome.Degraded

	requirements := DetectServiceRequirements(reason)
	now := s.now()

	entries := make([]entities.RankedFacility, 0, len(snapshot.Facilities))
	matchedCount := 0
	for i, f := range snapshot.Facilities {
		match := outcome.Results[i]
		if !match.Matched {
			continue
		}
		matchedCount++
		if !s.hasRequiredServices(f, req.Filters.RequiredServices) || !hasDetectedServices(f, requirements) {
			continue
		}

		status := s.hours.IsOpenNow(f.Hours, now)
		if req.Filters.OpenNowOnly && !status.IsOpen {
			continue
		}
		match.OpenStatus = &status

		if resolved {
			d := geo.Between(userCoords, f.Coordinates)
			match.DistanceMiles = &d
		}
		entries = append(entries, entities.RankedFacility{Facility: f, Match: match})
	}

	sortRanked(entries, resolved, func(e entities.RankedFacility) rankKey {
		return rankKey{distance: e.Match.DistanceMiles, rating: e.Facility.Rating, name: e.Facility.Name}
	})
	entries = dedupeFacilityNames(entries)

	result.TotalMatched = len(entries)
	result.Entries = truncate(entries, s.limit(req.Limit, s.opts.DefaultFacilityLimit))
	// Filters can empty the list without the reason failing to match.
	if matchedCount == 0 && !isBlank(reason) {
		result.NoServiceMatch = true
	}

	outcomeLabel := "ok"
	switch {
	case result.NoServiceMatch:
		outcomeLabel = "no_service_match"
	case result.Emergency != nil:
		outcomeLabel = "emergency_nearest"
	}
	recordSearch(ctx, "facility", outcomeLabel)
	observability.SetSpanAttributes(span,
		attribute.Int("search.total_matched", result.TotalMatched),
		attribute.Bool("search.degraded", result.Degraded),
		attribute.Bool("search.location_resolved", result.LocationResolved),
	)
	logger.Debug().
		Int("matched", result.TotalMatched).
		Int("returned", len(result.Entries)).
		Str("strategy", string(result.Strategy)).
		Bool("degraded", result.Degraded).
		Msg("Facility search ranked")
	return result, nil
}

func (s *SearchRankingService) snapshot() (*entities.Snapshot, error) {
	snapshot := s.snapshots.Current()
	if snapshot == nil {
		return nil, apperrors.NewInvalidCorpusError("no corpus snapshot loaded", nil)
	}
	if snapshot.PostalCodes == nil {
		return nil, apperrors.NewMissingLookupTableError("postal code")
	}
	return snapshot, nil
}

func (s *SearchRankingService) resolve(ctx context.Context, snapshot *entities.Snapshot, location string) (geo.Coordinates, bool) {
	if strings.TrimSpace(location) == "" {
		return geo.Coordinates{}, false
	}
	coords, ok := s.resolver.Resolve(snapshot, location)
	if !ok {
		recordGeocodeMiss(ctx)
		observability.LoggerFromContext(ctx).Info().
			Str("location", location).
			Msg("Could not resolve location, ranking without distance")
	}
	return coords, ok
}

// hasRequiredServices reports whether every requested service is keyword
// matched by the facility's own text. Urgent-care flags do not count here.
func (s *SearchRankingService) hasRequiredServices(f *entities.FacilityRecord, required []string) bool {
	if len(required) == 0 {
		return true
	}
	doc := f.Document()
	doc.IsUrgentCare, doc.IsExpressCare = false, false
	for _, svc := range required {
		if isBlank(svc) {
			continue
		}
		if !s.engine.Keyword().MatchService(doc, svc).Matched {
			return false
		}
	}
	return true
}

func hasDetectedServices(f *entities.FacilityRecord, requirements []string) bool {
	for _, req := range requirements {
		if !FacilityHasService(f, req) {
			return false
		}
	}
	return true
}

func (s *SearchRankingService) limit(requested, fallback int) int {
	max := s.opts.MaxResultLimit
	if max <= 0 {
		max = 20
	}
	if requested <= 0 {
		requested = fallback
	}
	if requested > max {
		requested = max
	}
	return requested
}

type rankKey struct {
	distance *float64
	rating   *entities.Rating
	name     string
}

// sortRanked orders entries by distance when the user was located, falling
// back to rating then name. The sort is stable so ties keep corpus order.
func sortRanked[T any](items []T, byDistance bool, key func(T) rankKey) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if byDistance {
			switch {
			case a.distance != nil && b.distance != nil:
				return *a.distance < *b.distance
			case a.distance != nil:
				return true
			default:
				return false
			}
		}
		ra, rb := ratingValue(a.rating), ratingValue(b.rating)
		if ra != rb {
			return ra > rb
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})
}

func ratingValue(r *entities.Rating) float64 {
	if r == nil {
		return -1
	}
	return r.Value
}

// dedupeFacilityNames keeps the first occurrence of each display name.
func dedupeFacilityNames(entries []entities.RankedFacility) []entities.RankedFacility {
	seenIDs := make(map[string]struct{}, len(entries))
	seenNames := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Facility.Name))
		if _, ok := seenIDs[e.Facility.ID]; ok {
			continue
		}
		if _, ok := seenNames[name]; ok && name != "" {
			continue
		}
		seenIDs[e.Facility.ID] = struct{}{}
		seenNames[name] = struct{}{}
		out = append(out, e)
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func requestID(ctx context.Context) string {
	if id := observability.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
