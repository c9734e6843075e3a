package services

import (
	"context"
	"fmt"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/infrastructure/observability"
	"github.com/Longevitate/carefinder/pkg/utils"
)

// Matcher decides whether a document satisfies a free-text reason.
type Matcher interface {
	Strategy() entities.MatchStrategy
	Match(ctx context.Context, doc entities.MatchDocument, reason string) (entities.MatchResult, error)
}

// MatchOutcome is the result of matching a whole candidate set.
type MatchOutcome struct {
	Results []entities.MatchResult
	// Strategy is the strategy actually applied, keyword after a fallback.
	Strategy entities.MatchStrategy
	Degraded bool
}

// MatchEngine applies the configured strategy across a candidate set and
// falls back to keyword matching when the embedder is unavailable.
type MatchEngine struct {
	strategy entities.MatchStrategy
	keyword  *KeywordMatcher
	semantic *SemanticMatcher
}

// NewMatchEngine creates an engine. A semantic or hybrid strategy without a
// semantic matcher runs as keyword.
func NewMatchEngine(strategy entities.MatchStrategy, keyword *KeywordMatcher, semantic *SemanticMatcher) *MatchEngine {
	if semantic == nil || (strategy != entities.MatchStrategySemantic && strategy != entities.MatchStrategyHybrid) {
		strategy = entities.MatchStrategyKeyword
	}
	return &MatchEngine{strategy: strategy, keyword: keyword, semantic: semantic}
}

// Strategy returns the configured strategy.
func (e *MatchEngine) Strategy() entities.MatchStrategy {
	return e.strategy
}

// Keyword exposes the keyword matcher for structured service filters.
func (e *MatchEngine) Keyword() *KeywordMatcher {
	return e.keyword
}

// Match implements Matcher for a single document.
func (e *MatchEngine) Match(ctx context.Context, doc entities.MatchDocument, reason string) (entities.MatchResult, error) {
	out := e.MatchAll(ctx, nil, []entities.MatchDocument{doc}, reason)
	return out.Results[0], nil
}

// MatchAll matches every document against the reason. Results are returned
// in document order. Embedder failures never surface as errors: the request
// is re-run with keyword matching and marked degraded.
func (e *MatchEngine) MatchAll(ctx context.Context, snapshot *entities.Snapshot, docs []entities.MatchDocument, reason string) MatchOutcome {
	if e.strategy == entities.MatchStrategyKeyword || isBlank(reason) {
		return e.keywordAll(docs, reason, false)
	}

	ctx, span := observability.StartSpan(ctx, "match.semantic")
	defer span.End()

	reasonVec, err := e.semantic.EmbedReason(ctx, reason)
	if err != nil {
		return e.degrade(ctx, docs, reason, err)
	}

	results := make([]entities.MatchResult, len(docs))
	for i, doc := range docs {
		res, err := e.semantic.Score(ctx, snapshot, doc, reasonVec)
		if err != nil {
			observability.RecordError(span, err)
			return e.degrade(ctx, docs, reason, err)
		}
		if !res.Matched && e.strategy == entities.MatchStrategyHybrid {
			if kw := e.keyword.MatchText(doc, reason); kw.Matched {
				kw.Score = res.Score
				kw.Explanation = fmt.Sprintf("keyword fallback: %s", kw.Explanation)
				res = kw
			}
		}
		results[i] = res
	}
	return MatchOutcome{Results: results, Strategy: e.strategy}
}

func (e *MatchEngine) degrade(ctx context.Context, docs []entities.MatchDocument, reason string, err error) MatchOutcome {
	observability.LoggerFromContext(ctx).Warn().
		Err(err).
		Str("strategy", string(e.strategy)).
		Msg("Embedder unavailable, falling back to keyword matching")
	recordDegraded(ctx, string(e.strategy))
	return e.keywordAll(docs, reason, true)
}

func (e *MatchEngine) keywordAll(docs []entities.MatchDocument, reason string, degraded bool) MatchOutcome {
	results := make([]entities.MatchResult, len(docs))
	for i, doc := range docs {
		results[i] = e.keyword.MatchText(doc, reason)
	}
	return MatchOutcome{Results: results, Strategy: entities.MatchStrategyKeyword, Degraded: degraded}
}

func isBlank(reason string) bool {
	return utils.NormalizeText(reason) == ""
}
