package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/utils"
)

const prefixLength = 4

var genericCareTerms = map[string]struct{}{
	"care": {}, "help": {}, "medical": {}, "health": {}, "doctor": {}, "clinic": {}, "hospital": {},
}

// generalQueries are whole-reason requests every site can serve. Urgent care
// itself is left out so it still has to overlap with what a site offers.
var generalQueries = normalizedSet(
	"walk-in", "walk in", "same day", "same-day", "express care", "immediate care",
	"covid test", "covid-19 test", "coronavirus test", "flu shot", "physical exam", "vaccination",
)

func normalizedSet(phrases ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		out[utils.NormalizeText(p)] = struct{}{}
	}
	return out
}

// KeywordMatcher matches by synonym-expanded word overlap. It is
// deterministic and does no I/O.
type KeywordMatcher struct {
	expansion *TermExpansionService
}

// NewKeywordMatcher creates a keyword matcher over the given expansion table.
func NewKeywordMatcher(expansion *TermExpansionService) *KeywordMatcher {
	return &KeywordMatcher{expansion: expansion}
}

// Strategy implements Matcher.
func (m *KeywordMatcher) Strategy() entities.MatchStrategy {
	return entities.MatchStrategyKeyword
}

// Match implements Matcher. It never returns an error.
func (m *KeywordMatcher) Match(_ context.Context, doc entities.MatchDocument, reason string) (entities.MatchResult, error) {
	return m.MatchText(doc, reason), nil
}

// MatchText applies the keyword rules in order and reports the first that fires.
func (m *KeywordMatcher) MatchText(doc entities.MatchDocument, reason string) entities.MatchResult {
	return m.matchText(doc, reason, true)
}

// MatchService checks a single named service against doc. General requests
// such as "flu shot" must overlap like any other term.
func (m *KeywordMatcher) MatchService(doc entities.MatchDocument, service string) entities.MatchResult {
	return m.matchText(doc, service, false)
}

func (m *KeywordMatcher) matchText(doc entities.MatchDocument, reason string, allowGeneral bool) entities.MatchResult {
	result := entities.MatchResult{RecordID: doc.ID, Strategy: entities.MatchStrategyKeyword}

	normalizedReason := utils.NormalizeText(reason)
	if normalizedReason == "" {
		result.Matched = true
		result.Explanation = "no reason given"
		return result
	}
	if _, ok := generalQueries[normalizedReason]; ok && allowGeneral {
		result.Matched = true
		result.Explanation = fmt.Sprintf("general service request %q", reason)
		return result
	}

	tokens := utils.ContentTokens(reason)
	if len(tokens) == 0 {
		tokens = utils.Tokenize(reason)
	}
	expanded := m.expansion.ExpandTokens(tokens)

	for _, text := range doc.Texts {
		normalizedUnit := utils.NormalizeText(text)
		if normalizedUnit == "" {
			continue
		}
		unitTokens := utils.Tokenize(normalizedUnit)
		unitSet := make(map[string]struct{}, len(unitTokens))
		for _, t := range unitTokens {
			unitSet[t] = struct{}{}
		}

		for _, term := range expanded {
			if _, ok := unitSet[term]; ok {
				return m.explain(result, tokens, term, text)
			}
		}

		if strings.Contains(normalizedUnit, normalizedReason) || strings.Contains(normalizedReason, normalizedUnit) {
			result.Matched = true
			result.Explanation = fmt.Sprintf("phrase match with %q", text)
			return result
		}

		for _, term := range expanded {
			if len(term) < prefixLength {
				continue
			}
			for _, word := range unitTokens {
				if len(word) >= prefixLength && term[:prefixLength] == word[:prefixLength] {
					result.Matched = true
					result.Explanation = fmt.Sprintf("%q resembles %q in %q", term, word, text)
					return result
				}
			}
		}
	}

	if isGenericReason(tokens) {
		result.Matched = true
		result.Explanation = "general care request"
		return result
	}

	if (doc.IsUrgentCare || doc.IsExpressCare) && len(doc.Texts) == 0 && !mentionsEmergency(normalizedReason) {
		result.Matched = true
		result.Explanation = "urgent/express care (incomplete service data)"
		return result
	}

	return result
}

func (m *KeywordMatcher) explain(result entities.MatchResult, tokens []string, term, text string) entities.MatchResult {
	result.Matched = true
	if source := m.expansion.SynonymSource(tokens, term); source != term {
		result.Explanation = fmt.Sprintf("%q (related to %q) found in %q", term, source, text)
	} else {
		result.Explanation = fmt.Sprintf("%q found in %q", term, text)
	}
	return result
}

// isGenericReason reports whether every content token is a generic care term.
func isGenericReason(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if _, ok := genericCareTerms[t]; !ok {
			return false
		}
	}
	return true
}

func mentionsEmergency(normalizedReason string) bool {
	for _, kw := range EmergencyKeywords {
		if strings.Contains(normalizedReason, kw) {
			return true
		}
	}
	return false
}
