package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Longevitate/carefinder/pkg/utils"
)

// defaultSynonyms are the built-in domain clusters. Expansion is one-way:
// a reason word pulls in its cluster, cluster members do not pull in the key.
var defaultSynonyms = map[string][]string{
	"urgent":      {"immediate", "acute", "emergency", "same-day", "walk-in", "same", "day", "access"},
	"emergency":   {"urgent", "critical", "severe", "acute", "er", "life-threatening"},
	"primary":     {"family", "general", "routine", "preventive", "wellness"},
	"lab":         {"laboratory", "blood", "test", "diagnostic", "testing"},
	"imaging":     {"x-ray", "ct", "mri", "scan", "radiology", "ultrasound"},
	"therapy":     {"physical", "occupational", "rehab", "rehabilitation"},
	"mental":      {"behavioral", "psychology", "psychiatry", "counseling"},
	"pediatric":   {"children", "child", "kids", "infant", "adolescent"},
	"women":       {"obstetric", "gynecology", "maternity", "pregnancy"},
	"senior":      {"geriatric", "elderly", "aging"},
	"care":        {"clinic", "facility", "location", "center", "same-day", "walk-in"},
	"covid":       {"covid-19", "coronavirus", "covid19", "sars-cov-2", "pandemic"},
	"test":        {"testing", "exam", "examination", "screening", "check"},
	"vaccination": {"vaccine", "shot", "immunization", "vaccinations"},
	"flu":         {"influenza", "flu-like", "seasonal"},
}

// TermExpansionService handles expansion of search terms into synonyms and related concepts
type TermExpansionService struct {
	terms map[string][]string
}

// NewTermExpansionService creates a service seeded with the built-in clusters.
// When overridePath is set, its YAML mapping (term -> list of synonyms)
// replaces the built-in entry for every term it names.
func NewTermExpansionService(overridePath string) (*TermExpansionService, error) {
	s := &TermExpansionService{
		terms: make(map[string][]string, len(defaultSynonyms)),
	}
	for k, v := range defaultSynonyms {
		s.terms[k] = v
	}
	if overridePath == "" {
		return s, nil
	}
	if err := s.loadConfig(overridePath); err != nil {
		return nil, err
	}
	return s, nil
}

// loadConfig merges term mappings from a YAML file
func (s *TermExpansionService) loadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var mappings map[string][]string
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	for k, v := range mappings {
		key := utils.NormalizeText(k)
		if key == "" {
			continue
		}
		normalized := make([]string, 0, len(v))
		for _, syn := range v {
			if syn = utils.NormalizeText(syn); syn != "" {
				normalized = append(normalized, syn)
			}
		}
		s.terms[key] = normalized
	}
	return nil
}

// Expand expands a search query into a list of related terms including the original terms
func (s *TermExpansionService) Expand(query string) []string {
	return s.ExpandTokens(utils.Tokenize(query))
}

// ExpandTokens expands already tokenized words, keeping the originals first.
func (s *TermExpansionService) ExpandTokens(tokens []string) []string {
	expanded := make([]string, 0, len(tokens))
	seen := make(map[string]bool)

	for _, term := range tokens {
		term = strings.ToLower(term)
		if !seen[term] {
			expanded = append(expanded, term)
			seen[term] = true
		}

		for _, syn := range s.terms[term] {
			if !seen[syn] {
				expanded = append(expanded, syn)
				seen[syn] = true
			}
		}
	}

	return expanded
}

// SynonymSource returns the reason token whose cluster contains term, or
// term itself when it was an original token.
func (s *TermExpansionService) SynonymSource(tokens []string, term string) string {
	for _, t := range tokens {
		if t == term {
			return t
		}
	}
	for _, t := range tokens {
		for _, syn := range s.terms[t] {
			if syn == term {
				return t
			}
		}
	}
	return term
}
