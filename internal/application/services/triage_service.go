package services

import (
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/utils"
)

type redFlag struct {
	category  entities.EmergencyCategory
	phrases   []string
	warning   string
	directive string
}

// redFlagCatalog is checked in order and the first hit wins. Physical
// categories come before the mental-health crisis entry so a reason naming
// both routes to 911.
var redFlagCatalog = []redFlag{
	{entities.EmergencyCardiac,
		[]string{"chest pain", "chest pressure", "chest tightness", "heart attack"},
		"chest pain or pressure - this could be a heart attack", entities.DirectiveCall911},
	{entities.EmergencyRespiratory,
		[]string{"difficulty breathing", "can't breathe", "cannot breathe", "shortness of breath", "severe breathing"},
		"difficulty breathing - this requires immediate attention", entities.DirectiveCall911},
	{entities.EmergencyStroke,
		[]string{"stroke", "face drooping", "arm weakness", "slurred speech", "severe headache", "worst headache"},
		"stroke symptoms - time is critical", entities.DirectiveCall911},
	{entities.EmergencyUnconscious,
		[]string{"loss of consciousness", "unconscious", "passed out", "unresponsive"},
		"loss of consciousness - call 911 immediately", entities.DirectiveCall911},
	{entities.EmergencyAlteredMental,
		[]string{"severe confusion", "altered mental state"},
		"altered mental state - needs immediate evaluation", entities.DirectiveCall911},
	{entities.EmergencyBleedingTrauma,
		[]string{"severe bleeding", "heavy bleeding", "bleeding won't stop", "severe trauma", "severe injury"},
		"severe bleeding or trauma - needs emergency care", entities.DirectiveCall911},
	{entities.EmergencyHeadInjury,
		[]string{"severe head injury", "head trauma"},
		"head injury - needs immediate evaluation", entities.DirectiveCall911},
	{entities.EmergencyAllergic,
		[]string{"severe allergic reaction", "anaphylaxis", "throat swelling", "tongue swelling"},
		"severe allergic reaction - use EpiPen if available and call 911", entities.DirectiveCall911},
	{entities.EmergencyAbdominal,
		[]string{"severe abdominal pain", "severe stomach pain"},
		"severe abdominal pain - could indicate serious condition", entities.DirectiveCall911},
	{entities.EmergencyInternalBleeding,
		[]string{"coughing up blood", "vomiting blood", "blood in stool"},
		"bleeding from body - needs emergency evaluation", entities.DirectiveCall911},
	{entities.EmergencySeizure,
		[]string{"seizure", "convulsion"},
		"seizure - needs immediate medical attention", entities.DirectiveCall911},
	{entities.EmergencyMentalHealthCrisis,
		[]string{"suicidal", "want to die", "kill myself", "suicide"},
		"mental health crisis - call 988 Suicide & Crisis Lifeline or 911", entities.DirectiveCrisisLine988},
}

// TriageService is the emergency gate in front of every facility search.
type TriageService struct {
	catalog []redFlag
}

// NewTriageService builds the gate with phrases normalized once, using the
// same normalizer applied to incoming reasons.
func NewTriageService() *TriageService {
	catalog := make([]redFlag, len(redFlagCatalog))
	for i, flag := range redFlagCatalog {
		phrases := make([]string, 0, len(flag.phrases))
		for _, p := range flag.phrases {
			phrases = append(phrases, utils.NormalizeText(p))
		}
		flag.phrases = phrases
		catalog[i] = flag
	}
	return &TriageService{catalog: catalog}
}

// Evaluate returns the verdict for a reason. Empty reasons never trigger.
func (s *TriageService) Evaluate(reason string) entities.EmergencyVerdict {
	normalized := utils.NormalizeText(reason)
	if normalized == "" {
		return entities.EmergencyVerdict{}
	}

	for _, flag := range s.catalog {
		for _, phrase := range flag.phrases {
			if strings.Contains(normalized, phrase) {
				return entities.EmergencyVerdict{
					Triggered:     true,
					Category:      flag.category,
					MatchedPhrase: phrase,
					Warning:       flag.warning,
					Directive:     flag.directive,
				}
			}
		}
	}
	return entities.EmergencyVerdict{}
}

// EmergencyKeywords lists phrases that must never be absorbed by the
// incomplete-data fallback in keyword matching.
var EmergencyKeywords = []string{"chest pain", "heart attack", "stroke", "unconscious", "911"}
