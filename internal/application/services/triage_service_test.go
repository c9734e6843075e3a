package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

func TestTriageService_Evaluate(t *testing.T) {
	svc := NewTriageService()

	tests := []struct {
		name      string
		reason    string
		triggered bool
		category  entities.EmergencyCategory
		directive string
	}{
		{"empty", "", false, "", ""},
		{"whitespace", "   ", false, "", ""},
		{"chest pain", "I have chest pain", true, entities.EmergencyCardiac, entities.DirectiveCall911},
		{"case and punctuation", "CHEST PAIN!!", true, entities.EmergencyCardiac, entities.DirectiveCall911},
		{"apostrophe normalized", "I can't breathe", true, entities.EmergencyRespiratory, entities.DirectiveCall911},
		{"apostrophe dropped by user", "i cant breathe", true, entities.EmergencyRespiratory, entities.DirectiveCall911},
		{"collapsed whitespace", "slurred    speech", true, entities.EmergencyStroke, entities.DirectiveCall911},
		{"seizure", "my son had a seizure", true, entities.EmergencySeizure, entities.DirectiveCall911},
		{"mental health", "I want to die", true, entities.EmergencyMentalHealthCrisis, entities.DirectiveCrisisLine988},
		{"benign", "sore throat and cough", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := svc.Evaluate(tt.reason)
			assert.Equal(t, tt.triggered, v.Triggered)
			assert.Equal(t, tt.category, v.Category)
			assert.Equal(t, tt.directive, v.Directive)
			if tt.triggered {
				assert.NotEmpty(t, v.Warning)
				assert.NotEmpty(t, v.MatchedPhrase)
			}
		})
	}
}

func TestTriageService_PhysicalPrecedesMentalHealth(t *testing.T) {
	svc := NewTriageService()

	v := svc.Evaluate("feeling suicidal and having chest pain")

	assert.True(t, v.Triggered)
	assert.Equal(t, entities.EmergencyCardiac, v.Category)
	assert.Equal(t, entities.DirectiveCall911, v.Directive)
}

func TestTriageService_IsDeterministic(t *testing.T) {
	svc := NewTriageService()
	assert.Equal(t, svc.Evaluate("severe head injury"), svc.Evaluate("severe head injury"))
}
