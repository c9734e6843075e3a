package services

import (
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/pkg/utils"
)

// Equipment a reason can imply a facility must have.
const (
	RequirementXRay      = "x-ray"
	RequirementLab       = "lab"
	RequirementProcedure = "procedure"
)

type serviceRequirement struct {
	name     string
	triggers []string
	// offeredAs are substrings of a facility service value that satisfy the requirement.
	offeredAs []string
}

var serviceRequirements = []serviceRequirement{
	{RequirementXRay,
		[]string{"fracture", "broken bone", "sprain", "twisted ankle", "chest x-ray", "x-ray"},
		[]string{"x-ray"}},
	{RequirementLab,
		[]string{"blood test", "lab work", "test results", "cholesterol", "std test", "sti test"},
		[]string{"lab", "laboratory"}},
	{RequirementProcedure,
		[]string{"stitches", "sutures", "deep cut", "wound", "laceration"},
		[]string{"procedure", "minor injuries"}},
}

// DetectServiceRequirements returns the equipment the reason implies, in a fixed order.
func DetectServiceRequirements(reason string) []string {
	normalized := utils.NormalizeText(reason)
	if normalized == "" {
		return nil
	}
	var out []string
	for _, req := range serviceRequirements {
		for _, trigger := range req.triggers {
			if strings.Contains(normalized, trigger) {
				out = append(out, req.name)
				break
			}
		}
	}
	return out
}

// FacilityHasService reports whether any listed service satisfies the requirement.
func FacilityHasService(f *entities.FacilityRecord, requirement string) bool {
	for _, req := range serviceRequirements {
		if req.name != requirement {
			continue
		}
		for _, svc := range f.Services {
			svc = strings.ToLower(svc)
			for _, token := range req.offeredAs {
				if strings.Contains(svc, token) {
					return true
				}
			}
		}
		return false
	}
	return false
}
