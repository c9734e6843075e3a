package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

type fakeSearcher struct {
	results map[string]*entities.RankedResult
	limits  []int
}

func (f *fakeSearcher) TriageAndRank(_ context.Context, req entities.SearchRequest) (*entities.RankedResult, error) {
	f.limits = append(f.limits, req.Limit)
	res, ok := f.results[req.Reason]
	if !ok {
		return nil, errors.New("search data is not available")
	}
	return res, nil
}

func ranked(ids ...string) *entities.RankedResult {
	res := &entities.RankedResult{Entries: []entities.RankedFacility{}}
	for _, id := range ids {
		res.Entries = append(res.Entries, entities.RankedFacility{Facility: &entities.FacilityRecord{ID: id}})
	}
	return res
}

func TestRunner_Run(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]*entities.RankedResult{
		"flu":   ranked("everett", "portland"),
		"x-ray": ranked("portland", "everett"),
		"chest pain": {
			Emergency: &entities.EmergencyVerdict{Triggered: true, Category: entities.EmergencyCardiac},
			Entries:   []entities.RankedFacility{},
		},
		"hearing aids": ranked(),
	}}

	cases := []QueryCase{
		{ID: "flu", Reason: "flu", ExpectedIDs: []string{"everett"}, ExpectedTop: "everett", Difficulty: "easy"},
		{ID: "xray", Reason: "x-ray", ExpectedIDs: []string{"everett"}, ExpectedTop: "everett", Difficulty: "medium"},
		{ID: "cardiac", Reason: "chest pain", ExpectEmergency: true, ExpectedCategory: entities.EmergencyCardiac, Difficulty: "easy"},
		{ID: "hearing", Reason: "hearing aids", Difficulty: "hard"},
		{ID: "broken", Reason: "unknown", Difficulty: "hard"},
	}

	summary := NewRunner(searcher, 0).Run(context.Background(), cases)

	if summary.TotalCases != 5 || summary.Errors != 1 {
		t.Fatalf("expected 5 cases with 1 error, got %d/%d", summary.TotalCases, summary.Errors)
	}
	if !almostEqual(summary.EmergencyAccuracy, 1.0) {
		t.Errorf("expected emergency accuracy 1.0, got %f", summary.EmergencyAccuracy)
	}
	// flu and x-ray returned locations, hearing aids did not
	if !almostEqual(summary.HitRate, 2.0/3.0) {
		t.Errorf("expected hit rate 2/3, got %f", summary.HitRate)
	}
	if !almostEqual(summary.ExpectedTopRate, 0.5) {
		t.Errorf("expected top rate 0.5, got %f", summary.ExpectedTopRate)
	}
	if !almostEqual(summary.AvgRecallAtK, 1.0) {
		t.Errorf("expected avg recall 1.0, got %f", summary.AvgRecallAtK)
	}
	if !almostEqual(summary.AvgMRRAtK, 0.75) {
		t.Errorf("expected avg MRR 0.75, got %f", summary.AvgMRRAtK)
	}
	if len(summary.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(summary.Failures))
	}
	if summary.Failures[0].CaseID != "xray" || summary.Failures[1].CaseID != "broken" {
		t.Errorf("unexpected failures: %s, %s", summary.Failures[0].CaseID, summary.Failures[1].CaseID)
	}
	if d := summary.ByDifficulty["hard"]; d == nil || d.Count != 2 || d.Passed != 1 {
		t.Errorf("unexpected hard bucket: %+v", d)
	}
	for _, limit := range searcher.limits {
		if limit != DefaultK {
			t.Errorf("expected searches limited to %d, got %d", DefaultK, limit)
		}
	}
}

func TestRunner_MissedEmergencyFails(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]*entities.RankedResult{
		"numb face": ranked("everett"),
	}}
	cases := []QueryCase{
		{ID: "stroke", Reason: "numb face", ExpectEmergency: true, ExpectedCategory: entities.EmergencyStroke, Difficulty: "hard"},
	}

	summary := NewRunner(searcher, 3).Run(context.Background(), cases)

	if !almostEqual(summary.EmergencyAccuracy, 0.0) {
		t.Errorf("expected emergency accuracy 0, got %f", summary.EmergencyAccuracy)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].CategoryCorrect {
		t.Errorf("expected a category failure, got %+v", summary.Failures)
	}
	if searcher.limits[0] != 3 {
		t.Errorf("expected limit 3, got %d", searcher.limits[0])
	}
}
