package evaluation

import (
	"time"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

// QueryCase is one labeled search with its expected outcome.
type QueryCase struct {
	ID       string `json:"id"`
	Reason   string `json:"reason"`
	Location string `json:"location,omitempty"`
	// ExpectEmergency marks reasons the triage gate must stop.
	ExpectEmergency  bool                       `json:"expect_emergency"`
	ExpectedCategory entities.EmergencyCategory `json:"expected_category,omitempty"`
	// ExpectedIDs are facility IDs considered relevant for the reason.
	ExpectedIDs []string `json:"expected_ids,omitempty"`
	// ExpectedTop, when set, must be the first ranked facility.
	ExpectedTop string `json:"expected_top,omitempty"`
	Difficulty  string `json:"difficulty"` // easy, medium, hard
}

// CaseResult holds the evaluation outcome for a single case.
type CaseResult struct {
	CaseID           string        `json:"case_id"`
	Reason           string        `json:"reason"`
	Difficulty       string        `json:"difficulty"`
	EmergencyCorrect bool          `json:"emergency_correct"`
	CategoryCorrect  bool          `json:"category_correct"`
	ResultCount      int           `json:"result_count"`
	RetrievedIDs     []string      `json:"retrieved_ids,omitempty"`
	RecallAtK        float64       `json:"recall_at_k"`
	MRRAtK           float64       `json:"mrr_at_k"`
	TopCorrect       *bool         `json:"top_correct,omitempty"`
	Degraded         bool          `json:"degraded,omitempty"`
	Latency          time.Duration `json:"latency"`
	Error            string        `json:"error,omitempty"`
}

// Failed reports whether the case missed any of its expectations.
func (r CaseResult) Failed() bool {
	if r.Error != "" || !r.EmergencyCorrect || !r.CategoryCorrect {
		return true
	}
	return r.TopCorrect != nil && !*r.TopCorrect
}

// Summary holds aggregate metrics across a query suite.
type Summary struct {
	TotalCases int `json:"total_cases"`
	Errors     int `json:"errors"`
	// EmergencyAccuracy is the share of cases whose triage verdict matched
	// the label, counting both missed and false alarms.
	EmergencyAccuracy float64 `json:"emergency_accuracy"`
	// HitRate is the share of non-emergency cases returning at least one location.
	HitRate float64 `json:"hit_rate"`
	// ExpectedTopRate is the share of cases with ExpectedTop that ranked it first.
	ExpectedTopRate float64                       `json:"expected_top_rate"`
	AvgRecallAtK    float64                       `json:"avg_recall_at_k"`
	AvgMRRAtK       float64                       `json:"avg_mrr_at_k"`
	AvgLatency      time.Duration                 `json:"avg_latency"`
	ByDifficulty    map[string]*DifficultySummary `json:"by_difficulty"`
	Failures        []CaseResult                  `json:"failures,omitempty"`
}

// DifficultySummary groups pass rates by labeled difficulty.
type DifficultySummary struct {
	Count  int `json:"count"`
	Passed int `json:"passed"`
}
