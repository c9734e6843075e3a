package evaluation

import (
	"context"
	"time"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

// DefaultK is the rank cutoff for recall and reciprocal rank.
const DefaultK = 7

// Searcher runs a facility search.
type Searcher interface {
	TriageAndRank(ctx context.Context, req entities.SearchRequest) (*entities.RankedResult, error)
}

// Runner runs a query suite through the search pipeline.
type Runner struct {
	searcher Searcher
	k        int
}

// NewRunner creates a runner. k <= 0 uses DefaultK.
func NewRunner(searcher Searcher, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{searcher: searcher, k: k}
}

// Run evaluates every case. A failed search is recorded on the case and
// counted, never returned.
func (r *Runner) Run(ctx context.Context, cases []QueryCase) *Summary {
	summary := &Summary{
		TotalCases:   len(cases),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	var (
		emergencyCorrect int
		nonEmergency     int
		hits             int
		withTop          int
		topCorrect       int
		ranked           int
		latency          time.Duration
	)

	for _, c := range cases {
		res := r.evaluate(ctx, c)
		latency += res.Latency

		if res.Error != "" {
			summary.Errors++
		} else {
			if res.EmergencyCorrect {
				emergencyCorrect++
			}
			if !c.ExpectEmergency {
				nonEmergency++
				if res.ResultCount > 0 {
					hits++
				}
			}
			if len(c.ExpectedIDs) > 0 {
				ranked++
				summary.AvgRecallAtK += res.RecallAtK
				summary.AvgMRRAtK += res.MRRAtK
			}
			if res.TopCorrect != nil {
				withTop++
				if *res.TopCorrect {
					topCorrect++
				}
			}
		}

		d := summary.ByDifficulty[c.Difficulty]
		if d == nil {
			d = &DifficultySummary{}
			summary.ByDifficulty[c.Difficulty] = d
		}
		d.Count++
		if res.Failed() {
			summary.Failures = append(summary.Failures, res)
		} else {
			d.Passed++
		}
	}

	evaluated := summary.TotalCases - summary.Errors
	summary.EmergencyAccuracy = ratio(emergencyCorrect, evaluated)
	summary.HitRate = ratio(hits, nonEmergency)
	summary.ExpectedTopRate = ratio(topCorrect, withTop)
	if ranked > 0 {
		summary.AvgRecallAtK /= float64(ranked)
		summary.AvgMRRAtK /= float64(ranked)
	}
	if summary.TotalCases > 0 {
		summary.AvgLatency = latency / time.Duration(summary.TotalCases)
	}
	return summary
}

func (r *Runner) evaluate(ctx context.Context, c QueryCase) CaseResult {
	res := CaseResult{CaseID: c.ID, Reason: c.Reason, Difficulty: c.Difficulty}

	start := time.Now()
	result, err := r.searcher.TriageAndRank(ctx, entities.SearchRequest{
		Reason:   c.Reason,
		Location: c.Location,
		Limit:    r.k,
	})
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	triggered := result.IsEmergency()
	res.EmergencyCorrect = triggered == c.ExpectEmergency
	res.CategoryCorrect = c.ExpectedCategory == "" || (triggered && result.Emergency.Category == c.ExpectedCategory)
	res.Degraded = result.Degraded

	res.RetrievedIDs = make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		res.RetrievedIDs = append(res.RetrievedIDs, e.Facility.ID)
	}
	res.ResultCount = len(res.RetrievedIDs)
	res.RecallAtK = RecallAtK(c.ExpectedIDs, res.RetrievedIDs, r.k)
	res.MRRAtK = MRRAtK(c.ExpectedIDs, res.RetrievedIDs, r.k)

	if c.ExpectedTop != "" {
		ok := len(res.RetrievedIDs) > 0 && res.RetrievedIDs[0] == c.ExpectedTop
		res.TopCorrect = &ok
	}
	return res
}
