package scoring

import "github.com/shopspring/decimal"

const (
	BucketQuantitative = "quantitative"
	BucketQualitative  = "qualitative"
	BucketCompetency   = "competency"
)

// Buckets is the closed bucket set, in aggregation order.
var Buckets = []string{BucketQuantitative, BucketQualitative, BucketCompetency}

// FlagMBODIsFail forces the final rating to D whenever the quantitative
// bucket contains a D, regardless of the weighted total.
const FlagMBODIsFail = "mbo_d_is_fail"

// ScoreMapping maps a rating code to its numeric score value.
type ScoreMapping struct {
	Code  string          `json:"code"`
	Score decimal.Decimal `json:"score"`
}

// RatingThreshold maps a rating code to the minimum cumulative score that
// earns it. Thresholds are evaluated in descending MinScore order.
type RatingThreshold struct {
	Code     string          `json:"code"`
	MinScore decimal.Decimal `json:"minScore"`
}

// StageWeights are the stage's category budget percentages (0-100), reused
// as the aggregation weights. No redistribution happens for absent buckets.
type StageWeights struct {
	Quantitative decimal.Decimal `json:"quantitative"`
	Qualitative  decimal.Decimal `json:"qualitative"`
	Competency   decimal.Decimal `json:"competency"`
}

func (w StageWeights) For(bucket string) decimal.Decimal {
	switch bucket {
	case BucketQuantitative:
		return w.Quantitative
	case BucketQualitative:
		return w.Qualitative
	case BucketCompetency:
		return w.Competency
	}
	return decimal.Zero
}

// PolicyFlags are organization-level overrides. They are read-mostly and
// externally mutated, so callers re-read them per operation instead of
// caching.
type PolicyFlags map[string]bool

func (f PolicyFlags) Enabled(key string) bool { return f[key] }

// BucketResult is one bucket's contribution to the weighted total.
type BucketResult struct {
	Ratings  []string        `json:"ratings"`
	Average  decimal.Decimal `json:"average"`
	Weight   decimal.Decimal `json:"weight"`
	Weighted decimal.Decimal `json:"weighted"`
}

// SummaryFlags records policy overrides applied to the computed rating.
type SummaryFlags struct {
	Fail    bool     `json:"fail"`
	Applied []string `json:"applied,omitempty"`
}

// Summary is the aggregation output: per-bucket breakdown, the weighted
// total rounded to two places, and the final rating after policy flags.
type Summary struct {
	UserID        string                  `json:"userId,omitempty"`
	PeriodID      string                  `json:"periodId,omitempty"`
	FinalRating   string                  `json:"finalRating"`
	WeightedTotal decimal.Decimal         `json:"weightedTotal"`
	PerBucket     map[string]BucketResult `json:"perBucket"`
	Flags         SummaryFlags            `json:"flags"`
}
