package scoring

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func standardInputs() Inputs {
	return Inputs{
		Scores: map[string]decimal.Decimal{
			"S":  decimal.RequireFromString("6.0"),
			"A":  decimal.RequireFromString("5.0"),
			"A-": decimal.RequireFromString("4.5"),
			"B":  decimal.RequireFromString("4.0"),
			"C":  decimal.RequireFromString("2.0"),
			"D":  decimal.RequireFromString("0.0"),
		},
		Thresholds: []RatingThreshold{
			{Code: "S", MinScore: decimal.RequireFromString("5.70")},
			{Code: "A", MinScore: decimal.RequireFromString("4.70")},
			{Code: "A-", MinScore: decimal.RequireFromString("2.70")},
			{Code: "B", MinScore: decimal.RequireFromString("1.70")},
			{Code: "C", MinScore: decimal.RequireFromString("0.70")},
			{Code: "D", MinScore: decimal.RequireFromString("0.00")},
		},
		Weights: StageWeights{
			Quantitative: decimal.NewFromInt(100),
			Qualitative:  decimal.Zero,
			Competency:   decimal.Zero,
		},
		Flags: PolicyFlags{},
	}
}

func TestMixedQuantitativeBucketAveragesToAMinus(t *testing.T) {
	in := standardInputs()
	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S", "D"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := summary.WeightedTotal.String(); got != "3" {
		t.Fatalf("expected weighted total 3, got %s", got)
	}
	if summary.FinalRating != "A-" {
		t.Fatalf("expected A-, got %s", summary.FinalRating)
	}
	if summary.Flags.Fail {
		t.Fatal("fail flag must stay unset without policy flags")
	}
}

func TestMBODIsFailForcesD(t *testing.T) {
	in := standardInputs()
	in.Flags = PolicyFlags{FlagMBODIsFail: true}

	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S", "D"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FinalRating != "D" {
		t.Fatalf("expected forced D, got %s", summary.FinalRating)
	}
	if !summary.Flags.Fail {
		t.Fatal("fail flag must be set")
	}
	// The numeric total is untouched by the override.
	if got := summary.WeightedTotal.String(); got != "3" {
		t.Fatalf("expected weighted total 3, got %s", got)
	}
}

func TestMBODIsFailIgnoresOtherBuckets(t *testing.T) {
	in := standardInputs()
	in.Flags = PolicyFlags{FlagMBODIsFail: true}
	in.Weights = StageWeights{
		Quantitative: decimal.NewFromInt(50),
		Qualitative:  decimal.NewFromInt(50),
	}

	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S"},
		BucketQualitative:  {"D"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Flags.Fail {
		t.Fatal("a D outside the quantitative bucket must not trip the flag")
	}
	if summary.FinalRating != "A-" {
		t.Fatalf("expected A- from total 3, got %s", summary.FinalRating)
	}
}

func TestAbsentBucketContributesZeroWithoutRedistribution(t *testing.T) {
	in := standardInputs()
	in.Weights = StageWeights{
		Quantitative: decimal.NewFromInt(60),
		Qualitative:  decimal.NewFromInt(40),
	}

	// Qualitative has ratings, quantitative is absent: only 40% of the
	// scale is realizable and the other 60% is simply lost.
	summary, err := ComputeSummary(in, map[string][]string{
		BucketQualitative: {"S"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := summary.WeightedTotal.String(); got != "2.4" {
		t.Fatalf("expected 2.4, got %s", got)
	}
	if _, ok := summary.PerBucket[BucketQuantitative]; ok {
		t.Fatal("absent bucket must not appear in the breakdown")
	}
}

func TestBelowEveryThresholdFallsToLowestRating(t *testing.T) {
	in := standardInputs()
	// Raise the floor above zero so a zero total is under every row.
	in.Thresholds = []RatingThreshold{
		{Code: "A", MinScore: decimal.RequireFromString("4.70")},
		{Code: "B", MinScore: decimal.RequireFromString("1.70")},
		{Code: "C", MinScore: decimal.RequireFromString("0.70")},
	}

	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"D"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FinalRating != "C" {
		t.Fatalf("expected lowest-ranked C, got %s", summary.FinalRating)
	}
}

func TestThresholdOrderDoesNotDependOnInput(t *testing.T) {
	in := standardInputs()
	// Shuffle: ascending instead of descending.
	in.Thresholds = []RatingThreshold{
		{Code: "D", MinScore: decimal.RequireFromString("0.00")},
		{Code: "C", MinScore: decimal.RequireFromString("0.70")},
		{Code: "B", MinScore: decimal.RequireFromString("1.70")},
		{Code: "A-", MinScore: decimal.RequireFromString("2.70")},
		{Code: "A", MinScore: decimal.RequireFromString("4.70")},
		{Code: "S", MinScore: decimal.RequireFromString("5.70")},
	}

	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S", "D"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FinalRating != "A-" {
		t.Fatalf("expected A-, got %s", summary.FinalRating)
	}
}

func TestWeightedTotalRoundsToTwoPlaces(t *testing.T) {
	in := standardInputs()
	in.Weights = StageWeights{Quantitative: decimal.NewFromInt(100)}

	// (6+5+5)/3 = 5.333... -> 5.33 after rounding.
	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S", "A", "A"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := summary.WeightedTotal.String(); got != "5.33" {
		t.Fatalf("expected 5.33, got %s", got)
	}
	if summary.FinalRating != "A" {
		t.Fatalf("expected A, got %s", summary.FinalRating)
	}
}

func TestUnknownRatingCode(t *testing.T) {
	in := standardInputs()
	_, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S", "Z"},
	})
	if !errors.Is(err, ErrUnknownRating) {
		t.Fatalf("expected ErrUnknownRating, got %v", err)
	}
}

func TestUnknownBucketRejected(t *testing.T) {
	in := standardInputs()
	_, err := ComputeSummary(in, map[string][]string{
		"core_value": {"S"},
	})
	if !errors.Is(err, ErrUnknownBucket) {
		t.Fatalf("expected ErrUnknownBucket, got %v", err)
	}
}

func TestNoThresholdsConfigured(t *testing.T) {
	in := standardInputs()
	in.Thresholds = nil
	_, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S"},
	})
	if !errors.Is(err, ErrNoThresholds) {
		t.Fatalf("expected ErrNoThresholds, got %v", err)
	}
}

func TestAllBucketsWeighted(t *testing.T) {
	in := standardInputs()
	in.Weights = StageWeights{
		Quantitative: decimal.NewFromInt(50),
		Qualitative:  decimal.NewFromInt(30),
		Competency:   decimal.NewFromInt(20),
	}

	// 6*0.5 + 4*0.3 + 2*0.2 = 3 + 1.2 + 0.4 = 4.6
	summary, err := ComputeSummary(in, map[string][]string{
		BucketQuantitative: {"S"},
		BucketQualitative:  {"B"},
		BucketCompetency:   {"C"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := summary.WeightedTotal.String(); got != "4.6" {
		t.Fatalf("expected 4.6, got %s", got)
	}
	if summary.FinalRating != "A-" {
		t.Fatalf("expected A-, got %s", summary.FinalRating)
	}
	if len(summary.PerBucket) != 3 {
		t.Fatalf("expected three bucket entries, got %d", len(summary.PerBucket))
	}
}
