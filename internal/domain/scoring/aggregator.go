package scoring

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Inputs carries the organization's scoring configuration, read fresh per
// operation.
type Inputs struct {
	Scores     map[string]decimal.Decimal
	Thresholds []RatingThreshold
	Weights    StageWeights
	Flags      PolicyFlags
}

// ComputeSummary averages the numeric scores of each bucket's rating codes,
// multiplies each average by its stage weight percentage, sums the weighted
// total (absent buckets contribute zero, no redistribution) and maps the
// total to a rating by the first threshold it meets in descending order. A
// total below every threshold earns the lowest-ranked rating. Policy flags
// are applied last and may override the threshold-derived rating.
//
// The function is pure: all state arrives through its arguments.
func ComputeSummary(in Inputs, bucketRatings map[string][]string) (Summary, error) {
	if len(in.Thresholds) == 0 {
		return Summary{}, ErrNoThresholds
	}
	for bucket := range bucketRatings {
		if !validBucket(bucket) {
			return Summary{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
		}
	}

	summary := Summary{PerBucket: make(map[string]BucketResult, len(bucketRatings))}
	total := decimal.Zero
	for _, bucket := range Buckets {
		ratings := bucketRatings[bucket]
		if len(ratings) == 0 {
			continue
		}
		avg, err := average(in.Scores, ratings)
		if err != nil {
			return Summary{}, err
		}
		weight := in.Weights.For(bucket)
		weighted := avg.Mul(weight).Div(hundred)
		summary.PerBucket[bucket] = BucketResult{
			Ratings:  ratings,
			Average:  avg,
			Weight:   weight,
			Weighted: weighted,
		}
		total = total.Add(weighted)
	}

	summary.WeightedTotal = total.Round(2)
	summary.FinalRating = ratingFor(in.Thresholds, summary.WeightedTotal)
	applyFlags(&summary, in.Flags, bucketRatings)
	return summary, nil
}

func average(scores map[string]decimal.Decimal, ratings []string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, code := range ratings {
		score, ok := scores[code]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownRating, code)
		}
		sum = sum.Add(score)
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))), nil
}

// ratingFor scans thresholds in descending minScore order and returns the
// first code the total meets or exceeds, falling back to the lowest-ranked
// rating when the total is under every threshold.
func ratingFor(thresholds []RatingThreshold, total decimal.Decimal) string {
	ordered := make([]RatingThreshold, len(thresholds))
	copy(ordered, thresholds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinScore.GreaterThan(ordered[j].MinScore)
	})

	for _, t := range ordered {
		if total.GreaterThanOrEqual(t.MinScore) {
			return t.Code
		}
	}
	return ordered[len(ordered)-1].Code
}

func applyFlags(summary *Summary, flags PolicyFlags, bucketRatings map[string][]string) {
	if flags.Enabled(FlagMBODIsFail) && containsRating(bucketRatings[BucketQuantitative], "D") {
		summary.FinalRating = "D"
		summary.Flags.Fail = true
		summary.Flags.Applied = append(summary.Flags.Applied, FlagMBODIsFail)
	}
}

func containsRating(ratings []string, code string) bool {
	for _, r := range ratings {
		if r == code {
			return true
		}
	}
	return false
}

func validBucket(bucket string) bool {
	for _, b := range Buckets {
		if b == bucket {
			return true
		}
	}
	return false
}
