package scoring

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	ScoreMappings(ctx context.Context, orgID string) (map[string]decimal.Decimal, error)
	RatingThresholds(ctx context.Context, orgID string) ([]RatingThreshold, error)
	PolicyFlags(ctx context.Context, orgID string) (PolicyFlags, error)
	StageWeightsForUser(ctx context.Context, orgID, userID string) (StageWeights, error)
	BucketRatings(ctx context.Context, orgID, userID, periodID string) (map[string][]string, error)
}
