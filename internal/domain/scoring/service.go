package scoring

import (
	"context"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/scope"
)

// Service computes evaluation summaries for users inside the caller's
// evaluation:read scope. Configuration (score mappings, thresholds, policy
// flags) is read fresh on every call.
type Service struct {
	store StoreAPI
	scope *scope.Resolver
}

func NewService(store StoreAPI, scopeResolver *scope.Resolver) *Service {
	return &Service{store: store, scope: scopeResolver}
}

// Summarize aggregates the user's finalized ratings for the period into a
// final rating.
func (s *Service) Summarize(ctx context.Context, caller auth.Context, userID, periodID string) (Summary, error) {
	reachable, err := s.scope.CanReach(ctx, caller, "evaluation:read", userID)
	if err != nil {
		return Summary{}, err
	}
	if !reachable {
		return Summary{}, ErrPermissionDenied
	}

	buckets, err := s.store.BucketRatings(ctx, caller.OrgID, userID, periodID)
	if err != nil {
		return Summary{}, err
	}
	if len(buckets) == 0 {
		return Summary{}, ErrNoRatings
	}

	inputs, err := s.loadInputs(ctx, caller.OrgID, userID)
	if err != nil {
		return Summary{}, err
	}
	summary, err := ComputeSummary(inputs, buckets)
	if err != nil {
		return Summary{}, err
	}
	summary.UserID = userID
	summary.PeriodID = periodID
	return summary, nil
}

func (s *Service) loadInputs(ctx context.Context, orgID, userID string) (Inputs, error) {
	scores, err := s.store.ScoreMappings(ctx, orgID)
	if err != nil {
		return Inputs{}, err
	}
	thresholds, err := s.store.RatingThresholds(ctx, orgID)
	if err != nil {
		return Inputs{}, err
	}
	flags, err := s.store.PolicyFlags(ctx, orgID)
	if err != nil {
		return Inputs{}, err
	}
	weights, err := s.store.StageWeightsForUser(ctx, orgID, userID)
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{Scores: scores, Thresholds: thresholds, Weights: weights, Flags: flags}, nil
}
