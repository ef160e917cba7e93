package scoring

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ScoreMappings(ctx context.Context, orgID string) (map[string]decimal.Decimal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT rating_code, score::text
    FROM evaluation_score_mappings
    WHERE org_id = $1
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := map[string]decimal.Decimal{}
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, err
		}
		score, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		scores[code] = score
	}
	return scores, rows.Err()
}

func (s *Store) RatingThresholds(ctx context.Context, orgID string) ([]RatingThreshold, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT rating_code, min_score::text
    FROM rating_thresholds
    WHERE org_id = $1
    ORDER BY min_score DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []RatingThreshold
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, err
		}
		minScore, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, RatingThreshold{Code: code, MinScore: minScore})
	}
	return thresholds, rows.Err()
}

// PolicyFlags reads the organization's flag rows. Flags are externally
// mutated, so this is called once per scoring operation rather than cached.
func (s *Store) PolicyFlags(ctx context.Context, orgID string) (PolicyFlags, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT flag_key, enabled
    FROM evaluation_policy_flags
    WHERE org_id = $1
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := PolicyFlags{}
	for rows.Next() {
		var key string
		var enabled bool
		if err := rows.Scan(&key, &enabled); err != nil {
			return nil, err
		}
		flags[key] = enabled
	}
	return flags, rows.Err()
}

// StageWeightsForUser resolves the user's weight percentages: the user-level
// budget override when present, otherwise the assigned stage's budgets.
func (s *Store) StageWeightsForUser(ctx context.Context, orgID, userID string) (StageWeights, error) {
	var quantitative, qualitative, competency string
	err := s.DB.QueryRow(ctx, `
    SELECT quantitative_budget::text, qualitative_budget::text, competency_budget::text
    FROM user_weight_budgets
    WHERE org_id = $1 AND user_id = $2
  `, orgID, userID).Scan(&quantitative, &qualitative, &competency)
	if err == nil {
		return parseWeights(quantitative, qualitative, competency)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return StageWeights{}, err
	}

	var stageID string
	err = s.DB.QueryRow(ctx, `
    SELECT COALESCE(stage_id::text, '') FROM users WHERE org_id = $1 AND id = $2
  `, orgID, userID).Scan(&stageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return StageWeights{}, ErrUserNotFound
	}
	if err != nil {
		return StageWeights{}, err
	}
	if stageID == "" {
		return StageWeights{}, ErrStageMissing
	}

	err = s.DB.QueryRow(ctx, `
    SELECT quantitative_budget::text, qualitative_budget::text, competency_budget::text
    FROM stages
    WHERE org_id = $1 AND id = $2
  `, orgID, stageID).Scan(&quantitative, &qualitative, &competency)
	if errors.Is(err, pgx.ErrNoRows) {
		return StageWeights{}, ErrStageNotFound
	}
	if err != nil {
		return StageWeights{}, err
	}
	return parseWeights(quantitative, qualitative, competency)
}

// BucketRatings collects the finalized rating codes of the user's approved
// goals for the period, grouped by bucket. Core-value goals carry no stage
// weight and stay out of the aggregation.
func (s *Store) BucketRatings(ctx context.Context, orgID, userID, periodID string) (map[string][]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT category, rating
    FROM goals
    WHERE org_id = $1 AND user_id = $2 AND period_id = $3
      AND status = 'approved'
      AND rating IS NOT NULL AND rating <> ''
      AND category IN ('quantitative', 'qualitative', 'competency')
    ORDER BY created_at, id
  `, orgID, userID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := map[string][]string{}
	for rows.Next() {
		var category, rating string
		if err := rows.Scan(&category, &rating); err != nil {
			return nil, err
		}
		buckets[category] = append(buckets[category], rating)
	}
	return buckets, rows.Err()
}

func parseWeights(quantitative, qualitative, competency string) (StageWeights, error) {
	var w StageWeights
	var err error
	if w.Quantitative, err = decimal.NewFromString(quantitative); err != nil {
		return StageWeights{}, err
	}
	if w.Qualitative, err = decimal.NewFromString(qualitative); err != nil {
		return StageWeights{}, err
	}
	if w.Competency, err = decimal.NewFromString(competency); err != nil {
		return StageWeights{}, err
	}
	return w, nil
}
