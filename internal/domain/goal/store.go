package goal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

const goalColumns = `
  id, org_id, user_id, period_id, category, weight::text, status,
  title, target_detail, measure, COALESCE(previous_goal_id, ''),
  COALESCE(rating, ''), created_at, updated_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var weight string
	err := row.Scan(&g.ID, &g.OrgID, &g.UserID, &g.PeriodID, &g.Category, &weight, &g.Status,
		&g.Title, &g.TargetDetail, &g.Measure, &g.PreviousGoalID, &g.Rating, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return Goal{}, err
	}
	g.Weight, err = decimal.NewFromString(weight)
	return g, err
}

func (s *Store) GetGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (Goal, error) {
	return scanGoal(tx.QueryRow(ctx, `
    SELECT `+goalColumns+`
    FROM goals
    WHERE org_id = $1 AND id = $2
  `, orgID, goalID))
}

func (s *Store) GetGoal(ctx context.Context, orgID, goalID string) (Goal, error) {
	return scanGoal(s.DB.QueryRow(ctx, `
    SELECT `+goalColumns+`
    FROM goals
    WHERE org_id = $1 AND id = $2
  `, orgID, goalID))
}

func (s *Store) CreateGoalTx(ctx context.Context, tx pgx.Tx, g Goal) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO goals (org_id, user_id, period_id, category, weight, status,
                       title, target_detail, measure, previous_goal_id)
    VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, NULLIF($10, ''))
    RETURNING id
  `, g.OrgID, g.UserID, g.PeriodID, g.Category, g.Weight.String(), g.Status,
		g.Title, g.TargetDetail, g.Measure, g.PreviousGoalID).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrAlreadyExists
	}
	return id, err
}

func (s *Store) UpdateGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string, fields GoalFields) error {
	tag, err := tx.Exec(ctx, `
    UPDATE goals
    SET category = $1, weight = $2::numeric, title = $3, target_detail = $4,
        measure = $5, updated_at = now()
    WHERE org_id = $6 AND id = $7
  `, fields.Category, fields.Weight.String(), fields.Title, fields.TargetDetail,
		fields.Measure, orgID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) UpdateGoalStatusTx(ctx context.Context, tx pgx.Tx, orgID, goalID, status string) error {
	tag, err := tx.Exec(ctx, `
    UPDATE goals SET status = $1, updated_at = now()
    WHERE org_id = $2 AND id = $3
  `, status, orgID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) UpdateGoalRatingTx(ctx context.Context, tx pgx.Tx, orgID, goalID, rating string) error {
	tag, err := tx.Exec(ctx, `
    UPDATE goals SET rating = $1, updated_at = now()
    WHERE org_id = $2 AND id = $3
  `, rating, orgID, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) RatingCodeExistsTx(ctx context.Context, tx pgx.Tx, orgID, code string) (bool, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM evaluation_score_mappings
    WHERE org_id = $1 AND rating_code = $2
  `, orgID, code).Scan(&count)
	return count > 0, err
}

func (s *Store) DeleteGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) error {
	_, err := tx.Exec(ctx, "DELETE FROM goals WHERE org_id = $1 AND id = $2", orgID, goalID)
	return err
}

func (s *Store) ReplacementExistsTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (bool, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM goals WHERE org_id = $1 AND previous_goal_id = $2
  `, orgID, goalID).Scan(&count)
	return count > 0, err
}

func (s *Store) CategoryWeightSumTx(ctx context.Context, tx pgx.Tx, orgID, userID, periodID, category, excludeGoalID string) (decimal.Decimal, error) {
	var sum string
	err := tx.QueryRow(ctx, `
    SELECT COALESCE(SUM(weight), 0)::text
    FROM goals
    WHERE org_id = $1 AND user_id = $2 AND period_id = $3 AND category = $4
      AND status IN ('draft', 'submitted', 'approved')
      AND ($5 = '' OR id::text <> $5)
  `, orgID, userID, periodID, category, excludeGoalID).Scan(&sum)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(sum)
}

func (s *Store) ReviewsForGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) ([]SupervisorReview, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, org_id, goal_id, period_id, supervisor_id, action, comment, status, created_at
    FROM supervisor_reviews
    WHERE org_id = $1 AND goal_id = $2
    ORDER BY created_at
  `, orgID, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupervisorReview
	for rows.Next() {
		var r SupervisorReview
		if err := rows.Scan(&r.ID, &r.OrgID, &r.GoalID, &r.PeriodID, &r.SupervisorID,
			&r.Action, &r.Comment, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertReviewTx relies on the (goal_id, supervisor_id) uniqueness key: at
// most one active review row per pair while the goal is submitted.
func (s *Store) UpsertReviewTx(ctx context.Context, tx pgx.Tx, review SupervisorReview) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO supervisor_reviews (org_id, goal_id, period_id, supervisor_id, action, comment, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (goal_id, supervisor_id)
    DO UPDATE SET action = EXCLUDED.action, comment = EXCLUDED.comment, status = EXCLUDED.status
  `, review.OrgID, review.GoalID, review.PeriodID, review.SupervisorID,
		review.Action, review.Comment, review.Status)
	return err
}

func (s *Store) DeleteReviewTx(ctx context.Context, tx pgx.Tx, orgID, reviewID string) error {
	_, err := tx.Exec(ctx, "DELETE FROM supervisor_reviews WHERE org_id = $1 AND id = $2", orgID, reviewID)
	return err
}

func (s *Store) SubmittedSelfAssessmentExistsTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (bool, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM self_assessments
    WHERE org_id = $1 AND goal_id = $2 AND status = 'submitted'
  `, orgID, goalID).Scan(&count)
	return count > 0, err
}

func (s *Store) CreateSelfAssessmentPlaceholderTx(ctx context.Context, tx pgx.Tx, orgID, goalID, userID, periodID string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO self_assessments (org_id, goal_id, user_id, period_id, status)
    VALUES ($1, $2, $3, $4, 'draft')
    ON CONFLICT (goal_id) DO NOTHING
  `, orgID, goalID, userID, periodID)
	return err
}

func (s *Store) AccountTx(ctx context.Context, tx pgx.Tx, orgID, userID string) (Account, error) {
	var a Account
	err := tx.QueryRow(ctx, `
    SELECT status, COALESCE(stage_id::text, '')
    FROM users
    WHERE org_id = $1 AND id = $2
  `, orgID, userID).Scan(&a.Status, &a.StageID)
	return a, err
}

func (s *Store) StageBudgetTx(ctx context.Context, tx pgx.Tx, orgID, stageID string) (Budget, error) {
	var quantitative, qualitative, competency string
	err := tx.QueryRow(ctx, `
    SELECT quantitative_budget::text, qualitative_budget::text, competency_budget::text
    FROM stages
    WHERE org_id = $1 AND id = $2
  `, orgID, stageID).Scan(&quantitative, &qualitative, &competency)
	if err != nil {
		return Budget{}, err
	}
	return parseBudget(quantitative, qualitative, competency)
}

func (s *Store) UserBudgetOverrideTx(ctx context.Context, tx pgx.Tx, orgID, userID string) (Budget, bool, error) {
	var quantitative, qualitative, competency string
	err := tx.QueryRow(ctx, `
    SELECT quantitative_budget::text, qualitative_budget::text, competency_budget::text
    FROM user_weight_budgets
    WHERE org_id = $1 AND user_id = $2
  `, orgID, userID).Scan(&quantitative, &qualitative, &competency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, false, nil
	}
	if err != nil {
		return Budget{}, false, err
	}
	budget, err := parseBudget(quantitative, qualitative, competency)
	return budget, err == nil, err
}

func (s *Store) PeriodStatusTx(ctx context.Context, tx pgx.Tx, orgID, periodID string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `
    SELECT status FROM evaluation_periods WHERE org_id = $1 AND id = $2
  `, orgID, periodID).Scan(&status)
	return status, err
}

func (s *Store) ListGoals(ctx context.Context, orgID string, userIDs []string, periodID string) ([]Goal, error) {
	query := `
    SELECT ` + goalColumns + `
    FROM goals
    WHERE org_id = $1 AND user_id = ANY($2)
  `
	args := []any{orgID, userIDs}
	if periodID != "" {
		query += " AND period_id = $3"
		args = append(args, periodID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func parseBudget(quantitative, qualitative, competency string) (Budget, error) {
	var budget Budget
	var err error
	if budget.Quantitative, err = decimal.NewFromString(quantitative); err != nil {
		return Budget{}, err
	}
	if budget.Qualitative, err = decimal.NewFromString(qualitative); err != nil {
		return Budget{}, err
	}
	if budget.Competency, err = decimal.NewFromString(competency); err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
