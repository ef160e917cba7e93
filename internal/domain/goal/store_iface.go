package goal

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StoreAPI is the persistence capability the lifecycle engine depends on.
// Every mutating transition runs inside one transaction; guard reads use the
// Tx variants so they observe the same snapshot they mutate.
type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	GetGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (Goal, error)
	CreateGoalTx(ctx context.Context, tx pgx.Tx, g Goal) (string, error)
	UpdateGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string, fields GoalFields) error
	UpdateGoalStatusTx(ctx context.Context, tx pgx.Tx, orgID, goalID, status string) error
	UpdateGoalRatingTx(ctx context.Context, tx pgx.Tx, orgID, goalID, rating string) error
	RatingCodeExistsTx(ctx context.Context, tx pgx.Tx, orgID, code string) (bool, error)
	DeleteGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) error
	ReplacementExistsTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (bool, error)
	CategoryWeightSumTx(ctx context.Context, tx pgx.Tx, orgID, userID, periodID, category, excludeGoalID string) (decimal.Decimal, error)

	ReviewsForGoalTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) ([]SupervisorReview, error)
	UpsertReviewTx(ctx context.Context, tx pgx.Tx, review SupervisorReview) error
	DeleteReviewTx(ctx context.Context, tx pgx.Tx, orgID, reviewID string) error

	SubmittedSelfAssessmentExistsTx(ctx context.Context, tx pgx.Tx, orgID, goalID string) (bool, error)
	CreateSelfAssessmentPlaceholderTx(ctx context.Context, tx pgx.Tx, orgID, goalID, userID, periodID string) error

	AccountTx(ctx context.Context, tx pgx.Tx, orgID, userID string) (Account, error)
	StageBudgetTx(ctx context.Context, tx pgx.Tx, orgID, stageID string) (Budget, error)
	UserBudgetOverrideTx(ctx context.Context, tx pgx.Tx, orgID, userID string) (Budget, bool, error)
	PeriodStatusTx(ctx context.Context, tx pgx.Tx, orgID, periodID string) (string, error)

	ListGoals(ctx context.Context, orgID string, userIDs []string, periodID string) ([]Goal, error)
	GetGoal(ctx context.Context, orgID, goalID string) (Goal, error)
}
