package goal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Budget is the per-category weight ceiling resolved for a user. Values are
// percentages; arithmetic stays in decimal so comparisons never suffer
// binary floating point rounding.
type Budget struct {
	Quantitative decimal.Decimal `json:"quantitative"`
	Qualitative  decimal.Decimal `json:"qualitative"`
	Competency   decimal.Decimal `json:"competency"`
}

var coreValueBudget = decimal.NewFromInt(100)

func (b Budget) ForCategory(category string) (decimal.Decimal, bool) {
	switch category {
	case CategoryQuantitative:
		return b.Quantitative, true
	case CategoryQualitative:
		return b.Qualitative, true
	case CategoryCompetency:
		return b.Competency, true
	case CategoryCoreValue:
		// The stage budget model carries no core-value column; core-value
		// goals share a fixed 100 ceiling.
		return coreValueBudget, true
	}
	return decimal.Decimal{}, false
}

// BudgetValidator enforces the per-category weight-sum ceiling for one
// user and period. The applicable budget is the user-level override when
// present, otherwise the stage default; a user without a stage has no
// defined budget and fails hard.
type BudgetValidator struct {
	store StoreAPI
}

func NewBudgetValidator(store StoreAPI) *BudgetValidator {
	return &BudgetValidator{store: store}
}

func (v *BudgetValidator) ValidateTx(ctx context.Context, tx pgx.Tx, orgID, userID, periodID, category string, proposed decimal.Decimal, excludeGoalID string) error {
	if !ValidCategory(category) {
		return ErrCategoryInvalid
	}
	if proposed.IsNegative() || proposed.GreaterThan(decimal.NewFromInt(100)) {
		return ErrWeightInvalid
	}

	budget, err := v.resolveTx(ctx, tx, orgID, userID)
	if err != nil {
		return err
	}
	limit, ok := budget.ForCategory(category)
	if !ok {
		return ErrCategoryInvalid
	}

	sum, err := v.store.CategoryWeightSumTx(ctx, tx, orgID, userID, periodID, category, excludeGoalID)
	if err != nil {
		return err
	}
	if sum.Add(proposed).GreaterThan(limit) {
		return fmt.Errorf("%w: %s allocated %s of %s", ErrBudgetExceeded, category, sum.Add(proposed), limit)
	}
	return nil
}

func (v *BudgetValidator) resolveTx(ctx context.Context, tx pgx.Tx, orgID, userID string) (Budget, error) {
	override, ok, err := v.store.UserBudgetOverrideTx(ctx, tx, orgID, userID)
	if err != nil {
		return Budget{}, err
	}
	if ok {
		return override, nil
	}

	account, err := v.store.AccountTx(ctx, tx, orgID, userID)
	if err != nil {
		return Budget{}, err
	}
	if account.StageID == "" {
		return Budget{}, ErrStageMissing
	}
	return v.store.StageBudgetTx(ctx, tx, orgID, account.StageID)
}
