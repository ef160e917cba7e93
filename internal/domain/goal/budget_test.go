package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func budgetFixture() (*fakeStore, *BudgetValidator) {
	store := newFakeStore()
	store.accounts["u1"] = Account{Status: UserStatusActive, StageID: "stage1"}
	store.stages["stage1"] = Budget{
		Quantitative: decimal.NewFromInt(50),
		Qualitative:  decimal.NewFromInt(30),
		Competency:   decimal.NewFromInt(20),
	}
	return store, NewBudgetValidator(store)
}

func TestValidateRejectsWeightOutOfRange(t *testing.T) {
	_, v := budgetFixture()
	cases := []struct {
		weight string
		ok     bool
	}{
		{"-0.01", false},
		{"0", true},
		{"100", true},
		{"100.01", false},
	}
	for _, tc := range cases {
		err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
			CategoryQualitative, decimal.RequireFromString(tc.weight), "")
		if tc.ok && err != nil {
			t.Fatalf("weight %s: unexpected error %v", tc.weight, err)
		}
		if !tc.ok && !errors.Is(err, ErrWeightInvalid) {
			t.Fatalf("weight %s: expected ErrWeightInvalid, got %v", tc.weight, err)
		}
	}
}

func TestValidateUnknownCategory(t *testing.T) {
	_, v := budgetFixture()
	err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		"vibes", decimal.NewFromInt(10), "")
	if !errors.Is(err, ErrCategoryInvalid) {
		t.Fatalf("expected ErrCategoryInvalid, got %v", err)
	}
}

func TestCoreValueUsesFixedCeiling(t *testing.T) {
	store, v := budgetFixture()
	store.goals["g1"] = Goal{
		ID: "g1", OrgID: "org1", UserID: "u1", PeriodID: "p1",
		Category: CategoryCoreValue, Weight: decimal.NewFromInt(90), Status: StatusApproved,
	}

	if err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryCoreValue, decimal.NewFromInt(10), ""); err != nil {
		t.Fatalf("core_value up to 100 must pass: %v", err)
	}
	err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryCoreValue, decimal.RequireFromString("10.5"), "")
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded past 100, got %v", err)
	}
}

func TestSumSkipsRejectedGoals(t *testing.T) {
	store, v := budgetFixture()
	store.goals["g1"] = Goal{
		ID: "g1", OrgID: "org1", UserID: "u1", PeriodID: "p1",
		Category: CategoryQuantitative, Weight: decimal.NewFromInt(45), Status: StatusRejected,
	}
	if err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryQuantitative, decimal.NewFromInt(50), ""); err != nil {
		t.Fatalf("rejected goals must not count against the ceiling: %v", err)
	}
}

func TestSumIsPerCategoryAndPerPeriod(t *testing.T) {
	store, v := budgetFixture()
	store.goals["g1"] = Goal{
		ID: "g1", OrgID: "org1", UserID: "u1", PeriodID: "p1",
		Category: CategoryQualitative, Weight: decimal.NewFromInt(30), Status: StatusApproved,
	}
	store.goals["g2"] = Goal{
		ID: "g2", OrgID: "org1", UserID: "u1", PeriodID: "p0",
		Category: CategoryQuantitative, Weight: decimal.NewFromInt(50), Status: StatusApproved,
	}

	// Other category and other period are both full; quantitative in p1 is
	// untouched.
	if err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryQuantitative, decimal.NewFromInt(50), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingStageFailsHard(t *testing.T) {
	store, v := budgetFixture()
	store.accounts["u1"] = Account{Status: UserStatusActive}

	err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryQuantitative, decimal.NewFromInt(1), "")
	if !errors.Is(err, ErrStageMissing) {
		t.Fatalf("expected ErrStageMissing, got %v", err)
	}
}

func TestOverrideBeatsStageEvenWhenStageMissing(t *testing.T) {
	store, v := budgetFixture()
	store.accounts["u1"] = Account{Status: UserStatusActive}
	store.overrides["u1"] = Budget{Quantitative: decimal.NewFromInt(40)}

	if err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryQuantitative, decimal.NewFromInt(40), ""); err != nil {
		t.Fatalf("override must apply without a stage: %v", err)
	}
	err := v.ValidateTx(context.Background(), nil, "org1", "u1", "p1",
		CategoryQuantitative, decimal.NewFromInt(41), "")
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}
