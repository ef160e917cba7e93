package scoring

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/scope"
)

type fakeStore struct {
	scores     map[string]decimal.Decimal
	thresholds []RatingThreshold
	flags      PolicyFlags
	weights    map[string]StageWeights
	buckets    map[string]map[string][]string

	flagReads int
}

func (f *fakeStore) ScoreMappings(ctx context.Context, orgID string) (map[string]decimal.Decimal, error) {
	return f.scores, nil
}

func (f *fakeStore) RatingThresholds(ctx context.Context, orgID string) ([]RatingThreshold, error) {
	return f.thresholds, nil
}

func (f *fakeStore) PolicyFlags(ctx context.Context, orgID string) (PolicyFlags, error) {
	f.flagReads++
	out := PolicyFlags{}
	for k, v := range f.flags {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) StageWeightsForUser(ctx context.Context, orgID, userID string) (StageWeights, error) {
	w, ok := f.weights[userID]
	if !ok {
		return StageWeights{}, ErrStageMissing
	}
	return w, nil
}

func (f *fakeStore) BucketRatings(ctx context.Context, orgID, userID, periodID string) (map[string][]string, error) {
	return f.buckets[userID], nil
}

type fakeDirectory struct {
	active       []string
	subordinates map[string][]string
}

func (f *fakeDirectory) ActiveUserIDs(ctx context.Context, orgID string) ([]string, error) {
	return slices.Clone(f.active), nil
}

func (f *fakeDirectory) SubordinateUserIDs(ctx context.Context, orgID, supervisorID string, at time.Time) ([]string, error) {
	return slices.Clone(f.subordinates[supervisorID]), nil
}

func (f *fakeDirectory) DepartmentUserIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	return nil, nil
}

type noOverrideStore struct{}

func (noOverrideStore) OrgRolePermissions(ctx context.Context, orgID string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

func (noOverrideStore) RolePermissionSet(ctx context.Context, orgID, role string) ([]string, bool, error) {
	return nil, false, nil
}

func (noOverrideStore) ReplaceRolePermissions(ctx context.Context, orgID, role string, codes []string) error {
	return nil
}

func scoringFixture() (*fakeStore, *Service) {
	store := &fakeStore{
		scores: map[string]decimal.Decimal{
			"S": decimal.RequireFromString("6.0"),
			"D": decimal.RequireFromString("0.0"),
		},
		thresholds: []RatingThreshold{
			{Code: "A-", MinScore: decimal.RequireFromString("2.70")},
			{Code: "D", MinScore: decimal.RequireFromString("0.00")},
		},
		flags: PolicyFlags{},
		weights: map[string]StageWeights{
			"emp": {Quantitative: decimal.NewFromInt(100)},
		},
		buckets: map[string]map[string][]string{
			"emp": {BucketQuantitative: {"S", "D"}},
		},
	}
	dir := &fakeDirectory{
		active:       []string{"emp", "super", "other"},
		subordinates: map[string][]string{"super": {"emp"}},
	}
	resolver := scope.NewResolver(dir, auth.NewService(noOverrideStore{}))
	return store, NewService(store, resolver)
}

func TestSummarizeSelf(t *testing.T) {
	_, svc := scoringFixture()
	caller := auth.Context{UserID: "emp", OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}

	summary, err := svc.Summarize(context.Background(), caller, "emp", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.FinalRating != "A-" {
		t.Fatalf("expected A-, got %s", summary.FinalRating)
	}
	if summary.UserID != "emp" || summary.PeriodID != "p1" {
		t.Fatalf("summary must echo subject and period: %+v", summary)
	}
}

func TestSummarizeDeniedOutsideScope(t *testing.T) {
	_, svc := scoringFixture()
	caller := auth.Context{UserID: "other", OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}

	if _, err := svc.Summarize(context.Background(), caller, "emp", "p1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestSummarizeSupervisorForSubordinate(t *testing.T) {
	_, svc := scoringFixture()
	caller := auth.Context{UserID: "super", OrgID: "org1", Roles: []auth.Role{auth.RoleSupervisor}}

	if _, err := svc.Summarize(context.Background(), caller, "emp", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSummarizeNoRatings(t *testing.T) {
	store, svc := scoringFixture()
	store.buckets["emp"] = nil
	caller := auth.Context{UserID: "emp", OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}

	if _, err := svc.Summarize(context.Background(), caller, "emp", "p1"); !errors.Is(err, ErrNoRatings) {
		t.Fatalf("expected ErrNoRatings, got %v", err)
	}
}

// Policy flags must be re-read every call; a flag flipped between two
// summaries changes the second result.
func TestSummarizeRereadsPolicyFlags(t *testing.T) {
	store, svc := scoringFixture()
	caller := auth.Context{UserID: "emp", OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}

	first, err := svc.Summarize(context.Background(), caller, "emp", "p1")
	if err != nil {
		t.Fatalf("first summarize: %v", err)
	}
	if first.FinalRating != "A-" {
		t.Fatalf("expected A- before the flag flips, got %s", first.FinalRating)
	}

	store.flags[FlagMBODIsFail] = true
	second, err := svc.Summarize(context.Background(), caller, "emp", "p1")
	if err != nil {
		t.Fatalf("second summarize: %v", err)
	}
	if second.FinalRating != "D" || !second.Flags.Fail {
		t.Fatalf("flipped flag must force D/fail: %+v", second)
	}
	if store.flagReads != 2 {
		t.Fatalf("flags must be read once per operation, got %d reads", store.flagReads)
	}
}

func TestSummarizeStageMissing(t *testing.T) {
	store, svc := scoringFixture()
	delete(store.weights, "emp")
	caller := auth.Context{UserID: "emp", OrgID: "org1", Roles: []auth.Role{auth.RoleEmployee}}

	if _, err := svc.Summarize(context.Background(), caller, "emp", "p1"); !errors.Is(err, ErrStageMissing) {
		t.Fatalf("expected ErrStageMissing, got %v", err)
	}
}
