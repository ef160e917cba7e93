package goal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/period"
	"perfeval/internal/domain/scope"
)

// Service is the goal lifecycle engine. Every mutating transition runs in a
// single transaction: guards re-read current state inside the transaction
// and any guard failure rolls the whole unit back.
type Service struct {
	store  StoreAPI
	perms  *auth.Service
	scope  *scope.Resolver
	budget *BudgetValidator
}

func NewService(store StoreAPI, perms *auth.Service, scopeResolver *scope.Resolver) *Service {
	return &Service{
		store:  store,
		perms:  perms,
		scope:  scopeResolver,
		budget: NewBudgetValidator(store),
	}
}

// List resolves the caller's accessible owner set first and short-circuits
// on an empty set without touching the goal store.
func (s *Service) List(ctx context.Context, caller auth.Context, periodID string) ([]Goal, error) {
	ids, err := s.scope.AccessibleUserIDs(ctx, caller, "goal:read")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Goal{}, nil
	}
	return s.store.ListGoals(ctx, caller.OrgID, ids, periodID)
}

func (s *Service) Get(ctx context.Context, caller auth.Context, goalID string) (Goal, error) {
	g, err := s.store.GetGoal(ctx, caller.OrgID, goalID)
	if err != nil {
		return Goal{}, translateNotFound(err, ErrGoalNotFound)
	}
	reachable, err := s.scope.CanReach(ctx, caller, "goal:read", g.UserID)
	if err != nil {
		return Goal{}, err
	}
	if !reachable {
		return Goal{}, ErrPermissionDenied
	}
	return g, nil
}

// Create opens a new DRAFT goal for ownerID. The weight budget invariant
// holds across draft, submitted and approved goals, so drafts are validated
// at creation time too.
func (s *Service) Create(ctx context.Context, caller auth.Context, ownerID, periodID string, fields GoalFields) (Goal, error) {
	if !ValidCategory(fields.Category) {
		return Goal{}, ErrCategoryInvalid
	}
	if err := s.requireOwnerOrManager(ctx, caller, ownerID); err != nil {
		return Goal{}, err
	}

	var created Goal
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.store.PeriodStatusTx(ctx, tx, caller.OrgID, periodID); err != nil {
			return translateNotFound(err, ErrPeriodNotFound)
		}
		if err := s.budget.ValidateTx(ctx, tx, caller.OrgID, ownerID, periodID, fields.Category, fields.Weight, ""); err != nil {
			return err
		}

		created = Goal{
			OrgID:        caller.OrgID,
			UserID:       ownerID,
			PeriodID:     periodID,
			Category:     fields.Category,
			Weight:       fields.Weight,
			Status:       StatusDraft,
			Title:        fields.Title,
			TargetDetail: fields.TargetDetail,
			Measure:      fields.Measure,
		}
		id, err := s.store.CreateGoalTx(ctx, tx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return Goal{}, err
	}
	return created, nil
}

// Update edits a draft's fields. Only drafts are mutable.
func (s *Service) Update(ctx context.Context, caller auth.Context, goalID string, fields GoalFields) error {
	if !ValidCategory(fields.Category) {
		return ErrCategoryInvalid
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if err := s.requireOwnerOrManager(ctx, caller, g.UserID); err != nil {
			return err
		}
		if g.Status != StatusDraft {
			return fmt.Errorf("%w: cannot edit a %s goal", ErrInvalidTransition, g.Status)
		}
		if err := s.budget.ValidateTx(ctx, tx, caller.OrgID, g.UserID, g.PeriodID, fields.Category, fields.Weight, g.ID); err != nil {
			return err
		}
		return s.store.UpdateGoalTx(ctx, tx, caller.OrgID, goalID, fields)
	})
}

// Submit moves DRAFT -> SUBMITTED. The owner's account must be active and
// the weight budget must still hold at submission time; a draft
// self-assessment placeholder is created alongside.
func (s *Service) Submit(ctx context.Context, caller auth.Context, goalID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if err := s.requireOwnerOrManager(ctx, caller, g.UserID); err != nil {
			return err
		}
		if g.Status != StatusDraft {
			return fmt.Errorf("%w: submit requires draft, goal is %s", ErrInvalidTransition, g.Status)
		}

		account, err := s.store.AccountTx(ctx, tx, caller.OrgID, g.UserID)
		if err != nil {
			return translateNotFound(err, ErrUserNotFound)
		}
		if account.Status != UserStatusActive {
			return fmt.Errorf("%w: account status is %s", ErrOwnerNotActive, account.Status)
		}

		if err := s.budget.ValidateTx(ctx, tx, caller.OrgID, g.UserID, g.PeriodID, g.Category, g.Weight, g.ID); err != nil {
			return err
		}

		if err := s.store.CreateSelfAssessmentPlaceholderTx(ctx, tx, caller.OrgID, g.ID, g.UserID, g.PeriodID); err != nil {
			return err
		}
		return s.store.UpdateGoalStatusTx(ctx, tx, caller.OrgID, goalID, StatusSubmitted)
	})
}

// Withdraw moves SUBMITTED -> DRAFT. Allowed only while every supervisor
// review is still an untouched draft with a blank comment; the review rows
// are deleted on the way back.
func (s *Service) Withdraw(ctx context.Context, caller auth.Context, goalID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if err := s.requireOwnerOrManager(ctx, caller, g.UserID); err != nil {
			return err
		}
		if g.Status != StatusSubmitted {
			return fmt.Errorf("%w: withdraw requires submitted, goal is %s", ErrInvalidTransition, g.Status)
		}

		reviews, err := s.store.ReviewsForGoalTx(ctx, tx, caller.OrgID, g.ID)
		if err != nil {
			return err
		}
		for _, review := range reviews {
			if review.Status != ReviewStatusDraft || strings.TrimSpace(review.Comment) != "" {
				return ErrReviewCommented
			}
		}
		for _, review := range reviews {
			if err := s.store.DeleteReviewTx(ctx, tx, caller.OrgID, review.ID); err != nil {
				return err
			}
		}
		return s.store.UpdateGoalStatusTx(ctx, tx, caller.OrgID, goalID, StatusDraft)
	})
}

// Approve moves SUBMITTED -> APPROVED.
func (s *Service) Approve(ctx context.Context, caller auth.Context, goalID, comment string) error {
	return s.review(ctx, caller, goalID, comment, StatusApproved, ReviewActionApproved)
}

// Reject moves SUBMITTED -> REJECTED.
func (s *Service) Reject(ctx context.Context, caller auth.Context, goalID, comment string) error {
	return s.review(ctx, caller, goalID, comment, StatusRejected, ReviewActionRejected)
}

func (s *Service) review(ctx context.Context, caller auth.Context, goalID, comment, newStatus, action string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if g.Status != StatusSubmitted {
			return fmt.Errorf("%w: %s requires submitted, goal is %s", ErrInvalidTransition, action, g.Status)
		}
		if err := s.requireApprover(ctx, caller, g.UserID); err != nil {
			return err
		}

		if err := s.store.UpsertReviewTx(ctx, tx, SupervisorReview{
			OrgID:        caller.OrgID,
			GoalID:       g.ID,
			PeriodID:     g.PeriodID,
			SupervisorID: caller.UserID,
			Action:       action,
			Comment:      comment,
			Status:       ReviewStatusSubmitted,
		}); err != nil {
			return err
		}
		return s.store.UpdateGoalStatusTx(ctx, tx, caller.OrgID, goalID, newStatus)
	})
}

// Remand moves APPROVED -> REJECTED and spawns one replacement draft linked
// via previousGoalId. Blocked once the period leaves active status or the
// owner has submitted a self-assessment; a second remand on the same goal
// never creates a second replacement.
func (s *Service) Remand(ctx context.Context, caller auth.Context, goalID, comment string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if g.Status != StatusApproved {
			return fmt.Errorf("%w: remand requires approved, goal is %s", ErrInvalidTransition, g.Status)
		}
		if err := s.requireApprover(ctx, caller, g.UserID); err != nil {
			return err
		}

		periodStatus, err := s.store.PeriodStatusTx(ctx, tx, caller.OrgID, g.PeriodID)
		if err != nil {
			return translateNotFound(err, ErrPeriodNotFound)
		}
		if periodStatus != period.StatusActive {
			return fmt.Errorf("%w: period is %s", ErrPeriodNotActive, periodStatus)
		}

		assessed, err := s.store.SubmittedSelfAssessmentExistsTx(ctx, tx, caller.OrgID, g.ID)
		if err != nil {
			return err
		}
		if assessed {
			return ErrSelfAssessed
		}

		if err := s.store.UpsertReviewTx(ctx, tx, SupervisorReview{
			OrgID:        caller.OrgID,
			GoalID:       g.ID,
			PeriodID:     g.PeriodID,
			SupervisorID: caller.UserID,
			Action:       ReviewActionRejected,
			Comment:      comment,
			Status:       ReviewStatusSubmitted,
		}); err != nil {
			return err
		}
		if err := s.store.UpdateGoalStatusTx(ctx, tx, caller.OrgID, goalID, StatusRejected); err != nil {
			return err
		}

		exists, err := s.store.ReplacementExistsTx(ctx, tx, caller.OrgID, g.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err = s.store.CreateGoalTx(ctx, tx, Goal{
			OrgID:          g.OrgID,
			UserID:         g.UserID,
			PeriodID:       g.PeriodID,
			Category:       g.Category,
			Weight:         g.Weight,
			Status:         StatusDraft,
			Title:          g.Title,
			TargetDetail:   g.TargetDetail,
			Measure:        g.Measure,
			PreviousGoalID: g.ID,
		})
		return err
	})
}

// Rate records the evaluation rating on an APPROVED goal. The code must
// exist in the organization's score mappings; recorded ratings feed the
// evaluation summary buckets.
func (s *Service) Rate(ctx context.Context, caller auth.Context, goalID, rating string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if err := s.requireScorer(ctx, caller, g.UserID); err != nil {
			return err
		}
		if g.Status != StatusApproved {
			return fmt.Errorf("%w: rate requires approved, goal is %s", ErrInvalidTransition, g.Status)
		}
		known, err := s.store.RatingCodeExistsTx(ctx, tx, caller.OrgID, rating)
		if err != nil {
			return err
		}
		if !known {
			return fmt.Errorf("%w: %s", ErrRatingInvalid, rating)
		}
		return s.store.UpdateGoalRatingTx(ctx, tx, caller.OrgID, goalID, rating)
	})
}

// Delete hard-deletes a draft.
func (s *Service) Delete(ctx context.Context, caller auth.Context, goalID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		g, err := s.store.GetGoalTx(ctx, tx, caller.OrgID, goalID)
		if err != nil {
			return translateNotFound(err, ErrGoalNotFound)
		}
		if err := s.requireOwnerOrManager(ctx, caller, g.UserID); err != nil {
			return err
		}
		if g.Status != StatusDraft {
			return fmt.Errorf("%w: delete requires draft, goal is %s", ErrInvalidTransition, g.Status)
		}
		return s.store.DeleteGoalTx(ctx, tx, caller.OrgID, goalID)
	})
}

// requireOwnerOrManager enforces the owner-only guard: the owner acting on
// their own goal with goal:manage:self, or any caller holding
// goal:manage:all (admin override). Status guards still apply either way.
func (s *Service) requireOwnerOrManager(ctx context.Context, caller auth.Context, ownerID string) error {
	perms, err := s.perms.EffectivePermissions(ctx, caller.OrgID, caller.Roles)
	if err != nil {
		return err
	}
	if perms.Has(auth.PermGoalManageAll) {
		return nil
	}
	if caller.UserID == ownerID && perms.Has(auth.PermGoalManageSelf) {
		return nil
	}
	return ErrPermissionDenied
}

// requireApprover enforces the approve capability scoped to the goal owner.
func (s *Service) requireApprover(ctx context.Context, caller auth.Context, ownerID string) error {
	perms, err := s.perms.EffectivePermissions(ctx, caller.OrgID, caller.Roles)
	if err != nil {
		return err
	}
	if !perms.Has(auth.PermGoalApprove) {
		return ErrPermissionDenied
	}
	reachable, err := s.scope.CanReach(ctx, caller, "goal:read", ownerID)
	if err != nil {
		return err
	}
	if !reachable {
		return ErrPermissionDenied
	}
	return nil
}

// requireScorer enforces the scoring capability over the goal owner.
func (s *Service) requireScorer(ctx context.Context, caller auth.Context, ownerID string) error {
	perms, err := s.perms.EffectivePermissions(ctx, caller.OrgID, caller.Roles)
	if err != nil {
		return err
	}
	if !perms.Has(auth.PermEvaluationScore) {
		return ErrPermissionDenied
	}
	reachable, err := s.scope.CanReach(ctx, caller, "evaluation:read", ownerID)
	if err != nil {
		return err
	}
	if !reachable {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func translateNotFound(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}
