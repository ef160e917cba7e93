package goal

import "errors"

// NotFound kind.
var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrPeriodNotFound = errors.New("evaluation period not found")
	ErrUserNotFound   = errors.New("user not found")
)

// PermissionDenied kind.
var (
	ErrPermissionDenied = errors.New("caller may not act on this goal")
)

// ValidationError kind.
var (
	ErrInvalidTransition = errors.New("illegal goal status transition")
	ErrOwnerNotActive    = errors.New("goal owner account is not active")
	ErrReviewCommented   = errors.New("supervisor review already carries a comment")
	ErrPeriodNotActive   = errors.New("evaluation period is not active")
	ErrSelfAssessed      = errors.New("self-assessment already submitted for this goal")
	ErrStageMissing      = errors.New("user has no assigned stage, weight budget undefined")
	ErrBudgetExceeded    = errors.New("category weight budget exceeded")
	ErrWeightInvalid     = errors.New("goal weight must be between 0 and 100")
	ErrCategoryInvalid   = errors.New("unknown goal category")
	ErrRatingInvalid     = errors.New("rating code has no score mapping")
	ErrAlreadyExists     = errors.New("already exists")
)
