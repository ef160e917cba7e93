package scoring

import "errors"

// NotFound kind.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrStageNotFound = errors.New("stage not found")
)

// PermissionDenied kind.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError kind.
var (
	ErrUnknownRating = errors.New("unknown rating code")
	ErrNoThresholds  = errors.New("no rating thresholds configured")
	ErrUnknownBucket = errors.New("unknown scoring bucket")
	ErrStageMissing  = errors.New("user has no stage assigned")
	ErrNoRatings     = errors.New("no finalized ratings for user and period")
)
