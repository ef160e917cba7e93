package scope

import (
	"context"
	"time"
)

// Directory is the user-directory capability the resolver depends on.
// Subordinate resolution joins through the supervisor-link relation keyed by
// identifiers only; display names or other derived attributes never
// participate.
type Directory interface {
	ActiveUserIDs(ctx context.Context, orgID string) ([]string, error)
	SubordinateUserIDs(ctx context.Context, orgID, supervisorID string, at time.Time) ([]string, error)
	DepartmentUserIDs(ctx context.Context, orgID, userID string) ([]string, error)
}
