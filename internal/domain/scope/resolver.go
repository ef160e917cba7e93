package scope

import (
	"context"
	"time"

	"perfeval/internal/domain/auth"
)

// Resolver computes the concrete set of user ids a caller may operate on
// for a given capability domain (for example "goal:read" or "user:read").
type Resolver struct {
	dir   Directory
	perms *auth.Service
	now   func() time.Time
}

func NewResolver(dir Directory, perms *auth.Service) *Resolver {
	return &Resolver{dir: dir, perms: perms, now: time.Now}
}

// AccessibleUserIDs resolves the caller's reachable user ids for the
// capability domain, evaluated by the caller's highest applicable scope:
// all > subordinates > department > self. The result is an ordered,
// deduplicated set; an empty result means the caller may touch nothing and
// callers must short-circuit without issuing downstream queries.
func (r *Resolver) AccessibleUserIDs(ctx context.Context, caller auth.Context, capability string) ([]string, error) {
	perms, err := r.perms.EffectivePermissions(ctx, caller.OrgID, caller.Roles)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, caller, perms, capability)
}

func (r *Resolver) resolve(ctx context.Context, caller auth.Context, perms auth.PermissionSet, capability string) ([]string, error) {
	switch {
	case perms.Has(capability + ":all"):
		ids, err := r.dir.ActiveUserIDs(ctx, caller.OrgID)
		if err != nil {
			return nil, err
		}
		return dedupe(ids), nil

	case perms.Has(capability + ":subordinates"):
		subs, err := r.dir.SubordinateUserIDs(ctx, caller.OrgID, caller.UserID, r.now())
		if err != nil {
			return nil, err
		}
		return dedupe(append([]string{caller.UserID}, subs...)), nil

	case perms.Has(capability + ":department"):
		ids, err := r.dir.DepartmentUserIDs(ctx, caller.OrgID, caller.UserID)
		if err != nil {
			return nil, err
		}
		return dedupe(append([]string{caller.UserID}, ids...)), nil

	case perms.Has(capability+":self") || perms.Has(domainOf(capability)+":manage:self"):
		return []string{caller.UserID}, nil
	}
	return nil, nil
}

// CanReach reports whether the target user is inside the caller's resolved
// set for the capability domain.
func (r *Resolver) CanReach(ctx context.Context, caller auth.Context, capability, targetUserID string) (bool, error) {
	ids, err := r.AccessibleUserIDs(ctx, caller, capability)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == targetUserID {
			return true, nil
		}
	}
	return false, nil
}

func domainOf(capability string) string {
	for i := 0; i < len(capability); i++ {
		if capability[i] == ':' {
			return capability[:i]
		}
	}
	return capability
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
