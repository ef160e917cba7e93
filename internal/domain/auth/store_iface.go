package auth

import "context"

type StoreAPI interface {
	// OrgRolePermissions returns every stored role override for the
	// organization, keyed by role name.
	OrgRolePermissions(ctx context.Context, orgID string) (map[string][]string, error)
	// RolePermissionSet returns the stored override for one role and
	// whether an override exists at all.
	RolePermissionSet(ctx context.Context, orgID, role string) ([]string, bool, error)
	// ReplaceRolePermissions atomically replaces the role's stored set.
	ReplaceRolePermissions(ctx context.Context, orgID, role string, codes []string) error
}
