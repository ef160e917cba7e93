package auth

// Context carries the verified caller identity for one request. It is
// derived from the transport's claims and never persisted.
type Context struct {
	UserID string
	OrgID  string
	Roles  []Role

	// Overrides replaces a role's built-in permission set for this context
	// only. Used by impersonation and test paths.
	Overrides map[Role][]string
}

// PermissionSet is a resolved set of permission codes.
type PermissionSet map[string]struct{}

func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// HasAnyPermission reports whether the set holds at least one of the given
// codes. An empty code list is a caller contract violation.
func (s PermissionSet) HasAnyPermission(codes ...string) (bool, error) {
	if len(codes) == 0 {
		return false, ErrNoPermissionsGiven
	}
	for _, code := range codes {
		if s.Has(code) {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether the set holds every given code. An
// empty code list is a caller contract violation.
func (s PermissionSet) HasAllPermissions(codes ...string) (bool, error) {
	if len(codes) == 0 {
		return false, ErrNoPermissionsGiven
	}
	for _, code := range codes {
		if !s.Has(code) {
			return false, nil
		}
	}
	return true, nil
}

func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	return codes
}

// ResolvePermissions computes the union of the given roles' permission
// sets. A role present in overrides uses the override set in place of its
// built-in set; the base catalog is never mutated.
func ResolvePermissions(roles []Role, overrides map[Role][]string) PermissionSet {
	set := PermissionSet{}
	if len(roles) == 0 {
		roles = []Role{RoleEmployee}
	}
	for _, role := range roles {
		codes, ok := overrides[role]
		if !ok {
			codes = RolePermissions[role]
			if codes == nil {
				codes = RolePermissions[RoleEmployee]
			}
		}
		for _, code := range codes {
			set[code] = struct{}{}
		}
	}
	return set
}

// Permissions resolves the caller's effective permission set.
func (c Context) Permissions() PermissionSet {
	return ResolvePermissions(c.Roles, c.Overrides)
}

// HighestRole returns the caller's highest-ranked role.
func (c Context) HighestRole() Role {
	highest := RoleEmployee
	for _, role := range c.Roles {
		if role.Rank() > highest.Rank() {
			highest = role
		}
	}
	return highest
}

// HasAnyPermission reports whether the caller holds at least one of the
// given codes. An empty code list is a caller contract violation.
func (c Context) HasAnyPermission(codes ...string) (bool, error) {
	return c.Permissions().HasAnyPermission(codes...)
}

// HasAllPermissions reports whether the caller holds every given code. An
// empty code list is a caller contract violation.
func (c Context) HasAllPermissions(codes ...string) (bool, error) {
	return c.Permissions().HasAllPermissions(codes...)
}
