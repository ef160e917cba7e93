package auth

import "strings"

// Role is the closed set of built-in roles, ordered by hierarchy rank.
type Role int

const (
	RoleEmployee Role = iota
	RoleSupervisor
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleEmployee:   "employee",
	RoleSupervisor: "supervisor",
	RoleManager:    "manager",
	RoleAdmin:      "admin",
}

var rolesByName = map[string]Role{
	"employee":   RoleEmployee,
	"supervisor": RoleSupervisor,
	"manager":    RoleManager,
	"admin":      RoleAdmin,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[RoleEmployee]
}

// Rank returns the hierarchy rank; higher ranks outrank lower ones.
func (r Role) Rank() int {
	return int(r)
}

// LookupRole matches a role name case-insensitively without the
// lowest-privilege fallback. Administrative operations use it so a typo
// surfaces as not-found instead of silently targeting employee.
func LookupRole(name string) (Role, bool) {
	role, ok := rolesByName[strings.ToLower(strings.TrimSpace(name))]
	return role, ok
}

// ParseRole matches a role claim case-insensitively. An empty or unknown
// name resolves to the lowest-privilege role rather than an error.
func ParseRole(name string) Role {
	if role, ok := rolesByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return role
	}
	return RoleEmployee
}

// ParseRoles maps raw role claims onto the closed role set, deduplicated.
func ParseRoles(names []string) []Role {
	seen := map[Role]bool{}
	var roles []Role
	for _, name := range names {
		role := ParseRole(name)
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		roles = []Role{RoleEmployee}
	}
	return roles
}

// IsAdminOrManager is a hierarchy-membership check, not a permission lookup:
// a manager is ranked above employee yet still lacks user:read:all.
func IsAdminOrManager(r Role) bool {
	return r == RoleAdmin || r == RoleManager
}

func IsSupervisorOrAbove(r Role) bool {
	return r.Rank() >= RoleSupervisor.Rank()
}
