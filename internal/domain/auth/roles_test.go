package auth

import "testing"

func TestParseRoleNormalizesCase(t *testing.T) {
	if role := ParseRole("  Supervisor "); role != RoleSupervisor {
		t.Fatalf("expected supervisor, got %v", role)
	}
	if role := ParseRole("ADMIN"); role != RoleAdmin {
		t.Fatalf("expected admin, got %v", role)
	}
}

func TestParseRoleUnknownFallsBackToEmployee(t *testing.T) {
	if role := ParseRole("intern"); role != RoleEmployee {
		t.Fatalf("unknown role should fall back to employee, got %v", role)
	}
	if role := ParseRole(""); role != RoleEmployee {
		t.Fatalf("empty role should fall back to employee, got %v", role)
	}
}

func TestLookupRoleIsStrict(t *testing.T) {
	if _, ok := LookupRole("intern"); ok {
		t.Fatal("unknown role should not resolve via LookupRole")
	}
	if role, ok := LookupRole("Manager"); !ok || role != RoleManager {
		t.Fatalf("expected manager, got %v ok=%v", role, ok)
	}
}

func TestParseRolesDeduplicates(t *testing.T) {
	roles := ParseRoles([]string{"employee", "Employee", "supervisor"})
	if len(roles) != 2 {
		t.Fatalf("expected 2 distinct roles, got %v", roles)
	}
}

func TestParseRolesEmptyDefaultsToEmployee(t *testing.T) {
	roles := ParseRoles(nil)
	if len(roles) != 1 || roles[0] != RoleEmployee {
		t.Fatalf("expected employee fallback, got %v", roles)
	}
}

func TestHierarchyChecks(t *testing.T) {
	if !IsAdminOrManager(RoleAdmin) || !IsAdminOrManager(RoleManager) {
		t.Fatal("admin and manager must satisfy IsAdminOrManager")
	}
	if IsAdminOrManager(RoleSupervisor) || IsAdminOrManager(RoleEmployee) {
		t.Fatal("supervisor and employee must not satisfy IsAdminOrManager")
	}
	if !IsSupervisorOrAbove(RoleSupervisor) || !IsSupervisorOrAbove(RoleAdmin) {
		t.Fatal("supervisor and above must satisfy IsSupervisorOrAbove")
	}
	if IsSupervisorOrAbove(RoleEmployee) {
		t.Fatal("employee must not satisfy IsSupervisorOrAbove")
	}
}

func TestManagerLacksUserReadAll(t *testing.T) {
	// Hierarchy rank does not imply the deny-by-default read-all grant.
	perms := ResolvePermissions([]Role{RoleManager}, nil)
	if perms.Has(PermUserReadAll) {
		t.Fatal("manager must not hold user:read:all")
	}
	if !IsAdminOrManager(RoleManager) {
		t.Fatal("manager is still above employee in the hierarchy")
	}
}
