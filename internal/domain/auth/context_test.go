package auth

import (
	"errors"
	"testing"
)

func TestResolvePermissionsUnionAcrossRoles(t *testing.T) {
	perms := ResolvePermissions([]Role{RoleEmployee, RoleSupervisor}, nil)
	if !perms.Has(PermGoalManageSelf) {
		t.Fatal("expected employee permission in union")
	}
	if !perms.Has(PermGoalApprove) {
		t.Fatal("expected supervisor permission in union")
	}
	if perms.Has(PermPermissionManage) {
		t.Fatal("union must not include admin-only permissions")
	}
}

func TestResolvePermissionsEmptyRolesFallsBack(t *testing.T) {
	perms := ResolvePermissions(nil, nil)
	if !perms.Has(PermGoalReadSelf) {
		t.Fatal("empty role list should resolve to the employee set")
	}
	if perms.Has(PermGoalApprove) {
		t.Fatal("fallback set must be lowest privilege")
	}
}

func TestResolvePermissionsOverrideReplacesBaseSet(t *testing.T) {
	overrides := map[Role][]string{
		RoleEmployee: {PermGoalReadSelf},
	}
	perms := ResolvePermissions([]Role{RoleEmployee}, overrides)
	if !perms.Has(PermGoalReadSelf) {
		t.Fatal("override grant missing")
	}
	if perms.Has(PermGoalManageSelf) {
		t.Fatal("override must replace the built-in set, not extend it")
	}
	if RolePermissions[RoleEmployee][0] == "" {
		t.Fatal("base catalog must stay intact")
	}
}

func TestHasAnyPermissionRejectsEmptyList(t *testing.T) {
	caller := Context{UserID: "u1", OrgID: "o1", Roles: []Role{RoleEmployee}}
	if _, err := caller.HasAnyPermission(); !errors.Is(err, ErrNoPermissionsGiven) {
		t.Fatalf("expected ErrNoPermissionsGiven, got %v", err)
	}
	if _, err := caller.HasAllPermissions(); !errors.Is(err, ErrNoPermissionsGiven) {
		t.Fatalf("expected ErrNoPermissionsGiven, got %v", err)
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	caller := Context{UserID: "u1", OrgID: "o1", Roles: []Role{RoleSupervisor}}

	ok, err := caller.HasAnyPermission(PermGoalApprove, PermPermissionManage)
	if err != nil || !ok {
		t.Fatalf("expected any-permission match, got ok=%v err=%v", ok, err)
	}

	ok, err = caller.HasAllPermissions(PermGoalApprove, PermPermissionManage)
	if err != nil || ok {
		t.Fatalf("expected all-permission miss, got ok=%v err=%v", ok, err)
	}
}

func TestEmployeeManageSelfSatisfiesGenericManageCheck(t *testing.T) {
	// Intentional asymmetry: the self-scoped grant satisfies a generic
	// "may manage users" check (self-service profile edit).
	caller := Context{UserID: "u1", OrgID: "o1", Roles: []Role{RoleEmployee}}
	ok, err := caller.HasAnyPermission(PermUserManageSelf, PermUserManageAll)
	if err != nil || !ok {
		t.Fatalf("expected employee to pass generic manage check, got ok=%v err=%v", ok, err)
	}
}

func TestHighestRole(t *testing.T) {
	caller := Context{Roles: []Role{RoleEmployee, RoleManager, RoleSupervisor}}
	if caller.HighestRole() != RoleManager {
		t.Fatalf("expected manager, got %v", caller.HighestRole())
	}
}
