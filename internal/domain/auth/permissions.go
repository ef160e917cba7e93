package auth

const (
	PermUserReadSelf         = "user:read:self"
	PermUserReadSubordinates = "user:read:subordinates"
	PermUserReadDepartment   = "user:read:department"
	PermUserReadAll          = "user:read:all"
	PermUserManageSelf       = "user:manage:self"
	PermUserManageAll        = "user:manage:all"

	PermGoalReadSelf         = "goal:read:self"
	PermGoalReadSubordinates = "goal:read:subordinates"
	PermGoalReadDepartment   = "goal:read:department"
	PermGoalReadAll          = "goal:read:all"
	PermGoalManageSelf       = "goal:manage:self"
	PermGoalManageAll        = "goal:manage:all"
	PermGoalApprove          = "goal:approve"

	PermEvaluationReadSelf         = "evaluation:read:self"
	PermEvaluationReadSubordinates = "evaluation:read:subordinates"
	PermEvaluationReadDepartment   = "evaluation:read:department"
	PermEvaluationReadAll          = "evaluation:read:all"
	PermEvaluationScore            = "evaluation:score"

	PermPermissionManage = "permission:manage"
	PermPeriodManage     = "period:manage"
	PermReportExport     = "report:export"
)

type PermissionEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Group       string `json:"group"`
}

// DefaultPermissions is the static catalog. Codes are stable once referenced.
var DefaultPermissions = []PermissionEntry{
	{PermUserReadSelf, "Read own user record", "user"},
	{PermUserReadSubordinates, "Read direct subordinates", "user"},
	{PermUserReadDepartment, "Read users in own department", "user"},
	{PermUserReadAll, "Read every user in the organization", "user"},
	{PermUserManageSelf, "Manage own user record", "user"},
	{PermUserManageAll, "Manage any user record", "user"},
	{PermGoalReadSelf, "Read own goals", "goal"},
	{PermGoalReadSubordinates, "Read subordinates' goals", "goal"},
	{PermGoalReadDepartment, "Read department goals", "goal"},
	{PermGoalReadAll, "Read every goal in the organization", "goal"},
	{PermGoalManageSelf, "Create and edit own goals", "goal"},
	{PermGoalManageAll, "Manage any goal", "goal"},
	{PermGoalApprove, "Approve, reject and remand goals", "goal"},
	{PermEvaluationReadSelf, "Read own evaluation summary", "evaluation"},
	{PermEvaluationReadSubordinates, "Read subordinates' evaluation summaries", "evaluation"},
	{PermEvaluationReadDepartment, "Read department evaluation summaries", "evaluation"},
	{PermEvaluationReadAll, "Read every evaluation summary", "evaluation"},
	{PermEvaluationScore, "Compute evaluation scores", "evaluation"},
	{PermPermissionManage, "Administer role permission assignments", "admin"},
	{PermPeriodManage, "Administer evaluation periods", "admin"},
	{PermReportExport, "Export evaluation reports", "report"},
}

// RolePermissions is the built-in role -> permission mapping. Organization
// overrides are layered on top at lookup time and never mutate this table.
//
// employee deliberately holds user:manage:self, so a generic "may manage
// users" check expressed as HasAnyPermission(user:manage:self,
// user:manage:all) is satisfied by the self-scoped grant. manager is ranked
// above employee but does not hold user:read:all.
var RolePermissions = map[Role][]string{
	RoleEmployee: {
		PermUserReadSelf,
		PermUserManageSelf,
		PermGoalReadSelf,
		PermGoalManageSelf,
		PermEvaluationReadSelf,
	},
	RoleSupervisor: {
		PermUserReadSelf,
		PermUserReadSubordinates,
		PermUserManageSelf,
		PermGoalReadSelf,
		PermGoalReadSubordinates,
		PermGoalManageSelf,
		PermGoalApprove,
		PermEvaluationReadSelf,
		PermEvaluationReadSubordinates,
	},
	RoleManager: {
		PermUserReadSelf,
		PermUserReadSubordinates,
		PermUserReadDepartment,
		PermUserManageSelf,
		PermGoalReadSelf,
		PermGoalReadSubordinates,
		PermGoalReadDepartment,
		PermGoalManageSelf,
		PermGoalApprove,
		PermEvaluationReadSelf,
		PermEvaluationReadSubordinates,
		PermEvaluationReadDepartment,
		PermEvaluationScore,
		PermReportExport,
	},
	RoleAdmin: {
		PermUserReadSelf,
		PermUserReadSubordinates,
		PermUserReadDepartment,
		PermUserReadAll,
		PermUserManageSelf,
		PermUserManageAll,
		PermGoalReadSelf,
		PermGoalReadSubordinates,
		PermGoalReadDepartment,
		PermGoalReadAll,
		PermGoalManageSelf,
		PermGoalManageAll,
		PermGoalApprove,
		PermEvaluationReadSelf,
		PermEvaluationReadSubordinates,
		PermEvaluationReadDepartment,
		PermEvaluationReadAll,
		PermEvaluationScore,
		PermPermissionManage,
		PermPeriodManage,
		PermReportExport,
	},
}

// KnownPermission reports whether code is part of the static catalog.
func KnownPermission(code string) bool {
	for _, entry := range DefaultPermissions {
		if entry.Code == code {
			return true
		}
	}
	return false
}
