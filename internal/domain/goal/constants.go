package goal

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"

	CategoryQuantitative = "quantitative"
	CategoryQualitative  = "qualitative"
	CategoryCompetency   = "competency"
	CategoryCoreValue    = "core_value"

	ReviewStatusDraft     = "draft"
	ReviewStatusSubmitted = "submitted"

	ReviewActionPending  = "pending"
	ReviewActionApproved = "approved"
	ReviewActionRejected = "rejected"

	SelfAssessmentDraft     = "draft"
	SelfAssessmentSubmitted = "submitted"

	UserStatusActive          = "active"
	UserStatusPendingApproval = "pending_approval"
	UserStatusInactive        = "inactive"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryQuantitative, CategoryQualitative, CategoryCompetency, CategoryCoreValue:
		return true
	}
	return false
}
