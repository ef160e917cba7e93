package goal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID             string          `json:"id"`
	OrgID          string          `json:"orgId"`
	UserID         string          `json:"userId"`
	PeriodID       string          `json:"periodId"`
	Category       string          `json:"category"`
	Weight         decimal.Decimal `json:"weight"`
	Status         string          `json:"status"`
	Title          string          `json:"title"`
	TargetDetail   string          `json:"targetDetail"`
	Measure        string          `json:"measure"`
	PreviousGoalID string          `json:"previousGoalId,omitempty"`
	Rating         string          `json:"rating,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type SupervisorReview struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"orgId"`
	GoalID       string    `json:"goalId"`
	PeriodID     string    `json:"periodId"`
	SupervisorID string    `json:"supervisorId"`
	Action       string    `json:"action"`
	Comment      string    `json:"comment"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GoalFields carries the owner-editable fields of a draft goal.
type GoalFields struct {
	Category     string
	Weight       decimal.Decimal
	Title        string
	TargetDetail string
	Measure      string
}

// Account is the slice of a user record the lifecycle guards need.
type Account struct {
	Status  string
	StageID string
}
