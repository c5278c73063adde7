package models

import "time"

const (
	ActivityTypeCall           = "call"
	ActivityTypeEmail          = "email"
	ActivityTypeMeeting        = "meeting"
	ActivityTypeDemo           = "demo"
	ActivityTypeProposal       = "proposal"
	ActivityTypePaymentTerms   = "payment_terms"
	ActivityTypeImplementation = "implementation"
)

type Activity struct {
	BaseModel

	OpportunityID uint      `gorm:"index;not null" json:"opportunity_id"`
	Type          string    `gorm:"index;not null" json:"type"`
	Subject       string    `json:"subject"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	OccurredAt    time.Time `gorm:"index;not null" json:"occurred_at"`
}

func (*Activity) TableName() string {
	return "activities"
}

// IsValidActivityType перевіряє чи тип активності відомий
func IsValidActivityType(activityType string) bool {
	switch activityType {
	case ActivityTypeCall, ActivityTypeEmail, ActivityTypeMeeting,
		ActivityTypeDemo, ActivityTypeProposal,
		ActivityTypePaymentTerms, ActivityTypeImplementation:
		return true
	}
	return false
}
