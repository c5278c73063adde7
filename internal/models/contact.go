package models

type Contact struct {
	BaseModel

	OpportunityID uint   `gorm:"index;not null" json:"opportunity_id"`
	Name          string `gorm:"not null" json:"name"`
	Title         string `json:"title"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`

	IsDecisionMaker bool `gorm:"default:false" json:"is_decision_maker"`
	IsChampion      bool `gorm:"default:false" json:"is_champion"`
}

func (*Contact) TableName() string {
	return "contacts"
}
