package models

import "gorm.io/datatypes"

type Activity struct {
	BaseModel

	ProjectID string         `gorm:"size:36;not null;index"`
	ActorID   string         `gorm:"size:36;not null"`
	Kind      string         `gorm:"not null"` // e.g. "member_added", "task_assigned"
	Details   datatypes.JSON
}
