package models

import "github.com/taskflow-dev/taskflow/internal/types"

type Task struct {
	BaseModel

	ProjectID    string           `gorm:"size:36;not null;index"`
	Title        string           `gorm:"not null"`
	Description  string
	Status       types.TaskStatus `gorm:"type:varchar(16);not null;default:TODO"`
	AssignedToID *string          `gorm:"size:36;index"`
}
