package models

import "github.com/taskflow-dev/taskflow/internal/types"

type ProjectMembership struct {
	BaseModel

	UserID    string     `gorm:"size:36;not null;uniqueIndex:idx_user_project"`
	ProjectID string     `gorm:"size:36;not null;uniqueIndex:idx_user_project;index"`
	Role      types.Role `gorm:"type:varchar(16);not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
