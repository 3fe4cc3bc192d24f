// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.ConnectDatabase(db.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.MigrateDatabase(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, gdb *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, gdb.WithContext(context.Background()).Create(user).Error)

	return user
}

// CreateMembership inserts a membership row directly, bypassing authorization.
func CreateMembership(t *testing.T, gdb *gorm.DB, projectID, userID string, role types.Role) {
	t.Helper()

	require.NoError(t, gdb.Create(&models.ProjectMembership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}).Error)
}

// CountMemberships returns the number of membership rows for the project.
func CountMemberships(t *testing.T, gdb *gorm.DB, projectID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, gdb.Model(&models.ProjectMembership{}).Where("project_id = ?", projectID).Count(&count).Error)

	return count
}
