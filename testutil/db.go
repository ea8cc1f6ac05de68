// Package testutil holds the database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/electoralbackend/config"
	"github.com/camden-git/electoralbackend/database"
	"github.com/camden-git/electoralbackend/models"
)

// NewTestDB returns a migrated and seeded in-memory sqlite database that is
// private to the calling test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.InitGormDB(config.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	require.NoError(t, database.SyncDefaultRoles(db))
	require.NoError(t, database.SeedElectionTypes(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func RoleByName(t *testing.T, db *gorm.DB, name string) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("nombre = ?", name).First(&role).Error)
	return role
}

func CreateUser(t *testing.T, db *gorm.DB, username, password, roleName string) models.User {
	t.Helper()
	role := RoleByName(t, db, roleName)
	user := models.User{Username: username, RoleID: role.ID}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Omit("Role").Create(&user).Error)
	user.Role = &role
	return user
}

func CreateGeographic(t *testing.T, db *gorm.DB, name, typeLabel string, parentID *uint) models.GeographicEntity {
	t.Helper()
	entity := models.GeographicEntity{Name: name, Type: typeLabel, ParentID: parentID}
	require.NoError(t, db.Create(&entity).Error)
	return entity
}

func CreatePollingPlace(t *testing.T, db *gorm.DB, name string, geographicID uint) models.PollingPlace {
	t.Helper()
	place := models.PollingPlace{Name: name, GeographicID: geographicID}
	require.NoError(t, db.Create(&place).Error)
	return place
}

func CreatePollingTable(t *testing.T, db *gorm.DB, code string, number int, place models.PollingPlace) models.PollingTable {
	t.Helper()
	table := models.PollingTable{Code: code, Number: number, PollingPlaceID: place.ID, GeographicID: place.GeographicID}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func CreateFront(t *testing.T, db *gorm.DB, name, acronym string) models.Front {
	t.Helper()
	front := models.Front{Name: name, Acronym: acronym, Color: models.DefaultFrontColor}
	require.NoError(t, db.Create(&front).Error)
	return front
}

func ElectionType(t *testing.T, db *gorm.DB) models.ElectionType {
	t.Helper()
	var et models.ElectionType
	require.NoError(t, db.Order("id_tipo_eleccion ASC").First(&et).Error)
	return et
}

func Ptr[T any](v T) *T {
	return &v
}
