package database

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"gorm.io/gorm"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/permissions"
)

// DefaultElectionTypes are created on startup when missing. Existing rows keep
// whatever offices were configured for them.
var DefaultElectionTypes = []models.ElectionType{
	{Name: "Elecciones Subnacionales", Offices: []string{"alcalde", "concejal"}},
}

// SeedElectionTypes is idempotent and safe to run on every application startup.
func SeedElectionTypes(db *gorm.DB) error {
	for _, et := range DefaultElectionTypes {
		var existing models.ElectionType
		err := db.Where(models.ElectionType{Name: et.Name}).Attrs(models.ElectionType{Offices: et.Offices}).FirstOrCreate(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to seed election type '%s': %w", et.Name, err)
		}
	}
	return nil
}

var defaultRoleDescriptions = map[string]string{
	models.AdminRoleName:      "Acceso total al sistema",
	models.SupervisorRoleName: "Supervisa la transcripción y los resultados",
	models.OperatorRoleName:   "Transcribe actas",
}

// SyncDefaultRoles ensures the built-in roles exist. The administrator role
// is kept in sync with every defined permission; the other roles are only
// created with their defaults and never overwritten.
func SyncDefaultRoles(db *gorm.DB) error {
	allPerms := permissions.GetAllPermissionKeys()
	sort.Strings(allPerms)

	var admin models.Role
	err := db.Where(models.Role{Name: models.AdminRoleName}).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		desc := defaultRoleDescriptions[models.AdminRoleName]
		admin = models.Role{Name: models.AdminRoleName, Description: &desc, Permissions: allPerms}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create '%s' role: %w", models.AdminRoleName, err)
		}
	case err != nil:
		return fmt.Errorf("failed to query for '%s' role: %w", models.AdminRoleName, err)
	default:
		current := append([]string(nil), admin.Permissions...)
		sort.Strings(current)
		if !reflect.DeepEqual(current, allPerms) {
			admin.Permissions = allPerms
			if err := db.Save(&admin).Error; err != nil {
				return fmt.Errorf("failed to update '%s' role permissions: %w", models.AdminRoleName, err)
			}
		}
	}

	for _, name := range []string{models.SupervisorRoleName, models.OperatorRoleName} {
		desc := defaultRoleDescriptions[name]
		var role models.Role
		err := db.Where(models.Role{Name: name}).
			Attrs(models.Role{Description: &desc, Permissions: permissions.DefaultRolePermissions[name]}).
			FirstOrCreate(&role).Error
		if err != nil {
			return fmt.Errorf("failed to seed '%s' role: %w", name, err)
		}
	}
	return nil
}
