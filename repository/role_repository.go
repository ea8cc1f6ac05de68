package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/electoralbackend/models"
)

type GormRoleRepository struct {
	db *gorm.DB
}

func NewGormRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

func (r *GormRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("nombre = ?", name).First(&role).Error; err != nil {
		return nil, notFoundOr(err, "failed to get role '%s'", name)
	}
	return &role, nil
}

func (r *GormRoleRepository) ListAll(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}
