package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

const duplicateUsernameMessage = "El nombre de usuario ya existe"

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user whose PasswordHash is already set. The role and the
// username are checked in the same transaction as the insert; the unique
// index on nombre_usuario backs the check.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findRole(tx, user.RoleID)
		if err != nil {
			return err
		}
		if err := ensureUsernameFree(tx, user.Username, 0); err != nil {
			return err
		}

		user.Role = nil
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewConflictError(duplicateUsernameMessage, nil)
			}
			return fmt.Errorf("failed to create user '%s': %w", user.Username, err)
		}
		user.Role = role
		return nil
	})
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get user %d", id)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Role").Where("nombre_usuario = ?", username).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get user '%s'", username)
	}
	return &user, nil
}

func (r *GormUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Role").Order("id_usuario DESC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) Update(ctx context.Context, id uint, changes UserChanges) (*models.User, error) {
	// hash outside the transaction, bcrypt is slow on purpose
	var newHash string
	if strings.TrimSpace(changes.Password) != "" {
		var tmp models.User
		if err := tmp.SetPassword(changes.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		newHash = tmp.PasswordHash
	}

	var updated models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&updated, id).Error
		if err != nil {
			return notFoundOr(err, "failed to load user %d", id)
		}

		role, err := findRole(tx, changes.RoleID)
		if err != nil {
			return err
		}
		if changes.Username != updated.Username {
			if err := ensureUsernameFree(tx, changes.Username, id); err != nil {
				return err
			}
		}

		updated.Username = changes.Username
		updated.RoleID = changes.RoleID
		if newHash != "" {
			updated.PasswordHash = newHash
		}
		if changes.SetExpiry {
			updated.ExpiresAt = changes.ExpiresAt
		}

		err = tx.Model(&updated).Omit(clause.Associations).
			Select("nombre_usuario", "id_rol", "contrasena", "fecha_fin", "actualizado_en").
			Updates(&updated).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewConflictError(duplicateUsernameMessage, nil)
			}
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}
		updated.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete permanently removes the account.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
		if err != nil {
			return notFoundOr(err, "failed to load user %d", id)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func findRole(tx *gorm.DB, roleID uint) (*models.Role, error) {
	var role models.Role
	err := tx.First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidationError("id_rol", "El rol seleccionado no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load role %d: %w", roleID, err)
	}
	return &role, nil
}

// ensureUsernameFree fails with a conflict when another account (other than
// exceptID) already uses the name.
func ensureUsernameFree(tx *gorm.DB, username string, exceptID uint) error {
	q := tx.Model(&models.User{}).Where("nombre_usuario = ?", username)
	if exceptID != 0 {
		q = q.Where("id_usuario <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username '%s': %w", username, err)
	}
	if count > 0 {
		return NewConflictError(duplicateUsernameMessage, nil)
	}
	return nil
}
