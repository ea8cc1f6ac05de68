package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

type GormFrontRepository struct {
	db *gorm.DB
}

func NewGormFrontRepository(db *gorm.DB) FrontRepository {
	return &GormFrontRepository{db: db}
}

func (r *GormFrontRepository) ListAll(ctx context.Context) ([]models.Front, error) {
	var fronts []models.Front
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&fronts).Error; err != nil {
		return nil, fmt.Errorf("failed to list fronts: %w", err)
	}
	return fronts, nil
}

func (r *GormFrontRepository) GetByID(ctx context.Context, id uint) (*models.Front, error) {
	var front models.Front
	if err := r.db.WithContext(ctx).First(&front, id).Error; err != nil {
		return nil, notFoundOr(err, "failed to get front %d", id)
	}
	return &front, nil
}

func (r *GormFrontRepository) Create(ctx context.Context, front *models.Front) error {
	if err := r.db.WithContext(ctx).Create(front).Error; err != nil {
		return fmt.Errorf("failed to create front: %w", err)
	}
	return nil
}

func (r *GormFrontRepository) Update(ctx context.Context, front *models.Front) error {
	res := r.db.WithContext(ctx).Model(front).Select("nombre", "siglas", "color").Updates(front)
	if res.Error != nil {
		return fmt.Errorf("failed to update front %d: %w", front.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete refuses while any vote row references the front.
func (r *GormFrontRepository) Delete(ctx context.Context, id uint) (*models.Front, error) {
	var front models.Front
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&front, id).Error; err != nil {
			return notFoundOr(err, "failed to load front %d", id)
		}
		var votes int64
		if err := tx.Model(&models.Vote{}).Where("id_frente = ?", id).Count(&votes).Error; err != nil {
			return fmt.Errorf("failed to count votes of front %d: %w", id, err)
		}
		if votes > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar: el frente tiene %d voto(s) registrados en actas.", votes),
				map[string]interface{}{"totalVotos": votes},
			)
		}
		if err := tx.Delete(&front).Error; err != nil {
			return fmt.Errorf("failed to delete front %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &front, nil
}

type GormElectionTypeRepository struct {
	db *gorm.DB
}

func NewGormElectionTypeRepository(db *gorm.DB) ElectionTypeRepository {
	return &GormElectionTypeRepository{db: db}
}

func (r *GormElectionTypeRepository) ListAll(ctx context.Context) ([]models.ElectionType, error) {
	var types []models.ElectionType
	if err := r.db.WithContext(ctx).Order("id_tipo_eleccion ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list election types: %w", err)
	}
	return types, nil
}

func (r *GormElectionTypeRepository) GetByID(ctx context.Context, id uint) (*models.ElectionType, error) {
	var et models.ElectionType
	if err := r.db.WithContext(ctx).First(&et, id).Error; err != nil {
		return nil, notFoundOr(err, "failed to get election type %d", id)
	}
	return &et, nil
}
