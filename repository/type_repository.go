package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

// GormTypeRepository has no table for types in use: they are whatever
// distinct labels the geographic rows carry. Only pending types are stored.
type GormTypeRepository struct {
	db *gorm.DB
}

func NewGormTypeRepository(db *gorm.DB) TypeRepository {
	return &GormTypeRepository{db: db}
}

func (r *GormTypeRepository) ListInUse(ctx context.Context) ([]string, error) {
	types := []string{}
	err := r.db.WithContext(ctx).Model(&models.GeographicEntity{}).
		Distinct().
		Where("tipo IS NOT NULL AND TRIM(tipo) <> ''").
		Order("tipo ASC").
		Pluck("tipo", &types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list types in use: %w", err)
	}
	return types, nil
}

// Catalog merges the in-use types (with their counts) and the pending types.
func (r *GormTypeRepository) Catalog(ctx context.Context) ([]models.TypeUsage, error) {
	var usages []models.TypeUsage
	err := r.db.WithContext(ctx).Model(&models.GeographicEntity{}).
		Select("tipo, COUNT(*) AS total").
		Where("tipo IS NOT NULL AND TRIM(tipo) <> ''").
		Group("tipo").
		Scan(&usages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count entities per type: %w", err)
	}

	var pending []models.PendingType
	if err := r.db.WithContext(ctx).Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending types: %w", err)
	}

	seen := make(map[string]bool, len(usages))
	for _, u := range usages {
		seen[u.Type] = true
	}
	for _, p := range pending {
		if !seen[p.Type] {
			usages = append(usages, models.TypeUsage{Type: p.Type, Total: 0, Pending: true})
		}
	}

	sort.Slice(usages, func(i, j int) bool { return usages[i].Type < usages[j].Type })
	if usages == nil {
		usages = []models.TypeUsage{}
	}
	return usages, nil
}

func (r *GormTypeRepository) AddPending(ctx context.Context, typeLabel string) error {
	typeLabel = strings.TrimSpace(typeLabel)
	if typeLabel == "" {
		return NewValidationError("tipo", "El tipo es obligatorio")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PendingType{Type: typeLabel}).Error
	if err != nil {
		return fmt.Errorf("failed to add pending type '%s': %w", typeLabel, err)
	}
	return nil
}

// Reassign moves every entity labelled fromType to toType and reports how
// many rows changed.
func (r *GormTypeRepository) Reassign(ctx context.Context, fromType, toType string) (int64, error) {
	fromType = strings.TrimSpace(fromType)
	toType = strings.TrimSpace(toType)
	if fromType == "" {
		return 0, NewValidationError("tipo_origen", "tipo_origen es obligatorio")
	}
	if toType == "" {
		return 0, NewValidationError("tipo_destino", "tipo_destino es obligatorio")
	}
	if fromType == toType {
		return 0, NewValidationError("tipo_destino", "Los tipos no pueden ser iguales")
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.GeographicEntity{}).Where("tipo = ?", fromType).Update("tipo", toType)
		if res.Error != nil {
			return fmt.Errorf("failed to reassign type '%s' to '%s': %w", fromType, toType, res.Error)
		}
		affected = res.RowsAffected

		// the destination is now in use, so it is no longer pending
		if err := tx.Where("tipo = ?", toType).Delete(&models.PendingType{}).Error; err != nil {
			return fmt.Errorf("failed to clear pending type '%s': %w", toType, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Delete succeeds only when no entity uses the label; a pending row with the
// same label is removed as well.
func (r *GormTypeRepository) Delete(ctx context.Context, typeLabel string) error {
	typeLabel = strings.TrimSpace(typeLabel)
	if typeLabel == "" {
		return NewValidationError("tipo", "Tipo inválido")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&models.GeographicEntity{}).Where("tipo = ?", typeLabel).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count entities with type '%s': %w", typeLabel, err)
		}
		if total > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar el tipo \"%s\" porque tiene %d registro(s). Reasigna o elimina esos registros primero.", typeLabel, total),
				map[string]interface{}{"total": total},
			)
		}
		if err := tx.Where("tipo = ?", typeLabel).Delete(&models.PendingType{}).Error; err != nil {
			return fmt.Errorf("failed to delete pending type '%s': %w", typeLabel, err)
		}
		return nil
	})
}
