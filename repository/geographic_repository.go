package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

type GormGeographicRepository struct {
	db *gorm.DB
}

func NewGormGeographicRepository(db *gorm.DB) GeographicRepository {
	return &GormGeographicRepository{db: db}
}

// withParentName selects geographic rows joined with their parent's name.
func withParentName(db *gorm.DB) *gorm.DB {
	return db.Table("geografico AS g").
		Select("g.*, p.nombre AS nombre_padre").
		Joins("LEFT JOIN geografico p ON p.id_geografico = g.fk_id_geografico")
}

func (r *GormGeographicRepository) List(ctx context.Context) ([]models.GeographicEntity, error) {
	var entities []models.GeographicEntity
	err := withParentName(r.db.WithContext(ctx)).Order("g.id_geografico DESC").Scan(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list geographic entities: %w", err)
	}
	return entities, nil
}

func (r *GormGeographicRepository) ListParentCandidates(ctx context.Context) ([]models.ParentCandidate, error) {
	var candidates []models.ParentCandidate
	err := r.db.WithContext(ctx).Model(&models.GeographicEntity{}).
		Select("id_geografico, nombre, tipo").
		Order("nombre ASC").
		Scan(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parent candidates: %w", err)
	}
	return candidates, nil
}

func (r *GormGeographicRepository) GetByID(ctx context.Context, id uint) (*models.GeographicEntity, error) {
	return getGeographicWithParent(r.db.WithContext(ctx), id)
}

func getGeographicWithParent(db *gorm.DB, id uint) (*models.GeographicEntity, error) {
	var entity models.GeographicEntity
	err := withParentName(db).Where("g.id_geografico = ?", id).Take(&entity).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get geographic entity %d", id)
	}
	return &entity, nil
}

func (r *GormGeographicRepository) Create(ctx context.Context, entity *models.GeographicEntity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entity.ParentID != nil {
			if err := lockGeographicParent(tx, *entity.ParentID); err != nil {
				return err
			}
		}
		if err := tx.Create(entity).Error; err != nil {
			return fmt.Errorf("failed to create geographic entity: %w", err)
		}
		return loadParentName(tx, entity)
	})
}

// Update replaces every editable column of an existing entity. The parent
// chain is walked inside the transaction so the entity can never become its
// own ancestor.
func (r *GormGeographicRepository) Update(ctx context.Context, entity *models.GeographicEntity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.GeographicEntity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, entity.ID).Error
		if err != nil {
			return notFoundOr(err, "failed to load geographic entity %d", entity.ID)
		}

		if entity.ParentID != nil {
			if *entity.ParentID == entity.ID {
				return NewValidationError("fk_id_geografico", "Un registro no puede ser su propio padre")
			}
			if err := lockGeographicParent(tx, *entity.ParentID); err != nil {
				return err
			}
			if err := ensureNotDescendant(tx, entity.ID, *entity.ParentID); err != nil {
				return err
			}
		}

		err = tx.Model(entity).
			Select("nombre", "codigo", "ubicacion", "tipo", "fk_id_geografico").
			Updates(entity).Error
		if err != nil {
			return fmt.Errorf("failed to update geographic entity %d: %w", entity.ID, err)
		}
		return loadParentName(tx, entity)
	})
}

// Delete removes an entity that has neither children nor polling places.
func (r *GormGeographicRepository) Delete(ctx context.Context, id uint) (*models.GeographicEntity, error) {
	var deleted *models.GeographicEntity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity models.GeographicEntity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entity, id).Error
		if err != nil {
			return notFoundOr(err, "failed to load geographic entity %d", id)
		}

		var children int64
		if err := tx.Model(&models.GeographicEntity{}).Where("fk_id_geografico = ?", id).Count(&children).Error; err != nil {
			return fmt.Errorf("failed to count children of geographic entity %d: %w", id, err)
		}
		if children > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar: este registro tiene %d hijo(s). Elimina o reasigna sus hijos primero.", children),
				map[string]interface{}{"totalHijos": children},
			)
		}

		var places int64
		if err := tx.Model(&models.PollingPlace{}).Where("id_geografico = ?", id).Count(&places).Error; err != nil {
			return fmt.Errorf("failed to count polling places of geographic entity %d: %w", id, err)
		}
		if places > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar: este registro tiene %d recinto(s) asociado(s). Elimina o reasigna sus recintos primero.", places),
				map[string]interface{}{"totalRecintos": places},
			)
		}

		if err := tx.Delete(&entity).Error; err != nil {
			return fmt.Errorf("failed to delete geographic entity %d: %w", id, err)
		}
		deleted = &entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// lockGeographicParent checks that the parent exists and holds its row lock
// until the surrounding transaction ends, so it cannot be deleted meanwhile.
func lockGeographicParent(tx *gorm.DB, parentID uint) error {
	var parent models.GeographicEntity
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id_geografico").First(&parent, parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewValidationError("fk_id_geografico", "El registro padre no existe")
	}
	if err != nil {
		return fmt.Errorf("failed to lock parent geographic entity %d: %w", parentID, err)
	}
	return nil
}

type parentRef struct {
	ParentID *uint `gorm:"column:fk_id_geografico"`
}

// ensureNotDescendant walks up from candidateParent and fails if it reaches id.
func ensureNotDescendant(tx *gorm.DB, id, candidateParent uint) error {
	visited := map[uint]bool{}
	current := candidateParent
	for {
		if current == id {
			return NewValidationError("fk_id_geografico", "La asignación crearía un ciclo en la jerarquía")
		}
		if visited[current] {
			return nil
		}
		visited[current] = true

		var ref parentRef
		err := tx.Model(&models.GeographicEntity{}).Select("fk_id_geografico").Where("id_geografico = ?", current).Take(&ref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to walk ancestors of geographic entity %d: %w", current, err)
		}
		if ref.ParentID == nil {
			return nil
		}
		current = *ref.ParentID
	}
}

func loadParentName(tx *gorm.DB, entity *models.GeographicEntity) error {
	entity.ParentName = nil
	if entity.ParentID == nil {
		return nil
	}
	var names []string
	err := tx.Model(&models.GeographicEntity{}).Where("id_geografico = ?", *entity.ParentID).Pluck("nombre", &names).Error
	if err != nil {
		return fmt.Errorf("failed to load parent name of geographic entity %d: %w", entity.ID, err)
	}
	if len(names) > 0 {
		entity.ParentName = &names[0]
	}
	return nil
}
