package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/facette/natsort"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

type GormPollingPlaceRepository struct {
	db *gorm.DB
}

func NewGormPollingPlaceRepository(db *gorm.DB) PollingPlaceRepository {
	return &GormPollingPlaceRepository{db: db}
}

func pollingPlaceQuery(db *gorm.DB) *gorm.DB {
	return db.Table("recinto AS r").
		Select("r.*, g.nombre AS nombre_geografico, (SELECT COUNT(*) FROM mesa m WHERE m.id_recinto = r.id_recinto) AS total_mesas").
		Joins("LEFT JOIN geografico g ON g.id_geografico = r.id_geografico")
}

func (r *GormPollingPlaceRepository) List(ctx context.Context, geographicID *uint) ([]models.PollingPlace, error) {
	q := pollingPlaceQuery(r.db.WithContext(ctx))
	if geographicID != nil {
		q = q.Where("r.id_geografico = ?", *geographicID)
	}
	var places []models.PollingPlace
	if err := q.Order("r.nombre ASC").Scan(&places).Error; err != nil {
		return nil, fmt.Errorf("failed to list polling places: %w", err)
	}
	return places, nil
}

func (r *GormPollingPlaceRepository) GetByID(ctx context.Context, id uint) (*models.PollingPlace, error) {
	var place models.PollingPlace
	err := pollingPlaceQuery(r.db.WithContext(ctx)).Where("r.id_recinto = ?", id).Take(&place).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get polling place %d", id)
	}
	return &place, nil
}

func (r *GormPollingPlaceRepository) Create(ctx context.Context, place *models.PollingPlace) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGeographicForPlace(tx, place.GeographicID); err != nil {
			return err
		}
		if err := tx.Create(place).Error; err != nil {
			return fmt.Errorf("failed to create polling place: %w", err)
		}
		return nil
	})
}

// Update also rewrites the geographic id denormalized on the place's tables.
func (r *GormPollingPlaceRepository) Update(ctx context.Context, place *models.PollingPlace) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PollingPlace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, place.ID).Error; err != nil {
			return notFoundOr(err, "failed to load polling place %d", place.ID)
		}
		if err := lockGeographicForPlace(tx, place.GeographicID); err != nil {
			return err
		}
		err := tx.Model(place).Select("nombre", "direccion", "id_geografico").Updates(place).Error
		if err != nil {
			return fmt.Errorf("failed to update polling place %d: %w", place.ID, err)
		}
		err = tx.Model(&models.PollingTable{}).Where("id_recinto = ?", place.ID).Update("id_geografico", place.GeographicID).Error
		if err != nil {
			return fmt.Errorf("failed to sync tables of polling place %d: %w", place.ID, err)
		}
		return nil
	})
}

func (r *GormPollingPlaceRepository) Delete(ctx context.Context, id uint) (*models.PollingPlace, error) {
	var place models.PollingPlace
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&place, id).Error; err != nil {
			return notFoundOr(err, "failed to load polling place %d", id)
		}
		var tables int64
		if err := tx.Model(&models.PollingTable{}).Where("id_recinto = ?", id).Count(&tables).Error; err != nil {
			return fmt.Errorf("failed to count tables of polling place %d: %w", id, err)
		}
		if tables > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar: el recinto tiene %d mesa(s). Elimina sus mesas primero.", tables),
				map[string]interface{}{"totalMesas": tables},
			)
		}
		if err := tx.Delete(&place).Error; err != nil {
			return fmt.Errorf("failed to delete polling place %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func lockGeographicForPlace(tx *gorm.DB, geographicID uint) error {
	var entity models.GeographicEntity
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id_geografico").First(&entity, geographicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewValidationError("id_geografico", "El registro geográfico no existe")
	}
	if err != nil {
		return fmt.Errorf("failed to lock geographic entity %d: %w", geographicID, err)
	}
	return nil
}

type GormPollingTableRepository struct {
	db *gorm.DB
}

func NewGormPollingTableRepository(db *gorm.DB) PollingTableRepository {
	return &GormPollingTableRepository{db: db}
}

func pollingTableQuery(db *gorm.DB) *gorm.DB {
	return db.Table("mesa AS m").
		Select("m.*, r.nombre AS nombre_recinto, (SELECT COUNT(*) FROM acta a WHERE a.id_mesa = m.id_mesa) AS actas_registradas").
		Joins("LEFT JOIN recinto r ON r.id_recinto = m.id_recinto")
}

// List orders tables by code the way people read them: "M-2" before "M-10".
func (r *GormPollingTableRepository) List(ctx context.Context, pollingPlaceID *uint) ([]models.PollingTable, error) {
	q := pollingTableQuery(r.db.WithContext(ctx))
	if pollingPlaceID != nil {
		q = q.Where("m.id_recinto = ?", *pollingPlaceID)
	}
	var tables []models.PollingTable
	if err := q.Scan(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Code == tables[j].Code {
			return tables[i].Number < tables[j].Number
		}
		return natsort.Compare(tables[i].Code, tables[j].Code)
	})
	return tables, nil
}

func (r *GormPollingTableRepository) GetByID(ctx context.Context, id uint) (*models.PollingTable, error) {
	var table models.PollingTable
	err := pollingTableQuery(r.db.WithContext(ctx)).Where("m.id_mesa = ?", id).Take(&table).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get table %d", id)
	}
	return &table, nil
}

func (r *GormPollingTableRepository) Create(ctx context.Context, table *models.PollingTable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		place, err := lockPollingPlace(tx, table.PollingPlaceID)
		if err != nil {
			return err
		}
		table.GeographicID = place.GeographicID
		if err := tx.Create(table).Error; err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		return nil
	})
}

func (r *GormPollingTableRepository) Update(ctx context.Context, table *models.PollingTable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.PollingTable
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, table.ID).Error; err != nil {
			return notFoundOr(err, "failed to load table %d", table.ID)
		}
		place, err := lockPollingPlace(tx, table.PollingPlaceID)
		if err != nil {
			return err
		}
		table.GeographicID = place.GeographicID
		err = tx.Model(table).
			Select("codigo", "descripcion", "numero_mesa", "id_recinto", "id_geografico").
			Updates(table).Error
		if err != nil {
			return fmt.Errorf("failed to update table %d: %w", table.ID, err)
		}
		return nil
	})
}

func (r *GormPollingTableRepository) Delete(ctx context.Context, id uint) (*models.PollingTable, error) {
	var table models.PollingTable
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, id).Error; err != nil {
			return notFoundOr(err, "failed to load table %d", id)
		}
		var actas int64
		if err := tx.Model(&models.Acta{}).Where("id_mesa = ?", id).Count(&actas).Error; err != nil {
			return fmt.Errorf("failed to count actas of table %d: %w", id, err)
		}
		if actas > 0 {
			return NewConflictError(
				fmt.Sprintf("No se puede eliminar: la mesa tiene %d acta(s) registrada(s).", actas),
				map[string]interface{}{"totalActas": actas},
			)
		}
		if err := tx.Delete(&table).Error; err != nil {
			return fmt.Errorf("failed to delete table %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func lockPollingPlace(tx *gorm.DB, id uint) (*models.PollingPlace, error) {
	var place models.PollingPlace
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&place, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidationError("id_recinto", "El recinto no existe")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock polling place %d: %w", id, err)
	}
	return &place, nil
}
