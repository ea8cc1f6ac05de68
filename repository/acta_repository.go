package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/electoralbackend/models"
)

type GormActaRepository struct {
	db *gorm.DB
}

func NewGormActaRepository(db *gorm.DB) ActaRepository {
	return &GormActaRepository{db: db}
}

// Create records the acta header and its vote rows atomically. Zero-count
// rows are dropped, the valid and total counters are computed from what is
// kept. The table row stays locked until commit so it cannot be deleted
// while the acta is being written.
func (r *GormActaRepository) Create(ctx context.Context, acta *models.Acta) (int64, error) {
	if acta.NullVotes < 0 || acta.BlankVotes < 0 {
		return 0, NewValidationError("votos", "Los votos nulos y blancos no pueden ser negativos")
	}

	kept := make([]models.Vote, 0, len(acta.Votes))
	valid := 0
	for _, v := range acta.Votes {
		if v.Count < 0 {
			return 0, NewValidationError("votos", "La cantidad de votos no puede ser negativa")
		}
		if v.Count == 0 {
			continue
		}
		kept = append(kept, models.Vote{FrontID: v.FrontID, Office: v.Office, Count: v.Count})
		valid += v.Count
	}
	acta.Votes = kept
	acta.ValidVotes = valid
	acta.TotalVotes = valid + acta.NullVotes + acta.BlankVotes

	var prior int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.PollingTable
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, acta.TableID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("id_mesa", "La mesa seleccionada no existe")
		}
		if err != nil {
			return fmt.Errorf("failed to lock table %d: %w", acta.TableID, err)
		}

		var electionType models.ElectionType
		err = tx.First(&electionType, acta.ElectionTypeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("id_tipo_eleccion", "El tipo de elección no existe")
		}
		if err != nil {
			return fmt.Errorf("failed to load election type %d: %w", acta.ElectionTypeID, err)
		}

		if err := checkVoteRows(tx, &electionType, acta.Votes); err != nil {
			return err
		}

		err = tx.Model(&models.Acta{}).
			Where("id_mesa = ? AND id_tipo_eleccion = ?", acta.TableID, acta.ElectionTypeID).
			Count(&prior).Error
		if err != nil {
			return fmt.Errorf("failed to count previous actas of table %d: %w", acta.TableID, err)
		}

		if err := tx.Create(acta).Error; err != nil {
			return fmt.Errorf("failed to create acta for table %d: %w", acta.TableID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return prior, nil
}

// checkVoteRows validates offices against the election type, rejects a front
// repeated within one office and verifies that every front exists.
func checkVoteRows(tx *gorm.DB, electionType *models.ElectionType, votes []models.Vote) error {
	type key struct {
		office  string
		frontID uint
	}
	seen := make(map[key]bool, len(votes))
	frontIDs := make(map[uint]bool)
	for _, v := range votes {
		if !electionType.HasOffice(v.Office) {
			return NewValidationError("votos", fmt.Sprintf("Cargo no válido para el tipo de elección: %s", v.Office))
		}
		k := key{v.Office, v.FrontID}
		if seen[k] {
			return NewValidationError("votos", fmt.Sprintf("El frente %d aparece más de una vez para el cargo %s", v.FrontID, v.Office))
		}
		seen[k] = true
		frontIDs[v.FrontID] = true
	}
	if len(frontIDs) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(frontIDs))
	for id := range frontIDs {
		ids = append(ids, id)
	}
	var found int64
	if err := tx.Model(&models.Front{}).Where("id_frente IN ?", ids).Count(&found).Error; err != nil {
		return fmt.Errorf("failed to check fronts: %w", err)
	}
	if found != int64(len(ids)) {
		return NewValidationError("votos", "Uno o más frentes no existen")
	}
	return nil
}

func (r *GormActaRepository) GetByID(ctx context.Context, id uint) (*models.Acta, error) {
	var acta models.Acta
	err := r.db.WithContext(ctx).Preload("Votes", func(db *gorm.DB) *gorm.DB {
		return db.Order("tipo_cargo ASC, id_frente ASC")
	}).First(&acta, id).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get acta %d", id)
	}
	return &acta, nil
}

func (r *GormActaRepository) List(ctx context.Context, tableID *uint) ([]models.Acta, error) {
	q := r.db.WithContext(ctx).Model(&models.Acta{})
	if tableID != nil {
		q = q.Where("id_mesa = ?", *tableID)
	}
	var actas []models.Acta
	if err := q.Order("id_acta DESC").Find(&actas).Error; err != nil {
		return nil, fmt.Errorf("failed to list actas: %w", err)
	}
	return actas, nil
}
