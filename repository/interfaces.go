package repository

import (
	"context"
	"time"

	"github.com/camden-git/electoralbackend/models"
)

// GeographicRepository manages the geographic tree. Every write that depends
// on a prior read (parent checks, child counts) runs in one transaction.
type GeographicRepository interface {
	List(ctx context.Context) ([]models.GeographicEntity, error)
	ListParentCandidates(ctx context.Context) ([]models.ParentCandidate, error)
	GetByID(ctx context.Context, id uint) (*models.GeographicEntity, error)
	Create(ctx context.Context, entity *models.GeographicEntity) error
	Update(ctx context.Context, entity *models.GeographicEntity) error
	Delete(ctx context.Context, id uint) (*models.GeographicEntity, error)
}

// TypeRepository manages the type vocabulary derived from geographic rows
// plus the pending types registered ahead of use.
type TypeRepository interface {
	ListInUse(ctx context.Context) ([]string, error)
	Catalog(ctx context.Context) ([]models.TypeUsage, error)
	AddPending(ctx context.Context, typeLabel string) error
	Reassign(ctx context.Context, fromType, toType string) (int64, error)
	Delete(ctx context.Context, typeLabel string) error
}

// UserChanges is a full update of an account. A blank Password keeps the
// stored hash. ExpiresAt is only applied when SetExpiry is true.
type UserChanges struct {
	Username  string
	RoleID    uint
	Password  string
	ExpiresAt *time.Time
	SetExpiry bool
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uint, changes UserChanges) (*models.User, error)
	Delete(ctx context.Context, id uint) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ListAll(ctx context.Context) ([]models.Role, error)
}

type PollingPlaceRepository interface {
	List(ctx context.Context, geographicID *uint) ([]models.PollingPlace, error)
	GetByID(ctx context.Context, id uint) (*models.PollingPlace, error)
	Create(ctx context.Context, place *models.PollingPlace) error
	Update(ctx context.Context, place *models.PollingPlace) error
	Delete(ctx context.Context, id uint) (*models.PollingPlace, error)
}

type PollingTableRepository interface {
	List(ctx context.Context, pollingPlaceID *uint) ([]models.PollingTable, error)
	GetByID(ctx context.Context, id uint) (*models.PollingTable, error)
	Create(ctx context.Context, table *models.PollingTable) error
	Update(ctx context.Context, table *models.PollingTable) error
	Delete(ctx context.Context, id uint) (*models.PollingTable, error)
}

type FrontRepository interface {
	ListAll(ctx context.Context) ([]models.Front, error)
	GetByID(ctx context.Context, id uint) (*models.Front, error)
	Create(ctx context.Context, front *models.Front) error
	Update(ctx context.Context, front *models.Front) error
	Delete(ctx context.Context, id uint) (*models.Front, error)
}

type ElectionTypeRepository interface {
	ListAll(ctx context.Context) ([]models.ElectionType, error)
	GetByID(ctx context.Context, id uint) (*models.ElectionType, error)
}

// ActaRepository records tally sheets. Create returns how many actas already
// existed for the same table and election type.
type ActaRepository interface {
	Create(ctx context.Context, acta *models.Acta) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Acta, error)
	List(ctx context.Context, tableID *uint) ([]models.Acta, error)
}
