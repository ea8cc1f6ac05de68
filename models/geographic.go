package models

import "time"

// GeographicEntity is a node of the administrative geography tree
// (country, department, province, municipality, district...). The parent
// reference is a plain id; the tree is never loaded as owned pointers.
type GeographicEntity struct {
	ID       uint    `json:"id_geografico" gorm:"column:id_geografico;primaryKey"`
	Name     string  `json:"nombre" gorm:"column:nombre;not null"`
	Code     *string `json:"codigo" gorm:"column:codigo"`
	Location *string `json:"ubicacion" gorm:"column:ubicacion"`
	Type     string  `json:"tipo" gorm:"column:tipo;not null;index"`
	ParentID *uint   `json:"fk_id_geografico" gorm:"column:fk_id_geografico;index"`

	// filled by queries that join the parent row
	ParentName *string `json:"nombre_padre" gorm:"column:nombre_padre;->;-:migration"`
}

func (GeographicEntity) TableName() string {
	return "geografico"
}

// ParentCandidate is the slim projection used by parent pickers.
type ParentCandidate struct {
	ID   uint   `json:"id_geografico" gorm:"column:id_geografico"`
	Name string `json:"nombre" gorm:"column:nombre"`
	Type string `json:"tipo" gorm:"column:tipo"`
}

// PendingType is a type label registered ahead of any entity using it.
type PendingType struct {
	Type      string    `json:"tipo" gorm:"column:tipo;primaryKey"`
	CreatedAt time.Time `json:"creado_en" gorm:"column:creado_en"`
}

func (PendingType) TableName() string {
	return "tipo_pendiente"
}

// TypeUsage is one entry of the type catalogue.
type TypeUsage struct {
	Type    string `json:"tipo" gorm:"column:tipo"`
	Total   int64  `json:"total" gorm:"column:total"`
	Pending bool   `json:"pendiente" gorm:"-"`
}
