package models

// PollingPlace (recinto) is a physical voting location inside a geographic entity.
type PollingPlace struct {
	ID           uint    `json:"id_recinto" gorm:"column:id_recinto;primaryKey"`
	Name         string  `json:"nombre" gorm:"column:nombre;not null"`
	Address      *string `json:"direccion" gorm:"column:direccion"`
	GeographicID uint    `json:"id_geografico" gorm:"column:id_geografico;not null;index"`

	GeographicName *string `json:"nombre_geografico,omitempty" gorm:"column:nombre_geografico;->;-:migration"`
	TableCount     int64   `json:"total_mesas" gorm:"column:total_mesas;->;-:migration"`
}

func (PollingPlace) TableName() string {
	return "recinto"
}

// PollingTable (mesa) is the smallest tabulation unit. GeographicID mirrors the
// polling place's entity and is rewritten on every save.
type PollingTable struct {
	ID             uint    `json:"id_mesa" gorm:"column:id_mesa;primaryKey"`
	Code           string  `json:"codigo" gorm:"column:codigo;not null"`
	Description    *string `json:"descripcion" gorm:"column:descripcion"`
	Number         int     `json:"numero_mesa" gorm:"column:numero_mesa;not null"`
	PollingPlaceID uint    `json:"id_recinto" gorm:"column:id_recinto;not null;index"`
	GeographicID   uint    `json:"id_geografico" gorm:"column:id_geografico;index"`

	PollingPlaceName *string `json:"nombre_recinto,omitempty" gorm:"column:nombre_recinto;->;-:migration"`
	ActaCount        int64   `json:"actas_registradas" gorm:"column:actas_registradas;->;-:migration"`
}

func (PollingTable) TableName() string {
	return "mesa"
}
