package models

import "time"

// DefaultFrontColor is used when a front is saved without a colour.
const DefaultFrontColor = "#6B7280"

// Front (frente) is a political grouping contesting one or more offices.
type Front struct {
	ID      uint   `json:"id_frente" gorm:"column:id_frente;primaryKey"`
	Name    string `json:"nombre" gorm:"column:nombre;not null"`
	Acronym string `json:"siglas" gorm:"column:siglas;not null"`
	Color   string `json:"color" gorm:"column:color;not null"`
}

func (Front) TableName() string {
	return "frente"
}

// ElectionType lists the offices (cargos) an acta of that election records.
type ElectionType struct {
	ID      uint     `json:"id_tipo_eleccion" gorm:"column:id_tipo_eleccion;primaryKey"`
	Name    string   `json:"nombre" gorm:"column:nombre;uniqueIndex;not null"`
	Offices []string `json:"cargos" gorm:"column:cargos;serializer:json"`
}

func (ElectionType) TableName() string {
	return "tipo_eleccion"
}

func (e *ElectionType) HasOffice(office string) bool {
	for _, o := range e.Offices {
		if o == office {
			return true
		}
	}
	return false
}

// Acta is one transcribed tally sheet. Only non-zero vote rows are stored.
type Acta struct {
	ID              uint       `json:"id_acta" gorm:"column:id_acta;primaryKey"`
	TableID         uint       `json:"id_mesa" gorm:"column:id_mesa;not null;index"`
	ElectionTypeID  uint       `json:"id_tipo_eleccion" gorm:"column:id_tipo_eleccion;not null;index"`
	ValidVotes      int        `json:"votos_validos" gorm:"column:votos_validos;not null"`
	NullVotes       int        `json:"votos_nulos" gorm:"column:votos_nulos;not null"`
	BlankVotes      int        `json:"votos_blancos" gorm:"column:votos_blancos;not null"`
	TotalVotes      int        `json:"votos_totales" gorm:"column:votos_totales;not null"`
	Remarks         *string    `json:"observaciones" gorm:"column:observaciones"`
	EvidencePath    *string    `json:"imagen_url" gorm:"column:imagen_url"`
	ThumbnailPath   *string    `json:"thumbnail_url" gorm:"column:thumbnail_url"`
	EvidenceTakenAt *time.Time `json:"evidencia_tomada_en" gorm:"column:evidencia_tomada_en"`
	Validated       bool       `json:"validada" gorm:"column:validada;not null;default:false"`
	RegisteredBy    *uint      `json:"id_usuario" gorm:"column:id_usuario"`
	CreatedAt       time.Time  `json:"fecha_registro" gorm:"column:fecha_registro"`

	Votes []Vote `json:"votos,omitempty" gorm:"foreignKey:ActaID;references:ID"`
}

func (Acta) TableName() string {
	return "acta"
}

// Vote is the count obtained by one front for one office on one acta.
type Vote struct {
	ID      uint   `json:"id_voto" gorm:"column:id_voto;primaryKey"`
	ActaID  uint   `json:"id_acta" gorm:"column:id_acta;not null;index"`
	FrontID uint   `json:"id_frente" gorm:"column:id_frente;not null;index"`
	Office  string `json:"tipo_cargo" gorm:"column:tipo_cargo;not null"`
	Count   int    `json:"cantidad" gorm:"column:cantidad;not null"`
}

func (Vote) TableName() string {
	return "voto"
}

// FrontResult is the aggregated total of one front in the live results.
type FrontResult struct {
	FrontID    uint   `json:"id_frente"`
	Name       string `json:"nombre"`
	Acronym    string `json:"siglas"`
	Color      string `json:"color"`
	TotalVotes int64  `json:"total_votos"`
}

// ResultsSummary aggregates every registered acta.
type ResultsSummary struct {
	TotalActas     int64 `json:"totalActas"`
	TotalVotes     int64 `json:"totalVotos"`
	ValidatedActas int64 `json:"actasValidadas"`
	NullVotes      int64 `json:"votosNulos"`
	BlankVotes     int64 `json:"votosBlancos"`
}

type LiveResults struct {
	Results []FrontResult  `json:"resultados"`
	Summary ResultsSummary `json:"resumen"`
}
