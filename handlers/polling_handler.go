package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/repository"
)

const (
	msgPlaceNotFound = "Recinto no encontrado"
	msgTableNotFound = "Mesa no encontrada"
)

// PollingHandler serves recintos and mesas, the two levels below the
// geographic tree that the tally wizard walks through.
type PollingHandler struct {
	Places repository.PollingPlaceRepository
	Tables repository.PollingTableRepository
	Logger *zap.Logger
}

func NewPollingHandler(places repository.PollingPlaceRepository, tables repository.PollingTableRepository, logger *zap.Logger) *PollingHandler {
	return &PollingHandler{Places: places, Tables: tables, Logger: logger}
}

type PollingPlacePayload struct {
	Name         string     `json:"nombre" validate:"notblank"`
	Address      *string    `json:"direccion"`
	GeographicID optionalID `json:"id_geografico"`
}

type PollingTablePayload struct {
	Code           string     `json:"codigo" validate:"notblank"`
	Description    *string    `json:"descripcion"`
	Number         int        `json:"numero_mesa" validate:"gt=0"`
	PollingPlaceID optionalID `json:"id_recinto"`
}

var (
	placeMessages = validationMessages{
		"nombre": "El nombre es obligatorio",
	}
	tableMessages = validationMessages{
		"codigo":      "El código de mesa es obligatorio",
		"numero_mesa": "El número de mesa debe ser mayor a cero",
	}
)

func (p *PollingPlacePayload) toModel() (*models.PollingPlace, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validatePayload(p, placeMessages); err != nil {
		return nil, err
	}
	if !p.GeographicID.Set || p.GeographicID.Invalid {
		return nil, repository.NewValidationError("id_geografico", "El registro geográfico es obligatorio")
	}
	return &models.PollingPlace{
		Name:         p.Name,
		Address:      trimmedOrNil(p.Address),
		GeographicID: p.GeographicID.Value,
	}, nil
}

func (p *PollingTablePayload) toModel() (*models.PollingTable, error) {
	p.Code = strings.TrimSpace(p.Code)
	if err := validatePayload(p, tableMessages); err != nil {
		return nil, err
	}
	if !p.PollingPlaceID.Set || p.PollingPlaceID.Invalid {
		return nil, repository.NewValidationError("id_recinto", "El recinto es obligatorio")
	}
	return &models.PollingTable{
		Code:           p.Code,
		Description:    trimmedOrNil(p.Description),
		Number:         p.Number,
		PollingPlaceID: p.PollingPlaceID.Value,
	}, nil
}

func (h *PollingHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	geographicID, ok := parseOptionalQueryID(r, "id_geografico")
	if !ok {
		writeError(w, http.StatusBadRequest, "id_geografico inválido", nil)
		return
	}
	places, err := h.Places.List(r.Context(), geographicID)
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener recintos")
		return
	}
	if places == nil {
		places = []models.PollingPlace{}
	}
	writeSuccess(w, http.StatusOK, "", places)
}

func (h *PollingHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	place, err := h.Places.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgPlaceNotFound, "Error al obtener el recinto")
		return
	}
	writeSuccess(w, http.StatusOK, "", place)
}

func (h *PollingHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var payload PollingPlacePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	place, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el recinto")
		return
	}
	if err := h.Places.Create(r.Context(), place); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el recinto")
		return
	}
	h.respondPlace(w, r, http.StatusCreated, "Recinto creado", place.ID)
}

func (h *PollingHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var payload PollingPlacePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	place, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al actualizar el recinto")
		return
	}
	place.ID = id
	if err := h.Places.Update(r.Context(), place); err != nil {
		handleRepoError(w, h.Logger, err, msgPlaceNotFound, "Error al actualizar el recinto")
		return
	}
	h.respondPlace(w, r, http.StatusOK, "Recinto actualizado", id)
}

// respondPlace reloads the row so the answer carries the joined columns.
func (h *PollingHandler) respondPlace(w http.ResponseWriter, r *http.Request, status int, message string, id uint) {
	place, err := h.Places.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgPlaceNotFound, "Error al obtener el recinto")
		return
	}
	writeSuccess(w, status, message, place)
}

func (h *PollingHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	place, err := h.Places.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgPlaceNotFound, "Error al eliminar el recinto")
		return
	}
	writeSuccess(w, http.StatusOK, "Recinto eliminado", place)
}

func (h *PollingHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	placeID, ok := parseOptionalQueryID(r, "id_recinto")
	if !ok {
		writeError(w, http.StatusBadRequest, "id_recinto inválido", nil)
		return
	}
	tables, err := h.Tables.List(r.Context(), placeID)
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener mesas")
		return
	}
	if tables == nil {
		tables = []models.PollingTable{}
	}
	writeSuccess(w, http.StatusOK, "", tables)
}

func (h *PollingHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	table, err := h.Tables.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgTableNotFound, "Error al obtener la mesa")
		return
	}
	writeSuccess(w, http.StatusOK, "", table)
}

func (h *PollingHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var payload PollingTablePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	table, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear la mesa")
		return
	}
	if err := h.Tables.Create(r.Context(), table); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear la mesa")
		return
	}
	writeSuccess(w, http.StatusCreated, "Mesa creada", table)
}

func (h *PollingHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var payload PollingTablePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	table, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al actualizar la mesa")
		return
	}
	table.ID = id
	if err := h.Tables.Update(r.Context(), table); err != nil {
		handleRepoError(w, h.Logger, err, msgTableNotFound, "Error al actualizar la mesa")
		return
	}
	writeSuccess(w, http.StatusOK, "Mesa actualizada", table)
}

func (h *PollingHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	table, err := h.Tables.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgTableNotFound, "Error al eliminar la mesa")
		return
	}
	writeSuccess(w, http.StatusOK, "Mesa eliminada", table)
}
