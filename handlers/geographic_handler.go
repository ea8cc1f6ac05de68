package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/repository"
)

const msgGeoNotFound = "Registro no encontrado"

type GeographicHandler struct {
	Repo   repository.GeographicRepository
	Logger *zap.Logger
}

func NewGeographicHandler(repo repository.GeographicRepository, logger *zap.Logger) *GeographicHandler {
	return &GeographicHandler{Repo: repo, Logger: logger}
}

// GeographicPayload is the body of create and update. Update replaces every
// field, so omitted optional values are cleared.
type GeographicPayload struct {
	Name     string     `json:"nombre" validate:"notblank"`
	Code     *string    `json:"codigo"`
	Location *string    `json:"ubicacion"`
	Type     string     `json:"tipo" validate:"notblank"`
	ParentID optionalID `json:"fk_id_geografico"`
}

var geographicMessages = validationMessages{
	"nombre": "El nombre es obligatorio",
	"tipo":   "El tipo es obligatorio",
}

func (p *GeographicPayload) toEntity() (*models.GeographicEntity, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.TrimSpace(p.Type)
	if err := validatePayload(p, geographicMessages); err != nil {
		return nil, err
	}
	if p.ParentID.Invalid {
		return nil, repository.NewValidationError("fk_id_geografico", "El registro padre no es válido")
	}
	return &models.GeographicEntity{
		Name:     p.Name,
		Code:     trimmedOrNil(p.Code),
		Location: trimmedOrNil(p.Location),
		Type:     p.Type,
		ParentID: p.ParentID.Ptr(),
	}, nil
}

func (h *GeographicHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.Repo.List(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener registros geográficos")
		return
	}
	if entities == nil {
		entities = []models.GeographicEntity{}
	}
	writeSuccess(w, http.StatusOK, "", entities)
}

func (h *GeographicHandler) ListParents(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Repo.ListParentCandidates(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener padres")
		return
	}
	if candidates == nil {
		candidates = []models.ParentCandidate{}
	}
	writeSuccess(w, http.StatusOK, "", candidates)
}

func (h *GeographicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	entity, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgGeoNotFound, "Error al obtener el registro")
		return
	}
	writeSuccess(w, http.StatusOK, "", entity)
}

func (h *GeographicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload GeographicPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	entity, err := payload.toEntity()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el registro")
		return
	}

	if err := h.Repo.Create(r.Context(), entity); err != nil {
		handleRepoError(w, h.Logger, err, msgGeoNotFound, "Error al crear el registro")
		return
	}
	writeSuccess(w, http.StatusCreated, "Registro creado", entity)
}

func (h *GeographicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var payload GeographicPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	entity, err := payload.toEntity()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al actualizar el registro")
		return
	}
	entity.ID = id

	if err := h.Repo.Update(r.Context(), entity); err != nil {
		handleRepoError(w, h.Logger, err, msgGeoNotFound, "Error al actualizar el registro")
		return
	}
	writeSuccess(w, http.StatusOK, "Registro actualizado", entity)
}

func (h *GeographicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgGeoNotFound, "Error al eliminar el registro")
		return
	}
	h.Logger.Info("geographic entity deleted", zap.Uint("id_geografico", deleted.ID), zap.String("nombre", deleted.Name))
	writeSuccess(w, http.StatusOK, "Registro eliminado", deleted)
}
