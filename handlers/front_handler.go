package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/repository"
)

const msgFrontNotFound = "Frente no encontrado"

// FrontHandler serves political fronts and the election types they compete in.
type FrontHandler struct {
	Fronts        repository.FrontRepository
	ElectionTypes repository.ElectionTypeRepository
	Logger        *zap.Logger
}

func NewFrontHandler(fronts repository.FrontRepository, electionTypes repository.ElectionTypeRepository, logger *zap.Logger) *FrontHandler {
	return &FrontHandler{Fronts: fronts, ElectionTypes: electionTypes, Logger: logger}
}

type FrontPayload struct {
	Name    string `json:"nombre" validate:"notblank"`
	Acronym string `json:"siglas" validate:"notblank"`
	Color   string `json:"color" validate:"omitempty,len=7,hexcolor"`
}

var frontMessages = validationMessages{
	"nombre": "El nombre es obligatorio",
	"siglas": "Las siglas son obligatorias",
	"color":  "El color debe tener el formato #RRGGBB",
}

func (p *FrontPayload) toModel() (*models.Front, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Acronym = strings.TrimSpace(p.Acronym)
	p.Color = strings.TrimSpace(p.Color)
	if err := validatePayload(p, frontMessages); err != nil {
		return nil, err
	}
	color := strings.ToUpper(p.Color)
	if color == "" {
		color = models.DefaultFrontColor
	}
	return &models.Front{Name: p.Name, Acronym: p.Acronym, Color: color}, nil
}

func (h *FrontHandler) List(w http.ResponseWriter, r *http.Request) {
	fronts, err := h.Fronts.ListAll(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener frentes")
		return
	}
	if fronts == nil {
		fronts = []models.Front{}
	}
	writeSuccess(w, http.StatusOK, "", fronts)
}

func (h *FrontHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	front, err := h.Fronts.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgFrontNotFound, "Error al obtener el frente")
		return
	}
	writeSuccess(w, http.StatusOK, "", front)
}

func (h *FrontHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload FrontPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	front, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el frente")
		return
	}
	if err := h.Fronts.Create(r.Context(), front); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el frente")
		return
	}
	writeSuccess(w, http.StatusCreated, "Frente creado", front)
}

func (h *FrontHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var payload FrontPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	front, err := payload.toModel()
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al actualizar el frente")
		return
	}
	front.ID = id
	if err := h.Fronts.Update(r.Context(), front); err != nil {
		handleRepoError(w, h.Logger, err, msgFrontNotFound, "Error al actualizar el frente")
		return
	}
	writeSuccess(w, http.StatusOK, "Frente actualizado", front)
}

func (h *FrontHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	front, err := h.Fronts.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgFrontNotFound, "Error al eliminar el frente")
		return
	}
	writeSuccess(w, http.StatusOK, "Frente eliminado", front)
}

func (h *FrontHandler) ListElectionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.ElectionTypes.ListAll(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener tipos de elección")
		return
	}
	if types == nil {
		types = []models.ElectionType{}
	}
	writeSuccess(w, http.StatusOK, "", types)
}
