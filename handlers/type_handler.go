package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/repository"
)

// TypeHandler serves the type vocabulary of geographic entities.
type TypeHandler struct {
	Repo   repository.TypeRepository
	Logger *zap.Logger
}

func NewTypeHandler(repo repository.TypeRepository, logger *zap.Logger) *TypeHandler {
	return &TypeHandler{Repo: repo, Logger: logger}
}

type addTypePayload struct {
	Type string `json:"tipo"`
}

type reassignTypePayload struct {
	From string `json:"tipo_origen"`
	To   string `json:"tipo_destino"`
}

// List returns the labels currently used by at least one entity.
func (h *TypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Repo.ListInUse(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener tipos")
		return
	}
	if types == nil {
		types = []string{}
	}
	writeSuccess(w, http.StatusOK, "", types)
}

// Catalog returns in-use and pending labels with their usage counts.
func (h *TypeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	usages, err := h.Repo.Catalog(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener tipos")
		return
	}
	writeSuccess(w, http.StatusOK, "", usages)
}

func (h *TypeHandler) Add(w http.ResponseWriter, r *http.Request) {
	var payload addTypePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.Repo.AddPending(r.Context(), payload.Type); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear tipo")
		return
	}
	writeSuccess(w, http.StatusCreated, "Tipo agregado", nil)
}

func (h *TypeHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var payload reassignTypePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	affected, err := h.Repo.Reassign(r.Context(), payload.From, payload.To)
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al reasignar tipo")
		return
	}

	h.Logger.Info("type reassigned",
		zap.String("from", payload.From),
		zap.String("to", payload.To),
		zap.Int64("rows", affected),
	)
	writeSuccess(w, http.StatusOK,
		fmt.Sprintf("Tipo reasignado correctamente (%d registros actualizados)", affected),
		map[string]int64{"actualizados": affected},
	)
}

func (h *TypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when one is set, leaving the param escaped
	typeLabel := chi.URLParam(r, "tipo")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(typeLabel)
		if err != nil {
			writeError(w, http.StatusBadRequest, "El tipo no es válido", nil)
			return
		}
		typeLabel = unescaped
	}

	if err := h.Repo.Delete(r.Context(), typeLabel); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al eliminar tipo")
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Tipo \"%s\" eliminado (no había registros asociados).", typeLabel), nil)
}
