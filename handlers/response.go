package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/repository"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, APIResponse{Success: false, Message: message, Data: data})
}

// handleRepoError maps repository errors onto the HTTP taxonomy. Anything
// unclassified is logged and answered with genericMsg.
func handleRepoError(w http.ResponseWriter, logger *zap.Logger, err error, notFoundMsg, genericMsg string) {
	var validationErr *repository.ValidationError
	var conflictErr *repository.ConflictError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &conflictErr):
		var data interface{}
		if conflictErr.Data != nil {
			data = conflictErr.Data
		}
		writeError(w, http.StatusConflict, conflictErr.Message, data)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg, nil)
	default:
		logger.Error(genericMsg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, genericMsg, nil)
	}
}
