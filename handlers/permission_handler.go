package handlers

import (
	"net/http"

	"github.com/camden-git/electoralbackend/permissions"
)

type PermissionHandler struct{}

// ListPermissionDefinitions serves the statically defined permission groups.
func (h *PermissionHandler) ListPermissionDefinitions(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", permissions.DefinedPermissionGroups)
}
