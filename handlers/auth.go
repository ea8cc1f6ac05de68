package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/permissions"
	"github.com/camden-git/electoralbackend/repository"
)

const msgBadCredentials = "Credenciales inválidas"

type AuthHandler struct {
	UserRepo repository.UserRepository
	Tokens   *TokenManager
	Logger   *zap.Logger
}

func NewAuthHandler(userRepo repository.UserRepository, tokens *TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo, Tokens: tokens, Logger: logger}
}

type LoginPayload struct {
	Username string `json:"nombre_usuario" validate:"notblank"`
	Password string `json:"contrasena" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expira_en"`
	User      userResponse `json:"usuario"`
}

var loginMessages = validationMessages{
	"nombre_usuario": "Faltan campos requeridos (nombre_usuario, contrasena)",
	"contrasena":     "Faltan campos requeridos (nombre_usuario, contrasena)",
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := validatePayload(payload, loginMessages); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al iniciar sesión")
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), payload.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.Logger.Error("failed to load user for login", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error al iniciar sesión", nil)
			return
		}
		writeError(w, http.StatusUnauthorized, msgBadCredentials, nil)
		return
	}

	if !user.CheckPassword(payload.Password) || !user.IsActive(time.Now()) {
		writeError(w, http.StatusUnauthorized, msgBadCredentials, nil)
		return
	}

	token, expiresAt, err := h.Tokens.Issue(user)
	if err != nil {
		h.Logger.Error("failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al iniciar sesión", nil)
		return
	}

	h.Logger.Info("user logged in", zap.String("username", user.Username))
	writeSuccess(w, http.StatusOK, "Sesión iniciada", LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user, time.Now()),
	})
}

// Me returns the authenticated account. Requires AuthMiddleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUserNotInCtxt, nil)
		return
	}
	keys := rolePermissions(user.Role)
	details := make([]permissions.PermissionDefinition, 0, len(keys))
	for _, key := range keys {
		if def, ok := permissions.GetPermissionDefinition(key); ok {
			details = append(details, def)
		}
	}
	writeSuccess(w, http.StatusOK, "", meResponse{
		userResponse:      toUserResponse(user, time.Now()),
		Permissions:       keys,
		PermissionDetails: details,
	})
}

type meResponse struct {
	userResponse
	Permissions       []string                           `json:"permisos"`
	PermissionDetails []permissions.PermissionDefinition `json:"permisos_detalle"`
}

func rolePermissions(role *models.Role) []string {
	if role == nil || role.Permissions == nil {
		return []string{}
	}
	return role.Permissions
}
