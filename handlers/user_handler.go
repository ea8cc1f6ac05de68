package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/repository"
)

const (
	msgUserNotFound   = "Usuario no encontrado"
	msgInvalidRoleID  = "El ID del rol no es válido"
	msgInvalidExpiry  = "fecha_fin debe ser una fecha RFC 3339 o null"
	msgCannotSelfDrop = "No puedes eliminar tu propia cuenta"
)

type UserHandler struct {
	UserRepo repository.UserRepository
	RoleRepo repository.RoleRepository
	Logger   *zap.Logger
}

func NewUserHandler(userRepo repository.UserRepository, roleRepo repository.RoleRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{UserRepo: userRepo, RoleRepo: roleRepo, Logger: logger}
}

type roleSummary struct {
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
}

// userResponse is the public shape of an account. Active is computed at the
// moment of the read.
type userResponse struct {
	ID        uint         `json:"id_usuario"`
	Username  string       `json:"nombre_usuario"`
	RoleID    uint         `json:"id_rol"`
	ExpiresAt *time.Time   `json:"fecha_fin"`
	Active    bool         `json:"activo"`
	Role      *roleSummary `json:"rol"`
}

func toUserResponse(user *models.User, now time.Time) userResponse {
	resp := userResponse{
		ID:        user.ID,
		Username:  user.Username,
		RoleID:    user.RoleID,
		ExpiresAt: user.ExpiresAt,
		Active:    user.IsActive(now),
	}
	if user.Role != nil {
		resp.Role = &roleSummary{Name: user.Role.Name, Description: user.Role.Description}
	}
	return resp
}

type UserCreatePayload struct {
	Username  string       `json:"nombre_usuario" validate:"notblank"`
	Password  string       `json:"contrasena" validate:"notblank"`
	RoleID    optionalID   `json:"id_rol"`
	ExpiresAt optionalTime `json:"fecha_fin"`
}

type UserUpdatePayload struct {
	Username  string       `json:"nombre_usuario" validate:"notblank"`
	Password  string       `json:"contrasena"`
	RoleID    optionalID   `json:"id_rol"`
	ExpiresAt optionalTime `json:"fecha_fin"`
}

var (
	userCreateMessages = validationMessages{
		"nombre_usuario": "Faltan campos requeridos (nombre_usuario, contrasena)",
		"contrasena":     "Faltan campos requeridos (nombre_usuario, contrasena)",
	}
	userUpdateMessages = validationMessages{
		"nombre_usuario": "Falta nombre_usuario",
	}
)

func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleRepo.ListAll(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener roles")
		return
	}
	writeSuccess(w, http.StatusOK, "", roles)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.ListAll(r.Context())
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener usuarios")
		return
	}
	now := time.Now()
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i], now)
	}
	writeSuccess(w, http.StatusOK, "", out)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	user, err := h.UserRepo.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgUserNotFound, "Error al obtener usuario")
		return
	}
	writeSuccess(w, http.StatusOK, "", toUserResponse(user, time.Now()))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload UserCreatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := validatePayload(payload, userCreateMessages); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear usuario")
		return
	}
	if !payload.RoleID.Set || payload.RoleID.Invalid {
		writeError(w, http.StatusBadRequest, msgInvalidRoleID, nil)
		return
	}
	if payload.ExpiresAt.Invalid {
		writeError(w, http.StatusBadRequest, msgInvalidExpiry, nil)
		return
	}

	user := &models.User{
		Username:  payload.Username,
		RoleID:    payload.RoleID.Value,
		ExpiresAt: payload.ExpiresAt.Value,
	}
	if err := user.SetPassword(payload.Password); err != nil {
		h.Logger.Error("failed to hash password", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al crear usuario", nil)
		return
	}

	if err := h.UserRepo.Create(r.Context(), user); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear usuario")
		return
	}

	h.Logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	writeSuccess(w, http.StatusCreated, "Usuario creado exitosamente", toUserResponse(user, time.Now()))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var payload UserUpdatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := validatePayload(payload, userUpdateMessages); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al actualizar usuario")
		return
	}
	if !payload.RoleID.Set || payload.RoleID.Invalid {
		writeError(w, http.StatusBadRequest, msgInvalidRoleID, nil)
		return
	}
	if payload.ExpiresAt.Invalid {
		writeError(w, http.StatusBadRequest, msgInvalidExpiry, nil)
		return
	}

	changes := repository.UserChanges{
		Username:  payload.Username,
		RoleID:    payload.RoleID.Value,
		ExpiresAt: payload.ExpiresAt.Value,
		SetExpiry: payload.ExpiresAt.Present,
	}
	if strings.TrimSpace(payload.Password) != "" {
		changes.Password = payload.Password
	}

	user, err := h.UserRepo.Update(r.Context(), id, changes)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgUserNotFound, "Error al actualizar usuario")
		return
	}
	writeSuccess(w, http.StatusOK, "Usuario actualizado exitosamente", toUserResponse(user, time.Now()))
}

// Delete removes the account permanently. Deactivation is done by setting
// fecha_fin through Update.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if current, ok := CurrentUser(r); ok && current.ID == id {
		writeError(w, http.StatusBadRequest, msgCannotSelfDrop, nil)
		return
	}

	user, err := h.UserRepo.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgUserNotFound, "Error al eliminar usuario")
		return
	}

	h.Logger.Info("user deleted", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Usuario %q eliminado definitivamente", user.Username), nil)
}
