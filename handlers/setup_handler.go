package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/repository"
)

var errSetupCompleted = errors.New("setup already completed")

type SetupHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewSetupHandler(db *gorm.DB, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{DB: db, Logger: logger}
}

type FirstAdminPayload struct {
	Username string `json:"nombre_usuario" validate:"notblank"`
	Password string `json:"contrasena" validate:"notblank"`
}

// createFirstAdmin inserts an Administrador account, but only while the
// usuario table is empty. The count and the insert share one transaction.
func createFirstAdmin(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	admin := &models.User{Username: username}
	if err := admin.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := repository.NewGormUserRepository(tx).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return errSetupCompleted
		}

		role, err := repository.NewGormRoleRepository(tx).GetByName(ctx, models.AdminRoleName)
		if err != nil {
			return fmt.Errorf("could not find the '%s' role, which should have been seeded: %w", models.AdminRoleName, err)
		}

		admin.RoleID = role.ID
		if err := tx.Omit("Role").Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		admin.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// BootstrapAdmin creates the configured administrator when no account
// exists yet. It is a no-op when username or password is empty or when
// users already exist.
func BootstrapAdmin(ctx context.Context, db *gorm.DB, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		return nil
	}
	admin, err := createFirstAdmin(ctx, db, username, password)
	if errors.Is(err, errSetupCompleted) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("created bootstrap administrator", zap.String("username", admin.Username))
	return nil
}

// CreateFirstAdmin handles the creation of the initial administrator user
// This endpoint is only usable while no other users exist in the system
func (h *SetupHandler) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	var payload FirstAdminPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if err := validatePayload(payload, userCreateMessages); err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al crear el administrador")
		return
	}

	admin, err := createFirstAdmin(r.Context(), h.DB, payload.Username, payload.Password)
	if errors.Is(err, errSetupCompleted) {
		writeError(w, http.StatusForbidden, "La configuración inicial ya fue completada", nil)
		return
	}
	if err != nil {
		h.Logger.Error("failed to create first admin", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al crear el administrador", nil)
		return
	}

	h.Logger.Info("created initial administrator", zap.String("username", admin.Username))
	writeSuccess(w, http.StatusCreated, "Administrador creado. Inicia sesión para continuar.", toUserResponse(admin, admin.CreatedAt))
}
