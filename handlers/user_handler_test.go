package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/testutil"
)

func TestUserCreate(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()
	operator := testutil.RoleByName(t, env.db, models.OperatorRoleName)

	rr, body := env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
		"nombre_usuario": "transcriptor",
		"contrasena":     "clave123",
		"id_rol":         operator.ID,
		"fecha_fin":      "2099-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Usuario creado exitosamente", body.Message)
	var created userResponse
	decodeData(t, body, &created)
	assert.Equal(t, "transcriptor", created.Username)
	assert.True(t, created.Active)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, 2099, created.ExpiresAt.Year())
	assert.NotContains(t, string(body.Data), "contrasena")

	t.Run("duplicate username", func(t *testing.T) {
		rr, body := env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
			"nombre_usuario": "transcriptor",
			"contrasena":     "otra",
			"id_rol":         fmt.Sprint(operator.ID),
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "El nombre de usuario ya existe", body.Message)
	})

	t.Run("missing password", func(t *testing.T) {
		rr, body := env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
			"nombre_usuario": "nuevo",
			"id_rol":         operator.ID,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Faltan campos requeridos (nombre_usuario, contrasena)", body.Message)
	})

	t.Run("invalid role", func(t *testing.T) {
		rr, body := env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
			"nombre_usuario": "nuevo",
			"contrasena":     "clave",
			"id_rol":         "abc",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, msgInvalidRoleID, body.Message)

		rr, body = env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
			"nombre_usuario": "nuevo",
			"contrasena":     "clave",
			"id_rol":         9999,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "El rol seleccionado no existe", body.Message)
	})

	t.Run("invalid expiry", func(t *testing.T) {
		rr, body := env.do(http.MethodPost, "/api/usuarios", token, map[string]interface{}{
			"nombre_usuario": "nuevo",
			"contrasena":     "clave",
			"id_rol":         operator.ID,
			"fecha_fin":      "mañana",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, msgInvalidExpiry, body.Message)
	})
}

func TestUserUpdateKeepsPasswordWhenBlank(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()
	target := testutil.CreateUser(t, env.db, "supervisor1", "original", models.SupervisorRoleName)
	operator := testutil.RoleByName(t, env.db, models.OperatorRoleName)

	rr, body := env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", target.ID), token, map[string]interface{}{
		"nombre_usuario": "supervisor1",
		"contrasena":     "   ",
		"id_rol":         operator.ID,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated userResponse
	decodeData(t, body, &updated)
	assert.Equal(t, operator.ID, updated.RoleID)

	rr, _ = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"nombre_usuario": "supervisor1",
		"contrasena":     "original",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", target.ID), token, map[string]interface{}{
		"nombre_usuario": "supervisor1",
		"contrasena":     "nueva",
		"id_rol":         operator.ID,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"nombre_usuario": "supervisor1",
		"contrasena":     "original",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserUpdateExpiry(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()
	target := testutil.CreateUser(t, env.db, "temporal", "clave", models.OperatorRoleName)

	past := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	rr, body := env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", target.ID), token, map[string]interface{}{
		"nombre_usuario": "temporal",
		"id_rol":         target.RoleID,
		"fecha_fin":      past,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated userResponse
	decodeData(t, body, &updated)
	assert.False(t, updated.Active)

	// omitting fecha_fin leaves it untouched
	rr, body = env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", target.ID), token, map[string]interface{}{
		"nombre_usuario": "temporal",
		"id_rol":         target.RoleID,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, body, &updated)
	assert.NotNil(t, updated.ExpiresAt)

	// an explicit null reactivates the account
	rr, body = env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", target.ID), token, map[string]interface{}{
		"nombre_usuario": "temporal",
		"id_rol":         target.RoleID,
		"fecha_fin":      nil,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, body, &updated)
	assert.Nil(t, updated.ExpiresAt)
	assert.True(t, updated.Active)
}

func TestUserUpdateConflicts(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()
	first := testutil.CreateUser(t, env.db, "uno", "clave", models.OperatorRoleName)
	testutil.CreateUser(t, env.db, "dos", "clave", models.OperatorRoleName)

	rr, body := env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", first.ID), token, map[string]interface{}{
		"nombre_usuario": "dos",
		"id_rol":         first.RoleID,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "El nombre de usuario ya existe", body.Message)

	rr, body = env.do(http.MethodPut, fmt.Sprintf("/api/usuarios/%d", first.ID), token, map[string]interface{}{
		"id_rol": first.RoleID,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Falta nombre_usuario", body.Message)

	rr, body = env.do(http.MethodPut, "/api/usuarios/9999", token, map[string]interface{}{
		"nombre_usuario": "fantasma",
		"id_rol":         first.RoleID,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, msgUserNotFound, body.Message)
}

func TestUserDelete(t *testing.T) {
	env := newTestEnv(t)
	admin, token := env.tokenFor("jefe", models.AdminRoleName)
	target := testutil.CreateUser(t, env.db, "saliente", "clave", models.OperatorRoleName)

	rr, body := env.do(http.MethodDelete, fmt.Sprintf("/api/usuarios/%d", admin.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgCannotSelfDrop, body.Message)

	rr, body = env.do(http.MethodDelete, fmt.Sprintf("/api/usuarios/%d", target.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `Usuario "saliente" eliminado definitivamente`, body.Message)

	rr, _ = env.do(http.MethodGet, fmt.Sprintf("/api/usuarios/%d", target.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, body = env.do(http.MethodGet, "/api/usuarios", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []userResponse
	decodeData(t, body, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "jefe", users[0].Username)
}

func TestRolesAndPermissionCatalog(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	rr, body := env.do(http.MethodGet, "/api/usuarios/roles", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var roles []models.Role
	decodeData(t, body, &roles)
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{models.AdminRoleName, models.SupervisorRoleName, models.OperatorRoleName}, names)

	rr, body = env.do(http.MethodGet, "/api/usuarios/permisos", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(body.Data), `"acta.create"`)
}
