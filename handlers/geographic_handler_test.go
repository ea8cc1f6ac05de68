package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/testutil"
)

func createGeographic(t *testing.T, env *testEnv, token string, payload map[string]interface{}) models.GeographicEntity {
	t.Helper()
	rr, body := env.do(http.MethodPost, "/api/geografico", token, payload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var entity models.GeographicEntity
	decodeData(t, body, &entity)
	return entity
}

func TestGeographicLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	root := createGeographic(t, env, token, map[string]interface{}{
		"nombre": " Bolivia ",
		"codigo": "BO",
		"tipo":   "País",
	})
	assert.Equal(t, "Bolivia", root.Name)
	assert.Nil(t, root.ParentID)

	// the parent id may arrive as a numeric string
	child := createGeographic(t, env, token, map[string]interface{}{
		"nombre":           "La Paz",
		"tipo":             "Departamento",
		"fk_id_geografico": fmt.Sprint(root.ID),
	})
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
	require.NotNil(t, child.ParentName)
	assert.Equal(t, "Bolivia", *child.ParentName)

	rr, body := env.do(http.MethodDelete, fmt.Sprintf("/api/geografico/%d", root.ID), token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.False(t, body.Success)
	var conflict map[string]int
	decodeData(t, body, &conflict)
	assert.Equal(t, 1, conflict["totalHijos"])

	rr, _ = env.do(http.MethodDelete, fmt.Sprintf("/api/geografico/%d", child.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, body = env.do(http.MethodDelete, fmt.Sprintf("/api/geografico/%d", root.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Registro eliminado", body.Message)
	var deleted models.GeographicEntity
	decodeData(t, body, &deleted)
	assert.Equal(t, "Bolivia", deleted.Name)

	rr, body = env.do(http.MethodGet, fmt.Sprintf("/api/geografico/%d", root.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, msgGeoNotFound, body.Message)
}

func TestGeographicDeleteBlockedByPollingPlace(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	entity := testutil.CreateGeographic(t, env.db, "Achocalla", "Municipio", nil)
	testutil.CreatePollingPlace(t, env.db, "Unidad Educativa", entity.ID)

	rr, body := env.do(http.MethodDelete, fmt.Sprintf("/api/geografico/%d", entity.ID), token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	var conflict map[string]int
	decodeData(t, body, &conflict)
	assert.Equal(t, 1, conflict["totalRecintos"])
}

func TestGeographicValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	cases := []struct {
		name    string
		payload map[string]interface{}
		message string
	}{
		{"blank name", map[string]interface{}{"nombre": "  ", "tipo": "País"}, "El nombre es obligatorio"},
		{"missing type", map[string]interface{}{"nombre": "Bolivia"}, "El tipo es obligatorio"},
		{"malformed parent", map[string]interface{}{"nombre": "X", "tipo": "Y", "fk_id_geografico": "abc"}, "El registro padre no es válido"},
		{"unknown parent", map[string]interface{}{"nombre": "X", "tipo": "Y", "fk_id_geografico": 9999}, "El registro padre no existe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := env.do(http.MethodPost, "/api/geografico", token, tc.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}

	rr, body := env.do(http.MethodGet, "/api/geografico/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidID, body.Message)

	oversized := `{"nombre":"` + strings.Repeat("a", maxJSONBodyBytes) + `","tipo":"País"}`
	rr, body = env.do(http.MethodPost, "/api/geografico", token, oversized)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, msgBodyTooLarge, body.Message)
}

func TestGeographicUpdateRejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	a := testutil.CreateGeographic(t, env.db, "A", "Nivel", nil)
	b := testutil.CreateGeographic(t, env.db, "B", "Nivel", &a.ID)
	c := testutil.CreateGeographic(t, env.db, "C", "Nivel", &b.ID)

	rr, body := env.do(http.MethodPut, fmt.Sprintf("/api/geografico/%d", a.ID), token, map[string]interface{}{
		"nombre": "A", "tipo": "Nivel", "fk_id_geografico": c.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "La asignación crearía un ciclo en la jerarquía", body.Message)

	rr, body = env.do(http.MethodPut, fmt.Sprintf("/api/geografico/%d", a.ID), token, map[string]interface{}{
		"nombre": "A", "tipo": "Nivel", "fk_id_geografico": a.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Un registro no puede ser su propio padre", body.Message)

	// detaching with an empty string is allowed
	rr, body = env.do(http.MethodPut, fmt.Sprintf("/api/geografico/%d", c.ID), token, map[string]interface{}{
		"nombre": "C2", "tipo": "Nivel", "fk_id_geografico": "",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated models.GeographicEntity
	decodeData(t, body, &updated)
	assert.Equal(t, "C2", updated.Name)
	assert.Nil(t, updated.ParentID)

	rr, _ = env.do(http.MethodPut, "/api/geografico/9999", token, map[string]interface{}{"nombre": "Z", "tipo": "Nivel"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGeographicListsNeverNull(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	for _, path := range []string{"/api/geografico", "/api/geografico/padres", "/api/geografico/tipos", "/api/geografico/tipos/catalogo"} {
		rr, body := env.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, "[]", string(body.Data), path)
	}
}

func TestTypeRegistry(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken()

	testutil.CreateGeographic(t, env.db, "Omasuyos", "Provincia", nil)
	testutil.CreateGeographic(t, env.db, "Los Andes", "Provincia", nil)

	rr, _ := env.do(http.MethodPost, "/api/geografico/tipos", token, map[string]string{"tipo": "Distrito Municipal"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, body := env.do(http.MethodGet, "/api/geografico/tipos/catalogo", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var catalog []models.TypeUsage
	decodeData(t, body, &catalog)
	assert.Equal(t, []models.TypeUsage{
		{Type: "Distrito Municipal", Total: 0, Pending: true},
		{Type: "Provincia", Total: 2},
	}, catalog)

	rr, body = env.do(http.MethodGet, "/api/geografico/tipos", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var inUse []string
	decodeData(t, body, &inUse)
	assert.Equal(t, []string{"Provincia"}, inUse)

	t.Run("delete in-use type", func(t *testing.T) {
		rr, body := env.do(http.MethodDelete, "/api/geografico/tipos/Provincia", token, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
		var data map[string]int
		decodeData(t, body, &data)
		assert.Equal(t, 2, data["total"])
	})

	t.Run("reassign", func(t *testing.T) {
		rr, body := env.do(http.MethodPost, "/api/geografico/tipos/reasignar", token, map[string]string{
			"tipo_origen":  "Provincia",
			"tipo_destino": "Distrito Municipal",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Tipo reasignado correctamente (2 registros actualizados)", body.Message)

		rr, body = env.do(http.MethodPost, "/api/geografico/tipos/reasignar", token, map[string]string{
			"tipo_origen":  "X",
			"tipo_destino": "X",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Los tipos no pueden ser iguales", body.Message)
	})

	t.Run("delete unused type with escaped label", func(t *testing.T) {
		rr, _ := env.do(http.MethodPost, "/api/geografico/tipos", token, map[string]string{"tipo": "Cantón Rural"})
		require.Equal(t, http.StatusCreated, rr.Code)

		rr, body := env.do(http.MethodDelete, "/api/geografico/tipos/"+url.PathEscape("Cantón Rural"), token, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, `Tipo "Cantón Rural" eliminado (no había registros asociados).`, body.Message)
	})

	t.Run("labels with escapes are matched literally", func(t *testing.T) {
		testutil.CreateGeographic(t, env.db, "Zona Sur", "Zona%41", nil)
		testutil.CreateGeographic(t, env.db, "Frontera", "Norte/Sur", nil)

		for _, label := range []string{"Zona%41", "Norte/Sur"} {
			rr, body := env.do(http.MethodDelete, "/api/geografico/tipos/"+url.PathEscape(label), token, nil)
			require.Equal(t, http.StatusConflict, rr.Code, label)
			var data map[string]int
			decodeData(t, body, &data)
			assert.Equal(t, 1, data["total"], label)
		}

		var remaining int64
		require.NoError(t, env.db.Model(&models.GeographicEntity{}).Where("tipo = ?", "Zona%41").Count(&remaining).Error)
		assert.Equal(t, int64(1), remaining)
	})
}
