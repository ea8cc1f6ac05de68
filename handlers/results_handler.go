package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/database"
	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/realtime"
	"github.com/camden-git/electoralbackend/reports"
)

// ResultsHandler serves the live aggregation of recorded actas.
type ResultsHandler struct {
	DB      *sql.DB
	Builder sq.StatementBuilderType
	Hub     *realtime.Hub
	Logger  *zap.Logger
}

func NewResultsHandler(db *sql.DB, builder sq.StatementBuilderType, hub *realtime.Hub, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{DB: db, Builder: builder, Hub: hub, Logger: logger}
}

func (h *ResultsHandler) load(r *http.Request) (*models.LiveResults, error) {
	office := strings.TrimSpace(r.URL.Query().Get("tipo_cargo"))
	return database.GetLiveResults(r.Context(), h.DB, h.Builder, office)
}

// Live handles GET /votos/resultados-vivo[?tipo_cargo=].
func (h *ResultsHandler) Live(w http.ResponseWriter, r *http.Request) {
	results, err := h.load(r)
	if err != nil {
		h.Logger.Error("failed to load live results", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al obtener resultados", nil)
		return
	}
	writeSuccess(w, http.StatusOK, "", results)
}

// Export streams the live results as an xlsx workbook.
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	results, err := h.load(r)
	if err != nil {
		h.Logger.Error("failed to load results for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al exportar resultados", nil)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := reports.WriteResultsWorkbook(&buf, results, now); err != nil {
		h.Logger.Error("failed to render results workbook", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error al exportar resultados", nil)
		return
	}

	filename := fmt.Sprintf("resultados-%s.xlsx", now.Format("20060102-150405"))
	w.Header().Set("Content-Type", reports.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Stream upgrades to the websocket that pushes acta events.
func (h *ResultsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Canal en vivo no disponible", nil)
		return
	}
	h.Hub.ServeWS(w, r)
}
