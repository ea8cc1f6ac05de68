package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/camden-git/electoralbackend/media"
	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/realtime"
	"github.com/camden-git/electoralbackend/repository"
)

const (
	defaultElectionTypeID = 1
	votesFieldPrefix      = "votos_"
	evidenceField         = "imagen_acta"
	multipartMemory       = 8 << 20

	msgActaNotFound     = "Acta no encontrada"
	msgActaGeneric      = "Error al registrar el acta"
	msgFileTooLarge     = "El archivo excede el tamaño máximo permitido"
	msgUnsupportedFile  = "Formato de archivo no permitido (jpeg, png o pdf)"
	msgInvalidMultipart = "Formulario inválido"
)

// fields of the multipart form that are not per-office vote lists
var reservedVoteFields = map[string]bool{
	"votos_nulos":   true,
	"votos_blancos": true,
}

// ActaHandler records tally sheets and serves them back.
type ActaHandler struct {
	Actas          repository.ActaRepository
	Evidence       *media.Processor
	Hub            *realtime.Hub
	Logger         *zap.Logger
	MaxUploadBytes int64
}

func NewActaHandler(actas repository.ActaRepository, evidence *media.Processor, hub *realtime.Hub, logger *zap.Logger, maxUploadBytes int64) *ActaHandler {
	return &ActaHandler{Actas: actas, Evidence: evidence, Hub: hub, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

type voteEntry struct {
	FrontID uint `json:"id_frente"`
	Count   int  `json:"cantidad"`
}

type registerActaResponse struct {
	ID           uint    `json:"id_acta"`
	ValidVotes   int     `json:"votos_validos"`
	TotalVotes   int     `json:"votos_totales"`
	EvidenceURL  *string `json:"imagen_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Warning      string  `json:"advertencia,omitempty"`
}

// Register handles POST /votos/registrar-acta.
func (h *ActaHandler) Register(w http.ResponseWriter, r *http.Request) {
	// room for the form fields next to the file
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge, nil)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidMultipart, nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	acta, err := parseActaForm(r.MultipartForm)
	if err != nil {
		handleRepoError(w, h.Logger, err, "", msgActaGeneric)
		return
	}
	if user, ok := CurrentUser(r); ok {
		acta.RegisteredBy = &user.ID
	}

	stored, ok := h.storeEvidence(w, r)
	if !ok {
		return
	}
	if stored != nil {
		evidenceURL := assetURL(stored.Path)
		acta.EvidencePath = &evidenceURL
		if stored.ThumbnailPath != nil {
			thumbURL := assetURL(*stored.ThumbnailPath)
			acta.ThumbnailPath = &thumbURL
		}
		acta.EvidenceTakenAt = stored.TakenAt
	}

	prior, err := h.Actas.Create(r.Context(), acta)
	if err != nil {
		if stored != nil {
			h.Evidence.Discard(stored)
		}
		handleRepoError(w, h.Logger, err, "", msgActaGeneric)
		return
	}

	h.Logger.Info("acta registered",
		zap.Uint("id_acta", acta.ID),
		zap.Uint("id_mesa", acta.TableID),
		zap.Int("votos_totales", acta.TotalVotes),
		zap.Int64("actas_previas", prior),
	)
	if h.Hub != nil {
		h.Hub.Broadcast(realtime.NewEvent(realtime.EventActaRegistered, map[string]interface{}{
			"id_acta":          acta.ID,
			"id_mesa":          acta.TableID,
			"id_tipo_eleccion": acta.ElectionTypeID,
			"votos_totales":    acta.TotalVotes,
		}))
	}

	resp := registerActaResponse{
		ID:           acta.ID,
		ValidVotes:   acta.ValidVotes,
		TotalVotes:   acta.TotalVotes,
		EvidenceURL:  acta.EvidencePath,
		ThumbnailURL: acta.ThumbnailPath,
	}
	if prior > 0 {
		resp.Warning = fmt.Sprintf("La mesa ya tenía %d acta(s) registrada(s) para este tipo de elección", prior)
	}
	writeSuccess(w, http.StatusCreated, "Acta registrada correctamente", resp)
}

// storeEvidence saves the optional evidence file. ok is false when a response
// was already written.
func (h *ActaHandler) storeEvidence(w http.ResponseWriter, r *http.Request) (*media.StoredEvidence, bool) {
	file, header, err := r.FormFile(evidenceField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidMultipart, nil)
		return nil, false
	}
	defer file.Close()

	if header.Size > h.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge, nil)
		return nil, false
	}
	if h.Evidence == nil {
		h.Logger.Error("evidence upload received but no media processor is configured")
		writeError(w, http.StatusInternalServerError, msgActaGeneric, nil)
		return nil, false
	}

	stored, err := h.Evidence.StoreEvidence(file)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedEvidence) {
			writeError(w, http.StatusBadRequest, msgUnsupportedFile, nil)
			return nil, false
		}
		h.Logger.Error("failed to store acta evidence", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgActaGeneric, nil)
		return nil, false
	}
	return stored, true
}

// parseActaForm builds the acta from the form fields. Every votos_<cargo>
// field holds a JSON list of {id_frente, cantidad}; the office itself is
// checked against the election type by the repository.
func parseActaForm(form *multipart.Form) (*models.Acta, error) {
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	tableID, err := strconv.ParseUint(value("id_mesa"), 10, 32)
	if err != nil || tableID == 0 {
		return nil, repository.NewValidationError("id_mesa", "La mesa es obligatoria")
	}

	electionTypeID := uint64(defaultElectionTypeID)
	if raw := value("id_tipo_eleccion"); raw != "" {
		electionTypeID, err = strconv.ParseUint(raw, 10, 32)
		if err != nil || electionTypeID == 0 {
			return nil, repository.NewValidationError("id_tipo_eleccion", "El tipo de elección no es válido")
		}
	}

	nullVotes, err := parseCount(value("votos_nulos"), "votos_nulos")
	if err != nil {
		return nil, err
	}
	blankVotes, err := parseCount(value("votos_blancos"), "votos_blancos")
	if err != nil {
		return nil, err
	}

	remarks := value("observaciones")
	acta := &models.Acta{
		TableID:        uint(tableID),
		ElectionTypeID: uint(electionTypeID),
		NullVotes:      nullVotes,
		BlankVotes:     blankVotes,
		Remarks:        trimmedOrNil(&remarks),
	}

	// sorted so validation errors are reported deterministically
	var fields []string
	for key := range form.Value {
		if strings.HasPrefix(key, votesFieldPrefix) && !reservedVoteFields[key] {
			fields = append(fields, key)
		}
	}
	sort.Strings(fields)

	for _, key := range fields {
		office := strings.TrimPrefix(key, votesFieldPrefix)
		raw := value(key)
		if raw == "" {
			continue
		}
		var entries []voteEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, repository.NewValidationError(key, fmt.Sprintf("Formato de votos inválido para %s", office))
		}
		for _, e := range entries {
			if e.FrontID == 0 {
				return nil, repository.NewValidationError(key, fmt.Sprintf("Frente inválido en los votos de %s", office))
			}
			acta.Votes = append(acta.Votes, models.Vote{FrontID: e.FrontID, Office: office, Count: e.Count})
		}
	}
	return acta, nil
}

func parseCount(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, repository.NewValidationError(field, fmt.Sprintf("%s debe ser un entero no negativo", field))
	}
	return n, nil
}

// assetURL maps a storage-relative path to the route that serves it.
func assetURL(relPath string) string {
	return "/api/" + strings.TrimPrefix(relPath, "/")
}

func (h *ActaHandler) List(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseOptionalQueryID(r, "id_mesa")
	if !ok {
		writeError(w, http.StatusBadRequest, "id_mesa inválido", nil)
		return
	}
	actas, err := h.Actas.List(r.Context(), tableID)
	if err != nil {
		handleRepoError(w, h.Logger, err, "", "Error al obtener actas")
		return
	}
	if actas == nil {
		actas = []models.Acta{}
	}
	writeSuccess(w, http.StatusOK, "", actas)
}

func (h *ActaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	acta, err := h.Actas.GetByID(r.Context(), id)
	if err != nil {
		handleRepoError(w, h.Logger, err, msgActaNotFound, "Error al obtener el acta")
		return
	}
	writeSuccess(w, http.StatusOK, "", acta)
}
