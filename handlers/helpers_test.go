package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/camden-git/electoralbackend/config"
	"github.com/camden-git/electoralbackend/media"
	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/realtime"
	"github.com/camden-git/electoralbackend/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	cfg    config.Config
	tokens *TokenManager
	hub    *realtime.Hub
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zaptest.NewLogger(t)
	db := testutil.NewTestDB(t)

	cfg := config.Config{
		DBDriver:           config.DriverSQLite,
		MediaStoragePath:   t.TempDir(),
		EvidenceSubDir:     config.DefaultEvidenceSubDir,
		ThumbnailsSubDir:   config.DefaultThumbnailsSubDir,
		ThumbnailMaxSize:   64,
		MaxUploadBytes:     1 << 20,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}

	tokens, generated, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	require.False(t, generated)

	store, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
		media.AssetTypeEvidence:  cfg.EvidenceSubDir,
		media.AssetTypeThumbnail: cfg.ThumbnailsSubDir,
	}, logger)
	require.NoError(t, err)

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, logger)
	router, err := NewRouter(RouterDeps{
		Config:   cfg,
		DB:       db,
		Tokens:   tokens,
		Evidence: media.NewProcessor(store, cfg.ThumbnailMaxSize, logger),
		Hub:      hub,
		Logger:   logger,
	})
	require.NoError(t, err)

	return &testEnv{t: t, db: db, cfg: cfg, tokens: tokens, hub: hub, router: router}
}

// tokenFor creates an account with the given role and returns a valid token.
func (e *testEnv) tokenFor(username, roleName string) (models.User, string) {
	e.t.Helper()
	user := testutil.CreateUser(e.t, e.db, username, "secreto123", roleName)
	token, _, err := e.tokens.Issue(&user)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) adminToken() string {
	_, token := e.tokenFor("admin", models.AdminRoleName)
	return token
}

func (e *testEnv) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(e.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

// do issues a JSON request. body may be nil, a string or any value that
// encodes to JSON.
func (e *testEnv) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
}
