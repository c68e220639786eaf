package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/handler"
	"github.com/jengzang/geolife-backend-go/internal/ingest"
	"github.com/jengzang/geolife-backend-go/internal/middleware"
	"github.com/jengzang/geolife-backend-go/internal/repository"
	"github.com/jengzang/geolife-backend-go/internal/service"
	"github.com/jengzang/geolife-backend-go/internal/testutil"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.OpenSQLStore(filepath.Join(t.TempDir(), "geolife.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	root := testutil.WriteDataset(t, []string{"112"}, map[string]testutil.UserFixture{
		"112": {
			Labels: testutil.Labels([3]string{"2008/06/01 08:00:00", "2008/06/01 08:02:00", "walk"}),
			Trajectories: map[string]string{
				"20080601080000.plt": testutil.PLT(
					testutil.Fix{Lat: 39.916, Lon: 116.397, Altitude: 100, Time: "2008-06-01 08:00:00"},
					testutil.Fix{Lat: 39.917, Lon: 116.398, Altitude: 110, Time: "2008-06-01 08:01:00"},
					testutil.Fix{Lat: 39.918, Lon: 116.399, Altitude: 120, Time: "2008-06-01 08:02:00"},
				),
			},
		},
	})
	_, err = ingest.NewPipeline(store, 0).Run(context.Background(), root)
	require.NoError(t, err)

	cfg := &config.Config{StoreBackend: config.BackendSQLite, RateLimit: 1000, JWTSecret: secret}
	return SetupRouter(cfg, handler.NewStatsHandler(service.NewStatsService(store)))
}

func do(r http.Handler, path, token string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, "")
	w, _ := do(r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"sqlite"`)
}

func TestStatsRoutes(t *testing.T) {
	r := setupRouter(t, "")

	for _, path := range []string{
		"/api/v1/stats/counts",
		"/api/v1/stats/average-activities",
		"/api/v1/stats/top-users?limit=5",
		"/api/v1/stats/mode-users?mode=walk",
		"/api/v1/stats/modes",
		"/api/v1/stats/busiest-year",
		"/api/v1/stats/distance?user=112&mode=walk&year=2008",
		"/api/v1/stats/altitude-gain",
		"/api/v1/stats/invalid-activities",
		"/api/v1/stats/nearby",
		"/api/v1/stats/most-used-modes",
	} {
		w, env := do(r, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, 0, env.Code, path)
		assert.Equal(t, "success", env.Message, path)
	}
}

func TestStatsPayloads(t *testing.T) {
	r := setupRouter(t, "")

	_, env := do(r, "/api/v1/stats/counts", "")
	assert.JSONEq(t, `{"users":1,"activities":1,"trackPoints":3}`, string(env.Data))

	_, env = do(r, "/api/v1/stats/mode-users?mode=walk", "")
	assert.JSONEq(t, `{"mode":"walk","users":["112"]}`, string(env.Data))

	_, env = do(r, "/api/v1/stats/nearby?radius=50", "")
	var near struct {
		Users []string `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &near))
	assert.Equal(t, []string{"112"}, near.Users)
}

func TestBadParameters(t *testing.T) {
	r := setupRouter(t, "")

	for _, path := range []string{
		"/api/v1/stats/top-users?limit=ten",
		"/api/v1/stats/nearby?lat=north",
		"/api/v1/stats/nearby?radius=-5",
		"/api/v1/stats/distance?year=last",
	} {
		w, env := do(r, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, http.StatusBadRequest, env.Code, path)
	}
}

func TestAuthEnforcedWhenSecretSet(t *testing.T) {
	r := setupRouter(t, "s3cret")

	w, _ := do(r, "/api/v1/stats/counts", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middleware.IssueToken("s3cret", "analyst", time.Hour)
	require.NoError(t, err)
	w, _ = do(r, "/api/v1/stats/counts", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stats/counts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
