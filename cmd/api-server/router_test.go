package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biodex/internal/explore"
	"biodex/internal/history"
	"biodex/internal/imagery"
	"biodex/internal/provider"
	"biodex/internal/query"
	"biodex/internal/session"
	synchub "biodex/internal/sync"
	"biodex/pkg/database"
)

type stubSource struct{}

func (stubSource) Name() string { return "inaturalist" }

func (stubSource) Search(context.Context, query.Spec) ([]provider.RawItem, error) {
	return []provider.RawItem{{"id": 1, "taxon": map[string]any{
		"id":                    7,
		"name":                  "Panthera onca",
		"preferred_common_name": "jaguar",
		"iconic_taxon_name":     "Mammalia",
		"default_photo":         map[string]any{"medium_url": "https://img/7.jpg"},
	}}}, nil
}

func testServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.OpenTest(t)
	e := explore.New(stubSource{}, explore.INaturalistObservations)
	e.Sink = history.NewSink(history.NewRepo(db), nil)

	return newRouter(deps{
		DB:      db,
		Hub:     synchub.NewHub(10),
		Explore: explore.NewHandler(e, imagery.NewResolver(), query.NewBuilder(500)),
		Tokens:  session.TokenService{Secret: []byte("test"), Issuer: "biodex", Duration: time.Hour},
		Revoked: session.NewRevocations(),
		Log:     zap.NewNop(),
	})
}

func send(t *testing.T, r http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	r := testServer(t)

	assert.Equal(t, http.StatusOK, send(t, r, http.MethodGet, "/health", "", nil).Code)

	w := send(t, r, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])

	w = send(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "biodex_explore_requests_total")
}

func TestSessionFlow(t *testing.T) {
	r := testServer(t)

	w := send(t, r, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	// anonymous exploration works and leaves no history
	w = send(t, r, http.MethodGet, "/explore?q=jaguar", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = send(t, r, http.MethodGet, "/explore?hotspot=serengeti", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = send(t, r, http.MethodGet, "/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = send(t, r, http.MethodPost, "/favorites", token, gin.H{"name": "Jaguar", "scientific_name": "Panthera onca"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(t, r, http.MethodGet, "/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	assert.Equal(t, http.StatusUnauthorized, send(t, r, http.MethodGet, "/favorites", "", nil).Code)

	w = send(t, r, http.MethodDelete, "/sessions/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the token is dead after the session ends
	assert.Equal(t, http.StatusUnauthorized, send(t, r, http.MethodGet, "/favorites", token, nil).Code)
}
