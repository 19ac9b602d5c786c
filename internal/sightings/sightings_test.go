package sightings

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

	"biodex/internal/session"
	synchub "biodex/internal/sync"
	"biodex/pkg/database"
	"biodex/pkg/models"
)

func seed(t *testing.T, repo *Repo, sid string, rows ...[2]string) {
	t.Helper()
	for _, r := range rows {
		_, err := repo.Add(context.Background(), models.Sighting{SessionID: sid, Animal: r[0], SeenOn: r[1]})
		require.NoError(t, err)
	}
}

func TestRepoListByMonth(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(database.OpenTest(t))
	seed(t, repo, "s1",
		[2]string{"Tucano", "2026-03-14"},
		[2]string{"Capivara", "2026-03-02"},
		[2]string{"Arara", "2026-04-01"},
	)
	seed(t, repo, "s2", [2]string{"Jacaré", "2026-03-05"})

	items, total, err := repo.List(ctx, "s1", "2026-03", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Capivara", items[0].Animal)
	assert.Equal(t, "Tucano", items[1].Animal)

	_, total, err = repo.List(ctx, "s1", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestRepoCalendar(t *testing.T) {
	repo := NewRepo(database.OpenTest(t))
	seed(t, repo, "s1",
		[2]string{"Tucano", "2026-03-14"},
		[2]string{"Capivara", "2026-03-02"},
		[2]string{"Arara", "2026-03-14"},
	)

	days, err := repo.Calendar(context.Background(), "s1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, []CalendarDay{
		{Date: "2026-03-02", Animals: []string{"Capivara"}},
		{Date: "2026-03-14", Animals: []string{"Tucano", "Arara"}},
	}, days)

	n, err := repo.DeleteSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func newRouter(t *testing.T) (*gin.Engine, string, *synchub.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := session.TokenService{Secret: []byte("test"), Issuer: "biodex", Duration: time.Hour}
	tok, _, err := tokens.Sign("s1")
	require.NoError(t, err)

	hub := synchub.NewHub(10)
	h := NewHandler(NewRepo(database.OpenTest(t)), hub)
	h.now = func() time.Time { return time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	g := r.Group("/")
	g.Use(session.Middleware(tokens, nil))
	h.RegisterRoutes(g)
	return r, tok, hub
}

func call(r http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
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

func TestHandlerAddDefaultsToToday(t *testing.T) {
	r, tok, hub := newRouter(t)

	w := call(r, http.MethodPost, "/sightings", tok, gin.H{"animal": "Tucano"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got models.Sighting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2026-05-20", got.SeenOn)
	assert.Equal(t, "s1", got.SessionID)

	events := hub.History("s1")
	require.Len(t, events, 1)
	assert.Equal(t, synchub.SightingAdded, events[0].Type)

	w = call(r, http.MethodGet, "/sightings/calendar", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"month":"2026-05"`)
	assert.Contains(t, w.Body.String(), `"2026-05-20"`)
}

func TestHandlerValidation(t *testing.T) {
	r, tok, _ := newRouter(t)

	w := call(r, http.MethodPost, "/sightings", tok, gin.H{"animal": "Tucano", "seen_on": "20/05/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPost, "/sightings", tok, gin.H{"animal": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodGet, "/sightings?month=2026-13", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodGet, "/sightings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
