package explore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/internal/imagery"
	"biodex/internal/provider"
	"biodex/internal/query"
	"biodex/pkg/models"
)

type stubLocator struct {
	lat, lon float64
	ok       bool
}

func (s stubLocator) Locate(string) (float64, float64, bool) { return s.lat, s.lon, s.ok }

type exploreBody struct {
	Query       query.Spec            `json:"query"`
	Total       int                   `json:"total"`
	Items       []models.AnimalRecord `json:"items"`
	Message     string                `json:"message"`
	Diagnostics map[string]any        `json:"diagnostics"`
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	return r
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func testHandler(src provider.Source) *Handler {
	images := imagery.NewResolver()
	return NewHandler(newTestExplorer(src), images, query.NewBuilder(500))
}

func TestHandlerExploreHotspot(t *testing.T) {
	src := &fakeSource{items: []provider.RawItem{obs(1, "capivara", "Hydrochoerus hydrochaeris", "Mammalia", "https://img/c.jpg")}}
	r := newTestRouter(testHandler(src))

	w := get(t, r, "/explore?hotspot="+url.QueryEscape("Amazónia"))
	require.Equal(t, http.StatusOK, w.Code)

	var body exploreBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "Capivara", body.Items[0].DisplayName)
	assert.Equal(t, models.Herbivore, body.Items[0].Diet)
	assert.Equal(t, "Amazónia", body.Query.Hotspot)
	assert.Equal(t, 500, body.Query.RadiusKm)
	assert.Empty(t, body.Message)
}

func TestHandlerExploreErrors(t *testing.T) {
	r := newTestRouter(testHandler(&fakeSource{}))

	assert.Equal(t, http.StatusNotFound, get(t, r, "/explore?hotspot=Atlantis").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/explore?lat=abc&lon=1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/explore?lat=1").Code)
}

func TestHandlerExploreEmpty(t *testing.T) {
	src := &fakeSource{err: &provider.FetchError{Provider: "fake", Kind: provider.KindTimeout}}
	r := newTestRouter(testHandler(src))

	for _, target := range []string{"/explore", "/explore?q=lobo", "/explore?lat=1&lon=2"} {
		w := get(t, r, target)
		require.Equal(t, http.StatusOK, w.Code, target)

		var body exploreBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Total)
		assert.NotNil(t, body.Items)
		assert.Equal(t, emptyMessage, body.Message)
	}
}

func TestHandlerExploreDebug(t *testing.T) {
	src := &fakeSource{items: []provider.RawItem{
		obs(1, "lobo", "Canis lupus", "Mammalia", "https://img/1.jpg"),
		obs(2, "lobo", "Canis lupus", "Mammalia", "https://img/2.jpg"),
	}}
	r := newTestRouter(testHandler(src))

	var body exploreBody
	w := get(t, r, "/explore?q=lobo&debug=1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.EqualValues(t, 1, body.Diagnostics["duplicates"])
	assert.EqualValues(t, 2, body.Diagnostics["raw"])
}

func TestHandlerNearby(t *testing.T) {
	src := &fakeSource{items: []provider.RawItem{obs(1, "lobo", "Canis lupus", "Mammalia", "https://img/1.jpg")}}
	h := testHandler(src)
	r := newTestRouter(h)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/explore/nearby").Code)

	h.Locator = stubLocator{ok: false}
	assert.Equal(t, http.StatusNotFound, get(t, r, "/explore/nearby").Code)

	h.Locator = stubLocator{lat: 38.7, lon: -9.1, ok: true}
	w := get(t, r, "/explore/nearby")
	require.Equal(t, http.StatusOK, w.Code)
	var body exploreBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 38.7, body.Query.Latitude)
	assert.Equal(t, 1, body.Total)
}

func TestHandlerHotspotsImagesPlaceholder(t *testing.T) {
	r := newTestRouter(testHandler(&fakeSource{}))

	w := get(t, r, "/hotspots")
	require.Equal(t, http.StatusOK, w.Code)
	var hs struct {
		Total int                    `json:"total"`
		Items []models.RegionHotspot `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hs))
	assert.Equal(t, 10, hs.Total)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/images").Code)

	w = get(t, r, "/images?name=Lobo&id=42")
	require.Equal(t, http.StatusOK, w.Code)
	var img map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &img))
	assert.Equal(t, imagery.SourcePlaceholder, img["source"])
	assert.Equal(t, "https://picsum.photos/seed/42/400/300", img["url"])

	w = get(t, r, "/placeholder/42.png?w=120&h=80")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestHandlerLimitOnlyGuardsExplore(t *testing.T) {
	h := testHandler(&fakeSource{})
	h.Limit = func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
	}
	r := newTestRouter(h)

	assert.Equal(t, http.StatusTooManyRequests, get(t, r, "/explore?q=lobo").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, r, "/explore/nearby").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/hotspots").Code)
}
