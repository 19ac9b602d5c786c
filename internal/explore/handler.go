package explore

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"biodex/internal/imagery"
	"biodex/internal/query"
	"biodex/pkg/models"
)

const emptyMessage = "nothing found, try another query"

// Locator maps a client IP to coordinates.
type Locator interface {
	Locate(ip string) (lat, lon float64, ok bool)
}

type Handler struct {
	Explorer *Explorer
	Images   *imagery.Resolver
	Builder  query.Builder
	Locator  Locator

	// Limit runs before the /explore routes only.
	Limit gin.HandlerFunc
}

func NewHandler(e *Explorer, images *imagery.Resolver, b query.Builder) *Handler {
	return &Handler{Explorer: e, Images: images, Builder: b}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ex := rg.Group("/explore")
	if h.Limit != nil {
		ex.Use(h.Limit)
	}

	rg.GET("/hotspots", h.hotspots)             // GET /hotspots
	ex.GET("", h.explore)                       // GET /explore?hotspot= | lat=&lon= | q=
	ex.GET("/nearby", h.nearby)                 // GET /explore/nearby
	rg.GET("/images", h.image)                  // GET /images?name=&id=
	rg.GET("/placeholder/:seed", h.placeholder) // GET /placeholder/48484.png
}

func (h *Handler) hotspots(c *gin.Context) {
	items := query.Hotspots()
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) explore(c *gin.Context) {
	spec, status, msg := h.specFrom(c)
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	h.respond(c, spec)
}

func (h *Handler) nearby(c *gin.Context) {
	if h.Locator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geoip not configured"})
		return
	}
	lat, lon, ok := h.Locator.Locate(c.ClientIP())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "location unknown"})
		return
	}
	h.respond(c, h.Builder.Coordinates(lat, lon))
}

func (h *Handler) respond(c *gin.Context, spec query.Spec) {
	ctx := c.Request.Context()
	body := gin.H{"query": spec}

	var items []models.AnimalRecord
	if isTrue(c.Query("debug")) {
		res, err := h.Explorer.Run(ctx, spec)
		diag := gin.H{
			"raw":             res.Raw,
			"rejected":        res.Rejected,
			"duplicates":      res.Duplicates,
			"images_resolved": res.Resolved,
			"dropped":         res.Dropped,
		}
		if err != nil {
			diag["error"] = err.Error()
		}
		body["diagnostics"] = diag
		items = res.Records
	} else {
		items = h.Explorer.Explore(ctx, spec)
	}

	body["items"] = items
	body["total"] = len(items)
	if len(items) == 0 {
		body["message"] = emptyMessage
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) specFrom(c *gin.Context) (query.Spec, int, string) {
	if name := strings.TrimSpace(c.Query("hotspot")); name != "" {
		spec, ok := h.Builder.Hotspot(name)
		if !ok {
			return query.Spec{}, http.StatusNotFound, "unknown hotspot"
		}
		return spec, 0, ""
	}

	latS, lonS := strings.TrimSpace(c.Query("lat")), strings.TrimSpace(c.Query("lon"))
	if lonS == "" {
		lonS = strings.TrimSpace(c.Query("lng"))
	}
	if latS != "" || lonS != "" {
		lat, err1 := strconv.ParseFloat(latS, 64)
		lon, err2 := strconv.ParseFloat(lonS, 64)
		if err1 != nil || err2 != nil {
			return query.Spec{}, http.StatusBadRequest, "lat and lon must both be numbers"
		}
		return h.Builder.Coordinates(lat, lon), 0, ""
	}

	return h.Builder.Text(c.Query("q")), 0, ""
}

func (h *Handler) image(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image resolver not configured"})
		return
	}
	u, src := h.Images.ResolveSource(c.Request.Context(), name, c.Query("id"))
	c.JSON(http.StatusOK, gin.H{"name": name, "url": u, "source": src})
}

func (h *Handler) placeholder(c *gin.Context) {
	seed := strings.TrimSuffix(c.Param("seed"), ".png")
	png, err := imagery.RenderPlaceholder(seed, parseInt(c.Query("w"), 400), parseInt(c.Query("h"), 300))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
