package sightings

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"biodex/internal/session"
	synchub "biodex/internal/sync"
	"biodex/pkg/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

type Handler struct {
	Repo *Repo
	Hub  *synchub.Hub
	now  func() time.Time
}

func NewHandler(repo *Repo, hub *synchub.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sightings", h.list)
	rg.GET("/sightings/calendar", h.calendar)
	rg.POST("/sightings", h.add)
}

type addReq struct {
	Animal  string `json:"animal"`
	SeenOn  string `json:"seen_on"` // YYYY-MM-DD, defaults to today
	Hotspot string `json:"hotspot,omitempty"`
}

func (h *Handler) add(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	animal := strings.TrimSpace(req.Animal)
	if animal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "animal required"})
		return
	}

	seenOn := strings.TrimSpace(req.SeenOn)
	if seenOn == "" {
		seenOn = h.now().Format(dayLayout)
	} else if _, err := time.Parse(dayLayout, seenOn); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seen_on must be YYYY-MM-DD"})
		return
	}

	saved, err := h.Repo.Add(c.Request.Context(), models.Sighting{
		SessionID: claims.SessionID,
		Animal:    animal,
		SeenOn:    seenOn,
		Hotspot:   strings.TrimSpace(req.Hotspot),
	})
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(synchub.Event{
			Type:      synchub.SightingAdded,
			SessionID: claims.SessionID,
			Animal:    animal,
			ID:        saved.ID,
			Data:      saved,
		})
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	month, ok := parseMonth(c.Query("month"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	limit := parseInt(c.Query("limit"), 100)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.SessionID, month, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":  month,
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) calendar(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	month, ok := parseMonth(c.Query("month"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}
	if month == "" {
		month = h.now().Format(monthLayout)
	}

	days, err := h.Repo.Calendar(c.Request.Context(), claims.SessionID, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calendar failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}

// parseMonth accepts "" or "YYYY-MM".
func parseMonth(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", false
	}
	return s, true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
