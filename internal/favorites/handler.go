package favorites

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

type Handler struct {
	Repo *Repo
	Hub  *synchub.Hub
}

func NewHandler(repo *Repo, hub *synchub.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.list)
	rg.POST("/favorites", h.add)
	rg.GET("/favorites/:name", h.getOne)
	rg.DELETE("/favorites/:name", h.remove)
}

type addReq struct {
	Name           string `json:"name"`
	ScientificName string `json:"scientific_name"`
	PhotoURL       string `json:"photo_url"`
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
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	fav := models.Favorite{
		SessionID:      claims.SessionID,
		Name:           name,
		ScientificName: strings.TrimSpace(req.ScientificName),
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
	}
	if err := h.Repo.Add(c.Request.Context(), fav); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.SessionID, name)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(synchub.Event{
			Type:      synchub.FavoriteAdded,
			SessionID: claims.SessionID,
			Animal:    name,
			Data:      saved,
			At:        time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.SessionID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	f, err := h.Repo.Get(c.Request.Context(), claims.SessionID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) remove(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	ok, err := h.Repo.Delete(c.Request.Context(), claims.SessionID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(synchub.Event{
			Type:      synchub.FavoriteRemoved,
			SessionID: claims.SessionID,
			Animal:    name,
			At:        time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
