package notes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"biodex/internal/session"
	synchub "biodex/internal/sync"
)

const maxNoteLen = 2000

type Handler struct {
	Repo *Repo
	Hub  *synchub.Hub
}

func NewHandler(repo *Repo, hub *synchub.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notes", h.list)
	rg.POST("/notes", h.create)
	rg.DELETE("/notes/:id", h.remove)
}

type createReq struct {
	Animal string `json:"animal"`
	Text   string `json:"text"`
}

func (h *Handler) create(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	animal := strings.TrimSpace(req.Animal)
	text := strings.TrimSpace(req.Text)
	if animal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "animal required"})
		return
	}
	if text == "" || len(text) > maxNoteLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must be 1-2000 chars"})
		return
	}

	note, err := h.Repo.Create(c.Request.Context(), claims.SessionID, animal, text)
	if err != nil || note == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(synchub.Event{
			Type:      synchub.NoteAdded,
			SessionID: claims.SessionID,
			Animal:    animal,
			ID:        note.ID,
			Data:      note,
		})
	}

	c.JSON(http.StatusCreated, note)
}

func (h *Handler) list(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	animal := strings.TrimSpace(c.Query("animal"))
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.List(c.Request.Context(), claims.SessionID, animal, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"animal": animal,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(synchub.Event{Type: synchub.NoteDeleted, SessionID: claims.SessionID, ID: id})
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
