package library

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"animetrack/internal/auth"
	"animetrack/internal/events"
	"animetrack/pkg/models"
)

type Handler struct {
	Repo  *Repo
	Users *auth.Repo
	Hub   *events.Hub
}

func NewHandler(repo *Repo, users *auth.Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Users: users, Hub: hub}
}

// RegisterRoutes expects rg to already carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items", h.list)
	rg.POST("/items", h.add)
	rg.GET("/items/:id", h.getOne)
	rg.PATCH("/items/:id", h.update)
	rg.DELETE("/items/:id", h.remove)
	rg.GET("/summary", h.summary)
}

// owner resolves the authenticated user to a stored row, provisioning one if
// needed so library writes always have a foreign key target.
func (h *Handler) owner(c *gin.Context) *models.User {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	u, err := h.Users.EnsureUser(c.Request.Context(), claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve user failed"})
		return nil
	}
	return u
}

func (h *Handler) list(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	items, err := h.Repo.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type addReq struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	CoverURL string `json:"cover_url"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

func (h *Handler) add(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	mtype := strings.ToLower(strings.TrimSpace(req.Type))
	if mtype != "anime" && mtype != "manga" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be anime or manga"})
		return
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "manual"
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = "planning"
	}
	if req.Progress < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress must be >= 0"})
		return
	}

	item := models.LibraryItem{
		ID:       uuid.NewString(),
		UserID:   u.ID,
		Title:    req.Title,
		Type:     mtype,
		Source:   source,
		CoverURL: req.CoverURL,
		Status:   status,
		Progress: req.Progress,
	}
	if err := h.Repo.Create(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), u.ID, item.ID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast(events.LibraryUpdateType, u.Username, saved)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) getOne(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	it, err := h.Repo.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

type updateReq struct {
	Status   *string `json:"status"`
	Progress *int    `json:"progress"`
}

func (h *Handler) update(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*req.Status))
		req.Status = &s
	}
	if req.Progress != nil && *req.Progress < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress must be >= 0"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), u.ID, c.Param("id"), req.Status, req.Progress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast(events.LibraryUpdateType, u.Username, saved)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	id := c.Param("id")
	// deletion is idempotent: removing an absent row still reports ok
	if _, err := h.Repo.Delete(c.Request.Context(), u.ID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	if h.Hub != nil {
		ev := events.LibraryEvent{
			Type:     events.LibraryDeleteType,
			Username: u.Username,
			ItemID:   id,
			At:       time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) summary(c *gin.Context) {
	u := h.owner(c)
	if u == nil {
		return
	}

	s, err := h.Repo.Summarize(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) broadcast(evType, username string, it *models.LibraryItem) {
	if h.Hub == nil {
		return
	}
	ev := events.LibraryEvent{
		Type:     evType,
		Username: username,
		ItemID:   it.ID,
		Title:    it.Title,
		Status:   it.Status,
		Progress: it.Progress,
		At:       time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}
