package sources

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animetrack/internal/anilist"
)

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // anime|manga|both
}

var sourceList = []Source{
	{ID: "anilist", Name: "AniList", Type: "both"},
	{ID: "mangadex", Name: "MangaDex", Type: "manga"},
}

// Handler serves the source catalog plus search/autocomplete proxies backed
// by the public AniList API.
type Handler struct {
	API *anilist.Client
}

func NewHandler(api *anilist.Client) *Handler {
	return &Handler{API: api}
}

// RegisterRoutes expects rg to already carry the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.list)
	rg.GET("/search", h.search)
	rg.GET("/autocomplete", h.autocomplete)
	rg.GET("/max", h.max)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, sourceList)
}

// search is a mock endpoint kept for the demo UI.
func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	mtype := c.Query("type")
	first := mtype
	if first == "" {
		first = "manga"
	}
	second := mtype
	if second == "" {
		second = "anime"
	}
	c.JSON(http.StatusOK, []anilist.SearchResult{
		{ID: "1", Title: q + " One", Type: first},
		{ID: "2", Title: q + " Two", Type: second},
	})
}

func mediaTypeParam(c *gin.Context) string {
	t := strings.ToLower(strings.TrimSpace(c.Query("type")))
	if t != "anime" && t != "manga" {
		return "manga"
	}
	return t
}

func (h *Handler) autocomplete(c *gin.Context) {
	results := h.API.SearchTitles(c.Request.Context(), c.Query("q"), mediaTypeParam(c), 8)
	if results == nil {
		results = []anilist.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

// max reports the episode/chapter count of the top search hit, used by the UI
// to bound the progress input.
func (h *Handler) max(c *gin.Context) {
	mtype := mediaTypeParam(c)
	results := h.API.SearchTitles(c.Request.Context(), c.Query("q"), mtype, 1)
	if len(results) == 0 {
		c.JSON(http.StatusOK, gin.H{"max": nil})
		return
	}
	var max *int
	if mtype == "anime" {
		max = results[0].Episodes
	} else {
		max = results[0].Chapters
	}
	c.JSON(http.StatusOK, gin.H{"max": max})
}
