package library

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animetrack/internal/auth"
	"animetrack/pkg/database"
	"animetrack/pkg/models"
)

func testRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokenSvc := auth.TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "animetrack-test",
		Duration: time.Hour,
	}
	users := auth.NewRepo(db)

	router := gin.New()
	group := router.Group("/api/library")
	group.Use(auth.AuthMiddleware(tokenSvc))
	NewHandler(NewRepo(db), users, nil).RegisterRoutes(group)

	bearer, _, err := tokenSvc.Sign(&models.User{Username: "demo"})
	require.NoError(t, err)

	return router, bearer
}

func doJSON(t *testing.T, router *gin.Engine, bearer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLibraryCRUD(t *testing.T) {
	router, bearer := testRouter(t)

	// empty list to start
	w := doJSON(t, router, bearer, http.MethodGet, "/api/library/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	// add
	w = doJSON(t, router, bearer, http.MethodPost, "/api/library/items",
		`{"title":"Attack on Titan","type":"ANIME","source":"anilist"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created models.LibraryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "anime", created.Type, "type is lowercased")
	assert.Equal(t, "planning", created.Status, "status defaults to planning")
	assert.Equal(t, 0, created.Progress)

	// get
	w = doJSON(t, router, bearer, http.MethodGet, "/api/library/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// patch status + progress
	w = doJSON(t, router, bearer, http.MethodPatch, "/api/library/items/"+created.ID,
		`{"status":"WATCHING","progress":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.LibraryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "watching", updated.Status)
	assert.Equal(t, 4, updated.Progress)

	// summary
	w = doJSON(t, router, bearer, http.MethodGet, "/api/library/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var s Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.ByType["anime"])
	assert.Equal(t, 1, s.ByStatus["watching"])

	// delete, twice (idempotent)
	w = doJSON(t, router, bearer, http.MethodDelete, "/api/library/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, bearer, http.MethodDelete, "/api/library/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, bearer, http.MethodGet, "/api/library/items/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLibraryValidation(t *testing.T) {
	router, bearer := testRouter(t)

	w := doJSON(t, router, bearer, http.MethodPost, "/api/library/items",
		`{"title":"","type":"anime"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, bearer, http.MethodPost, "/api/library/items",
		`{"title":"Foo","type":"movie"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, bearer, http.MethodPost, "/api/library/items",
		`{"title":"Foo","type":"anime","progress":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLibraryRequiresAuth(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, "", http.MethodGet, "/api/library/items", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
