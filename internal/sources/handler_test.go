package sources

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animetrack/internal/anilist"
)

const pageBody = `{
	"data": {
		"Page": {
			"media": [
				{
					"id": 42,
					"type": "MANGA",
					"title": {"english": "Berserk"},
					"coverImage": {"medium": "https://img/berserk-m.png", "large": "https://img/berserk-l.png"},
					"chapters": 364,
					"episodes": null
				}
			]
		}
	}
}`

func testSourcesRouter(t *testing.T, graphqlURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := anilist.NewClient("animetrack-test")
	api.Endpoint = graphqlURL

	router := gin.New()
	NewHandler(api).RegisterRoutes(router.Group("/api/sources"))
	return router
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListSources(t *testing.T) {
	router := testSourcesRouter(t, "http://127.0.0.1:0")

	w := get(t, router, "/api/sources/")
	require.Equal(t, http.StatusOK, w.Code)

	var got []Source
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "anilist", got[0].ID)
	assert.Equal(t, "mangadex", got[1].ID)
}

func TestMockSearch(t *testing.T) {
	router := testSourcesRouter(t, "http://127.0.0.1:0")

	w := get(t, router, "/api/sources/search?q=Berserk&type=manga")
	require.Equal(t, http.StatusOK, w.Code)

	var got []anilist.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Berserk One", got[0].Title)
	assert.Equal(t, "Berserk Two", got[1].Title)
}

func TestAutocomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	router := testSourcesRouter(t, srv.URL)

	w := get(t, router, "/api/sources/autocomplete?q=berserk&type=manga")
	require.Equal(t, http.StatusOK, w.Code)

	var got []anilist.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Berserk", got[0].Title)
	assert.Equal(t, "https://img/berserk-m.png", got[0].CoverURL, "thumbnails prefer the medium variant")
}

func TestAutocompleteDegradesOnFailure(t *testing.T) {
	router := testSourcesRouter(t, "http://127.0.0.1:0")

	w := get(t, router, "/api/sources/autocomplete?q=berserk&type=manga")
	require.Equal(t, http.StatusOK, w.Code)

	var got []anilist.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "berserk", got[0].Title, "echo result keeps the UI populated")
}

func TestMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	router := testSourcesRouter(t, srv.URL)

	w := get(t, router, "/api/sources/max?q=berserk&type=manga")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"max": 364}`, w.Body.String())

	// anime asks for episodes, which are null here
	w = get(t, router, "/api/sources/max?q=berserk&type=anime")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"max": null}`, w.Body.String())
}
