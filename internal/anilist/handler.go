package anilist

import (
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"animetrack/internal/auth"
	"animetrack/internal/events"
)

type Handler struct {
	States   StateService
	OAuth    *OAuthClient
	API      *Client
	Tokens   TokenStore
	Importer *Importer
	Auth     auth.TokenService
	Hub      *events.Hub
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	protected := auth.AuthMiddleware(h.Auth)

	rg.GET("/connect-url", protected, h.connectURL)
	// no auth header on the callback: identity is recovered from the state
	rg.GET("/callback", h.callback)
	rg.GET("/status", protected, h.status)
	rg.GET("/debug-config", protected, h.debugConfig)
	rg.POST("/import", protected, h.importLists)
}

func (h *Handler) connectURL(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, err := h.States.Issue(claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.OAuth.AuthorizeURL(state)})
}

const connectedHTML = `<html><body><script>
(function(){
	if (window.opener) {
		window.opener.postMessage({ type: 'anilist_connected' }, '*');
	}
	window.close();
})();
</script>
Connection successful. You can close this window.
</body></html>`

func (h *Handler) callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	username, err := h.States.Verify(state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	tok, err := h.OAuth.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		status := http.StatusBadGateway
		body := err.Error()
		var ue *UpstreamError
		if errors.As(err, &ue) {
			status = ue.Status
			body = ue.Body
		}
		log.Printf("[anilist] token exchange for %s failed: %v", username, err)
		c.Data(status, "text/html; charset=utf-8", []byte(errorHTML(body)))
		return
	}

	h.Tokens.Set(username, tok)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(connectedHTML))
}

func errorHTML(msg string) string {
	escaped := html.EscapeString(msg)
	return fmt.Sprintf(`<html><body><script>
(function(){
	if (window.opener) {
		window.opener.postMessage({ type: 'anilist_error', message: %q }, '*');
	}
})();
</script>
<pre>%s</pre>
</body></html>`, msg, escaped)
}

func (h *Handler) status(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": h.Tokens.IsConnected(claims.Username)})
}

// debugConfig shows whether OAuth credentials are wired up without exposing
// the secret itself.
func (h *Handler) debugConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"client_id":         h.OAuth.ClientID,
		"client_secret_set": h.OAuth.ClientSecret != "",
		"redirect_uri":      h.OAuth.RedirectURI,
	})
}

type importReq struct {
	MediaType string `json:"media_type"`
}

func (h *Handler) importLists(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req := importReq{MediaType: "ANIME"}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	mediaType := strings.ToUpper(strings.TrimSpace(req.MediaType))
	if mediaType == "" {
		mediaType = "ANIME"
	}

	tok, ok := h.Tokens.Get(claims.Username)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anilist not connected"})
		return
	}
	if tok.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing access token"})
		return
	}

	groups, err := h.API.FetchUserLists(c.Request.Context(), tok.AccessToken, mediaType)
	if err != nil {
		var ue *UpstreamError
		var qe *QueryError
		switch {
		case errors.As(err, &ue):
			c.JSON(ue.Status, gin.H{"error": fmt.Sprintf("anilist request failed: %s", ue.Body)})
		case errors.As(err, &qe):
			c.JSON(http.StatusBadRequest, gin.H{"error": qe.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("anilist error: %v", err)})
		}
		return
	}

	imported, err := h.Importer.Import(c.Request.Context(), claims.Username, groups, mediaType)
	if err != nil {
		log.Printf("[anilist] import for %s failed: %v", claims.Username, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "import failed"})
		return
	}

	if h.Hub != nil {
		ev := events.LibraryEvent{
			Type:     events.ImportCompletedType,
			Username: claims.Username,
			Imported: imported,
			At:       time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
