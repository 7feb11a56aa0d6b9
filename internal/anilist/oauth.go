package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthorizeURL = "https://anilist.co/api/v2/oauth/authorize"
	defaultTokenURL     = "https://anilist.co/api/v2/oauth/token"
)

// TokenResponse is the raw token object returned by the AniList token
// endpoint. Stored as-is in the connection registry.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// OAuthClient drives the authorization-code flow against AniList.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthorizeEndpoint string
	TokenEndpoint     string
	Client            *http.Client
}

func NewOAuthClient(clientID, clientSecret, redirectURI string) *OAuthClient {
	return &OAuthClient{
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		RedirectURI:       redirectURI,
		AuthorizeEndpoint: defaultAuthorizeURL,
		TokenEndpoint:     defaultTokenURL,
		Client:            &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthorizeURL builds the redirect target for user consent. The state is
// appended verbatim, not URL-encoded: signed state tokens are JWT compact
// form, which is already URL-safe.
func (o *OAuthClient) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", o.ClientID)
	params.Set("redirect_uri", o.RedirectURI)
	params.Set("response_type", "code")
	return o.AuthorizeEndpoint + "?" + params.Encode() + "&state=" + state
}

// ExchangeCode trades an authorization code for an access token. AniList
// documents a JSON body; some deployments only accept form encoding, so a
// non-200 on the JSON attempt triggers exactly one retry with the identical
// payload form-encoded. Both failing yields an UpstreamError with the second
// response's status and body.
func (o *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	payload := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     o.ClientID,
		"client_secret": o.ClientSecret,
		"redirect_uri":  o.RedirectURI,
		"code":          code,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.TokenEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return decodeToken(raw)
	}

	// fallback: same payload, form-encoded
	form := url.Values{}
	for k, v := range payload {
		form.Set(k, v)
	}

	req2, err := http.NewRequestWithContext(ctx, http.MethodPost, o.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req2.Header.Set("Accept", "application/json")

	resp2, err := o.Client.Do(req2)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	raw2, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if resp2.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp2.StatusCode, Body: string(raw2)}
	}
	return decodeToken(raw2)
}

func decodeToken(raw []byte) (*TokenResponse, error) {
	var tok TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tok, nil
}
