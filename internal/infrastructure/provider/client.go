// Package provider talks to the headless identity provider: it builds
// authorization redirect URLs and exchanges authorization codes for tokens.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/headless-auth-relay/internal/config"
	"github.com/headless-auth-relay/internal/domain"
	"github.com/headless-auth-relay/internal/pkg/pkce"
)

// Scope is the static scope string the relay always requests.
const Scope = "openid email customer-account-api:full"

// TokenResponse is the token endpoint's JSON body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// Client is an HTTP client for one configured identity provider.
type Client struct {
	clientID              string
	authorizationEndpoint string
	tokenEndpoint         string
	redirectURI           string
	httpClient            *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		clientID:              cfg.ClientID,
		authorizationEndpoint: cfg.AuthorizationEndpoint,
		tokenEndpoint:         cfg.TokenEndpoint,
		redirectURI:           cfg.RedirectURI,
		// Outbound calls must surface failure to the caller rather than hang.
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthorizeURL builds the provider authorization URL for one flow.
func (c *Client) AuthorizeURL(state, nonce, challenge string) string {
	params := url.Values{}
	params.Set("scope", Scope)
	params.Set("client_id", c.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", c.redirectURI)
	params.Set("state", state)
	params.Set("nonce", nonce)
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", pkce.Method)

	sep := "?"
	if strings.Contains(c.authorizationEndpoint, "?") {
		sep = "&"
	}
	return c.authorizationEndpoint + sep + params.Encode()
}

// Exchange trades an authorization code plus its PKCE verifier for tokens.
// The request body is form-urlencoded per the OAuth2 token endpoint contract.
// Failures are logged with their upstream detail but returned as a generic
// domain.ErrUpstream so no verifier or token material leaks to clients.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.redirectURI},
		"code_verifier": {codeVerifier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("token endpoint unreachable", "err", err)
		return nil, fmt.Errorf("token exchange: %w", domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("token endpoint rejected exchange", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("token exchange status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		slog.Error("token endpoint returned malformed body", "err", err)
		return nil, fmt.Errorf("token exchange decode: %w", domain.ErrUpstream)
	}
	if tok.AccessToken == "" {
		slog.Error("token endpoint response missing access_token")
		return nil, fmt.Errorf("token exchange missing access_token: %w", domain.ErrUpstream)
	}
	return &tok, nil
}
