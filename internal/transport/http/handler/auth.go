package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/headless-auth-relay/internal/application/relay"
	"github.com/headless-auth-relay/internal/config"
)

// SessionCookie carries the auth-session id that correlates /callback with
// the /auth request that started the flow.
const SessionCookie = "relay_session"

// AuthHandler handles the PKCE relay endpoints.
type AuthHandler struct {
	svc relay.Service
	cfg *config.Config
}

func NewAuthHandler(svc relay.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Begin starts an authorization flow and redirects the browser to the
// provider. GET and POST are the same idempotent operation.
func (h *AuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if h.cfg.ClientID == "" || h.cfg.RedirectURI == "" || h.cfg.AuthorizationEndpoint == "" {
		writeError(w, http.StatusInternalServerError, "Missing environment variables")
		return
	}

	authURL, sess, err := h.svc.BeginAuth(r.Context())
	if err != nil {
		slog.Error("failed to begin authorization flow", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.SessionID,
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   h.cfg.AppEnv != "development",
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback finishes the flow: it exchanges the authorization code for an
// access token and hands the token to the client in the configured mode.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Authorization code is missing")
		return
	}

	var sessionID string
	if c, err := r.Cookie(SessionCookie); err == nil {
		sessionID = c.Value
	}

	token, err := h.svc.ExchangeCode(r.Context(), sessionID, code, r.URL.Query().Get("state"))
	if err != nil {
		// The cause is logged where it happened; clients get one generic line.
		slog.Warn("authorization code exchange failed", "err", err)
		writeError(w, http.StatusBadRequest, "Failed to exchange authorization code for access token")
		return
	}

	if h.cfg.TokenDelivery == config.DeliveryJSON {
		writeJSON(w, http.StatusOK, TokenEnvelope{AccessToken: token})
		return
	}
	http.Redirect(w, r, h.cfg.ClientAppURL+"?token="+url.QueryEscape(token), http.StatusFound)
}

// Logout redirects the browser to the provider's logout endpoint.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.LogoutEndpoint, http.StatusFound)
}
