// Package relay implements the headless authorization-code-with-PKCE flow:
// it opens a flow against the identity provider and later exchanges the
// returned authorization code for an access token.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/headless-auth-relay/internal/domain"
	"github.com/headless-auth-relay/internal/infrastructure/provider"
	"github.com/headless-auth-relay/internal/pkg/id"
	"github.com/headless-auth-relay/internal/pkg/pkce"
)

// sessionTTL bounds how long a started flow may wait for its callback.
const sessionTTL = time.Hour

// SessionStore persists in-flight authorization flows keyed by session id.
type SessionStore interface {
	Put(ctx context.Context, s *domain.AuthSession) error
	Get(ctx context.Context, sessionID string) (*domain.AuthSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// ProviderClient is the identity-provider surface the relay needs.
type ProviderClient interface {
	AuthorizeURL(state, nonce, challenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*provider.TokenResponse, error)
}

type Service interface {
	// BeginAuth starts a flow: it generates the PKCE pair plus random state
	// and nonce, persists them, and returns the provider redirect URL with
	// the session to correlate the callback to.
	BeginAuth(ctx context.Context) (authURL string, session *domain.AuthSession, err error)
	// ExchangeCode completes a flow and returns the access token.
	ExchangeCode(ctx context.Context, sessionID, code, state string) (string, error)
}

type ServiceDeps struct {
	Sessions SessionStore
	Provider ProviderClient
}

type service struct {
	sessions SessionStore
	provider ProviderClient
}

func NewService(deps ServiceDeps) Service {
	return &service{sessions: deps.Sessions, provider: deps.Provider}
}

func (s *service) BeginAuth(ctx context.Context) (string, *domain.AuthSession, error) {
	pair, err := pkce.New()
	if err != nil {
		return "", nil, err
	}
	state, err := pkce.State()
	if err != nil {
		return "", nil, err
	}
	nonce, err := pkce.State()
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	sess := &domain.AuthSession{
		SessionID:    id.New(),
		CodeVerifier: pair.Verifier,
		State:        state,
		Nonce:        nonce,
		CreatedAt:    now,
		ExpiresAt:    now.Add(sessionTTL).Unix(),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return "", nil, err
	}

	return s.provider.AuthorizeURL(state, nonce, pair.Challenge), sess, nil
}

func (s *service) ExchangeCode(ctx context.Context, sessionID, code, state string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("callback without session cookie: %w", domain.ErrUnauthorized)
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("auth session lookup: %w", err)
	}
	if sess.ExpiresAt <= time.Now().Unix() {
		return "", fmt.Errorf("auth session expired: %w", domain.ErrUnauthorized)
	}
	if state != sess.State {
		return "", fmt.Errorf("state mismatch: %w", domain.ErrUnauthorized)
	}

	tok, err := s.provider.Exchange(ctx, code, sess.CodeVerifier)
	if err != nil {
		return "", err
	}

	if tok.IDToken != "" {
		if err := checkNonce(tok.IDToken, sess.Nonce); err != nil {
			return "", err
		}
	}

	// The verifier is single use; drop the session so a replayed callback fails.
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		slog.Warn("failed to delete auth session", "session_id", sessionID, "err", err)
	}

	return tok.AccessToken, nil
}

// checkNonce compares the id_token nonce claim against the value stored when
// the flow started. Signature verification is left to the provider's own JWKS
// consumers; the relay only guards against replayed callbacks.
func checkNonce(idToken, want string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return fmt.Errorf("parse id_token: %w", domain.ErrUpstream)
	}
	nonce, _ := claims["nonce"].(string)
	if nonce != want {
		return fmt.Errorf("id_token nonce mismatch: %w", domain.ErrUnauthorized)
	}
	return nil
}
