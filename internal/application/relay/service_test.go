package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/headless-auth-relay/internal/domain"
	"github.com/headless-auth-relay/internal/infrastructure/provider"
	"github.com/headless-auth-relay/internal/pkg/pkce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.AuthSession) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.AuthSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) AuthorizeURL(state, nonce, challenge string) string {
	return m.Called(state, nonce, challenge).String(0)
}
func (m *mockProvider) Exchange(ctx context.Context, code, codeVerifier string) (*provider.TokenResponse, error) {
	args := m.Called(ctx, code, codeVerifier)
	if t, _ := args.Get(0).(*provider.TokenResponse); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func liveSession(sessionID string) *domain.AuthSession {
	now := time.Now().UTC()
	return &domain.AuthSession{
		SessionID:    sessionID,
		CodeVerifier: "verifier-1",
		State:        "state-1",
		Nonce:        "nonce-1",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour).Unix(),
	}
}

// idToken builds an unsigned id_token carrying the given nonce claim.
func idToken(t *testing.T, nonce string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"nonce": nonce})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

// --- BeginAuth ---

func TestBeginAuth_StoresSessionAndBuildsURL(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}

	var stored *domain.AuthSession
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.AuthSession")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.AuthSession) }).
		Return(nil)
	pc.On("AuthorizeURL", mock.Anything, mock.Anything, mock.Anything).Return("https://idp/authorize?x=y")

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	authURL, sess, err := svc.BeginAuth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://idp/authorize?x=y", authURL)
	require.NotNil(t, stored)
	assert.Equal(t, stored, sess)
	assert.Len(t, sess.CodeVerifier, 64)
	assert.NotEmpty(t, sess.State)
	assert.NotEmpty(t, sess.Nonce)
	assert.NotEqual(t, sess.State, sess.Nonce)
	assert.Greater(t, sess.ExpiresAt, time.Now().Unix())

	// The challenge handed to the provider must derive from the stored verifier.
	pc.AssertCalled(t, "AuthorizeURL", sess.State, sess.Nonce, pkce.Challenge(sess.CodeVerifier))
}

func TestBeginAuth_StateIsFreshPerFlow(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Put", mock.Anything, mock.Anything).Return(nil)
	pc.On("AuthorizeURL", mock.Anything, mock.Anything, mock.Anything).Return("u")

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, s1, err := svc.BeginAuth(context.Background())
	require.NoError(t, err)
	_, s2, err := svc.BeginAuth(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, s1.State, s2.State)
	assert.NotEqual(t, s1.CodeVerifier, s2.CodeVerifier)
}

func TestBeginAuth_StorePutError(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, _, err := svc.BeginAuth(context.Background())
	require.Error(t, err)
	pc.AssertNotCalled(t, "AuthorizeURL", mock.Anything, mock.Anything, mock.Anything)
}

// --- ExchangeCode ---

func TestExchangeCode_HappyPath(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	sess := liveSession("sess1")

	ss.On("Get", mock.Anything, "sess1").Return(sess, nil)
	pc.On("Exchange", mock.Anything, "code1", "verifier-1").
		Return(&provider.TokenResponse{AccessToken: "tok1"}, nil)
	ss.On("Delete", mock.Anything, "sess1").Return(nil)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	tok, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.NoError(t, err)
	assert.Equal(t, "tok1", tok)
	ss.AssertCalled(t, "Delete", mock.Anything, "sess1")
}

func TestExchangeCode_NoSessionCookie(t *testing.T) {
	svc := NewService(ServiceDeps{Sessions: &mockSessionStore{}, Provider: &mockProvider{}})
	_, err := svc.ExchangeCode(context.Background(), "", "code1", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestExchangeCode_SessionNotFound(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Get", mock.Anything, "sess1").Return(nil, domain.ErrNotFound)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	pc.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeCode_StateMismatch(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Get", mock.Anything, "sess1").Return(liveSession("sess1"), nil)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "forged-state")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	pc.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeCode_ExpiredSession(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	sess := liveSession("sess1")
	sess.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	ss.On("Get", mock.Anything, "sess1").Return(sess, nil)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestExchangeCode_UpstreamFailurePropagates(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Get", mock.Anything, "sess1").Return(liveSession("sess1"), nil)
	pc.On("Exchange", mock.Anything, "code1", "verifier-1").Return(nil, domain.ErrUpstream)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	ss.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestExchangeCode_IDTokenNonceChecked(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Get", mock.Anything, "sess1").Return(liveSession("sess1"), nil)
	ss.On("Delete", mock.Anything, "sess1").Return(nil)
	pc.On("Exchange", mock.Anything, "code1", "verifier-1").
		Return(&provider.TokenResponse{AccessToken: "tok1", IDToken: idToken(t, "nonce-1")}, nil)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	tok, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.NoError(t, err)
	assert.Equal(t, "tok1", tok)
}

func TestExchangeCode_IDTokenNonceMismatch(t *testing.T) {
	ss := &mockSessionStore{}
	pc := &mockProvider{}
	ss.On("Get", mock.Anything, "sess1").Return(liveSession("sess1"), nil)
	pc.On("Exchange", mock.Anything, "code1", "verifier-1").
		Return(&provider.TokenResponse{AccessToken: "tok1", IDToken: idToken(t, "replayed-nonce")}, nil)

	svc := NewService(ServiceDeps{Sessions: ss, Provider: pc})
	_, err := svc.ExchangeCode(context.Background(), "sess1", "code1", "state-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ss.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
