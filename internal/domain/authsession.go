package domain

import "time"

// AuthSession holds the server side of one authorization-code flow: the PKCE
// verifier plus the state and nonce sent to the identity provider. It is
// created at /auth, consumed at /callback, and correlated to the browser by a
// session cookie carrying SessionID.
type AuthSession struct {
	SessionID    string    `json:"id" dynamodbav:"session_id"`
	CodeVerifier string    `json:"-" dynamodbav:"code_verifier"`
	State        string    `json:"-" dynamodbav:"state"`
	Nonce        string    `json:"-" dynamodbav:"nonce"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
