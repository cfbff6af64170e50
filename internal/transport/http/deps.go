package http

import (
	"github.com/headless-auth-relay/internal/application/relay"
	"github.com/headless-auth-relay/internal/application/verification"
	"github.com/headless-auth-relay/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. The concrete
// interfaces the services consume live next to the services; this struct only
// carries them from main to the router.
type Deps struct {
	AuthSessionRepo  relay.SessionStore
	VerificationRepo verification.VerificationStore
	Provider         relay.ProviderClient
	Mailer           verification.Mailer
	SMSSender        sns.SMSSender // optional; phone routes are mounted only when present
}
