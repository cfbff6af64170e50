package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/headless-auth-relay/internal/application/relay"
	"github.com/headless-auth-relay/internal/application/verification"
	"github.com/headless-auth-relay/internal/config"
	"github.com/headless-auth-relay/internal/transport/http/handler"
	appmiddleware "github.com/headless-auth-relay/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10. Every endpoint here is public and
	// either triggers outbound calls or accepts guessable codes.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	relaySvc := relay.NewService(relay.ServiceDeps{
		Sessions: deps.AuthSessionRepo,
		Provider: deps.Provider,
	})
	verifySvc := verification.NewService(verification.ServiceDeps{
		Verifications: deps.VerificationRepo,
		Mailer:        deps.Mailer,
		SMSSender:     deps.SMSSender,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(relaySvc, cfg)
	emailH := handler.NewEmailVerifyHandler(verifySvc, cfg.AuthLandingURL)
	phoneH := handler.NewPhoneVerifyHandler(verifySvc)

	r.Get("/health", healthH.Ping)

	r.Group(func(r chi.Router) {
		r.Use(sensitiveRL.Limit)

		r.Get("/auth", authH.Begin)
		r.Post("/auth", authH.Begin)
		r.Get("/callback", authH.Callback)
		r.Get("/logout", authH.Logout)

		r.Route("/authenticate", func(r chi.Router) {
			r.Post("/email/validate", emailH.Validate)
			r.Get("/email/validate", emailH.ValidateInfo)
			r.Post("/email/verify", emailH.Verify)

			if deps.SMSSender != nil {
				r.Post("/phone/validate", phoneH.Validate)
				r.Post("/phone/verify", phoneH.Verify)
			}
		})
	})

	return r
}
