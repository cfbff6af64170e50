package config

import (
	"fmt"
	"os"
	"strings"
)

// Token delivery modes for /callback. The redirect form is the right one for
// browser SPA flows; JSON suits programmatic clients. A deployment picks one.
const (
	DeliveryRedirect = "redirect"
	DeliveryJSON     = "json"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// Identity provider (headless customer-account API).
	ClientID              string
	AuthorizationEndpoint string
	TokenEndpoint         string
	LogoutEndpoint        string
	RedirectURI           string

	// Where the relay hands the access token back to.
	TokenDelivery  string // "redirect" | "json"
	ClientAppURL   string // token redirect target for the SPA
	AuthLandingURL string // post-verification landing page

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Verifications string
	AuthSessions  string
}

// Load reads all configuration from environment variables. It fails with an
// enumerated list of every missing required key rather than the first one, so
// a misconfigured deployment is fixed in a single round trip.
func Load() (*Config, error) {
	required := []string{
		"HEADLESS_CLIENT_ID",
		"HEADLESS_AUTHORIZATION_ENDPOINT",
		"HEADLESS_TOKEN_ENDPOINT",
		"HEADLESS_LOGOUT_ENDPOINT",
		"REDIRECT_URI",
	}
	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		AppPort: getEnv("APP_PORT", "4000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		ClientID:              os.Getenv("HEADLESS_CLIENT_ID"),
		AuthorizationEndpoint: os.Getenv("HEADLESS_AUTHORIZATION_ENDPOINT"),
		TokenEndpoint:         os.Getenv("HEADLESS_TOKEN_ENDPOINT"),
		LogoutEndpoint:        os.Getenv("HEADLESS_LOGOUT_ENDPOINT"),
		RedirectURI:           os.Getenv("REDIRECT_URI"),

		TokenDelivery:  getEnv("TOKEN_DELIVERY", DeliveryRedirect),
		ClientAppURL:   getEnv("CLIENT_APP_URL", "http://localhost:5173"),
		AuthLandingURL: getEnv("BE_URL_LIVE", "http://localhost:5173") + "/auth",

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		SMTPHost:     getEnv("AWS_SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("AWS_SMTP_PORT", "465"),
		SMTPSender:   getEnv("AWS_SMTP_SENDER", "noreply@example.com"),
		SMTPUsername: getEnv("AWS_SMTP_USER", ""),
		SMTPPassword: getEnv("AWS_SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
	}

	if cfg.TokenDelivery != DeliveryRedirect && cfg.TokenDelivery != DeliveryJSON {
		return nil, fmt.Errorf("TOKEN_DELIVERY must be %q or %q, got %q", DeliveryRedirect, DeliveryJSON, cfg.TokenDelivery)
	}

	// Table names are prefixed by the per-environment database name so dev and
	// live deployments can share one AWS account.
	db := databaseName(cfg.AppEnv)
	cfg.DynamoTables = DynamoTables{
		Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", db+"_verifications"),
		AuthSessions:  getEnv("DYNAMO_TABLE_AUTH_SESSIONS", db+"_auth_sessions"),
	}

	return cfg, nil
}

func databaseName(appEnv string) string {
	if appEnv == "development" {
		return getEnv("DATABASE_DEV", "headless_relay_dev")
	}
	return getEnv("DATABASE_LIVE", "headless_relay")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
