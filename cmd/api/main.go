package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/headless-auth-relay/internal/config"
	"github.com/headless-auth-relay/internal/infrastructure/dynamo"
	"github.com/headless-auth-relay/internal/infrastructure/provider"
	"github.com/headless-auth-relay/internal/infrastructure/smtp"
	"github.com/headless-auth-relay/internal/infrastructure/sns"
	transporthttp "github.com/headless-auth-relay/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// SMTP mailer. Check the connection up front so a bad mail config is
	// visible at startup instead of on the first verification request.
	mailer := smtp.NewMailer(cfg)
	if err := mailer.Verify(); err != nil {
		log.Printf("WARN: SMTP connection check failed: %v", err)
	}

	// SNS SMS sender, optional. Phone verification is disabled without it.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		AuthSessionRepo:  dynamo.NewAuthSessionRepo(dynamoClient, cfg.DynamoTables.AuthSessions),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		Provider:         provider.NewClient(cfg),
		Mailer:           mailer,
		SMSSender:        smsSender,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
