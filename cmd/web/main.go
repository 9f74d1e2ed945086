package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopfront/internal/apiclient"
	"shopfront/internal/config"
	"shopfront/internal/session"
	"shopfront/internal/webapp"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateWeb(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting shopfront web server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Discover the identity provider
	provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
	if err != nil {
		return fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	// The end-session endpoint is a discovery extension; absence just
	// downgrades logout to local-only.
	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		logger.Warn().Err(err).Msg("failed to read provider discovery extensions")
	}
	if extra.EndSessionEndpoint == "" {
		logger.Warn().Msg("provider advertises no end-session endpoint, logout will be local-only")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OIDC.ClientID,
		ClientSecret: cfg.OIDC.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.OIDC.RedirectURL,
		Scopes:       cfg.OIDC.Scopes,
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDC.ClientID})

	// Session store, silent refresh, and the API client
	store := session.NewCookieStore(cfg.Session)
	refresher := session.NewRefresher(oauthCfg, verifier, logger)
	tokenCache := &apiclient.TokenCache{}
	api := apiclient.New(cfg.Web.APIBaseURL, tokenCache, logger)

	handlers, err := webapp.NewHandlers(
		store,
		oauthCfg,
		verifier,
		api,
		tokenCache,
		extra.EndSessionEndpoint,
		cfg.OIDC.ClientID,
		cfg.OIDC.PostLogoutRedirectURL,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize web handlers: %w", err)
	}

	mux := webapp.NewRouter(handlers, store, refresher, tokenCache, logger)

	server := &http.Server{
		Addr:         cfg.Web.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Web.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
