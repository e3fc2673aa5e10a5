package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/household-ledger/internal/admin"
	"github.com/nimasrn/household-ledger/internal/config"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/internal/services"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(envPath()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg := config.Get()
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.AdminAPIToken == "" {
		log.Warn().Msg("ADMIN_API_TOKEN is empty, every request will be rejected")
	}

	db, err := pg.Create(pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}, cfg.IsDev())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed connecting to postgres")
	}

	family := services.NewFamilyService(repository.NewProfileRepository(pg.Wrap(db)))
	identity := admin.NewIdentityClient(admin.IdentityConfig{
		BaseURL:     cfg.IdentityBaseURL,
		APIKey:      cfg.IdentityAPIKey,
		RedirectURL: cfg.IdentityInviteURL,
		Timeout:     cfg.IdentityTimeout,
	})
	router := admin.SetupRouter(admin.NewHandler(admin.NewService(identity, family)), cfg.AdminAPIToken)

	srv := &http.Server{
		Addr:         cfg.AdminListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Admin server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func envPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			return strings.TrimPrefix(v, "--env=")
		}
	}
	return ""
}
