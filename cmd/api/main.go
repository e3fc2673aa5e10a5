package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/household-ledger/internal/config"
	"github.com/nimasrn/household-ledger/internal/handlers"
	"github.com/nimasrn/household-ledger/internal/locker"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/internal/services"
	xhttp "github.com/nimasrn/household-ledger/pkg/http"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/nimasrn/household-ledger/pkg/prom"
	"github.com/nimasrn/household-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting ledger api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	if cfg.HttpServerReadTimeout > 0 {
		s.Server.ReadTimeout = cfg.HttpServerReadTimeout
	}
	if cfg.HttpServerWriteTimeout > 0 {
		s.Server.WriteTimeout = cfg.HttpServerWriteTimeout
	}
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware(cfg.HttpCORSAllowOrigin))
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     cfg.PostgresReadUser,
		Host:     cfg.PostgresReadHost,
		Port:     cfg.PostgresReadPort,
		Password: cfg.PostgresReadPassword,
		Database: cfg.PostgresReadDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}
	writeConf := pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, cfg.IsDev())
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	var confirmLocker locker.Locker = locker.Noop{}
	if cfg.RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{cfg.RedisAddr},
			ClientName: cfg.AppName,
			DB:         cfg.RedisDatabase,
			Username:   cfg.RedisUsername,
			Password:   cfg.RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		defer redisAdap.Close()
		confirmLocker = locker.NewRedisLocker(redisAdap, cfg.ConfirmLockTTL)
	} else {
		logger.Warn("REDIS_ADDR is empty, confirmations are serialized by the database only")
	}

	if cfg.AppDebugMetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed registering metrics", "error", err)
			return
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	// repositories
	payableRepo := repository.NewPayableRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	cardTxRepo := repository.NewCardTransactionRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	piggyBankRepo := repository.NewPiggyBankRepository(db)

	// services
	familyService := services.NewFamilyService(profileRepo)
	opts := []services.Option{services.WithLocker(confirmLocker)}
	if cfg.ConfirmBestEffortCardLink {
		opts = append(opts, services.WithBestEffortCardLink())
	}
	obligationService := services.NewObligationService(services.Stores{
		Payables:         payableRepo,
		Receivables:      receivableRepo,
		CardTransactions: cardTxRepo,
		Linked:           cardTxRepo,
	}, lookupRepo, familyService, db, opts...)
	piggyBankService := services.NewPiggyBankService(piggyBankRepo, familyService, db)
	lookupService := services.NewLookupService(lookupRepo, familyService)

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(db))
	handlers.RegisterObligationRoutes(g, handlers.NewObligationHandler(obligationService))
	handlers.RegisterPiggyBankRoutes(g, handlers.NewPiggyBankHandler(piggyBankService))
	handlers.RegisterLookupRoutes(g, handlers.NewLookupHandler(lookupService))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(cfg.HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
