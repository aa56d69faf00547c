package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/broker"
	"github.com/oggyb/muzz-chat/internal/config"
	"github.com/oggyb/muzz-chat/internal/credential"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/logger"
	"github.com/oggyb/muzz-chat/internal/metrics"
	"github.com/oggyb/muzz-chat/internal/seed"
	"github.com/oggyb/muzz-chat/internal/server"
	"github.com/oggyb/muzz-chat/internal/service/account"
	"github.com/oggyb/muzz-chat/internal/service/chat"
	"github.com/oggyb/muzz-chat/internal/service/explore"
	"github.com/oggyb/muzz-chat/internal/session"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// missing salt or token secret is fatal
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	eventBroker := broker.NewRedisBroker(cfg)
	if err := eventBroker.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer eventBroker.Close()

	hasher, err := credential.NewHasher(cfg.Auth.PasswordSalt, cfg.Auth.HashIterations)
	if err != nil {
		log.Error("failed to init hasher", "err", err)
		os.Exit(1)
	}
	tokens, err := session.NewTokens(cfg.Auth.TokenSecret)
	if err != nil {
		log.Error("failed to init tokens", "err", err)
		os.Exit(1)
	}

	gw := gateway.New(cfg, database, eventBroker, logger.Component("gateway"))
	appCtx := app.New(cfg, database, eventBroker, gw, hasher, tokens, log)

	if cfg.App.ENV == "development" {
		if seeded, err := seed.IsSeeded(ctx, database); err != nil {
			log.Error("failed to check seed state", "err", err)
		} else if !seeded {
			if err := seed.Run(ctx, appCtx, seed.DefaultOptions()); err != nil {
				log.Error("failed to seed", "err", err)
			}
		}
	}

	if cfg.Metrics.Addr != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		explore.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(ctx, appCtx, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
