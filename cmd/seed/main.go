package main

import (
	"context"
	"flag"
	"log"

	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/broker"
	"github.com/oggyb/muzz-chat/internal/config"
	"github.com/oggyb/muzz-chat/internal/credential"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/logger"
	"github.com/oggyb/muzz-chat/internal/seed"
)

func main() {
	opt := seed.DefaultOptions()
	flag.IntVar(&opt.Users, "users", opt.Users, "number of users to create")
	flag.IntVar(&opt.LikePercent, "like-percent", opt.LikePercent, "chance (0-100) that a judgment is a like")
	flag.IntVar(&opt.MessagesPerMatch, "messages", opt.MessagesPerMatch, "messages exchanged per match")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)

	if cfg.Auth.PasswordSalt == "" {
		log.Fatalf("PASSWORD_SALT must be set")
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	eventBroker := broker.NewRedisBroker(cfg)
	defer eventBroker.Close()

	hasher, err := credential.NewHasher(cfg.Auth.PasswordSalt, cfg.Auth.HashIterations)
	if err != nil {
		log.Fatalf("failed to init hasher: %v", err)
	}

	gw := gateway.New(cfg, database, eventBroker, logger.Component("gateway"))
	appCtx := app.New(cfg, database, eventBroker, gw, hasher, nil, logger.L())

	if err := seed.Run(context.Background(), appCtx, opt); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding completed.")
}
