package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-chat/internal/broker"
	"github.com/oggyb/muzz-chat/internal/config"
	"github.com/oggyb/muzz-chat/internal/credential"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/session"
)

// AppContext holds shared dependencies (config, store, broker, logger, etc.)
type AppContext struct {
	Config  *config.Config
	DB      *gorm.DB
	Broker  *broker.RedisBroker
	Gateway *gateway.Gateway
	Hasher  *credential.Hasher
	Tokens  *session.Tokens
	Logger  *slog.Logger
}

// New creates a new AppContext
func New(
	cfg *config.Config,
	db *gorm.DB,
	b *broker.RedisBroker,
	gw *gateway.Gateway,
	hasher *credential.Hasher,
	tokens *session.Tokens,
	logger *slog.Logger,
) *AppContext {
	return &AppContext{
		Config:  cfg,
		DB:      db,
		Broker:  b,
		Gateway: gw,
		Hasher:  hasher,
		Tokens:  tokens,
		Logger:  logger,
	}
}
