// Package testutil builds in-memory stores for package tests: sqlite behind
// gorm for rows and miniredis for insert events.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/broker"
	"github.com/oggyb/muzz-chat/internal/config"
	"github.com/oggyb/muzz-chat/internal/credential"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/logger"
	"github.com/oggyb/muzz-chat/internal/session"
)

// NewConfig returns a config usable without any environment.
func NewConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Log.Level = "error"
	cfg.Auth.PasswordSalt = "test-salt"
	cfg.Auth.HashIterations = 1000
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Chat.OptimisticSend = true
	cfg.Chat.MaxMessageLength = 2000
	cfg.Store.BreakerFailures = 5
	cfg.Store.BreakerTimeout = time.Second
	return cfg
}

// NewDB opens a migrated in-memory sqlite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database alive and avoids
	// "database is locked" between concurrent queries
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewBroker starts a miniredis server and a broker connected to it.
func NewBroker(t *testing.T) (*broker.RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := NewConfig()
	cfg.Redis.Addr = mr.Addr()
	b := broker.NewRedisBroker(cfg)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

// Env is a complete in-memory store.
type Env struct {
	Config  *config.Config
	DB      *gorm.DB
	Broker  *broker.RedisBroker
	Redis   *miniredis.Miniredis
	Gateway *gateway.Gateway
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	cfg := NewConfig()
	database := NewDB(t)
	b, mr := NewBroker(t)
	return &Env{
		Config:  cfg,
		DB:      database,
		Broker:  b,
		Redis:   mr,
		Gateway: gateway.New(cfg, database, b, logger.Discard()),
	}
}

// AppContext wires the env into the shared dependency container.
func (e *Env) AppContext(t *testing.T) *app.AppContext {
	t.Helper()
	hasher, err := credential.NewHasher(e.Config.Auth.PasswordSalt, e.Config.Auth.HashIterations)
	require.NoError(t, err)
	tokens, err := session.NewTokens(e.Config.Auth.TokenSecret)
	require.NoError(t, err)
	return app.New(e.Config, e.DB, e.Broker, e.Gateway, hasher, tokens, logger.Discard())
}

// CreateUser inserts a user directly, bypassing sign-up validation.
func CreateUser(t *testing.T, database *gorm.DB, username string, gender db.Gender) db.User {
	t.Helper()
	u := db.User{
		Username:     username,
		Email:        username + "@example.com",
		Gender:       gender,
		PasswordHash: "x",
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}

// Like records from -> to directly in the store.
func Like(t *testing.T, database *gorm.DB, from, to uint64) {
	t.Helper()
	require.NoError(t, database.Create(&db.Like{Judgment: db.Judgment{UserID: from, TargetUserID: to}}).Error)
}

// Dislike records from -> to directly in the store.
func Dislike(t *testing.T, database *gorm.DB, from, to uint64) {
	t.Helper()
	require.NoError(t, database.Create(&db.Dislike{Judgment: db.Judgment{UserID: from, TargetUserID: to}}).Error)
}
