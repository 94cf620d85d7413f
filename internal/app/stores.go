package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/goodnews/internal/cloud"
	"github.com/MrSnakeDoc/goodnews/internal/config"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/migrate"
	"github.com/MrSnakeDoc/goodnews/internal/redis"
	"github.com/MrSnakeDoc/goodnews/internal/store/memory"
	"github.com/MrSnakeDoc/goodnews/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/goodnews/internal/store/redis"
)

// Stores are the backends selected by the configuration. Remote and Users
// are nil when cloud sync is disabled.
type Stores struct {
	Links  links.Store
	Tokens identity.TokenStore
	Remote cloud.Collection
	Users  identity.Users

	redisClient *goredis.Client
	redisStore  *redisstore.Store
	pg          *postgres.DB
}

// OpenStores connects the local store and, when configured, migrates and
// opens the remote collection.
func OpenStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.StoreMode {
	case config.StoreRedis:
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redisClient = client
		s.redisStore = redisstore.NewStore(client)
		s.Links = s.redisStore
		s.Tokens = s.redisStore
	default:
		log.Warn("using in-memory link store, links are lost on restart")
		s.Links = memory.New()
		s.Tokens = memory.NewTokens()
	}

	if !cfg.SyncEnabled() {
		log.Info("postgres not configured, cloud sync disabled")
		return s, nil
	}

	if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
		s.Close(log)
		return nil, err
	}
	log.Info("postgres migrations applied")

	db, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		s.Close(log)
		return nil, err
	}
	s.pg = db
	s.Remote = postgres.NewCollectionRepo(db)
	s.Users = postgres.NewUserRepo(db)
	return s, nil
}

// RedisPinger returns the redis store, or nil in memory mode.
func (s *Stores) RedisPinger() deps.Pinger {
	if s.redisStore == nil {
		return nil
	}
	return s.redisStore
}

// PostgresPinger returns the database, or nil when sync is disabled.
func (s *Stores) PostgresPinger() deps.Pinger {
	if s.pg == nil {
		return nil
	}
	return s.pg
}

// Close releases every open connection.
func (s *Stores) Close(log logger.Logger) {
	if s.pg != nil {
		s.pg.Close()
		log.Info("✅ Postgres closed cleanly")
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Warnf("failed to close redis: %v", err)
		} else {
			log.Info("✅ Redis closed cleanly")
		}
	}
}
