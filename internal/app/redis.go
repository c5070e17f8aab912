package app

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/adanyl0v/go-task-api/internal/config"
)

var globalRedisClient *redis.Client

// MustConnectRedis connects to the refresh session store.
// It does nothing if redis is disabled.
func MustConnectRedis() {
	cfg := config.Global().Redis
	if !cfg.Enabled {
		return
	}

	options := &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	globalRedisClient = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err := globalRedisClient.Ping(ctx).Err()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping redis")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to redis")
}

func DisconnectRedis() {
	if globalRedisClient == nil {
		return
	}

	err := globalRedisClient.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close redis client")
		return
	}
	globalLogger.Info().Msg("disconnected from redis")
}
