package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/config"
	v1 "github.com/adanyl0v/go-task-api/internal/delivery/http/v1"
	"github.com/adanyl0v/go-task-api/internal/sessions"
	"github.com/adanyl0v/go-task-api/internal/storage"
	"github.com/adanyl0v/go-task-api/internal/storage/memory"
	"github.com/adanyl0v/go-task-api/internal/storage/postgres"
)

// stores groups the backends the services run on.
type stores struct {
	users    storage.UserRepository
	tasks    storage.TaskRepository
	sessions sessions.Store
	checks   []v1.HealthCheck
}

// newStores picks the repositories for the storage driver and the
// session store for the redis settings. A nil pool or client is
// only allowed when the config doesn't ask for it.
func newStores(logger zerolog.Logger, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) stores {
	var s stores

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		s.users = postgres.NewUserRepository(logger, pool)
		s.tasks = postgres.NewTaskRepository(logger, pool)
		s.checks = append(s.checks, v1.HealthCheck{
			Name: "postgres",
			Ping: pool.Ping,
		})
	default:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		s.users = memory.NewUserRepository()
		s.tasks = memory.NewTaskRepository()
	}

	if cfg.Redis.Enabled {
		s.sessions = sessions.NewRedisStore(logger, rdb)
		s.checks = append(s.checks, v1.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	} else {
		logger.Warn().Msg("using in-memory session store, sessions are lost on restart")
		s.sessions = sessions.NewMemoryStore()
	}
	return s
}
