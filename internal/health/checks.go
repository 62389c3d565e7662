package health

import (
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/config"
	"github.com/hellofresh/health-go/v5"
	healthMongo "github.com/hellofresh/health-go/v5/checks/mongo"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// NewHealthHandler registers a check for the configured cart store and, when
// the cache is enabled, for redis.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(healthChecks(cfg)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func healthChecks(cfg *config.Config) []health.Config {

	checks := []health.Config{storeCheck(cfg)}

	if !cfg.Cache.Disabled {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	return checks
}

func storeCheck(cfg *config.Config) health.Config {
	if cfg.Storage.Driver == config.StoragePostgres {
		return health.Config{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		}
	}

	return health.Config{
		Name:    "mongo",
		Timeout: 3 * time.Second,
		Check: healthMongo.New(healthMongo.Config{
			DSN: cfg.Mongo.URI,
		}),
	}
}
