package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/protegi/taxid-api/internal/config"
	"github.com/protegi/taxid-api/internal/store"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	pool        *pgxpool.Pool

	CacheService      CacheServiceInterface
	RateLimiter       RateLimiterInterface
	RegistryClient    RegistryClientInterface
	ValidationService ValidationServiceInterface
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initRedis()

	if err := container.initPostgres(); err != nil {
		return nil, err
	}

	container.initServices()

	return container, nil
}

// initRedis initializes the Redis client; the service degrades to in-memory
// counters and cache when Redis is unreachable
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Redis.DialTimeout)
	defer cancel()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.WithError(err).Warn("Redis connection failed, rate limit counters and registry cache will run in memory")
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}
}

// initPostgres initializes the pgx pool and runs migrations; the service
// degrades to in-memory stores when the database is unreachable
func (c *Container) initPostgres() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := store.NewPool(ctx, c.config.Database)
	if err != nil {
		c.logger.WithError(err).Warn("Database connection failed, attempt log and duplicate guard will run in memory")
		return nil
	}

	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	c.pool = pool
	c.logger.Info("Database connection established")
	return nil
}

// initServices initializes all services
func (c *Container) initServices() {
	c.CacheService = NewCacheService(c.redisClient, c.config.Registry.CacheTTL, c.logger)
	c.RateLimiter = NewRateLimiter(c.redisClient, c.config.Validation, c.logger)
	c.RegistryClient = NewReceitaClient(c.config.Registry, c.CacheService, c.logger)

	compat := NewCompatChecker(c.config.Validation.CNAEPrefixes)

	var (
		attempts  AttemptStore
		providers ProviderStore
		accounts  AccountStore
	)
	if c.pool != nil {
		attempts = store.NewPostgresAttemptStore(c.pool)
		providers = store.NewPostgresProviderStore(c.pool)
		accounts = store.NewPostgresAccountStore(c.pool)
	} else {
		attempts = store.NewMemoryAttemptStore()
		providers = store.NewMemoryProviderStore()
		accounts = store.NewMemoryAccountStore()
	}

	c.ValidationService = NewValidationService(
		c.RateLimiter, c.RegistryClient, compat,
		attempts, providers, accounts, c.logger,
	)
}

// Close closes all service connections
func (c *Container) Close() error {
	var errs []error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing Redis: %w", err))
		}
	}

	if c.pool != nil {
		c.pool.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			health["redis"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["redis"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["redis"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.pool.Ping(ctx); err != nil {
			health["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			health["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		health["database"] = map[string]interface{}{
			"status": "disabled",
		}
	}

	if c.ValidationService != nil {
		health["validation"] = c.ValidationService.Health()
	}

	return health
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}
