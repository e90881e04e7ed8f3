package container

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/habitnest-api/app/db"
	"github.com/FACorreiaa/habitnest-api/app/lock"
	"github.com/FACorreiaa/habitnest-api/config"
	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/goals"
	"github.com/FACorreiaa/habitnest-api/internal/api/schedule"
	"github.com/FACorreiaa/habitnest-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Pool            *pgxpool.Pool
	Locker          lock.Locker
	Tokens          *auth.TokenManager
	AuthHandler     *auth.HandlerImpl
	GoalsHandler    *goals.HandlerImpl
	ScheduleHandler *schedule.HandlerImpl
	Authenticate    func(next http.Handler) http.Handler

	closers []func()
}

// NewContainer opens the pool and the lock backend and wires every
// repository, service and handler on top of them.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}
	pool, err := database.Init(ctx, dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}
	c.Pool = pool
	c.closers = append(c.closers, pool.Close)

	if cfg.Redis.URL != "" {
		rl, err := lock.NewRedisLocker(ctx, cfg.Redis.URL, cfg.Redis.LockTTL, cfg.Redis.LockWait)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.Any("error", err))
			c.Close()
			return nil, err
		}
		logger.Info("Schedule writes serialized through redis")
		c.Locker = rl
		c.closers = append(c.closers, func() { _ = rl.Close() })
	} else {
		logger.Info("Schedule writes serialized in process")
		c.Locker = lock.NewLocalLocker(cfg.Redis.LockWait)
	}

	if err := c.wire(); err != nil {
		logger.Error("Failed to wire services", slog.Any("error", err))
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDeps wires the services on an already opened pool and locker. The
// caller keeps ownership of both.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, locker lock.Locker) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Pool: pool, Locker: locker}
	if err := c.wire(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) wire() error {
	tokens, err := auth.NewTokenManager(c.Config.JWT)
	if err != nil {
		return err
	}
	c.Tokens = tokens

	authRepo := auth.NewPostgresAuthRepo(c.Pool, c.Logger)
	authService := auth.NewAuthService(authRepo, tokens, c.Logger)
	c.AuthHandler = auth.NewHandlerImpl(authService, c.Logger)
	c.Authenticate = auth.Authenticate(c.Logger, tokens, auth.NewCachedPrincipalStore(authRepo, c.Config.Auth.PrincipalCacheTTL))

	goalRepo := goals.NewPostgresGoalRepo(c.Pool, c.Logger)
	goalService := goals.NewGoalService(goalRepo, c.Logger)
	c.GoalsHandler = goals.NewHandlerImpl(goalService, c.Logger)

	scheduleRepo := schedule.NewPostgresScheduleRepo(c.Pool, c.Logger)
	scheduleService := schedule.NewScheduleService(scheduleRepo, c.Locker, c.Logger)
	c.ScheduleHandler = schedule.NewHandlerImpl(scheduleService, c.Logger)
	return nil
}

// Router builds the HTTP handler for the API.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		GoalsHandler:           c.GoalsHandler,
		ScheduleHandler:        c.ScheduleHandler,
		AuthenticateMiddleware: c.Authenticate,
		Logger:                 c.Logger,
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
		RequestTimeout:         c.Config.Server.Timeout,
	})
}

// Close releases all resources held by the container, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
