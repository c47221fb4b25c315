package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskManager/internal/config"
	"taskManager/internal/graph"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	handler    http.Handler
	repository service.Repository
	sweeper    *worker.VisitorSweeper
	shutdowns  []func() // run in reverse order on Close
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Shutting down logger")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repository = repo

	palette := a.config.Palette()
	tagService := service.NewTagService(repo, palette)
	taskService := service.NewTaskService(repo, repo)
	graphService := service.NewGraphService(repo, repo, graph.NewBuilder(palette))
	userService := service.NewUserService(repo)

	var limiter *middleware.RateLimiter
	if rl := a.config.RateLimit; rl.RPS > 0 {
		limiter = middleware.NewRateLimiter(rl.RPS, rl.Burst)
		a.sweeper = worker.NewVisitorSweeper(limiter, &rl.SweepInterval, &rl.IdleTTL)
	}

	router := NewRouter(RouterConfig{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		RequestTimeout: a.config.Server.RequestTimeout,
		RateLimiter:    limiter,
		Auth: middleware.AuthConfig{
			Secret: []byte(a.config.Auth.JWTSecret),
			Issuer: a.config.Auth.Issuer,
		},
	}, Handlers{
		Health: handlers.NewHealthHandler(taskService),
		Tasks:  handlers.NewTaskHandler(taskService),
		Tags:   handlers.NewTagHandler(tagService),
		Graph:  handlers.NewGraphHandler(graphService),
		Users:  handlers.NewUserHandler(userService),
	})
	a.handler = otelhttp.NewHandler(router, "task-manager")

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Application initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) (service.Repository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		if db.MigrateOnStart {
			if err := postgres.MigrateUp(db.URL); err != nil {
				return nil, fmt.Errorf("migrating database: %w", err)
			}
		}
		storage, err := postgres.New(ctx, db.URL, postgres.PoolConfig{
			MaxConns:        db.MaxConnections,
			MinConns:        db.MinConnections,
			MaxConnIdleTime: db.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil
	case config.RepositoryInMemory:
		logger.Warn("Using in-memory repository, data is lost on restart")
		return inmemory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

// Handler exposes the full HTTP stack, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	if a.sweeper != nil {
		g.Go(func() error {
			a.sweeper.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Close()
	return err
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
