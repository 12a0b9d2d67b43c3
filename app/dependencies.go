package app

import (
	"context"
	"fmt"

	"github.com/jwtpizza/pizza-service/config"
	"github.com/jwtpizza/pizza-service/handlers"
	tokens "github.com/jwtpizza/pizza-service/internal/auth"
	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/middleware"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/jwtpizza/pizza-service/repositories/memory"
	"github.com/jwtpizza/pizza-service/repositories/postgres"
	authsvc "github.com/jwtpizza/pizza-service/services/auth"
	"github.com/jwtpizza/pizza-service/services/franchise"
	"github.com/jwtpizza/pizza-service/services/fulfillment"
	"github.com/jwtpizza/pizza-service/services/identity"
	"github.com/jwtpizza/pizza-service/services/order"
	"github.com/jwtpizza/pizza-service/services/session"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	Store  repositories.Store

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	Engine     *policy.Engine
	Sessions   *session.Store
	Identity   *identity.Service
	Auth       *authsvc.Service
	Franchises *franchise.Service
	Orders     *order.Service
	Factory    *fulfillment.Client

	// HTTP
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	FranchiseHandler *handlers.FranchiseHandler
	OrderHandler     *handlers.OrderHandler
	HealthHandler    *handlers.HealthHandler
	DocsHandler      *handlers.DocsHandler
}

// NewDependencies opens the configured storage backend and wires every service on top of it
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	deps, err := NewDependenciesWithStore(ctx, cfg, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithStore wires the application on an already opened store
func NewDependenciesWithStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, store repositories.Store) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}

	deps.initRepositories()

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initHandlers(cfg)

	if err := deps.bootstrap(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to bootstrap data: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("storage", cfg.Storage.Driver))
	return deps, nil
}

// openStore selects the repository backend
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(logger), nil
	case config.StorageDriverPostgres:
		factory, err := postgres.NewRepositoryFactory(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create repository factory: %w", err)
		}
		return preparePostgres(ctx, cfg, factory, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// preparePostgres verifies the pool and optionally creates the schema.
// The factory is closed when either step fails.
func preparePostgres(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (repositories.Store, error) {
	if err := factory.HealthCheck(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if cfg.Storage.InitSchema {
		if err := factory.InitSchema(ctx); err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	logger.Info("postgres storage ready", zap.Bool("init_schema", cfg.Storage.InitSchema))
	return factory, nil
}

func (d *Dependencies) initRepositories() {
	d.Repos = d.Store.NewRepositories()
	d.TxManager = d.Store.GetTransactionManager()
	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices(cfg *config.Config) error {
	codec, err := tokens.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	d.Engine = policy.NewEngine()
	d.Sessions = session.NewStore(d.Repos.Sessions, d.Logger)
	d.Identity = identity.NewService(d.Repos.Users, d.TxManager, tokens.NewPasswordHasher(cfg.Auth.BcryptCost), d.Logger)
	d.Auth = authsvc.NewService(codec, d.Sessions, d.Identity, d.Logger)
	d.Franchises = franchise.NewService(d.Repos.Franchises, d.Identity, d.TxManager, d.Engine, d.Logger)
	d.Factory = fulfillment.NewClient(cfg.Factory, nil, d.Logger)
	d.Orders = order.NewService(d.Repos.Menu, d.Repos.Orders, d.TxManager, d.Engine, d.Factory, d.Logger)

	if cfg.Factory.APIKey == "" {
		d.Logger.Warn("factory api key not set, orders will fail to fulfill")
	}
	return nil
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Auth, d.Logger)
	d.AuthHandler = handlers.NewAuthHandler(d.Auth, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.Identity, d.Auth, d.Engine, d.Logger)
	d.FranchiseHandler = handlers.NewFranchiseHandler(d.Franchises, d.Logger)
	d.OrderHandler = handlers.NewOrderHandler(d.Orders, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.Store, d.Logger)

	dbName := cfg.Storage.Driver
	if cfg.Storage.Driver == config.StorageDriverPostgres {
		dbName = cfg.Database.LogString()
	}
	d.DocsHandler = handlers.NewDocsHandler(cfg.Version, handlers.DocsConfig{
		Factory: d.Factory.URL(),
		DB:      dbName,
	})
}

// bootstrap seeds the administrator and drops sessions that expired while the service was down
func (d *Dependencies) bootstrap(ctx context.Context, cfg *config.Config) error {
	if cfg.Admin.Email != "" {
		created, err := d.Identity.SeedAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		if created {
			d.Logger.Info("admin user created", zap.String("email", cfg.Admin.Email))
		}
	}

	pruned, err := d.Sessions.Prune(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}
	if pruned > 0 {
		d.Logger.Info("expired sessions removed", zap.Int64("count", pruned))
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		} else {
			d.Logger.Info("storage closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
