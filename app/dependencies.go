package app

import (
	"context"
	"fmt"

	"github.com/upb/todo-app/auth"
	"github.com/upb/todo-app/config"
	"github.com/upb/todo-app/middleware"
	"github.com/upb/todo-app/repositories"
	"github.com/upb/todo-app/repositories/postgres"
	"github.com/upb/todo-app/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.LazyDB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	Todos     repositories.TodoRepository
	TxManager repositories.TransactionManager

	// Services
	UserService *services.UserService
	TodoService *services.TodoService

	// Auth
	SessionCodec    *auth.SessionCodec
	SessionResolver *middleware.SessionResolver
	Gate            *middleware.Gate
	authHandler     *auth.Handler
}

// AuthHandler returns the auth handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// NewDependencies creates and wires up all application dependencies.
// Storage is not dialed here: the first repository call opens it, so the
// service starts and degrades when the database is down.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initDatabase(cfg)
	deps.initRepositories()
	deps.initServices(cfg)

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.Bool("dev_mode", cfg.Auth.DevMode),
		zap.Bool("storage_configured", cfg.Database.Enabled()))
	return deps, nil
}

// initDatabase creates the lazy storage handle and factory
func (d *Dependencies) initDatabase(cfg *config.Config) {
	d.RepoFactory = postgres.NewRepositoryFactory(cfg, d.Logger)
	d.DB = d.RepoFactory.GetDB()

	if !cfg.Database.Enabled() {
		d.Logger.Warn("DATABASE_URL not set, running without storage")
		return
	}
	d.Logger.Info("database configured",
		zap.String("connection", cfg.Database.LogString()))
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Todos = repos.Todos
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.UserService = services.NewUserService(d.Users, cfg.Auth.OwnerOpenID, d.Logger)
	d.TodoService = services.NewTodoService(d.Todos, d.TxManager, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	codec, err := auth.NewSessionCodec(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}
	d.SessionCodec = codec

	d.SessionResolver = middleware.NewSessionResolver(codec, d.UserService, auth.SessionCookieName, cfg.Auth.DevMode, d.Logger)
	d.Gate = middleware.NewGate(d.Logger)

	if cfg.OAuth.ServerURL == "" {
		d.Logger.Warn("OAUTH_SERVER_URL not set, provider sign-in disabled")
	}
	userInfo := services.NewProviderUserInfoClient(cfg.OAuth)
	d.authHandler = auth.NewHandler(cfg, codec, userInfo, d.UserService, d.Logger)

	if cfg.Auth.DevMode {
		d.Logger.Warn("dev mode enabled, requests without a session act as the dev user")
	}
	d.Logger.Info("auth handler initialized")
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
