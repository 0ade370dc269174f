package postgres

import (
	"github.com/upb/todo-app/config"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories over one lazy handle
type RepositoryFactory struct {
	db     *LazyDB
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory. The database is
// not contacted until the first repository call.
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{
		db:     NewLazyDB(cfg.Database, logger),
		logger: logger,
	}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users: NewUserRepository(f.db, f.logger),
		Todos: NewTodoRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the lazy database handle
func (f *RepositoryFactory) GetDB() *LazyDB {
	return f.db
}

// Close closes the database connection if it was opened
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
