package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/upb/todo-app/config"
	"github.com/upb/todo-app/migrations"
	"go.uber.org/zap"
)

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = goose.UpContext

// Migrate applies the embedded migrations for the pool's driver
func (db *DB) Migrate(ctx context.Context) error {
	dialect, dir := migrationDialect(db.DriverName())

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{db.logger.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db.DB.DB, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	db.logger.Info("database migrations applied", zap.String("dialect", dialect))
	return nil
}

func migrationDialect(driver string) (dialect, dir string) {
	if driver == config.DriverSQLite {
		return "sqlite3", "sqlite"
	}
	return "postgres", "postgres"
}

// gooseLogger routes goose output through zap
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Debugf(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
