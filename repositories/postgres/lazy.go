package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/upb/todo-app/config"
	"github.com/upb/todo-app/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Connector hands repositories a live connection
type Connector interface {
	Conn(ctx context.Context) (*DB, error)
}

// OpenFunc opens a connection pool. Replaced in tests.
type OpenFunc func(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error)

// LazyDB opens the database on first use and caches the pool.
// Concurrent callers share one dial. A failed attempt is not cached;
// the next call tries again.
type LazyDB struct {
	cfg    config.DatabaseConfig
	open   OpenFunc
	logger *zap.Logger
	dials  singleflight.Group

	mu sync.Mutex
	db *DB
}

// NewLazyDB creates a lazily initialized handle. Nothing is dialed here.
func NewLazyDB(cfg config.DatabaseConfig, logger *zap.Logger) *LazyDB {
	return NewLazyDBWithOpener(cfg, Open, logger)
}

// NewLazyDBWithOpener is NewLazyDB with a custom opener
func NewLazyDBWithOpener(cfg config.DatabaseConfig, open OpenFunc, logger *zap.Logger) *LazyDB {
	return &LazyDB{cfg: cfg, open: open, logger: logger}
}

// Conn returns the cached pool, opening it if needed. A caller whose
// context ends stops waiting; the shared dial carries on for the others.
func (l *LazyDB) Conn(ctx context.Context) (*DB, error) {
	if !l.cfg.Enabled() {
		return nil, repositories.ErrStorageUnavailable
	}
	if db := l.cached(); db != nil {
		return db, nil
	}

	dialCtx := context.WithoutCancel(ctx)
	ch := l.dials.DoChan("open", func() (interface{}, error) {
		return l.connect(dialCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", repositories.ErrStorageUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DB), nil
	}
}

func (l *LazyDB) cached() *DB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db
}

// connect runs one dial. The lock is not held while dialing.
func (l *LazyDB) connect(ctx context.Context) (*DB, error) {
	if db := l.cached(); db != nil {
		return db, nil
	}

	db, err := l.open(ctx, l.cfg, l.logger)
	if err != nil {
		l.logger.Warn("failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", repositories.ErrStorageUnavailable, err)
	}

	l.mu.Lock()
	l.db = db
	l.mu.Unlock()
	return db, nil
}

// Connected reports whether a pool has been opened
func (l *LazyDB) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db != nil
}

// HealthCheck opens the pool if needed and checks it answers queries
func (l *LazyDB) HealthCheck(ctx context.Context) error {
	db, err := l.Conn(ctx)
	if err != nil {
		return err
	}
	return db.HealthCheck(ctx)
}

// Close closes the pool if it was opened
func (l *LazyDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// staticConnector always returns the same pool
type staticConnector struct {
	db *DB
}

// StaticConnector wraps an already open pool
func StaticConnector(db *DB) Connector {
	return staticConnector{db: db}
}

func (s staticConnector) Conn(context.Context) (*DB, error) {
	return s.db, nil
}
