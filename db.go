package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PersistenceConfig is what OpenDB needs to reach the store
type PersistenceConfig interface {
	GetDriver() string
	GetDSN() string
	GetPingRetries() int
}

// OpenDB opens the configured database and pings it, retrying with backoff
func OpenDB(ctx context.Context, cfg PersistenceConfig, logger Logger) (*bun.DB, error) {
	logger = resolveLogger(logger)

	var db *bun.DB
	switch strings.ToLower(cfg.GetDriver()) {
	case "", DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
		}
		if strings.Contains(cfg.GetDSN(), ":memory:") {
			// every connection would otherwise see its own empty database
			sqldb.SetMaxOpenConns(1)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "pgx":
		sqldb, err := sql.Open("pgx", cfg.GetDSN())
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open postgres database")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, errors.New("unsupported persistence driver", errors.CategoryBadInput).
			WithMetadata(map[string]any{"driver": cfg.GetDriver()})
	}

	retries := cfg.GetPingRetries()
	if retries < 0 {
		retries = 0
	}

	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database ping failed", "driver", cfg.GetDriver(), "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "database is unreachable")
	}

	return db, nil
}

// IsUniqueViolation reports whether err is a unique constraint failure
// from postgres or sqlite
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	const sqliteUnique = "UNIQUE constraint failed"
	return strings.Contains(err.Error(), sqliteUnique) ||
		strings.Contains(errors.RootCause(err).Error(), sqliteUnique)
}
