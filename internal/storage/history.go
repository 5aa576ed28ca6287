// Package storage picks the run-history backend from configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_reputation/internal/domain"
	mysqlrepo "hotel_reputation/internal/storage/mysql"
	"hotel_reputation/internal/storage/sqlite"
)

// OpenHistory opens the run history named by driver: mysql, sqlite or none.
// With none it returns a nil history, which every service accepts.
func OpenHistory(ctx context.Context, driver, dsn string) (domain.RunHistory, func() error, error) {
	noop := func() error { return nil }
	switch driver {
	case "", "none":
		return nil, noop, nil

	case "mysql":
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("sql.Open failed: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("db.Ping failed: %w", err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), db.Close, nil

	case "sqlite":
		st, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("dsn", dsn).Msg("sqlite history ready")
		return st, st.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown history driver %q", driver)
	}
}
