// Package storage selects a storage adapter from configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// Open returns the configured store and a func releasing it.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, func(), error) {
	switch cfg.Storage {
	case "memory":
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		return memory.New(), func() {}, nil
	case "mysql", "":
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }, nil
}
