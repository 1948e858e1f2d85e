// Package db opens the gorm connection behind the persistent store drivers and keeps
// the schema and reference data up to date.
package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// Open connects to the configured database. Postgres connections are retried while the
// server starts up.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		log.Info().Str("path", cfg.SQLitePath).Msg("connected to sqlite")
		return db, nil

	case config.DriverPostgres:
		dsn := cfg.DSN()
		var db *gorm.DB
		var err error
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Warn().Err(err).Int("attempt", i+1).Msg("retrying database connection")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
		if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
			return nil, fmt.Errorf("db ping failed: %w", pingErr)
		}
		log.Info().Str("dsn", passwordRe.ReplaceAllString(dsn, `${1}***`)).Msg("connected to postgres")
		return db, nil
	}
	return nil, fmt.Errorf("driver %q has no database", cfg.Driver)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
