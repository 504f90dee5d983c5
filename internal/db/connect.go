package db

import (
	"fmt" // Error wrapping

	"bingo_ledger/internal/config" // Connection settings

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM query logging
)

// Dialector picks the GORM dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Open connects to the configured database
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenDialector(dialector, cfg.IsProd)
}

// OpenDialector opens a connection with the settings every entrypoint shares
func OpenDialector(dialector gorm.Dialector, quiet bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true, // Surface unique violations as gorm.ErrDuplicatedKey
	}
	if quiet {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent) // No SQL echo in production
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return db, nil
}
