package database

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// URLs and a pure-Go SQLite file
// for anything else.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info("using SQLite", zap.String("dsn", dsn))

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}
