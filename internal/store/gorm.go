package store

import (
	"fmt"
	"time"

	"github.com/ibagroup-eu/vf-job-storage/internal/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database described by cfg: postgres for "pgsql", a sqlite file otherwise.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger:         sqlLogger(cfg.Service.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "configuring connections")
	}

	if !isPostgres(cfg) {
		// sqlite serializes writers, a second connection would deadlock against an open transaction
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	var version string
	if err := db.Raw("SELECT version()").Scan(&version).Error; err != nil {
		return nil, errors.Wrap(err, "reading database version")
	}
	zap.S().Named("gorm").Infof("PostgreSQL information: '%s'", version)

	return db, nil
}

func isPostgres(cfg *config.Config) bool {
	return cfg.Database.Type == "pgsql"
}

// dialector opens the database through the instrumented drivers of metric.go.
func dialector(cfg *config.Config) gorm.Dialector {
	registerInstrumentedDrivers()

	if !isPostgres(cfg) {
		return &sqlite.Dialector{DriverName: sqliteDriverName, DSN: cfg.Database.Name}
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%s",
		cfg.Database.Hostname,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Port,
	)
	if cfg.Database.Name != "" {
		dsn = fmt.Sprintf("%s dbname=%s", dsn, cfg.Database.Name)
	}
	return postgres.New(postgres.Config{DriverName: postgresDriverName, DSN: dsn})
}

// sqlLogger logs slow queries and errors, and every statement when the service runs at debug level.
func sqlLogger(level string) logger.Interface {
	sqlLevel := logger.Warn
	if level == "debug" {
		sqlLevel = logger.Info
	}

	return logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  sqlLevel,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}
