package migrations

import (
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

const migrationsDir = "sql"

// goose keeps its dialect and file system in package globals.
var gooseMu sync.Mutex

// MigrateStore applies every pending migration of the embedded sql folder.
func MigrateStore(db *gorm.DB) error {
	dialect, err := gooseDialect(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(&logger{})
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return goose.Up(sqlDB, migrationsDir)
}

func gooseDialect(db *gorm.DB) (string, error) {
	switch name := db.Dialector.Name(); name {
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migrations for %s databases", name)
	}
}

type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) { zap.S().Named("migrations").Infof(format, v...) }
func (m *logger) Fatalf(format string, v ...interface{}) { zap.S().Named("migrations").Fatalf(format, v...) }
