package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rohits-web03/modvault/internal/models"
)

// zapWriter lets gorm's logger print through zap.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

func gormConfig(log *zap.SugaredLogger) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(zapWriter{log: log}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		}),
	}
}

// ConnectDatabase opens postgres when dsn is set and SQLite at sqlitePath
// otherwise, then migrates the catalog schema.
func ConnectDatabase(dsn, sqlitePath string, log *zap.SugaredLogger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig(log))
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
	} else {
		db, err = OpenSQLite(sqlitePath, log)
		if err != nil {
			return nil, err
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Infow("Successfully connected to database", "dialect", db.Dialector.Name())
	return db, nil
}

// OpenSQLite opens (creating if needed) a SQLite catalog in WAL mode.
// Transactions take the write lock up front so that concurrent ingests wait
// on busy_timeout instead of failing on lock upgrade.
func OpenSQLite(path string, log *zap.SugaredLogger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := "file:" + filepath.ToSlash(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)&_txlock=immediate"

	db, err := gorm.Open(gormlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Modlist{},
		&models.Mod{},
		&models.ModAssociation{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
