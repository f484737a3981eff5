package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db *gorm.DB
}

// Open connects to the database selected by cfg.Type.
func Open(cfg config.DatabaseConfig, gormLogger logger.Interface) (*GormDB, error) {
	var (
		dialector gorm.Dialector
		err       error
	)

	switch cfg.Type {
	case "mysql":
		dialector = mysqlDialector(cfg.MySQL)
	case "postgres":
		dialector, err = postgresDialector(cfg.Postgres)
	case "sqlite", "":
		dialector, err = sqliteDialector(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	if cfg.Type == "sqlite" && cfg.SQLite.Path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	return &GormDB{db: db}, nil
}

func sqliteDialector(cfg config.SQLiteConfig) (gorm.Dialector, error) {
	path := cfg.Path
	if path == "" {
		path = "data/site.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return sqlite.Open(path), nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PropertyChange{},
		&models.PropertyMediaBinding{},
		&models.Project{},
		&models.TeamMember{},
		&models.BlogPost{},
		&models.ContactInquiry{},
		&models.NewsletterSubscriber{},
		&models.DemoBooking{},
		&models.User{},
		&models.DeleteLog{},
		&models.Notification{},
		&models.JobRun{},
	)
}

// Transaction runs fn in a database transaction.
func (gdb *GormDB) Transaction(fn func(tx *gorm.DB) error) error {
	return gdb.db.Transaction(fn)
}
