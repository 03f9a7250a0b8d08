package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDatabase opens the configured database and migrates the given models.
// Host-owned tables are passed separately and only migrated when MigrateHostTables is set.
func InitDatabase(pluginModels []interface{}, hostModels []interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()
	conn, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(conn, pluginModels...); err != nil {
		log.Fatalf("auto migration failed: %v", err)
	}
	if cfg.MigrateHostTables {
		if err := Migrate(conn, hostModels...); err != nil {
			log.Fatalf("host table migration failed: %v", err)
		}
	}

	db = conn
	return db
}

// OpenDatabase connects using cfg.DBDriver ("mysql" or "sqlite").
func OpenDatabase(cfg AppConfig) (*gorm.DB, error) {
	// Derive level from app LogLevel and raise slow-sql threshold to reduce noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}

	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		path := cfg.DatabaseURI
		if path == "" {
			path = cfg.DBName + ".db"
		}
		conn, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(0)"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		// sqlite allows one writer; a single connection keeps row locks meaningful
		sqlDB.SetMaxOpenConns(1)
		return conn, nil
	case "mysql", "":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	dsn := cfg.DatabaseURI
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
	}

	conn, err := gorm.Open(mysql.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// 连接池参数：适中规模 + 更积极的连接回收，减少“bad idle connection”噪音
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// 启动期做一次 Ping，提前暴露网络/认证问题
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// Migrate runs additive AutoMigrate for each model.
func Migrate(conn *gorm.DB, modelDefs ...interface{}) error {
	for _, model := range modelDefs {
		if err := conn.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}
