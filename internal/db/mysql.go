package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LogLevel is GORM's level: silent, error, warn or info.
	LogLevel string
}

// DSN formats c for go-sql-driver/mysql. parseTime is required to scan
// DATETIME columns into time.Time.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

const (
	mysqlConnectAttempts = 10
	mysqlRetryInterval   = 2 * time.Second
)

// NewMySQL opens a GORM handle, retrying while the server comes up.
func NewMySQL(cfg MySQLConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger(cfg.LogLevel),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}

	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < mysqlConnectAttempts; i++ {
		gdb, err = gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
		if err == nil {
			rawDB, dbErr := gdb.DB()
			if dbErr == nil {
				if err = rawDB.Ping(); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}
		if i < mysqlConnectAttempts-1 {
			slog.Warn("mysql connect failed, retrying", "attempt", i+1, "err", err, "in", mysqlRetryInterval)
			time.Sleep(mysqlRetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect mysql after %d attempts: %w", mysqlConnectAttempts, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return gdb, nil
}

func gormLogger(level string) logger.Interface {
	var l logger.LogLevel
	switch level {
	case "info":
		l = logger.Info
	case "warn":
		l = logger.Warn
	case "silent":
		l = logger.Silent
	default:
		l = logger.Error
	}
	return logger.Default.LogMode(l)
}
