package db

import (
	"fmt"
	"net"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"farmverify/internal/config"
	"farmverify/internal/model"
)

// DSN returns cfg.MySQLDSN when set, otherwise builds one from the discrete
// DB_* settings.
func DSN(cfg *config.Config) string {
	if cfg.MySQLDSN != "" {
		return cfg.MySQLDSN
	}
	c := mysqldrv.NewConfig()
	c.User = cfg.DB.User
	c.Passwd = cfg.DB.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.DB.Host, cfg.DB.Port)
	c.DBName = cfg.DB.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Farmer{},
		&model.Admin{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table in reverse dependency order.
func Reset(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
