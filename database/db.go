// Package database opens the relational store and seeds it.
package database

import (
	"errors"
	"log"

	"github.com/vidfetch/vidfetch/config"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/util/crypto"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

func initModels() error {
	models := []any{
		&model.User{},
		&model.Download{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initAdmin seeds an admin account when none exists.
func initAdmin(username, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		log.Printf("Error counting admins: %v", err)
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username: username,
		Password: hash,
		IsAdmin:  true,
	}
	log.Printf("Seeding admin user %q", username)
	return db.Create(admin).Error
}

func dialector(c *config.DatabaseConfig) gorm.Dialector {
	switch c.Type {
	case config.DatabaseTypeMySQL:
		return mysql.Open(c.GetDSN())
	case config.DatabaseTypePostgreSQL:
		return postgres.Open(c.GetDSN())
	default:
		return sqlite.Open(c.GetDSN())
	}
}

// InitDB opens the configured database, migrates the schema and seeds the
// admin account from config.
func InitDB(c *config.DatabaseConfig) error {
	if err := c.ValidateConfig(); err != nil {
		return err
	}
	if err := c.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	var err error
	db, err = gorm.Open(dialector(c), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	return initAdmin(config.GetAdminUsername(), config.GetAdminPassword())
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
