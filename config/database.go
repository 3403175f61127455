package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypeMySQL      DatabaseType = "mysql"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type   DatabaseType `json:"type"`
	SQLite SQLiteConfig `json:"sqlite"`
	Server ServerConfig `json:"server"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `json:"path"`
}

// ServerConfig holds the connection settings shared by MySQL and PostgreSQL
type ServerConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
	TimeZone string `json:"timeZone"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypeMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Server.Username,
			c.Server.Password,
			c.Server.Host,
			c.Server.Port,
			c.Server.Database,
		)
	case DatabaseTypePostgreSQL:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			c.Server.Host,
			c.Server.Username,
			c.Server.Password,
			c.Server.Database,
			c.Server.Port,
			c.Server.SSLMode,
			c.Server.TimeZone,
		)
	default:
		// the driver applies these on every pooled connection
		return c.SQLite.Path + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1&_cache_size=-64000"
	}
}

// GetDefaultDatabaseConfig returns default database configuration
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: GetDBPath(),
		},
		Server: ServerConfig{
			Host:     "localhost",
			Database: "youtube_downloader",
			Username: "root",
			Password: "",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
	}
}

// GetDatabaseConfig builds the database configuration from the environment.
func GetDatabaseConfig() *DatabaseConfig {
	c := GetDefaultDatabaseConfig()
	if t := getEnv("DB_TYPE"); t != "" {
		c.Type = DatabaseType(t)
	}
	c.Server.Host = getEnvDefault("DB_HOST", c.Server.Host)
	c.Server.Database = getEnvDefault("DB_NAME", c.Server.Database)
	c.Server.Username = getEnvDefault("DB_USER", c.Server.Username)
	c.Server.Password = getEnvDefault("DB_PASSWORD", c.Server.Password)
	c.Server.SSLMode = getEnvDefault("DB_SSLMODE", c.Server.SSLMode)

	defaultPort := 3306
	if c.Type == DatabaseTypePostgreSQL {
		defaultPort = 5432
	}
	c.Server.Port = getEnvInt("DB_PORT", defaultPort)
	return c
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypeMySQL, DatabaseTypePostgreSQL:
		if c.Server.Host == "" {
			return fmt.Errorf("%s host cannot be empty", c.Type)
		}
		if c.Server.Database == "" {
			return fmt.Errorf("%s database name cannot be empty", c.Type)
		}
		if c.Server.Username == "" {
			return fmt.Errorf("%s username cannot be empty", c.Type)
		}
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("%s port must be between 1 and 65535", c.Type)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
