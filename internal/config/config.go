package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Audit    Audit    `yaml:"audit"`
}

// Database holds the embedded datastore settings.
type Database struct {
	Path string `yaml:"path" env:"OFFICINE_DB_PATH" env-default:"inspections.db"`
}

// Auth holds session and credential settings.
type Auth struct {
	SessionTTL           time.Duration `yaml:"session_ttl"            env:"OFFICINE_SESSION_TTL"       env-default:"24h"`
	BcryptCost           int           `yaml:"bcrypt_cost"            env:"OFFICINE_BCRYPT_COST"       env-default:"10"`
	DefaultAdminUser     string        `yaml:"default_admin_user"     env:"OFFICINE_ADMIN_USER"        env-default:"admin"`
	DefaultAdminPassword string        `yaml:"default_admin_password" env:"OFFICINE_ADMIN_PASSWORD"    env-default:"admin123"`
	LoginRatePerMinute   int           `yaml:"login_rate_per_minute"  env:"OFFICINE_LOGIN_RATE"        env-default:"10"`
}

// Audit holds audit trail query defaults.
type Audit struct {
	PageSize int `yaml:"page_size" env:"OFFICINE_AUDIT_PAGE_SIZE" env-default:"100"`
}

// Validate checks invariants not expressible through struct tags.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost out of range: %d", c.Auth.BcryptCost)
	}
	if c.Audit.PageSize <= 0 {
		return fmt.Errorf("audit page size must be positive, got %d", c.Audit.PageSize)
	}
	return nil
}
