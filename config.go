package authkit

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines the tuning surface of a [Client]. The zero value is
// not usable; start from [New], which applies defaults, or from
// [ConfigFromEnv].
type Config struct {
	Security SecurityConfig
	Storage  StorageConfig
	Refresh  RefreshConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// SecurityConfig tunes local attempt tracking. Limits are per attempt
// kind: login and registration are counted independently.
type SecurityConfig struct {
	MaxLoginAttempts    int           `env:"AUTHKIT_MAX_LOGIN_ATTEMPTS"`
	MaxRegisterAttempts int           `env:"AUTHKIT_MAX_REGISTER_ATTEMPTS"`
	Cooldown            time.Duration `env:"AUTHKIT_COOLDOWN"`
	BackoffBase         time.Duration `env:"AUTHKIT_BACKOFF_BASE"`
	BackoffMax          time.Duration `env:"AUTHKIT_BACKOFF_MAX"`
}

// StorageConfig namespaces everything the client persists.
type StorageConfig struct {
	Namespace string `env:"AUTHKIT_STORAGE_NAMESPACE"`
}

// RefreshConfig tunes access-token refresh.
type RefreshConfig struct {
	// Leeway refreshes the access token this long before its recorded
	// expiry, so callers never hand out a token about to die.
	Leeway time.Duration `env:"AUTHKIT_REFRESH_LEEWAY"`
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"AUTHKIT_AUDIT_ENABLED"`
	BufferSize int  `env:"AUTHKIT_AUDIT_BUFFER"`
	DropIfFull bool `env:"AUTHKIT_AUDIT_DROP_IF_FULL"`
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled bool `env:"AUTHKIT_METRICS_ENABLED"`
}

func defaultConfig() Config {
	return Config{
		Security: SecurityConfig{
			MaxLoginAttempts:    5,
			MaxRegisterAttempts: 3,
			Cooldown:            15 * time.Minute,
			BackoffBase:         time.Second,
			BackoffMax:          10 * time.Second,
		},
		Storage: StorageConfig{Namespace: "authkit"},
		Refresh: RefreshConfig{Leeway: time.Minute},
		Audit:   AuditConfig{Enabled: false, BufferSize: 64, DropIfFull: true},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Config structs are flat value types; an assignment is a deep copy.
func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate rejects configurations the client cannot run with.
func (c Config) Validate() error {
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("Security.MaxLoginAttempts must be positive")
	}
	if c.Security.MaxRegisterAttempts <= 0 {
		return errors.New("Security.MaxRegisterAttempts must be positive")
	}
	if c.Security.Cooldown <= 0 {
		return errors.New("Security.Cooldown must be positive")
	}
	if c.Security.BackoffBase <= 0 {
		return errors.New("Security.BackoffBase must be positive")
	}
	if c.Security.BackoffMax < c.Security.BackoffBase {
		return errors.New("Security.BackoffMax must be >= BackoffBase")
	}
	if c.Storage.Namespace == "" {
		return errors.New("Storage.Namespace must not be empty")
	}
	if c.Refresh.Leeway < 0 {
		return errors.New("Refresh.Leeway must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

// ConfigFromEnv starts from the defaults and overlays AUTHKIT_*
// environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
