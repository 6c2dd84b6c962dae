package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/database"
	sitehosthttp "github.com/sagarc03/sitehost/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for sitehost.
type Config struct {
	Env      string                  `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig            `mapstructure:"server"`
	Service  ServiceConfig           `mapstructure:"service"`
	Database database.Config         `mapstructure:"database"`
	Storage  StorageConfig           `mapstructure:"storage"`
	CORS     sitehosthttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL       string `mapstructure:"base_url" validate:"omitempty,url"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
}

// ServiceConfig holds service-level configuration. Timeouts are in seconds.
type ServiceConfig struct {
	OperationTimeout int   `mapstructure:"operation_timeout" validate:"min=1"`
	CleanupTimeout   int   `mapstructure:"cleanup_timeout" validate:"min=1"`
	Workers          int   `mapstructure:"workers" validate:"min=0"`
	StrictAssets     bool  `mapstructure:"strict_assets"`
	MaxSiteBytes     int64 `mapstructure:"max_site_bytes" validate:"min=0"`
}

// SiteServiceConfig converts the section into the options NewSiteService takes.
func (c Config) SiteServiceConfig() sitehost.ServiceConfig {
	return sitehost.ServiceConfig{
		BaseURL:          c.Server.BaseURL,
		OperationTimeout: time.Duration(c.Service.OperationTimeout) * time.Second,
		CleanupTimeout:   time.Duration(c.Service.CleanupTimeout) * time.Second,
		Workers:          c.Service.Workers,
		StrictAssets:     c.Service.StrictAssets,
		MaxSiteBytes:     c.Service.MaxSiteBytes,
	}
}

// StorageConfig holds site directory storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"base-url":     "server.base_url",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.max_upload_size", sitehosthttp.DefaultMaxUploadSize)

	v.SetDefault("service.operation_timeout", 60) // seconds
	v.SetDefault("service.cleanup_timeout", 30)   // seconds
	v.SetDefault("service.workers", 0)            // 0 means NumCPU
	v.SetDefault("service.strict_assets", true)
	v.SetDefault("service.max_site_bytes", 0) // 0 means no limit

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "sitehost.db")
	v.SetDefault("database.tables.sites", "sites")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.path", "./storage")

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SITEHOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
