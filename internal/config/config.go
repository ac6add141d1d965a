package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server      ServerConfig
	Vendors     VendorConfig
	Dexcom      DexcomConfig
	LibreLinkUp LibreLinkUpConfig
	Store       StoreConfig
	Recorder    RecorderConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// VendorConfig bounds every outbound vendor call. A hung vendor must never
// hang an invocation past this timeout.
type VendorConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type DexcomConfig struct {
	ApplicationID string `mapstructure:"application_id"`
	DefaultRegion string `mapstructure:"default_region"`
}

type LibreLinkUpConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Product string `mapstructure:"product"`
	Version string `mapstructure:"version"`
	// ConnectionPolicy selects which patient connection endpoints act on.
	// Only "first" is implemented; multi-patient support is future scope.
	ConnectionPolicy string `mapstructure:"connection_policy"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"` // "redis" or "postgres"
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RecorderConfig drives the background history recorder. Username and
// password are machine-held Dexcom credentials, expected from the
// GLUCOHUB_RECORDER__USERNAME / GLUCOHUB_RECORDER__PASSWORD environment.
type RecorderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Region   string        `mapstructure:"region"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("GLUCOHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Vendor defaults
	viper.SetDefault("vendors.timeout", "30s")

	// Dexcom Share defaults. The application id is the fixed publisher id the
	// Share API expects from third-party clients.
	viper.SetDefault("dexcom.application_id", "d89443d2-327c-4a6f-89e5-496a58a273c0")
	viper.SetDefault("dexcom.default_region", "us")

	// LibreLinkUp defaults
	viper.SetDefault("librelinkup.base_url", "https://api.libreview.io")
	viper.SetDefault("librelinkup.product", "llu.android")
	viper.SetDefault("librelinkup.version", "4.7.0")
	viper.SetDefault("librelinkup.connection_policy", "first")

	// Store defaults. Every key needs a registered default, even an empty
	// one: AutomaticEnv only resolves keys viper already knows, so a key
	// without a default can never be set from the environment.
	viper.SetDefault("store.driver", "redis")
	viper.SetDefault("store.redis.host", "localhost")
	viper.SetDefault("store.redis.port", 6379)
	viper.SetDefault("store.redis.password", "")
	viper.SetDefault("store.redis.db", 0)
	viper.SetDefault("store.postgres.host", "")
	viper.SetDefault("store.postgres.port", 5432)
	viper.SetDefault("store.postgres.user", "")
	viper.SetDefault("store.postgres.password", "")
	viper.SetDefault("store.postgres.dbname", "")
	viper.SetDefault("store.postgres.sslmode", "disable")

	// Recorder defaults. The machine credentials arrive via
	// GLUCOHUB_RECORDER__USERNAME / GLUCOHUB_RECORDER__PASSWORD.
	viper.SetDefault("recorder.enabled", false)
	viper.SetDefault("recorder.interval", "5m")
	viper.SetDefault("recorder.username", "")
	viper.SetDefault("recorder.password", "")
	viper.SetDefault("recorder.region", "us")
}

func validateConfig(config *Config) error {
	switch config.Store.Driver {
	case "redis":
		if config.Store.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	case "postgres":
		if config.Store.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", config.Store.Driver)
	}
	if config.Recorder.Enabled {
		if config.Recorder.Username == "" || config.Recorder.Password == "" {
			return fmt.Errorf("recorder credentials are required when the recorder is enabled")
		}
	}
	if config.LibreLinkUp.ConnectionPolicy != "first" {
		return fmt.Errorf("unsupported librelinkup connection policy: %s", config.LibreLinkUp.ConnectionPolicy)
	}
	return nil
}
