// Package config loads the service configuration.
//
// Sources, lowest priority first: defaults, an optional config.yaml, then
// environment variables (SERVER_PORT, MONGODB_URI, LOG_LEVEL, ...). A .env
// file in the working directory is loaded into the environment first.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreBackendMongo  = "mongo"
	StoreBackendMemory = "memory"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Worker WorkerConfig `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI           string `mapstructure:"uri"`
	Database      string `mapstructure:"database"`
	EnsureIndexes bool   `mapstructure:"ensure_indexes"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // mongo or memory
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type AuthConfig struct {
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AdminUsers  []string      `mapstructure:"admin_users"`
}

type WorkerConfig struct {
	FanoutPoolSize int `mapstructure:"fanout_pool_size"`
}

// IsAdmin reports whether username is listed in auth.admin_users.
func (c AuthConfig) IsAdmin(username string) bool {
	for _, u := range c.AdminUsers {
		if u == username {
			return true
		}
	}
	return false
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// server.port -> SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flat names used by existing deployments.
	_ = v.BindEnv("mongo.uri", "MONGODB_URI")
	_ = v.BindEnv("mongo.database", "MONGODB_DB")
	_ = v.BindEnv("auth.token_secret", "AUTH_TOKEN_SECRET", "TOKEN_SECRET")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Auth.AdminUsers = splitList(cfg.Auth.AdminUsers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "moviereviews")
	v.SetDefault("mongo.ensure_indexes", true)

	v.SetDefault("store.backend", StoreBackendMongo)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_users", []string{})

	v.SetDefault("worker.fanout_pool_size", 16)
}

// splitList flattens comma separated entries, which is how a list arrives
// from an environment variable.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case StoreBackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri must not be empty")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", StoreBackendMongo, StoreBackendMemory, c.Store.Backend)
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	if c.Worker.FanoutPoolSize <= 0 {
		return fmt.Errorf("worker.fanout_pool_size must be positive")
	}

	return nil
}
