package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string          `mapstructure:"port"`
	Session   SessionConfig   `mapstructure:"session"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Log       LogConfig       `mapstructure:"log"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
	Secure bool   `mapstructure:"secure"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PublisherConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Topic     string        `mapstructure:"topic"`
	ResultTTL time.Duration `mapstructure:"result_ttl"`
}

// AdminConfig is the account the background publisher creates when no
// administrator exists yet.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type GeneratorConfig struct {
	FeedURL string `mapstructure:"feed_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const DefaultSessionSecret = "default-secret-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("session.secret", DefaultSessionSecret)
	v.SetDefault("session.max_age", 30*24*60*60) // 30 days
	v.SetDefault("session.secure", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/inkwell.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("publisher.enabled", true)
	v.SetDefault("publisher.interval", 30*time.Second)
	v.SetDefault("publisher.topic", "News")
	v.SetDefault("publisher.result_ttl", 24*time.Hour)

	v.SetDefault("admin.username", "system")
	v.SetDefault("admin.password", "system")

	v.SetDefault("generator.feed_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from defaults, an optional config.yaml in the
// given directories, a .env file and the environment, in increasing order of
// precedence. Environment keys use underscores: REDIS_ADDR, SESSION_SECRET.
func Load(paths ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Publisher.Interval <= 0 {
		return fmt.Errorf("publisher.interval must be positive")
	}
	return nil
}
