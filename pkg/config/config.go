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
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	SecretKey  string        `mapstructure:"SECRET_KEY"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	LoginURL   string        `mapstructure:"LOGIN_URL"`

	PostsPerPage int `mapstructure:"POSTS_PER_PAGE"`

	CacheBackend  string        `mapstructure:"CACHE_BACKEND"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`

	MediaBackend  string `mapstructure:"MEDIA_BACKEND"`
	MediaRoot     string `mapstructure:"MEDIA_ROOT"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
}

const devSecretKey = "insecure-development-secret"

var defaults = map[string]any{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"DATABASE_URL":              "sqlite://yatube.db",
	"SECRET_KEY":                "",
	"SESSION_TTL":               "336h",
	"LOGIN_URL":                 "/auth/login/",
	"POSTS_PER_PAGE":            10,
	"CACHE_BACKEND":             "memory",
	"CACHE_TTL":                 "20s",
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"MEDIA_BACKEND":             "local",
	"MEDIA_ROOT":                "media",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "yatube",
	"FIREBASE_CREDENTIALS_PATH": "",
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		if c.IsProduction() {
			return errors.New("SECRET_KEY must be set in production")
		}
		c.SecretKey = devSecretKey
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.MediaBackend {
	case "local":
	case "gridfs":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be set when MEDIA_BACKEND=gridfs")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend)
	}
	if !strings.HasPrefix(c.LoginURL, "/") {
		return fmt.Errorf("LOGIN_URL must be an absolute path, got %q", c.LoginURL)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
