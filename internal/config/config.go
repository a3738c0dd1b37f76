package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ATHENA"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env      string         `yaml:"env"`      // Env is the current environment: local, development, production.
	HTTP     HTTPConfig     `yaml:"http"`     // HTTP holds the API and monitoring listeners configuration.
	Postgres PostgresConfig `yaml:"postgres"` // Postgres holds the database configuration.
	Storage  StorageConfig  `yaml:"storage"`  // Storage holds the S3-compatible blob store configuration.
	Redis    RedisConfig    `yaml:"redis"`    // Redis holds the reset code store configuration.
	Auth     AuthConfig     `yaml:"auth"`     // Auth holds the authentication provider configuration.
	Mail     MailConfig     `yaml:"mail"`     // Mail holds the SMTP configuration.
}

// HTTPConfig struct holds the listeners configuration.
type HTTPConfig struct {
	Port           int   `yaml:"port"`            // Port is the API listener port.
	MaxBodyBytes   int64 `yaml:"max_body_bytes"`  // MaxBodyBytes caps every request body, uploads included.
	MonitoringPort int   `yaml:"monitoring_port"` // MonitoringPort serves /healthz and /metrics.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Dbname   string `yaml:"db_name"`  // Dbname is the name of the database.
}

// StorageConfig struct holds the configuration details for the blob store.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`   // Endpoint is `host:port` or a full http(s) URL without path.
	AccessKey string `yaml:"access_key"` // AccessKey is the S3 access key.
	SecretKey string `yaml:"secret_key"` // SecretKey is the S3 secret key.
	Bucket    string `yaml:"bucket"`     // Bucket must exist before startup.
	PublicURL string `yaml:"public_url"` // PublicURL overrides the base of returned object URLs.
	KeyPrefix string `yaml:"key_prefix"` // KeyPrefix namespaces uploaded photos.
}

// RedisConfig struct holds the configuration details for connecting to Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig struct holds the authentication provider settings.
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`    // JWTSecret signs issued ID tokens.
	TokenTTL     time.Duration `yaml:"token_ttl"`     // TokenTTL is the lifetime of issued ID tokens.
	ResetTTL     time.Duration `yaml:"reset_ttl"`     // ResetTTL is the lifetime of password reset codes.
	ResetURL     string        `yaml:"reset_url"`     // ResetURL is the page linked from reset emails.
	RequireToken bool          `yaml:"require_token"` // RequireToken gates employee routes behind a bearer token.
	BcryptCost   int           `yaml:"bcrypt_cost"`
}

// MailConfig struct holds the SMTP settings used for password reset emails.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Load reads the configuration from the optional file at CONFIG_PATH and
// from ATHENA_* environment variables, which take precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		if filepath.Ext(configPath) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Port:           v.GetInt("http.port"),
			MaxBodyBytes:   v.GetInt64("http.max_body_bytes"),
			MonitoringPort: v.GetInt("http.monitoring_port"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Dbname:   v.GetString("postgres.db_name"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("storage.endpoint"),
			AccessKey: v.GetString("storage.access_key"),
			SecretKey: v.GetString("storage.secret_key"),
			Bucket:    v.GetString("storage.bucket"),
			PublicURL: v.GetString("storage.public_url"),
			KeyPrefix: v.GetString("storage.key_prefix"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("auth.jwt_secret"),
			TokenTTL:     v.GetDuration("auth.token_ttl"),
			ResetTTL:     v.GetDuration("auth.reset_ttl"),
			ResetURL:     v.GetString("auth.reset_url"),
			RequireToken: v.GetBool("auth.require_token"),
			BcryptCost:   v.GetInt("auth.bcrypt_cost"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("mail.enabled"),
			Host:     v.GetString("mail.host"),
			Port:     v.GetString("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad loads the configuration and panics if it cannot be used.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	const maxBodyMiB = 20

	v.SetDefault("env", "local")
	v.SetDefault("http.port", 3001)
	v.SetDefault("http.max_body_bytes", int64(maxBodyMiB<<20))
	v.SetDefault("http.monitoring_port", 8080)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.public_url", "")
	v.SetDefault("storage.key_prefix", "images")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.reset_ttl", time.Hour)
	v.SetDefault("auth.reset_url", "http://localhost:3001/reset-password")
	v.SetDefault("auth.require_token", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", "587")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: http.max_body_bytes must be positive", ErrInvalidConfig)
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.ResetTTL <= 0 {
		return fmt.Errorf("%w: auth ttl values must be positive", ErrInvalidConfig)
	}

	return nil
}
