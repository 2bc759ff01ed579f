package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Драйверы хранилища сессий витрины
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	Server     ServerConfig
	Storefront StorefrontConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// StorefrontConfig - настройки веб-клиента магазина
type StorefrontConfig struct {
	Port           string
	BackendURL     string
	CookieHashKey  string
	CookieBlockKey string
	SecureCookies  bool
	Storage        string
	BackendTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8081"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Storefront: StorefrontConfig{
			Port:           getEnv("STOREFRONT_PORT", "8080"),
			BackendURL:     getEnv("BACKEND_URL", "http://localhost:8081"),
			CookieHashKey:  getEnv("COOKIE_HASH_KEY", "default_cookie_hash_key_change_me_please"),
			CookieBlockKey: getEnv("COOKIE_BLOCK_KEY", ""),
			SecureCookies:  getEnvAsBool("COOKIE_SECURE", false),
			Storage:        strings.ToLower(getEnv("SESSION_STORAGE", StorageMemory)),
			BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "shopoholic"),
			TTL:      getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "123"),
			Name:     getEnv("DB_NAME", "shopoholic"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "default_secret_key"),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Name:     getEnv("ADMIN_NAME", "Администратор"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction - запущены ли мы в боевом окружении
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate проверяет несовместимые комбинации настроек
func (c *Config) Validate() error {
	switch c.Storefront.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("неизвестный драйвер хранилища сессий: %q", c.Storefront.Storage)
	}

	if len(c.Storefront.CookieHashKey) < 32 {
		return errors.New("COOKIE_HASH_KEY должен быть не короче 32 байт")
	}

	switch len(c.Storefront.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		return errors.New("COOKIE_BLOCK_KEY должен быть длиной 16, 24 или 32 байта")
	}

	if c.IsProduction() && c.JWT.Secret == "default_secret_key" {
		return errors.New("в production нужно задать JWT_SECRET")
	}

	if c.JWT.Expiration <= 0 {
		return errors.New("JWT_EXPIRATION должен быть положительным")
	}

	return nil
}

// DSN - строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}
