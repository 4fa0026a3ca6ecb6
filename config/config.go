package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	API      APIConfig
	Session  SessionConfig
	HTTP     HTTPConfig
	Log      LogConfig
}

type DBConfig struct {
	Enabled     bool // when false the cart lives only in memory
	AutoMigrate bool // apply embedded migrations on boot
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
}

type TelegramConfig struct {
	Token            string
	DefaultCompanyID string // used by /start without an argument
}

// APIConfig points at the remote menu API.
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MenuCacheTTL time.Duration
}

type SessionConfig struct {
	TTL time.Duration
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		DB: DBConfig{
			Enabled:     getBool("DB_ENABLED", true),
			AutoMigrate: getBool("AUTO_MIGRATE", false),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        port,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "mymenu"),
		},
		Telegram: TelegramConfig{
			Token:            getEnv("TOKEN", ""),
			DefaultCompanyID: getEnv("DEFAULT_COMPANY_ID", ""),
		},
		API: APIConfig{
			BaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3333"), "/"),
			Timeout:      getDuration("API_TIMEOUT", 3*time.Second),
			MenuCacheTTL: getDuration("MENU_CACHE_TTL", time.Minute),
		},
		Session: SessionConfig{
			TTL: getDuration("SESSION_TTL", 2*time.Hour),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || strings.EqualFold(v, "true")
}

// getDuration accepts Go duration strings ("90s", "2h") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
