package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	JWTIssuer    string
	ServerPort   int
	LogLevel     slog.Level

	// Subjects of the identity provider that are always treated as administrators.
	AdminUserIDs       []string
	CORSAllowedOrigins []string
	ResyncInterval     time.Duration

	// Лимит запросов на изменение (на пользователя).
	WriteRateLimit float64
	WriteRateBurst int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Enabled reports whether every Cloudflare R2 setting is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	resync := 5 * time.Minute
	if v := os.Getenv("RESYNC_INTERVAL"); v != "" {
		resync, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RESYNC_INTERVAL environment variable: %w", err)
		}
		if resync < time.Second {
			return nil, fmt.Errorf("RESYNC_INTERVAL must be at least 1s, got %s", resync)
		}
	}

	rateLimit := 5.0
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rateLimit, err = strconv.ParseFloat(v, 64)
		if err != nil || rateLimit <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", v)
		}
	}
	rateBurst := 10
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		rateBurst, err = strconv.Atoi(v)
		if err != nil || rateBurst < 1 {
			return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", v)
		}
	}

	origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		JWTIssuer:          os.Getenv("JWT_ISSUER"),
		ServerPort:         port,
		LogLevel:           level,
		AdminUserIDs:       splitList(os.Getenv("ADMIN_USER_IDS")),
		CORSAllowedOrigins: origins,
		ResyncInterval:     resync,
		WriteRateLimit:     rateLimit,
		WriteRateBurst:     rateBurst,
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
