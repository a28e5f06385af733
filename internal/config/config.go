package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret     string
	JWTTTLMinutes int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins  []string
	OTLPEndpoint string
}

// Load reads configuration from the environment. The JWT signing secret is
// required outside dev; a missing secret is a startup failure, not a runtime
// fallback.
func Load() (Config, error) {
	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnvInt("PORT", 8080),
		DBURL:         buildDBURL(),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "marketplace-uploads"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:  []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			return Config{}, errors.New("JWT_SECRET must be set")
		}
		// dev only, so local runs work out of the box
		cfg.JWTSecret = "dev-only-insecure-secret"
	}

	return cfg, nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "marketplace")
	pass := getEnv("DB_PASSWORD", "marketplace")
	name := getEnv("DB_NAME", "marketplace")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
