package config

import (
	"errors"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port            string
	DatabaseDriver  string
	DatabaseDSN     string
	JWTSecret       string
	Env             string
	SessionCookie   string
	SessionTTLHours int
	BcryptCost      int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "7890"),
		DatabaseDriver:  getenv("DATABASE_DRIVER", "postgres"),
		DatabaseDSN:     getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=glsl_playground port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		Env:             getenv("APP_ENV", "dev"),
		SessionCookie:   getenv("SESSION_COOKIE", "session"),
		SessionTTLHours: getenvInt("SESSION_TTL_HOURS", 24),
		BcryptCost:      getenvInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

// Validate 检查配置能否安全启动服务，dev 以外的环境禁止使用默认密钥。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port is required")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: database dsn is required")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("config: default JWT secret is not allowed outside dev")
	}
	if cfg.SessionTTLHours <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	return nil
}
