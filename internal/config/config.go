package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	DBDSN          string
	DBMaxOpenConns int

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins           []string
	CountsRefreshInterval time.Duration

	// Optional first admin account, created at startup when the email is
	// not taken yet.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// LoadDotEnv reads .env into the process environment. A missing file is not
// fatal; callers log it and fall back to the real environment.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

func Load() (Config, error) {
	cfg := Config{
		AppEnv:                getEnv("APP_ENV", "dev"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		DBDSN:                 os.Getenv("DB_DSN_PRIMARY"),
		DBMaxOpenConns:        getEnvInt("DB_MAX_OPEN_CONNS", 25),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTTTL:                getEnvDuration("JWT_TTL", 72*time.Hour),
		CORSOrigins:           getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		CountsRefreshInterval: getEnvDuration("COUNTS_REFRESH_INTERVAL", 30*time.Second),

		BootstrapAdminEmail:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		if !cfg.IsDev() {
			return Config{}, errors.New("DB_DSN_PRIMARY is not set")
		}
		cfg.DBDSN = "root:root@tcp(127.0.0.1:3306)/taptoeat?parseTime=true"
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is not set")
	}
	if cfg.BootstrapAdminEmail != "" && len(cfg.BootstrapAdminPassword) < 8 {
		return Config{}, errors.New("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}

	return cfg, nil
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
