package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file, overridable with BACKEND_CONFIG_PATH.
var ConfigPath = envOr("BACKEND_CONFIG_PATH", "config.yaml")

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                    string   `yaml:"port"`
	LogLevel                string   `yaml:"logLevel"`
	Store                   string   `yaml:"store"`
	DatabaseURL             string   `yaml:"databaseURL"`
	RedisAddr               string   `yaml:"redisAddr"`
	RedisPassword           string   `yaml:"redisPassword"`
	SessionTTL              string   `yaml:"sessionTTL"`
	JWTSecret               string   `yaml:"jwtSecret"`
	JWTIssuer               string   `yaml:"jwtIssuer"`
	JWTAudience             string   `yaml:"jwtAudience"`
	JWTLeeway               string   `yaml:"jwtLeeway"`
	RequireBearer           bool     `yaml:"requireBearer"`
	TrustedProxies          []string `yaml:"trustedProxies"`
	RegisterRateLimitPerMin int      `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute int      `yaml:"loginRateLimitPerMinute"`
	MinioEndpoint           string   `yaml:"minioEndpoint"`
	MinioAccessKey          string   `yaml:"minioAccessKey"`
	MinioSecretKey          string   `yaml:"minioSecretKey"`
	MinioBucket             string   `yaml:"minioBucket"`
	MinioUseSSL             bool     `yaml:"minioUseSSL"`
	PresignTTL              string   `yaml:"presignTTL"`
	AlertStreamMaxLen       int64    `yaml:"alertStreamMaxLen"`
}

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Load reads config from path (defaults to ConfigPath), then applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if cfg.Store == "" {
		cfg.Store = StorePostgres
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BACKEND_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitCSV(v)
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("BACKEND_REQUIRE_BEARER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RequireBearer = b
		}
	}
	if v := os.Getenv("BACKEND_LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("BACKEND_REGISTER_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RegisterRateLimitPerMin = n
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("config: databaseURL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown store %q", cfg.Store)
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for sessions, rate limits and alerts")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		return errors.New("config: jwtSecret must be at least 32 bytes")
	}
	if cfg.MinioEndpoint != "" && (cfg.MinioBucket == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return errors.New("config: minioEndpoint requires minioBucket, minioAccessKey and minioSecretKey")
	}
	if cfg.RegisterRateLimitPerMin < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	for _, d := range []struct{ name, value string }{
		{"sessionTTL", cfg.SessionTTL},
		{"jwtLeeway", cfg.JWTLeeway},
		{"presignTTL", cfg.PresignTTL},
	} {
		if _, err := ParseDuration(d.name, d.value); err != nil {
			return err
		}
	}
	return nil
}

// ParseDuration parses an optional duration field; empty means zero.
func ParseDuration(name, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", name, err)
	}
	if dur < 0 {
		return 0, fmt.Errorf("invalid %s duration: must be positive", name)
	}
	return dur, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
