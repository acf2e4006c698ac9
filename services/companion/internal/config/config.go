package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file, overridable with COMPANION_CONFIG_PATH.
var ConfigPath = envOr("COMPANION_CONFIG_PATH", "companion.yaml")

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	DataDir      string  `yaml:"dataDir"`
	LogLevel     string  `yaml:"logLevel"`
	BackendURL   string  `yaml:"backendURL"`
	AIProvider   string  `yaml:"aiProvider"`
	AIAPIKey     string  `yaml:"aiAPIKey"`
	AIModel      string  `yaml:"aiModel"`
	AIBaseURL    string  `yaml:"aiBaseURL"`
	NominatimURL string  `yaml:"nominatimURL"`
	DenyCamera   bool    `yaml:"denyCamera"`
	DenyLocation bool    `yaml:"denyLocation"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
}

// Load reads config from path. A missing file is not an error: the companion
// runs offline with defaults.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnv(&cfg)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("COMPANION_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("COMPANION_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("COMPANION_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("COMPANION_AI_PROVIDER"); v != "" {
		cfg.AIProvider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("COMPANION_AI_API_KEY"); v != "" {
		cfg.AIAPIKey = v
	}
	if v := os.Getenv("COMPANION_DENY_CAMERA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DenyCamera = b
		}
	}
	if v := os.Getenv("COMPANION_DENY_LOCATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DenyLocation = b
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if u := strings.TrimSpace(cfg.BackendURL); u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return errors.New("config: backendURL must start with http:// or https://")
	}
	if cfg.Latitude < -90 || cfg.Latitude > 90 || cfg.Longitude < -180 || cfg.Longitude > 180 {
		return errors.New("config: latitude/longitude out of range")
	}
	return nil
}

// StorePath is the bbolt file backing the local settings store.
func (c FileConfig) StorePath() string {
	return filepath.Join(c.DataDir, "iris.db")
}

// LogPath is where the companion writes its JSON log.
func (c FileConfig) LogPath() string {
	return filepath.Join(c.DataDir, "companion.log")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "iris")
	}
	return ".iris"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
