package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	path := writeConfig(t, `
port: "5000"
databaseURL: "postgres://iris@localhost/iris"
redisAddr: "localhost:6379"
sessionTTL: "12h"
trustedProxies: ["10.0.0.0/8"]
`)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("BACKEND_REQUIRE_BEARER", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("store default = %q", cfg.Store)
	}
	if cfg.RedisAddr != "redis:6379" || !cfg.RequireBearer {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	ttl, err := ParseDuration("sessionTTL", cfg.SessionTTL)
	if err != nil || ttl != 12*time.Hour {
		t.Fatalf("session ttl = %v err=%v", ttl, err)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing port", `redisAddr: "r:1"`, "port is required"},
		{"postgres needs dsn", "port: \"1\"\nredisAddr: \"r:1\"", "databaseURL is required"},
		{"missing redis", "port: \"1\"\nstore: memory", "redisAddr is required"},
		{"short secret", "port: \"1\"\nstore: memory\nredisAddr: \"r:1\"\njwtSecret: short", "jwtSecret"},
		{"bad ttl", "port: \"1\"\nstore: memory\nredisAddr: \"r:1\"\nsessionTTL: soon", "sessionTTL"},
		{"minio incomplete", "port: \"1\"\nstore: memory\nredisAddr: \"r:1\"\nminioEndpoint: \"m:9000\"", "minioBucket"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}
