package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
server:
  port: 9090
redis:
  addr: localhost:6379
engine:
  interval: 300s
  symbols: [BTC, ETH]
  timeframes: [5m]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Engine.Interval != 300*time.Second {
		t.Fatalf("interval = %v", cfg.Engine.Interval)
	}
	if len(cfg.Engine.Symbols) != 2 {
		t.Fatalf("symbols = %v", cfg.Engine.Symbols)
	}
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	cases := []string{
		"server:\n  port: 8080\n",                       // no environment
		"environment: test\n",                           // no redis addr
		"environment: test\nredis:\n  addr: l:6379\n",   // no symbols
	}
	for i, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.prod:6380")
	t.Setenv("SYMBOLS", "DOGE,AVAX")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "redis.prod:6380" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
	if len(cfg.Engine.Symbols) != 2 || cfg.Engine.Symbols[0] != "DOGE" {
		t.Fatalf("symbols = %v", cfg.Engine.Symbols)
	}
}

func TestValidateKafkaRequiresBrokers(t *testing.T) {
	body := minimalYAML + "kafka:\n  enabled: true\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for enabled kafka without brokers")
	}
}
