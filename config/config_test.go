package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	return path
}

func TestGetFromFile(t *testing.T) {
	path := writeConfig(t, `
backend: mqtt
http:
  addr: ":9000"
  allowed_origin: "http://dashboard:5050"
mqtt:
  host: broker
  prefix: statestream
  state_ttl: 30s
vacuum:
  clean_service: vacuum/clean_area
log:
  level: debug
`)

	cfg, err := Get(path)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if cfg.Backend != BackendMQTT {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.HTTP.Addr != ":9000" || cfg.HTTP.AllowedOrigin != "http://dashboard:5050" {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.HTTP.Prefix != "/api/appdaemon" {
		t.Errorf("prefix default lost: %q", cfg.HTTP.Prefix)
	}
	if cfg.MQTT.Host != "broker" || cfg.MQTT.Port != "1883" || cfg.MQTT.Prefix != "statestream" {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}
	if cfg.MQTT.StateTTL != 30*time.Second {
		t.Errorf("state ttl = %v", cfg.MQTT.StateTTL)
	}
	if cfg.Vacuum.Namespace != "vacuum" || cfg.Vacuum.CleanService != "vacuum/clean_area" {
		t.Errorf("vacuum = %+v", cfg.Vacuum)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestGetEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
hass:
  url: http://localhost:8123
  token: from-file
`)
	// base64 of "from-env"
	t.Setenv("HASS_TOKEN", "ZnJvbS1lbnY=")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("HASS_TIMEOUT", "3s")

	cfg, err := Get(path)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if cfg.Hass.Token != "from-env" {
		t.Errorf("token = %q, want from-env", cfg.Hass.Token)
	}
	if cfg.Hass.URL != "http://localhost:8123" {
		t.Errorf("url = %q", cfg.Hass.URL)
	}
	if cfg.Hass.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Hass.Timeout)
	}
	if cfg.HTTP.Addr != ":7000" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
}

func TestGetWithoutFile(t *testing.T) {
	t.Setenv("HASS_TOKEN", "c2VjcmV0")

	cfg, err := Get(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if cfg.Backend != BackendHass || cfg.Hass.Token != "secret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestGetInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing token", "backend: hass\n"},
		{"unknown backend", "backend: zigbee\n"},
		{"malformed yaml", "backend: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Get(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPath(t *testing.T) {
	if got := Path(); got != "config.yml" {
		t.Errorf("Path() = %q", got)
	}

	t.Setenv("VACUUM_CONFIG", "/etc/vacuum/config.yml")
	if got := Path(); got != "/etc/vacuum/config.yml" {
		t.Errorf("Path() = %q", got)
	}
}
