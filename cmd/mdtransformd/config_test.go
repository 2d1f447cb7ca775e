package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MDTRANSFORM_ADDR", "")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "addr: \":9090\"\ndata_root: /srv/mdtransform\nrate_limit: 5\nsweep_at: \"02:30\"\nrequest_timeout: 30s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DataRoot != "/srv/mdtransform" {
		t.Errorf("DataRoot = %q", cfg.DataRoot)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %d", cfg.RateLimit)
	}
	if cfg.SweepAt != "02:30" {
		t.Errorf("SweepAt = %q", cfg.SweepAt)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	// Untouched fields keep their defaults.
	if cfg.LogDir != "logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("adress: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MDTRANSFORM_ADDR", "127.0.0.1:7000")
	t.Setenv("MDTRANSFORM_DATA_ROOT", "/var/data")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:7000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DataRoot != "/var/data" {
		t.Errorf("DataRoot = %q", cfg.DataRoot)
	}
}

func TestLoadConfigPortFallback(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Addr)
	}
}

func TestLoadConfigAddrBeatsPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("MDTRANSFORM_ADDR", ":4000")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":4000" {
		t.Errorf("Addr = %q, want :4000", cfg.Addr)
	}
}

func TestLoadConfigBadEnvValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"upload bytes not a number", "MDTRANSFORM_MAX_UPLOAD_BYTES", "lots"},
		{"upload bytes negative", "MDTRANSFORM_MAX_UPLOAD_BYTES", "-1"},
		{"rate limit zero", "MDTRANSFORM_RATE_LIMIT", "0"},
		{"sweep time malformed", "MDTRANSFORM_SWEEP_AT", "25:99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := loadConfig(""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfigAllowedOrigins(t *testing.T) {
	t.Setenv("MDTRANSFORM_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"8080", ":8080"},
		{":8080", ":8080"},
		{"127.0.0.1:8080", "127.0.0.1:8080"},
	}
	for _, tt := range tests {
		if got := normalizeAddr(tt.in); got != tt.want {
			t.Errorf("normalizeAddr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
