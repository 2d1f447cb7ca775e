package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LoserCoderLi/markdown-transform/internal/yamlutil"
)

// Config aggregates the daemon's settings. Precedence is flags over
// environment over the optional YAML file over defaults.
type Config struct {
	Addr           string        `yaml:"addr"`
	DataRoot       string        `yaml:"data_root"`
	LogDir         string        `yaml:"log_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SweepAt        string        `yaml:"sweep_at"`
	LogMaxAgeDays  int           `yaml:"log_max_age_days"`

	RateLimit      int      `yaml:"rate_limit"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaultConfig() Config {
	return Config{
		Addr:           ":8080",
		DataRoot:       "data",
		LogDir:         "logs",
		MaxUploadBytes: 100 << 20,
		RequestTimeout: 5 * time.Minute,
		SweepAt:        "01:00",
		LogMaxAgeDays:  7,
		RateLimit:      30,
		AllowedOrigins: []string{"*"},
	}
}

// loadConfig builds the effective configuration. path names an optional
// YAML file; empty skips it.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("MDTRANSFORM_ADDR")); v != "" {
		cfg.Addr = normalizeAddr(v)
	} else if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = normalizeAddr(port)
	}
	if v := os.Getenv("MDTRANSFORM_DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := os.Getenv("MDTRANSFORM_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("MDTRANSFORM_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MDTRANSFORM_MAX_UPLOAD_BYTES: %q", v)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("MDTRANSFORM_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MDTRANSFORM_RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = n
	}
	if v := os.Getenv("MDTRANSFORM_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("MDTRANSFORM_SWEEP_AT"); v != "" {
		cfg.SweepAt = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DataRoot == "" {
		return fmt.Errorf("data root must not be empty")
	}
	if _, err := time.Parse("15:04", c.SweepAt); err != nil {
		return fmt.Errorf("invalid sweep time %q: want HH:MM", c.SweepAt)
	}
	return nil
}

// normalizeAddr accepts ":8080", "127.0.0.1:8080", or a bare port.
func normalizeAddr(v string) string {
	if strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
