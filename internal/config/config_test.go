package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Store.Backend != "postgres" || cfg.Analytics.TrendStep != 1000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Kafka.Enabled() {
		t.Error("kafka should be disabled by default")
	}
}

func TestLoad_YAMLOverlayThenEnv(t *testing.T) {
	path := createTempConfigFile(t, `
store:
  backend: sqlite
  sqlite_path: /tmp/catalog.db
cache:
  backend: none
analytics:
  max_page_size: 50
log:
  level: debug
`)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "/tmp/catalog.db" {
		t.Errorf("YAML store not applied: %+v", cfg.Store)
	}
	if cfg.Store.DBHost != "localhost" {
		t.Error("keys absent from YAML should keep their defaults")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("environment should override YAML, got %q", cfg.Log.Level)
	}
	if cfg.Analytics.DefaultPageSize != 25 || cfg.Analytics.MaxPageSize != 50 {
		t.Errorf("unexpected analytics config: %+v", cfg.Analytics)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"store backend", map[string]string{"STORE_BACKEND": "oracle"}, ErrInvalidStoreBackend},
		{"mongo uri", map[string]string{"STORE_BACKEND": "mongo"}, ErrMissingMongoURI},
		{"cache backend", map[string]string{"CACHE_BACKEND": "redis"}, ErrInvalidCacheBackend},
		{"log level", map[string]string{"LOG_LEVEL": "trace"}, ErrInvalidLogLevel},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, ErrInvalidLogFormat},
		{"page size", map[string]string{"DEFAULT_PAGE_SIZE": "500"}, ErrInvalidPageSize},
		{"trend step", map[string]string{"TREND_STEP": "-5"}, ErrInvalidTrendStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load("")
			if !errors.Is(err, tt.want) {
				t.Errorf("load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_KafkaRequiresTopic(t *testing.T) {
	path := createTempConfigFile(t, `
kafka:
  brokers: localhost:9092
  topic: ""
`)
	if _, err := load(path); !errors.Is(err, ErrMissingKafkaTopic) {
		t.Errorf("load() error = %v, want %v", err, ErrMissingKafkaTopic)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestStoreConfig_DSN(t *testing.T) {
	dsn := Default().Store.DSN()
	want := "host=localhost port=5432 user=insights password=insights dbname=insights sslmode=disable"
	if dsn != want {
		t.Errorf("DSN = %q, want %q", dsn, want)
	}
}
