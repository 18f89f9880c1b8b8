// Package config charge la configuration depuis .env, l'environnement et un fichier YAML optionnel.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Erreurs de validation de la configuration
var (
	ErrInvalidStoreBackend = errors.New("store.backend must be one of: postgres, sqlite, mongo, memory")
	ErrInvalidCacheBackend = errors.New("cache.backend must be one of: memory, pebble, none")
	ErrMissingPebbleDir    = errors.New("cache.pebble_dir is required for the pebble backend")
	ErrMissingSQLitePath   = errors.New("store.sqlite_path is required for the sqlite backend")
	ErrMissingMongoURI     = errors.New("store.mongo_uri is required for the mongo backend")
	ErrInvalidLogLevel     = errors.New("log.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log.format must be 'json' or 'console'")
	ErrInvalidPageSize     = errors.New("analytics.default_page_size must be between 1 and analytics.max_page_size")
	ErrInvalidTrendStep    = errors.New("analytics.trend_step must be positive")
	ErrMissingKafkaTopic   = errors.New("kafka.topic is required when kafka.brokers is set")
)

// Config représente la configuration complète du service
type Config struct {
	HTTPAddr  string          `yaml:"http_addr"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Log       LogConfig       `yaml:"log"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// StoreConfig choisit et configure le stockage du catalogue
type StoreConfig struct {
	Backend         string `yaml:"backend"`
	DBHost          string `yaml:"db_host"`
	DBPort          string `yaml:"db_port"`
	DBUser          string `yaml:"db_user"`
	DBPassword      string `yaml:"db_password"`
	DBName          string `yaml:"db_name"`
	DBSSLMode       string `yaml:"db_sslmode"`
	SQLitePath      string `yaml:"sqlite_path"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

// CacheConfig configure le cache des réponses
type CacheConfig struct {
	Backend    string `yaml:"backend"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	PebbleDir  string `yaml:"pebble_dir"`
}

// TTL retourne la durée de vie des entrées
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// KafkaConfig configure la publication des événements; vide = désactivée
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

// Enabled vérifie si des brokers sont configurés
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

// LogConfig configure le logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalyticsConfig regroupe les paramètres des agrégations
type AnalyticsConfig struct {
	TrendStep       float64 `yaml:"trend_step"`
	DefaultPageSize int     `yaml:"default_page_size"`
	MaxPageSize     int     `yaml:"max_page_size"`
}

// Default retourne la configuration par défaut
func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		Store: StoreConfig{
			Backend:         "postgres",
			DBHost:          "localhost",
			DBPort:          "5432",
			DBUser:          "insights",
			DBPassword:      "insights",
			DBName:          "insights",
			DBSSLMode:       "disable",
			SQLitePath:      "./insights.db",
			MongoDatabase:   "insights",
			MongoCollection: "amazon-sales",
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLSeconds: 300,
			PebbleDir:  "./cache",
		},
		Kafka: KafkaConfig{Topic: "catalog-events"},
		Log:   LogConfig{Level: "info", Format: "json"},
		Analytics: AnalyticsConfig{
			TrendStep:       1000,
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

// Load charge .env (si présent), le fichier CONFIG_FILE (si défini) puis
// les variables d'environnement, qui ont priorité
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Getenv("CONFIG_FILE"))
}

func load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.DBHost = getEnv("DB_HOST", c.Store.DBHost)
	c.Store.DBPort = getEnv("DB_PORT", c.Store.DBPort)
	c.Store.DBUser = getEnv("DB_USER", c.Store.DBUser)
	c.Store.DBPassword = getEnv("DB_PASSWORD", c.Store.DBPassword)
	c.Store.DBName = getEnv("DB_NAME", c.Store.DBName)
	c.Store.DBSSLMode = getEnv("DB_SSLMODE", c.Store.DBSSLMode)
	c.Store.SQLitePath = getEnv("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.MongoURI = getEnv("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = getEnv("MONGO_DATABASE", c.Store.MongoDatabase)
	c.Store.MongoCollection = getEnv("MONGO_COLLECTION", c.Store.MongoCollection)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.TTLSeconds = getEnvInt("CACHE_TTL_SECONDS", c.Cache.TTLSeconds)
	c.Cache.PebbleDir = getEnv("PEBBLE_DIR", c.Cache.PebbleDir)

	c.Kafka.Brokers = getEnv("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Analytics.TrendStep = getEnvFloat("TREND_STEP", c.Analytics.TrendStep)
	c.Analytics.DefaultPageSize = getEnvInt("DEFAULT_PAGE_SIZE", c.Analytics.DefaultPageSize)
	c.Analytics.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", c.Analytics.MaxPageSize)
}

// Validate vérifie la cohérence de la configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "postgres", "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return ErrMissingSQLitePath
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return ErrMissingMongoURI
		}
	default:
		return ErrInvalidStoreBackend
	}

	switch c.Cache.Backend {
	case "memory", "none":
	case "pebble":
		if c.Cache.PebbleDir == "" {
			return ErrMissingPebbleDir
		}
	default:
		return ErrInvalidCacheBackend
	}

	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return ErrMissingKafkaTopic
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return ErrInvalidLogFormat
	}

	if c.Analytics.TrendStep <= 0 {
		return ErrInvalidTrendStep
	}
	if c.Analytics.MaxPageSize < 1 || c.Analytics.DefaultPageSize < 1 || c.Analytics.DefaultPageSize > c.Analytics.MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// DSN retourne la chaîne de connexion PostgreSQL
func (s StoreConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.DBHost, s.DBPort, s.DBUser, s.DBPassword, s.DBName, s.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
