// Package config centralises configuration parsing for the activity log service.
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

// Supported values for STORE_BACKEND.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config captures runtime configuration values for the activity log service.
type Config struct {
	HTTPAddress     string
	StoreBackend    string
	SheetURL        string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	PostgresURL     string
	SQLitePath      string
	KafkaBrokers    []string
	KafkaTopic      string
	JWTSecret       string
	JWTIssuer       string
	SessionTTL      time.Duration
	CORSOrigin      string
	BackendTimeout  time.Duration
	Subcategories   []string
	KafkaGroupID    string
	MetricsAddress  string
	MirrorBackend   string
	// SameYearDefault applies the year check to week/month summaries when the request omits same_year.
	SameYearDefault bool
}

// fileConfig is the optional YAML document named by CONFIG_FILE.
type fileConfig struct {
	HTTPAddress  string `yaml:"http_address"`
	StoreBackend string `yaml:"store_backend"`
	Sheet        struct {
		URL             string `yaml:"url"`
		Name            string `yaml:"name"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"sheet"`
	PostgresURL string `yaml:"postgres_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	Kafka       struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
		GroupID string   `yaml:"group_id"`
	} `yaml:"kafka"`
	Mirror struct {
		Backend        string `yaml:"backend"`
		MetricsAddress string `yaml:"metrics_address"`
	} `yaml:"mirror"`
	JWTIssuer      string   `yaml:"jwt_issuer"`
	SessionTTL     string   `yaml:"session_ttl"`
	CORSOrigin     string   `yaml:"cors_origin"`
	BackendTimeout string   `yaml:"backend_timeout"`
	Subcategories  []string `yaml:"subcategories"`
	SameYear       bool     `yaml:"same_year"`
}

// Defaults returns the local-dev configuration before file and environment overrides.
func Defaults() Config {
	return Config{
		HTTPAddress:    ":8080",
		StoreBackend:   BackendSheets,
		SheetName:      "Sheet1",
		SQLitePath:     "activitylog.db",
		KafkaTopic:     "activity_logged",
		KafkaGroupID:   "activitylog-mirror",
		MetricsAddress: ":9102",
		MirrorBackend:  BackendSQLite,
		JWTIssuer:      "activitylog",
		SessionTTL:     12 * time.Hour,
		CORSOrigin:     "*",
		BackendTimeout: 10 * time.Second,
	}
}

// Load reads the optional CONFIG_FILE and then environment variables into Config. Environment values
// win over file values, which win over Defaults.
func Load() (Config, error) {
	cfg := Defaults()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTPAddress = getEnv("HTTP_ADDRESS", cfg.HTTPAddress)
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.StoreBackend))
	cfg.SheetURL = getEnv("SHEET_URL", getEnv("SHEET_ID", cfg.SheetURL))
	cfg.SheetName = getEnv("SHEET_NAME", cfg.SheetName)
	cfg.CredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", cfg.CredentialsFile)
	cfg.CredentialsJSON = getEnv("GOOGLE_CREDENTIALS_JSON", cfg.CredentialsJSON)
	cfg.PostgresURL = getEnv("POSTGRES_URL", cfg.PostgresURL)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.MetricsAddress = getEnv("METRICS_ADDRESS", cfg.MetricsAddress)
	cfg.MirrorBackend = strings.ToLower(getEnv("MIRROR_BACKEND", cfg.MirrorBackend))
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.SessionTTL = getDurationEnv("SESSION_TTL", cfg.SessionTTL)
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.BackendTimeout = getDurationEnv("BACKEND_TIMEOUT", cfg.BackendTimeout)
	if subs := getEnv("SUBCATEGORIES", ""); subs != "" {
		cfg.Subcategories = splitAndTrim(subs)
	}
	cfg.SameYearDefault = getBoolEnv("SUMMARY_SAME_YEAR", cfg.SameYearDefault)
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.HTTPAddress, fc.HTTPAddress)
	setString(&c.StoreBackend, strings.ToLower(fc.StoreBackend))
	setString(&c.SheetURL, fc.Sheet.URL)
	setString(&c.SheetName, fc.Sheet.Name)
	setString(&c.CredentialsFile, fc.Sheet.CredentialsFile)
	setString(&c.PostgresURL, fc.PostgresURL)
	setString(&c.SQLitePath, fc.SQLitePath)
	setString(&c.KafkaTopic, fc.Kafka.Topic)
	setString(&c.KafkaGroupID, fc.Kafka.GroupID)
	setString(&c.MirrorBackend, strings.ToLower(fc.Mirror.Backend))
	setString(&c.MetricsAddress, fc.Mirror.MetricsAddress)
	setString(&c.JWTIssuer, fc.JWTIssuer)
	setString(&c.CORSOrigin, fc.CORSOrigin)
	if len(fc.Kafka.Brokers) > 0 {
		c.KafkaBrokers = splitAndTrim(strings.Join(fc.Kafka.Brokers, ","))
	}
	if fc.SameYear {
		c.SameYearDefault = true
	}
	if len(fc.Subcategories) > 0 {
		c.Subcategories = splitAndTrim(strings.Join(fc.Subcategories, ","))
	}
	if err := setDuration(&c.SessionTTL, fc.SessionTTL); err != nil {
		return fmt.Errorf("session_ttl: %w", err)
	}
	if err := setDuration(&c.BackendTimeout, fc.BackendTimeout); err != nil {
		return fmt.Errorf("backend_timeout: %w", err)
	}
	return nil
}

// Validate reports missing settings for the selected backend.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetURL == "" {
			return fmt.Errorf("%w: SHEET_URL or SHEET_ID is required for the sheets backend", ErrInvalidConfig)
		}
		if c.CredentialsFile == "" && c.CredentialsJSON == "" {
			return fmt.Errorf("%w: GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON is required for the sheets backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("%w: POSTGRES_URL is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("%w: BACKEND_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateMirror reports missing settings for the Kafka-fed replica.
func (c Config) ValidateMirror() error {
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("%w: KAFKA_BROKERS is required for the mirror", ErrInvalidConfig)
	}
	if c.KafkaGroupID == "" {
		return fmt.Errorf("%w: KAFKA_GROUP_ID is required for the mirror", ErrInvalidConfig)
	}
	switch c.MirrorBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for a sqlite mirror", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("%w: POSTGRES_URL is required for a postgres mirror", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: MIRROR_BACKEND must be sqlite or postgres, got %q", ErrInvalidConfig, c.MirrorBackend)
	}
	return nil
}

// AuthEnabled reports whether bearer-token checks should guard the API.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value string) error {
	if value = strings.TrimSpace(value); value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
