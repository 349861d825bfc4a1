package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Vector index drivers.
const (
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverPGVector = "pgvector"
)

// Config holds the docintel configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Vector    VectorConfig    `yaml:"vector"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Reindex   ReindexConfig   `yaml:"reindex"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the content store connection.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	MaxConns        int    `yaml:"max_conns"`
	RecordsTable    string `yaml:"records_table"`
	EmbeddingsTable string `yaml:"embeddings_table"` // pgvector driver only
}

// VectorConfig holds the vector index and availability probe settings.
type VectorConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, pgvector (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	KeyPrefix        string   `yaml:"key_prefix"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	ProbeTimeoutMs   int      `yaml:"probe_timeout_ms"`
	HealthyTTLSec    int      `yaml:"healthy_ttl_sec"`
	UnhealthyTTLSec  int      `yaml:"unhealthy_ttl_sec"`
	QueryTimeoutMs   int      `yaml:"query_timeout_ms"`
}

// UsesKV reports whether the driver is backed by a Redis-protocol store.
func (v VectorConfig) UsesKV() bool {
	return v.Driver == DriverRedis || v.Driver == DriverValkey
}

// EmbeddingConfig holds the OpenAI-compatible provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // label for metrics
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	QueryInstruction    string `yaml:"query_instruction"`
	DocumentInstruction string `yaml:"document_instruction"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	MaxBatch            int    `yaml:"max_batch"`
	CacheTTLSec         int    `yaml:"cache_ttl_sec"` // 0 disables the query cache
}

// SearchConfig holds lane and fusion tuning.
type SearchConfig struct {
	SimilarityFloor float64             `yaml:"similarity_floor"`
	AgreementBonus  float64             `yaml:"agreement_bonus"`
	TitleWeight     float64             `yaml:"title_weight"`
	BodyWeight      float64             `yaml:"body_weight"`
	PhraseBonus     float64             `yaml:"phrase_bonus"` // negative disables the phrase bonus
	TopK            int                 `yaml:"top_k"`
	StoreTimeoutMs  int                 `yaml:"store_timeout_ms"`
	Abbreviations   map[string][]string `yaml:"abbreviations"` // merged over the built-in table
}

// ReindexConfig holds write path settings.
type ReindexConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, unmarshals it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 8
	}
	if c.Database.RecordsTable == "" {
		c.Database.RecordsTable = "content_records"
	}
	if c.Database.EmbeddingsTable == "" {
		c.Database.EmbeddingsTable = "content_embeddings"
	}
	c.applyVectorDefaults()
	c.applyEmbeddingDefaults()
	if c.Search.SimilarityFloor == 0 {
		c.Search.SimilarityFloor = 0.75
	}
	if c.Search.AgreementBonus == 0 {
		c.Search.AgreementBonus = 0.1
	}
	if c.Search.TitleWeight == 0 {
		c.Search.TitleWeight = 2
	}
	if c.Search.BodyWeight == 0 {
		c.Search.BodyWeight = 1
	}
	if c.Search.PhraseBonus == 0 {
		c.Search.PhraseBonus = 1
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 50
	}
	if c.Search.StoreTimeoutMs <= 0 {
		c.Search.StoreTimeoutMs = 5000
	}
	if c.Reindex.BatchSize <= 0 {
		c.Reindex.BatchSize = 32
	}
}

func (c *Config) applyVectorDefaults() {
	v := &c.Vector
	if v.Driver == "" {
		v.Driver = DriverRedis
	}
	if v.Index == "" {
		v.Index = "docintel:content:idx"
	}
	if v.KeyPrefix == "" {
		v.KeyPrefix = "docintel:vec:"
	}
	if v.HNSWM <= 0 {
		v.HNSWM = 16
	}
	if v.HNSWEFConstruct <= 0 {
		v.HNSWEFConstruct = 200
	}
	if v.ReadinessTimeout <= 0 {
		v.ReadinessTimeout = 10
	}
	if v.ProbeTimeoutMs <= 0 {
		v.ProbeTimeoutMs = 500
	}
	if v.HealthyTTLSec <= 0 {
		v.HealthyTTLSec = 30
	}
	if v.UnhealthyTTLSec <= 0 {
		v.UnhealthyTTLSec = 5
	}
	if v.QueryTimeoutMs <= 0 {
		v.QueryTimeoutMs = 3000
	}
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 1024
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 10
	}
	if e.MaxBatch <= 0 {
		e.MaxBatch = 256
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.Vector.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Vector.Addrs) == 0 {
			return fmt.Errorf("vector.addrs is required for driver %q", c.Vector.Driver)
		}
	case DriverPGVector:
	default:
		return fmt.Errorf("vector.driver must be redis, valkey or pgvector, got %q", c.Vector.Driver)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Search.SimilarityFloor < 0 || c.Search.SimilarityFloor > 1 {
		return fmt.Errorf("search.similarity_floor must be within [0, 1], got %g", c.Search.SimilarityFloor)
	}
	if c.Search.AgreementBonus < 0 {
		return fmt.Errorf("search.agreement_bonus must not be negative, got %g", c.Search.AgreementBonus)
	}
	if c.Search.TitleWeight < 0 || c.Search.BodyWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	if c.Reindex.Workers < 0 {
		return fmt.Errorf("reindex.workers must not be negative, got %d", c.Reindex.Workers)
	}
	return nil
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Seconds converts a second setting to a duration.
func Seconds(sec int) time.Duration { return time.Duration(sec) * time.Second }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
