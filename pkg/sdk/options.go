package docintel

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn string

	driver   string // "valkey", "redis" or "pgvector"
	addrs    []string
	password string

	embedder         Embedder
	queryInstruction string

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	similarityFloor  float64
	abbreviations    map[string][]string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the content store connection string. Required.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithValkey stores vectors in a Valkey instance with valkey-search.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores vectors in a Redis 8 instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPGVector stores vectors next to the records through pgvector.
func WithPGVector() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "pgvector"
		c.addrs = nil
	})
}

// WithEmbedder sets the query embedding provider.
// Without one, hybrid and semantic queries fail with ErrEmbedding; literal queries still work.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithQueryInstruction prefixes every query before embedding.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithVectorDimensions sets the embedding dimension. Defaults to 1024.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithSimilarityFloor drops semantic hits below floor. Default: 0.75.
func WithSimilarityFloor(floor float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.similarityFloor = floor
	})
}

// WithAbbreviations merges extra shorthand expansions over the built-in table.
// An empty expansion list removes a built-in entry.
func WithAbbreviations(m map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.abbreviations = m
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
