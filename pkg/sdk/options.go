package jobdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

type clientConfig struct {
	driver string // "postgres" or "memory"
	dsn    string
	table  string

	embedder    Embedder
	interpreter Interpreter

	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	temperature    float32
	dimensions     int
	template       string

	embedTimeout time.Duration
	chatTimeout  time.Duration

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	defaultLimit int
	maxLimit     int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres stores postings in PostgreSQL with the pgvector extension.
// The schema is created on first use.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = dsn
	})
}

// WithMemory keeps postings in process. Nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithTable overrides the postings table name. Default: jobs.
func WithTable(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.table = name
	})
}

// WithOpenAI configures the OpenAI-compatible embedding and chat providers.
// An empty baseURL means api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	})
}

// WithEmbeddingModel sets the embedding model and its vector dimension.
// Defaults to text-embedding-3-small with 1536 dimensions.
func WithEmbeddingModel(model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = model
		c.dimensions = dimensions
	})
}

// WithChatModel sets the model used to interpret natural-language queries.
func WithChatModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatModel = model
	})
}

// WithChatTemperature sets the sampling temperature of the interpreter. Default: 0.3.
func WithChatTemperature(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = t
	})
}

// WithTimeouts bounds each embedding and chat call. Zero leaves only the caller's context.
// Defaults: 15s each.
func WithTimeouts(embed, chat time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = embed
		c.chatTimeout = chat
	})
}

// WithEmbedder sets a custom text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithInterpreter sets a custom query interpreter.
func WithInterpreter(i Interpreter) Option {
	return optionFunc(func(c *clientConfig) {
		c.interpreter = i
	})
}

// WithTemplate selects the posting embedding text: "detailed" (default) or "basic".
func WithTemplate(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.template = name
	})
}

// WithValkeyCache caches embeddings in Valkey. A zero ttl keeps entries forever.
func WithValkeyCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLimits sets the default and maximum number of search results.
// Defaults: 5 and 100.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
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
