// Package config provides engine configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables with the JANSEVA_ prefix (runtime override)
//  2. Config file (/etc/janseva/config.yaml or ./config.yaml)
//  3. Default values
//
// Main categories:
//   - AI: generation model, embedder model, vector dimension
//   - Storage: PostgreSQL connection for schemes, sessions and issues
//   - Retrieval: hybrid search policy (top-k, similarity floor, weights)
//   - Session: inactivity window, history bounds, clarification budget
//   - Server: listen address, timeouts, per-IP rate limits
//
// Sensitive fields (the PostgreSQL password) are masked in MarshalJSON.
// Validation uses sentinel errors checked with errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidModelName indicates the generation model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidVectorDim indicates the embedding dimension does not match
	// the chunk index schema.
	ErrInvalidVectorDim = errors.New("invalid vector dimension")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidWeights indicates hybrid score weights do not sum to 1.
	ErrInvalidWeights = errors.New("invalid hybrid score weights")

	// ErrInvalidFloor indicates the similarity floor is outside [0, 1].
	ErrInvalidFloor = errors.New("invalid similarity floor")

	// ErrInvalidSessionTTL indicates the session inactivity window is
	// non-positive.
	ErrInvalidSessionTTL = errors.New("invalid session TTL")
)

// VectorDimension is the fixed dimensionality shared by all chunk embeddings
// and embed() outputs. The pgvector chunk index schema declares vector(768);
// changing this requires a migration.
const VectorDimension = 768

// Config stores engine configuration.
type Config struct {
	// AI model configuration
	ModelName     string  `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature" json:"temperature"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Retrieval policy
	RetrievalTopK   int     `mapstructure:"retrieval_top_k" json:"retrieval_top_k"`
	SimilarityFloor float64 `mapstructure:"similarity_floor" json:"similarity_floor"`
	VectorWeight    float64 `mapstructure:"vector_weight" json:"vector_weight"`
	KeywordWeight   float64 `mapstructure:"keyword_weight" json:"keyword_weight"`
	RerankEnabled   bool    `mapstructure:"rerank_enabled" json:"rerank_enabled"`

	// Language policy
	LanguageConfidenceThreshold float64 `mapstructure:"language_confidence_threshold" json:"language_confidence_threshold"`

	// Session policy
	SessionTTLMinutes   int `mapstructure:"session_ttl_minutes" json:"session_ttl_minutes"`
	HistoryTurns        int `mapstructure:"history_turns" json:"history_turns"`                 // stored per session
	ContextWindowTurns  int `mapstructure:"context_window_turns" json:"context_window_turns"`   // sent to the model
	ClarificationRounds int `mapstructure:"clarification_rounds" json:"clarification_rounds"`   // per pending slot
	SpokenSegmentRunes  int `mapstructure:"spoken_segment_runes" json:"spoken_segment_runes"`   // synthesis chunking

	// External call discipline
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds" json:"call_timeout_seconds"`
	MaxRetries         int `mapstructure:"max_retries" json:"max_retries"`

	// Server configuration
	ServerHost string  `mapstructure:"server_host" json:"server_host"`
	ServerPort int     `mapstructure:"server_port" json:"server_port"`
	RateLimit  float64 `mapstructure:"rate_limit" json:"rate_limit"` // tokens per second per IP
	RateBurst  int     `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability (tracing disabled when endpoint is empty)
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`
	Environment  string `mapstructure:"environment" json:"environment"`
}

// setDefaults registers default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("embedder_model", "gemini-embedding-001")
	v.SetDefault("temperature", 0.3)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "janseva")
	v.SetDefault("postgres_db_name", "janseva")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("retrieval_top_k", 3)
	v.SetDefault("similarity_floor", 0.5)
	v.SetDefault("vector_weight", 0.7)
	v.SetDefault("keyword_weight", 0.3)
	v.SetDefault("rerank_enabled", false)

	v.SetDefault("language_confidence_threshold", 0.6)

	v.SetDefault("session_ttl_minutes", 30)
	v.SetDefault("history_turns", 50)
	v.SetDefault("context_window_turns", 5)
	v.SetDefault("clarification_rounds", 2)
	v.SetDefault("spoken_segment_runes", 280)

	v.SetDefault("call_timeout_seconds", 15)
	v.SetDefault("max_retries", 3)

	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("rate_limit", 1.0)
	v.SetDefault("rate_burst", 60)

	v.SetDefault("service_name", "janseva")
	v.SetDefault("environment", "dev")
}

// Load reads configuration from file, environment and defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/janseva")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JANSEVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Missing config file is fine: env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration consistency for all run modes.
func (c *Config) Validate() error {
	if c.PostgresHost == "" {
		return ErrInvalidPostgresHost
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.ModelName == "" {
		return ErrInvalidModelName
	}
	if c.EmbedderModel == "" {
		return ErrInvalidEmbedderModel
	}
	if c.RetrievalTopK < 1 || c.RetrievalTopK > 10 {
		return fmt.Errorf("%w: %d", ErrInvalidTopK, c.RetrievalTopK)
	}
	if c.SimilarityFloor < 0 || c.SimilarityFloor > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidFloor, c.SimilarityFloor)
	}
	if sum := c.VectorWeight + c.KeywordWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: vector=%g keyword=%g", ErrInvalidWeights, c.VectorWeight, c.KeywordWeight)
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidSessionTTL, c.SessionTTLMinutes)
	}
	return nil
}

// SessionTTL returns the session inactivity window as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// CallTimeout returns the per-external-call timeout as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// PostgresURL returns the connection string in URL form for migrations.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort,
		c.PostgresDBName, c.PostgresSSLMode)
}

// PostgresConnectionString returns the keyword/value connection string for pgx.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDBName, c.PostgresSSLMode)
}

// ServerAddr returns the listen address for the HTTP server.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MarshalJSON masks sensitive fields. When adding new secrets to Config,
// update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	masked := alias(c)
	if masked.PostgresPassword != "" {
		masked.PostgresPassword = "********"
	}
	return json.Marshal(masked)
}
