package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
	Extractor ExtractorConfig `toml:"extractor"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Events    EventsConfig    `toml:"events"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Dir            string `toml:"dir" validate:"required"` // Badger database directory
	ResetOnStartup bool   `toml:"reset_on_startup"`        // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// LLMConfig selects the embedding and generation models and carries provider
// credentials. The generation provider is detected from the model name prefix
// ("gemini-" or "claude-"); embeddings always come from Gemini since
// Anthropic exposes no embedding endpoint.
type LLMConfig struct {
	GenerationModel string  `toml:"generation_model" validate:"required"`
	EmbeddingModel  string  `toml:"embedding_model" validate:"required"`
	Temperature     float32 `toml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens       int     `toml:"max_tokens" validate:"gt=0"`
	Timeout         string  `toml:"timeout" validate:"duration"` // generation call timeout
	GeminiAPIKey    string  `toml:"gemini_api_key"`
	AnthropicAPIKey string  `toml:"anthropic_api_key"`
}

type EmbeddingConfig struct {
	Dimension int    `toml:"dimension" validate:"gte=0"`  // 0 = pin from the first provider response
	Timeout   string `toml:"timeout" validate:"duration"` // embedding call timeout
}

type ChunkingConfig struct {
	WindowSize int `toml:"window_size" validate:"gt=0"`
	Overlap    int `toml:"overlap" validate:"gte=0"`
}

type RetrievalConfig struct {
	MaxResults int `toml:"max_results" validate:"gt=0"`
}

type IngestConfig struct {
	MaxNoteChars int `toml:"max_note_chars" validate:"gt=0"`
}

type ExtractorConfig struct {
	UserAgent          string  `toml:"user_agent"`
	Timeout            string  `toml:"timeout" validate:"duration"`
	RequestsPerSecond  float64 `toml:"requests_per_second" validate:"gt=0"` // per-host politeness limit
	MaxBodySize        int64   `toml:"max_body_size" validate:"gt=0"`       // bytes
	EnableJavaScript   bool    `toml:"enable_javascript"`                   // render pages with headless Chrome before extraction
	JavaScriptWaitTime string  `toml:"javascript_wait_time" validate:"duration"`
}

type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`
	RefreshSchedule string `toml:"refresh_schedule"` // cron format, url item refresh sweep
}

type EventsConfig struct {
	Buffer int `toml:"buffer" validate:"gt=0"` // per-client send queue size
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8085,
			Host: "",
		},
		Storage: StorageConfig{
			Dir: "./data/capsa",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		LLM: LLMConfig{
			GenerationModel: "gemini-2.5-flash",
			EmbeddingModel:  "gemini-embedding-001",
			Temperature:     0.7,
			MaxTokens:       4096,
			Timeout:         "60s",
		},
		Embedding: EmbeddingConfig{
			Dimension: 1536,
			Timeout:   "30s",
		},
		Chunking: ChunkingConfig{
			WindowSize: 500,
			Overlap:    50,
		},
		Retrieval: RetrievalConfig{
			MaxResults: 5,
		},
		Ingest: IngestConfig{
			MaxNoteChars: 50000,
		},
		Extractor: ExtractorConfig{
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:            "10s",
			RequestsPerSecond:  2,
			MaxBodySize:        10 * 1024 * 1024, // 10MB
			EnableJavaScript:   false,
			JavaScriptWaitTime: "2s",
		},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			RefreshSchedule: "0 3 * * *", // daily at 03:00
		},
		Events: EventsConfig{
			Buffer: 64,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files override
// earlier files; environment variables override all files. CLI flags are
// applied afterwards by the caller via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies CAPSA_* environment variable overrides, plus the
// provider-standard key variables
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("CAPSA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CAPSA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if dir := os.Getenv("CAPSA_STORAGE_DIR"); dir != "" {
		config.Storage.Dir = dir
	}

	if level := os.Getenv("CAPSA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CAPSA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if model := os.Getenv("CAPSA_GENERATION_MODEL"); model != "" {
		config.LLM.GenerationModel = model
	}
	if model := os.Getenv("CAPSA_EMBEDDING_MODEL"); model != "" {
		config.LLM.EmbeddingModel = model
	}
	if temperature := os.Getenv("CAPSA_LLM_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.LLM.Temperature = float32(t)
		}
	}

	// Provider keys: the standard variables work, CAPSA_* takes priority
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.GeminiAPIKey = key
	}
	if key := os.Getenv("CAPSA_GEMINI_API_KEY"); key != "" {
		config.LLM.GeminiAPIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}
	if key := os.Getenv("CAPSA_ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}

	if dim := os.Getenv("CAPSA_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Embedding.Dimension = d
		}
	}

	if enabled := os.Getenv("CAPSA_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("CAPSA_REFRESH_SCHEDULE"); schedule != "" {
		config.Scheduler.RefreshSchedule = schedule
	}

	if js := os.Getenv("CAPSA_EXTRACTOR_ENABLE_JAVASCRIPT"); js != "" {
		if e, err := strconv.ParseBool(js); err == nil {
			config.Extractor.EnableJavaScript = e
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the merged configuration. Violations here are configuration
// errors surfaced at startup, never at request time.
func (c *Config) Validate() error {
	validate := validator.New()

	// "duration" tags require a parseable time.ParseDuration string
	if err := validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.ParseDuration(s)
		return err == nil
	}); err != nil {
		return fmt.Errorf("failed to register duration validation: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Cross-field constraint the tag grammar cannot express
	if c.Chunking.Overlap >= c.Chunking.WindowSize {
		return fmt.Errorf("invalid configuration: chunking overlap (%d) must be smaller than window size (%d)",
			c.Chunking.Overlap, c.Chunking.WindowSize)
	}

	return nil
}

// Duration parses a duration config string, falling back when empty or
// malformed. Validation rejects malformed values at load time; the fallback
// covers zero-value configs built directly in tests.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
