package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr" json:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout" json:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes" json:"max_request_bytes"`

	// AllowedOrigins feeds CORS for the marketing front-end.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type LLMConfig struct {
	// Engine is one of "oai_http", "mock" or "disabled".
	Engine string `yaml:"engine" json:"engine"`

	BaseURL             string `yaml:"base_url" json:"base_url"`
	APIKey              string `yaml:"api_key" json:"api_key"`
	ChatCompletionsPath string `yaml:"chat_completions_path" json:"chat_completions_path"`
	Model               string `yaml:"model" json:"model"`

	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`

	// Timeout bounds one upstream HTTP attempt.
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// RequestsPerSecond <= 0 disables the shared limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`

	// MaxRetries is the number of extra attempts on transient failures. 0 keeps a single attempt.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
}

type CurationConfig struct {
	MaxConcurrency int      `yaml:"max_concurrency" json:"max_concurrency"`
	ItemTimeout    Duration `yaml:"item_timeout" json:"item_timeout"`
	BatchDeadline  Duration `yaml:"batch_deadline" json:"batch_deadline"`
	SearchLimit    int      `yaml:"search_limit" json:"search_limit"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Exporter    string  `yaml:"exporter" json:"exporter"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}

type Config struct {
	Env       string          `yaml:"env" json:"env"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	LLM       LLMConfig       `yaml:"llm" json:"llm"`
	Curation  CurationConfig  `yaml:"curation" json:"curation"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}
