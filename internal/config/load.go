package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/langbridge-backend/internal/platform/envutil"
)

const (
	EngineOAIHTTP  = "oai_http"
	EngineMock     = "mock"
	EngineDisabled = "disabled"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got kind %d", node.Kind)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env:      "development",
		LogLevel: "debug",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		LLM: LLMConfig{
			Engine:              EngineOAIHTTP,
			BaseURL:             "https://api.openai.com",
			ChatCompletionsPath: "/v1/chat/completions",
			Model:               "gpt-4o-mini",
			Temperature:         0.3,
			MaxTokens:           1500,
			Timeout:             Duration{Duration: 30 * time.Second},
			RequestsPerSecond:   0,
			Burst:               1,
			MaxRetries:          0,
		},
		Curation: CurationConfig{
			MaxConcurrency: 4,
			ItemTimeout:    Duration{Duration: 30 * time.Second},
			BatchDeadline:  Duration{Duration: 90 * time.Second},
			SearchLimit:    15,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "langbridge",
			Exporter:    "stdout",
			SampleRatio: 1.0,
		},
	}
}

// Load builds the process config: defaults, then an optional YAML/JSON file, then env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("LANGBRIDGE_CONFIG_PATH"))
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
				p := filepath.Join(wd, "config", name)
				if _, err := os.Stat(p); err == nil {
					path = p
					break
				}
			}
		}
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the file at path onto cfg. JSON files are accepted as YAML.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.LogLevel = envutil.String("LOG_LEVEL", cfg.LogLevel)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("LANGBRIDGE_HTTP_ADDR", cfg.HTTP.Addr)
	if v := envutil.String("LANGBRIDGE_ALLOWED_ORIGINS", ""); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}

	cfg.LLM.Engine = envutil.String("LANGBRIDGE_LLM_ENGINE", cfg.LLM.Engine)
	cfg.LLM.APIKey = envutil.String("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = envutil.String("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = envutil.String("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.Temperature = envutil.Float("OPENAI_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.MaxTokens = envutil.Int("OPENAI_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.LLM.MaxRetries)
	cfg.LLM.Timeout.Duration = envutil.Duration("OPENAI_TIMEOUT", cfg.LLM.Timeout.Duration)
	cfg.LLM.RequestsPerSecond = envutil.Float("OPENAI_REQUESTS_PER_SECOND", cfg.LLM.RequestsPerSecond)

	cfg.Curation.MaxConcurrency = envutil.Int("CURATION_MAX_CONCURRENCY", cfg.Curation.MaxConcurrency)
	cfg.Curation.ItemTimeout.Duration = envutil.Duration("CURATION_ITEM_TIMEOUT", cfg.Curation.ItemTimeout.Duration)
	cfg.Curation.BatchDeadline.Duration = envutil.Duration("CURATION_BATCH_DEADLINE", cfg.Curation.BatchDeadline.Duration)

	cfg.Telemetry.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = envutil.String("OTEL_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Telemetry.SampleRatio)
}

// Validate normalizes cfg in place and rejects settings the server cannot run with.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}

	l := &cfg.LLM
	l.Engine = strings.ToLower(strings.TrimSpace(l.Engine))
	switch l.Engine {
	case "", "openai_http", EngineOAIHTTP:
		l.Engine = EngineOAIHTTP
	case EngineMock, EngineDisabled:
	default:
		return fmt.Errorf("invalid llm.engine=%q", l.Engine)
	}
	l.BaseURL = strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	l.APIKey = strings.TrimSpace(l.APIKey)
	if l.Engine == EngineOAIHTTP {
		if l.BaseURL == "" {
			return errors.New("llm.base_url is required for oai_http")
		}
		// Without a key the upstream would reject every call; serve fallback data instead.
		if l.APIKey == "" {
			l.Engine = EngineDisabled
		}
	}
	if strings.TrimSpace(l.ChatCompletionsPath) == "" {
		l.ChatCompletionsPath = "/v1/chat/completions"
	}
	if strings.TrimSpace(l.Model) == "" {
		return errors.New("llm.model is required")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("invalid llm.temperature=%v", l.Temperature)
	}
	if l.MaxTokens <= 0 {
		l.MaxTokens = 1500
	}
	if l.Timeout.Duration <= 0 {
		l.Timeout = Duration{Duration: 30 * time.Second}
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("invalid llm.max_retries=%d", l.MaxRetries)
	}
	if l.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid llm.requests_per_second=%v", l.RequestsPerSecond)
	}
	if l.Burst <= 0 {
		l.Burst = 1
	}

	c := &cfg.Curation
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
	if c.ItemTimeout.Duration <= 0 {
		c.ItemTimeout = Duration{Duration: 30 * time.Second}
	}
	if c.BatchDeadline.Duration <= 0 {
		c.BatchDeadline = Duration{Duration: 90 * time.Second}
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 15
	}

	t := &cfg.Telemetry
	t.Exporter = strings.ToLower(strings.TrimSpace(t.Exporter))
	switch t.Exporter {
	case "", "stdout":
		t.Exporter = "stdout"
	case "otlp":
	default:
		return fmt.Errorf("invalid telemetry.exporter=%q", t.Exporter)
	}
	if t.SampleRatio <= 0 || t.SampleRatio > 1 {
		t.SampleRatio = 1.0
	}
	if strings.TrimSpace(t.ServiceName) == "" {
		t.ServiceName = "langbridge"
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
