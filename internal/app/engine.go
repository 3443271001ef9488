package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/langbridge-backend/internal/config"
	"github.com/yungbote/langbridge-backend/internal/llm"
	"github.com/yungbote/langbridge-backend/internal/llm/mock"
	"github.com/yungbote/langbridge-backend/internal/llm/oaihttp"
	"github.com/yungbote/langbridge-backend/internal/observability"
)

// NewEngine picks the upstream implementation named by cfg.Engine.
func NewEngine(cfg config.LLMConfig) (llm.Engine, error) {
	switch cfg.Engine {
	case config.EngineMock:
		return mock.New(), nil
	case config.EngineDisabled:
		return llm.Disabled(), nil
	case config.EngineOAIHTTP, "":
		return oaihttp.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm engine %q", cfg.Engine)
	}
}

type instrumentedEngine struct {
	model   string
	inner   llm.Engine
	metrics *observability.Metrics
}

func instrumentEngine(model string, inner llm.Engine, metrics *observability.Metrics) llm.Engine {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedEngine{model: model, inner: inner, metrics: metrics}
}

func (e *instrumentedEngine) GenerateText(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	start := time.Now()
	out, err := e.inner.GenerateText(ctx, messages, opts)
	model := opts.Model
	if model == "" {
		model = e.model
	}
	e.metrics.ObserveLLMRequest(model, engineStatus(err), time.Since(start))
	return out, err
}

func engineStatus(err error) string {
	var httpErr *oaihttp.HTTPError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, llm.ErrDisabled):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("http_%d", httpErr.StatusCode)
	default:
		return "error"
	}
}
