package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/langbridge-backend/internal/config"
	"github.com/yungbote/langbridge-backend/internal/llm"
	"github.com/yungbote/langbridge-backend/internal/llm/mock"
	"github.com/yungbote/langbridge-backend/internal/llm/oaihttp"
	"github.com/yungbote/langbridge-backend/internal/observability"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

func TestNewEngineSelectsImplementation(t *testing.T) {
	cfg := config.Default().LLM

	cfg.Engine = config.EngineMock
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mock.Engine{}, e)

	cfg.Engine = config.EngineDisabled
	e, err = NewEngine(cfg)
	require.NoError(t, err)
	_, err = e.GenerateText(context.Background(), nil, llm.GenerateOptions{})
	assert.ErrorIs(t, err, llm.ErrDisabled)

	cfg.Engine = config.EngineOAIHTTP
	e, err = NewEngine(cfg)
	require.NoError(t, err)
	assert.IsType(t, &oaihttp.Engine{}, e)

	cfg.Engine = "grpc"
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}

func TestInstrumentedEngineRecordsOutcome(t *testing.T) {
	metrics := observability.NewMetrics()
	e := instrumentEngine("gpt-4o-mini", mock.Failing(&oaihttp.HTTPError{StatusCode: 503}), metrics)

	_, err := e.GenerateText(context.Background(), llm.SystemUser("s", "u"), llm.GenerateOptions{})
	var httpErr *oaihttp.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 1.0, metrics.LLMRequests("gpt-4o-mini", "http_503"))

	e = instrumentEngine("gpt-4o-mini", mock.Static("ok"), metrics)
	out, err := e.GenerateText(context.Background(), llm.SystemUser("s", "u"), llm.GenerateOptions{Model: "other"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1.0, metrics.LLMRequests("other", "success"))
}

func TestBuildShutsDownTracingWhenEngineFails(t *testing.T) {
	shutdowns := 0
	orig := initTracing
	initTracing = func(context.Context, *logger.Logger, string, config.TelemetryConfig) func(context.Context) error {
		return func(context.Context) error {
			shutdowns++
			return nil
		}
	}
	t.Cleanup(func() { initTracing = orig })

	cfg := config.Default()
	cfg.LLM.Engine = "grpc"
	_, err := build(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Equal(t, 1, shutdowns)
}

func TestEngineStatus(t *testing.T) {
	assert.Equal(t, "success", engineStatus(nil))
	assert.Equal(t, "disabled", engineStatus(llm.ErrDisabled))
	assert.Equal(t, "timeout", engineStatus(context.DeadlineExceeded))
	assert.Equal(t, "error", engineStatus(errors.New("x")))
}

func TestAppServesCurationAndDrains(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.LLM.Engine = config.EngineMock
	cfg.HTTP.Addr = "127.0.0.1:0"
	require.NoError(t, cfg.Validate())

	a, err := build(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/resource-curation", strings.NewReader(
		`{"moduleTitle":"Ownership","currentLanguage":"Go","targetLanguage":"Rust","skillLevel":"intermediate"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Success   bool `json:"success"`
		Resources []struct {
			Title      string `json:"title"`
			Difficulty string `json:"difficulty"`
		} `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Resources, 4)
	assert.Equal(t, "intermediate", body.Resources[0].Difficulty)
	assert.Equal(t, 1.0, a.Metrics.LLMRequests(cfg.LLM.Model, "success"))

	ready := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, ready.Code)

	require.NoError(t, a.Close())

	ready = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
}
