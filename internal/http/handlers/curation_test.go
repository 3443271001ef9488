package handlers

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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

type stubCurator struct{ err error }

func (s stubCurator) Discover(context.Context, learning.DiscoveryRequest) (learning.Discovery, error) {
	return learning.Discovery{}, s.err
}

func (s stubCurator) Optimize(context.Context, learning.CurationRequest, []json.RawMessage) ([]learning.OptimizedResource, error) {
	return nil, s.err
}

func (s stubCurator) Curate(context.Context, learning.CurationRequest) ([]learning.Resource, error) {
	return nil, s.err
}

func (s stubCurator) Search(context.Context, learning.SearchRequest) ([]learning.Resource, error) {
	return nil, s.err
}

func searchWith(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	h := NewCurationHandler(&logger.Logger{SugaredLogger: zap.New(core).Sugar()}, stubCurator{err: err})

	r := gin.New()
	r.POST("/api/resource-search", h.SearchResources)
	req := httptest.NewRequest(http.MethodPost, "/api/resource-search",
		strings.NewReader(`{"searchQueries":["x"],"currentLanguage":"Go","targetLanguage":"Rust"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body, logs
}

func TestCancelledRequestIsNotAnInternalError(t *testing.T) {
	rec, body, logs := searchWith(t, context.Canceled)

	assert.Equal(t, 499, rec.Code)
	assert.Equal(t, "client_closed_request", body["code"])
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestDeadlineIsServiceUnavailable(t *testing.T) {
	rec, body, logs := searchWith(t, context.DeadlineExceeded)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "timeout", body["code"])
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestUnexpectedErrorIsLoggedAndHidden(t *testing.T) {
	rec, body, logs := searchWith(t, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
