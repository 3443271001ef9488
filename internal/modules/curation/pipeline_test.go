package curation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/langbridge-backend/internal/config"
	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/llm"
	"github.com/yungbote/langbridge-backend/internal/llm/mock"
	"github.com/yungbote/langbridge-backend/internal/llm/oaihttp"
	"github.com/yungbote/langbridge-backend/internal/observability"
	"github.com/yungbote/langbridge-backend/internal/platform/apierr"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func upstream(t *testing.T, rt roundTripperFunc) llm.Engine {
	t.Helper()
	e, err := oaihttp.NewWithHTTPClient(config.LLMConfig{
		BaseURL: "http://upstream.invalid",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}, &http.Client{Transport: rt})
	require.NoError(t, err)
	return e
}

func newTestPipeline(engine llm.Engine, cfg Config) *Pipeline {
	return NewPipeline(cfg, engine, NewSeededSynthesizer(42), nil)
}

func TestCurateFallsBackWhenUpstreamUnreachable(t *testing.T) {
	engine := upstream(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	p := newTestPipeline(engine, Config{})

	got, err := p.Curate(context.Background(), pythonToCpp())
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := map[string]bool{}
	for _, r := range got {
		assert.Contains(t, r.Title, "C++")
		assert.Equal(t, learning.Beginner, r.Difficulty)
		assert.Equal(t, learning.ProvenanceFallback, r.Provenance)
		assert.NotEmpty(t, r.WhyRecommended)
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}
}

func TestCurateFallsBackOnUpstreamStatus(t *testing.T) {
	engine := upstream(t, func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader(`{"error":"overloaded"}`)),
			Header:     make(http.Header),
		}, nil
	})

	got, err := newTestPipeline(engine, Config{}).Curate(context.Background(), pythonToCpp())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestCurateFallsBackOnProse(t *testing.T) {
	got, err := newTestPipeline(mock.Static("Here are some ideas: read a book."), Config{}).
		Curate(context.Background(), pythonToCpp())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, learning.ProvenanceFallback, got[0].Provenance)
}

func TestCurateUsesModelReply(t *testing.T) {
	reply := "```json\n" + `{"resources":[
		{"type":"documentation","title":"<b>cppreference</b>: Pointers","url":"https://en.cppreference.com/w/cpp/language/pointer","difficulty":"beginner"},
		{"type":"video","title":"Pointers for Python devs","url":"not a url","qualityScore":14}
	]}` + "\n```"
	engine := mock.Static(reply)

	got, err := newTestPipeline(engine, Config{}).Curate(context.Background(), pythonToCpp())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, engine.Calls())

	assert.Equal(t, "cppreference: Pointers", got[0].Title)
	assert.Equal(t, DefaultQualityScore, got[0].QualityScore)
	assert.Equal(t, learning.ProvenanceModel, got[0].Provenance)
	assert.NotEmpty(t, got[0].WhyRecommended)

	assert.Equal(t, learning.MaxQualityScore, got[1].QualityScore)
	assert.True(t, strings.HasPrefix(got[1].URL, "https://www.youtube.com/"), got[1].URL)
	assert.Equal(t, learning.Beginner, got[1].Difficulty)
}

func TestCurateRejectsIncompleteRequest(t *testing.T) {
	p := newTestPipeline(mock.New(), Config{})
	cases := []learning.CurationRequest{
		{TargetLanguage: "C++", ModuleTitle: "Pointers"},
		{CurrentLanguage: "Python", ModuleTitle: "Pointers"},
		{CurrentLanguage: "Python", TargetLanguage: "C++"},
	}
	for _, req := range cases {
		_, err := p.Curate(context.Background(), req)
		ae, ok := apierr.As(err)
		require.True(t, ok, "%+v", req)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
	}
}

func rawResources(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"title":"Resource %d","url":"https://example.com/%d"}`, i, i))
	}
	return out
}

func TestOptimizeOneOutputPerInputWhenAllFail(t *testing.T) {
	engine := mock.Failing(errors.New("boom"))
	p := newTestPipeline(engine, Config{})

	got, err := p.Optimize(context.Background(), pythonToCpp(), rawResources(5))
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.EqualValues(t, 5, engine.Calls())
	for i, item := range got {
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), item.OriginalURL)
		assert.Equal(t, fmt.Sprintf("Resource %d", i), item.SlicedContent.Title)
		assert.Equal(t, learning.ProvenanceFallback, item.Provenance)
		assert.NotEmpty(t, item.SlicedContent.KeyConcepts)
		assert.JSONEq(t, string(rawResources(5)[i]), string(item.OriginalResource))
	}
}

func TestOptimizeMixesModelAndFallback(t *testing.T) {
	engine := mock.WithReply(func(_ context.Context, _, user string) (string, error) {
		if strings.Contains(user, "Resource 1") {
			return "sorry, no idea", nil
		}
		return `{"sliced_content":{"title":"Sliced","key_concepts":["raii"],"difficulty_level":"expert"},"ai_analysis":{"quality_score":11,"relevance_score":9.44}}`, nil
	})

	got, err := newTestPipeline(engine, Config{}).Optimize(context.Background(), pythonToCpp(), rawResources(3))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, learning.ProvenanceModel, got[0].Provenance)
	assert.Equal(t, "Sliced", got[0].SlicedContent.Title)
	assert.Equal(t, "beginner", got[0].SlicedContent.DifficultyLevel)
	assert.Equal(t, 10.0, got[0].AIAnalysis.QualityScore)
	assert.Equal(t, 9.4, got[0].AIAnalysis.RelevanceScore)
	assert.NotNil(t, got[0].SlicedContent.TimeSegments)

	assert.Equal(t, learning.ProvenanceFallback, got[1].Provenance)
	assert.Equal(t, learning.ProvenanceModel, got[2].Provenance)
}

func TestOptimizeFillsPartialModelReply(t *testing.T) {
	engine := mock.Static(`{"sliced_content":{"title":"T","key_concepts":["a"]},"ai_analysis":{"relevance_score":9,"quality_score":0}}`)

	got, err := newTestPipeline(engine, Config{}).Optimize(context.Background(), pythonToCpp(), rawResources(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	item := got[0]

	assert.Equal(t, learning.ProvenanceModel, item.Provenance)
	assert.Equal(t, "T", item.SlicedContent.Title)
	assert.Equal(t, []string{"a"}, item.SlicedContent.KeyConcepts)
	assert.NotEmpty(t, item.SlicedContent.EstimatedTime)
	assert.NotEmpty(t, item.SlicedContent.TimeSegments)
	assert.NotEmpty(t, item.SlicedContent.LearningObjectives)
	assert.NotEmpty(t, item.SlicedContent.Prerequisites)

	a := item.AIAnalysis
	assert.Equal(t, 9.0, a.RelevanceScore)
	assert.Equal(t, 0.0, a.QualityScore)
	assert.NotEmpty(t, a.TransitionFit)
	assert.NotEmpty(t, a.LastUpdated)
	assert.GreaterOrEqual(t, a.CommunityRating, synthRatingMin)
	assert.NotEmpty(t, a.Pros)
	assert.NotEmpty(t, a.Cons)
}

func TestOptimizeBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	engine := mock.WithReply(func(ctx context.Context, _, _ string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := peak.Load()
			if n <= cur || peak.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return "", errors.New("unavailable")
	})

	got, err := newTestPipeline(engine, Config{MaxConcurrency: 2}).
		Optimize(context.Background(), pythonToCpp(), rawResources(6))
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestOptimizeBatchDeadline(t *testing.T) {
	engine := mock.WithReply(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p := newTestPipeline(engine, Config{BatchDeadline: 50 * time.Millisecond, ItemTimeout: time.Minute})

	start := time.Now()
	got, err := p.Optimize(context.Background(), pythonToCpp(), rawResources(3))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Less(t, time.Since(start), 5*time.Second)
	for _, item := range got {
		assert.Equal(t, learning.ProvenanceFallback, item.Provenance)
	}
}

func TestOptimizeRequiresResources(t *testing.T) {
	_, err := newTestPipeline(mock.New(), Config{}).Optimize(context.Background(), pythonToCpp(), nil)
	_, ok := apierr.As(err)
	assert.True(t, ok)
}

func TestSearchSortedAndTruncated(t *testing.T) {
	p := newTestPipeline(mock.New(), Config{SearchLimit: 100})
	got, err := p.Search(context.Background(), learning.SearchRequest{
		SearchQueries:   []string{"pointers", "templates", "lambdas", "smart pointers"},
		CurrentLanguage: "Python",
		TargetLanguage:  "C++",
		SkillLevel:      "intermediate",
	})
	require.NoError(t, err)
	require.Len(t, got, MaxSearchResults)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].QualityScore, got[i].QualityScore)
	}
	assert.Equal(t, learning.Intermediate, got[0].Difficulty)
}

func TestSearchRequiresQueries(t *testing.T) {
	_, err := newTestPipeline(mock.New(), Config{}).Search(context.Background(), learning.SearchRequest{
		SearchQueries:   []string{" ", ""},
		CurrentLanguage: "Python",
		TargetLanguage:  "C++",
	})
	_, ok := apierr.As(err)
	assert.True(t, ok)
}

func TestDiscover(t *testing.T) {
	p := newTestPipeline(mock.New(), Config{})
	got, err := p.Discover(context.Background(), learning.DiscoveryRequest{
		URL:             "https://www.youtube.com/watch?v=abc",
		CurrentLanguage: "Python",
		TargetLanguage:  "Rust",
		SkillLevel:      "advanced",
	})
	require.NoError(t, err)

	assert.Equal(t, learning.ResourceVideo, got.Content.Type)
	assert.Equal(t, learning.Advanced, got.Content.Difficulty)
	assert.Len(t, got.Resources, len(learning.AllResourceTypes))
	assert.Equal(t, len(got.Resources), got.Metadata.TotalResources)
	require.NotEmpty(t, got.Metadata.Sources)
	assert.Equal(t, "youtube.com", got.Metadata.Sources[0])
	_, perr := time.Parse(time.RFC3339, got.Metadata.ScrapingTime)
	assert.NoError(t, perr)
}

func TestDiscoverRejectsBadURL(t *testing.T) {
	_, err := newTestPipeline(mock.New(), Config{}).Discover(context.Background(), learning.DiscoveryRequest{
		URL:             "ftp://nowhere",
		CurrentLanguage: "Python",
		TargetLanguage:  "Rust",
	})
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "invalid_request", ae.Code)
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Curation.SearchLimit = 40

	got := ConfigFrom(cfg).withDefaults()
	assert.Equal(t, cfg.LLM.Model, got.Model)
	assert.Equal(t, cfg.Curation.MaxConcurrency, got.MaxConcurrency)
	assert.Equal(t, MaxSearchResults, got.SearchLimit)
}

func TestPipelineReportsItemStates(t *testing.T) {
	metrics := observability.NewMetrics()
	p := NewPipeline(Config{}, mock.New(), NewSeededSynthesizer(7), nil, WithObserver(metrics))

	_, err := p.Curate(context.Background(), pythonToCpp())
	require.NoError(t, err)
	_, err = p.Optimize(context.Background(), pythonToCpp(), rawResources(2))
	require.NoError(t, err)

	assert.Equal(t, 1.0, metrics.CurationItems("curate", string(StateParseFailed)))
	assert.Equal(t, 2.0, metrics.CurationItems("optimize", string(StateParseFailed)))
}
