package curation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

var (
	// ErrNoJSON means the reply held no parseable JSON object.
	ErrNoJSON = errors.New("no json in model reply")

	// ErrInvalidPayload means the JSON parsed but lacked required fields.
	ErrInvalidPayload = errors.New("model reply failed validation")
)

// ValidationError describes why a model reply could not be used.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: ErrInvalidPayload, Detail: fmt.Sprintf(format, args...)}
}

// Result is either a parsed value or the validation error explaining why there is none.
type Result[T any] struct {
	Value T
	Err   *ValidationError
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func Err[T any](err *ValidationError) Result[T] { return Result[T]{Err: err} }

func (r Result[T]) OK() bool { return r.Err == nil }

const fence = "```"

// Extract returns the JSON candidate inside a model reply: the first fenced block when there is one
// (a leading "json" tag is dropped wherever the JSON starts), else the whole reply.
func Extract(reply string) string {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, fence)
	if start < 0 {
		return reply
	}
	body := reply[start+len(fence):]
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func decode(candidate string, out any) *ValidationError {
	if candidate == "" {
		return &ValidationError{Reason: ErrNoJSON, Detail: "empty reply"}
	}
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return &ValidationError{Reason: ErrNoJSON, Detail: err.Error()}
	}
	return nil
}

// modelResource mirrors the shape requested in the curation prompt. Numbers are pointers so absence
// can be told apart from zero.
type modelResource struct {
	Type            string         `json:"type"`
	Title           string         `json:"title"`
	URL             string         `json:"url"`
	Duration        string         `json:"duration"`
	ReadTime        string         `json:"readTime"`
	Difficulty      string         `json:"difficulty"`
	Description     string         `json:"description"`
	QualityScore    *float64       `json:"qualityScore"`
	CommunityRating *float64       `json:"communityRating"`
	WhyRecommended  string         `json:"whyRecommended"`
	LastUpdated     string         `json:"lastUpdated"`
	Extra           map[string]any `json:"sourceSpecificFields"`
}

type curationPayload struct {
	Resources []modelResource `json:"resources"`
}

// ParseCuration validates a curation reply. Items without a title or url are dropped; a reply left
// with no usable items is an error so the caller falls back as a whole.
func ParseCuration(reply string) Result[[]learning.Resource] {
	candidate := Extract(reply)

	var payload curationPayload
	if strings.HasPrefix(candidate, "[") {
		if verr := decode(candidate, &payload.Resources); verr != nil {
			return Err[[]learning.Resource](verr)
		}
	} else if verr := decode(candidate, &payload); verr != nil {
		return Err[[]learning.Resource](verr)
	}
	if len(payload.Resources) == 0 {
		return Err[[]learning.Resource](invalid("resources missing or empty"))
	}

	out := make([]learning.Resource, 0, len(payload.Resources))
	for _, m := range payload.Resources {
		title := strings.TrimSpace(m.Title)
		u := strings.TrimSpace(m.URL)
		if title == "" || u == "" {
			continue
		}
		t, ok := learning.ParseResourceType(m.Type)
		if !ok {
			t = learning.ResourceArticle
		}
		r := learning.Resource{
			Type:                 t,
			Title:                title,
			URL:                  u,
			Duration:             firstNonEmpty(m.Duration, m.ReadTime),
			Difficulty:           learning.Difficulty(strings.ToLower(strings.TrimSpace(m.Difficulty))),
			Description:          m.Description,
			WhyRecommended:       m.WhyRecommended,
			SourceSpecificFields: m.Extra,
			Provenance:           learning.ProvenanceModel,
		}
		r.QualityScore = DefaultQualityScore
		if m.QualityScore != nil {
			r.QualityScore = *m.QualityScore
		}
		if ts, ok := parseDate(m.LastUpdated); ok {
			r.LastUpdated = &ts
		}
		if m.CommunityRating != nil {
			v := *m.CommunityRating
			r.CommunityRating = &v
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return Err[[]learning.Resource](invalid("no resource carried both title and url"))
	}
	return Ok(out)
}

type optimizationPayload struct {
	SlicedContent *learning.SlicedContent `json:"sliced_content"`
	AIAnalysis    *AnalysisReply          `json:"ai_analysis"`
}

// AnalysisReply is the model's ai_analysis as sent. Nil scores were absent from the reply.
type AnalysisReply struct {
	RelevanceScore  *float64 `json:"relevance_score"`
	QualityScore    *float64 `json:"quality_score"`
	TransitionFit   string   `json:"transition_fit"`
	CommunityRating *float64 `json:"community_rating"`
	LastUpdated     string   `json:"last_updated"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
}

// Optimization is a validated content-optimization reply.
type Optimization struct {
	Sliced   learning.SlicedContent
	Analysis *AnalysisReply
}

// ParseOptimization requires sliced_content with a title and at least one key concept. A missing
// ai_analysis is tolerated and filled in later.
func ParseOptimization(reply string) Result[Optimization] {
	var payload optimizationPayload
	if verr := decode(Extract(reply), &payload); verr != nil {
		return Err[Optimization](verr)
	}
	if payload.SlicedContent == nil {
		return Err[Optimization](invalid("sliced_content missing"))
	}
	if strings.TrimSpace(payload.SlicedContent.Title) == "" {
		return Err[Optimization](invalid("sliced_content.title missing"))
	}
	if len(payload.SlicedContent.KeyConcepts) == 0 {
		return Err[Optimization](invalid("sliced_content.key_concepts empty"))
	}
	return Ok(Optimization{Sliced: *payload.SlicedContent, Analysis: payload.AIAnalysis})
}

// parseDate accepts a calendar date or an RFC 3339 timestamp; anything else is dropped.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
