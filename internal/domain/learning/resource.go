package learning

import (
	"math"
	"strings"
	"time"
)

type ResourceType string

const (
	ResourceVideo         ResourceType = "video"
	ResourceDocumentation ResourceType = "documentation"
	ResourceInteractive   ResourceType = "interactive"
	ResourceArticle       ResourceType = "article"
	ResourceExercise      ResourceType = "exercise"
)

// AllResourceTypes is the display order used whenever one entry per category is produced.
var AllResourceTypes = []ResourceType{
	ResourceVideo,
	ResourceDocumentation,
	ResourceInteractive,
	ResourceArticle,
	ResourceExercise,
}

func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ResourceVideo, ResourceDocumentation, ResourceInteractive, ResourceArticle, ResourceExercise:
		return t, true
	case "docs", "doc", "tutorial":
		return ResourceDocumentation, true
	case "course", "playground", "sandbox":
		return ResourceInteractive, true
	case "blog", "post":
		return ResourceArticle, true
	case "practice", "kata", "challenge":
		return ResourceExercise, true
	}
	return "", false
}

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Beginner, Intermediate, Advanced:
		return d, true
	}
	return "", false
}

// Provenance tells callers whether a record came from the model or from local synthesis.
type Provenance string

const (
	ProvenanceModel    Provenance = "model"
	ProvenanceFallback Provenance = "fallback"
)

const (
	MaxQualityScore    = 10.0
	MaxCommunityRating = 5.0
)

// Resource is one external learning artifact returned to callers. It lives for a single response.
type Resource struct {
	ID              string       `json:"id"`
	Type            ResourceType `json:"type"`
	Title           string       `json:"title"`
	URL             string       `json:"url"`
	Duration        string       `json:"duration,omitempty"`
	Difficulty      Difficulty   `json:"difficulty"`
	Description     string       `json:"description"`
	QualityScore    float64      `json:"qualityScore"`
	CommunityRating *float64     `json:"communityRating,omitempty"`
	LastUpdated     *time.Time   `json:"lastUpdated,omitempty"`
	WhyRecommended  string       `json:"whyRecommended,omitempty"`
	Provenance      Provenance   `json:"provenance"`

	// SourceSpecificFields holds per-source extras such as a time segment, a section name or a star count.
	SourceSpecificFields map[string]any `json:"sourceSpecificFields,omitempty"`
}

func ClampQuality(v float64) float64 {
	return clamp(v, 0, MaxQualityScore)
}

func ClampRating(v float64) float64 {
	return clamp(v, 0, MaxCommunityRating)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Round1 rounds to one decimal, the precision scores are displayed with.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Slug lower-cases s and joins whitespace-separated words with hyphens, e.g. "C++ Pointers" -> "c++-pointers".
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
