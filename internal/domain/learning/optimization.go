package learning

import (
	"encoding/json"
	"strings"
)

// ResourceRef is the loosely-typed view of a caller-supplied resource awaiting refinement.
type ResourceRef struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`

	// Raw is echoed back as original_resource.
	Raw json.RawMessage `json:"-"`
}

// ParseResourceRef decodes what it can from raw; non-object input yields a ref with only Raw set.
func ParseResourceRef(raw json.RawMessage) ResourceRef {
	var ref ResourceRef
	_ = json.Unmarshal(raw, &ref)
	ref.Title = strings.TrimSpace(ref.Title)
	ref.URL = strings.TrimSpace(ref.URL)
	ref.Type = strings.TrimSpace(ref.Type)
	ref.Description = strings.TrimSpace(ref.Description)
	ref.Raw = raw
	return ref
}

type TimeSegment struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Topic string `json:"topic"`
}

type SlicedContent struct {
	Title              string        `json:"title"`
	KeyConcepts        []string      `json:"key_concepts"`
	DifficultyLevel    string        `json:"difficulty_level"`
	EstimatedTime      string        `json:"estimated_time"`
	TimeSegments       []TimeSegment `json:"time_segments"`
	OptimalSections    []string      `json:"optimal_sections"`
	LearningObjectives []string      `json:"learning_objectives"`
	Prerequisites      []string      `json:"prerequisites"`
}

type Analysis struct {
	RelevanceScore  float64  `json:"relevance_score"`
	QualityScore    float64  `json:"quality_score"`
	TransitionFit   string   `json:"transition_fit"`
	CommunityRating float64  `json:"community_rating"`
	LastUpdated     string   `json:"last_updated"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
}

// OptimizedResource is one entry of the content-optimization response, one per input resource.
type OptimizedResource struct {
	OriginalURL      string          `json:"original_url"`
	OriginalResource json.RawMessage `json:"original_resource"`
	SlicedContent    SlicedContent   `json:"sliced_content"`
	AIAnalysis       Analysis        `json:"ai_analysis"`
	Provenance       Provenance      `json:"provenance"`
}
