package curation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

// DefaultQualityScore is stamped on model records that arrive without one.
const DefaultQualityScore = 8.5

// Normalize makes every record safe to return: fresh unique ids, scores clamped to range, text stripped of
// markup, and url, difficulty and justification defaulted from req. It never shrinks the slice.
func Normalize(req learning.CurationRequest, in []learning.Resource) []learning.Resource {
	req = req.Normalized()
	out := make([]learning.Resource, len(in))
	for i, r := range in {
		r.ID = uuid.NewString()
		r.Title = cleanText(r.Title)
		r.Description = cleanText(r.Description)
		r.WhyRecommended = cleanText(r.WhyRecommended)

		if t, ok := learning.ParseResourceType(string(r.Type)); ok {
			r.Type = t
		} else {
			r.Type = learning.ResourceArticle
		}
		if r.Title == "" {
			r.Title = templateTitle(r.Type, req, req.Topic())
		}
		if !validURL(r.URL) {
			r.URL = TemplateURL(r.Type, req, req.Topic())
		}
		if d, ok := learning.ParseDifficulty(string(r.Difficulty)); ok {
			r.Difficulty = d
		} else {
			r.Difficulty = req.Difficulty()
		}
		r.QualityScore = learning.Round1(learning.ClampQuality(r.QualityScore))
		if r.CommunityRating != nil {
			v := learning.Round1(learning.ClampRating(*r.CommunityRating))
			r.CommunityRating = &v
		}
		if r.Description == "" {
			r.Description = templateDescription(r.Type, req, req.Topic())
		}
		if r.WhyRecommended == "" {
			r.WhyRecommended = defaultJustification(req, req.Topic())
		}
		if r.Provenance == "" {
			r.Provenance = learning.ProvenanceFallback
		}
		out[i] = r
	}
	return out
}

// NormalizeOptimization fills the gaps a partially valid model reply can leave.
func NormalizeOptimization(req learning.CurationRequest, o learning.OptimizedResource) learning.OptimizedResource {
	req = req.Normalized()
	s := &o.SlicedContent
	s.Title = cleanText(s.Title)
	if _, ok := learning.ParseDifficulty(s.DifficultyLevel); !ok {
		s.DifficultyLevel = string(req.Difficulty())
	}
	s.KeyConcepts = nonNil(s.KeyConcepts)
	s.OptimalSections = nonNil(s.OptimalSections)
	s.LearningObjectives = nonNil(s.LearningObjectives)
	s.Prerequisites = nonNil(s.Prerequisites)
	if s.TimeSegments == nil {
		s.TimeSegments = []learning.TimeSegment{}
	}

	a := &o.AIAnalysis
	a.QualityScore = learning.Round1(learning.ClampQuality(a.QualityScore))
	a.RelevanceScore = learning.Round1(learning.ClampQuality(a.RelevanceScore))
	a.CommunityRating = learning.Round1(learning.ClampRating(a.CommunityRating))
	a.TransitionFit = cleanText(a.TransitionFit)
	a.Pros = nonNil(a.Pros)
	a.Cons = nonNil(a.Cons)

	if len(o.OriginalResource) == 0 {
		o.OriginalResource = []byte("null")
	}
	return o
}

// mergeSliced fills every field the model left empty from the synthesized slice.
func mergeSliced(m, fb learning.SlicedContent) learning.SlicedContent {
	m.Title = orString(m.Title, fb.Title)
	if _, ok := learning.ParseDifficulty(m.DifficultyLevel); !ok {
		m.DifficultyLevel = fb.DifficultyLevel
	}
	m.EstimatedTime = orString(m.EstimatedTime, fb.EstimatedTime)
	m.KeyConcepts = orSlice(m.KeyConcepts, fb.KeyConcepts)
	m.OptimalSections = orSlice(m.OptimalSections, fb.OptimalSections)
	m.LearningObjectives = orSlice(m.LearningObjectives, fb.LearningObjectives)
	m.Prerequisites = orSlice(m.Prerequisites, fb.Prerequisites)
	if len(m.TimeSegments) == 0 {
		m.TimeSegments = fb.TimeSegments
	}
	return m
}

// mergeAnalysis overlays what the model sent onto the synthesized analysis. Scores count as sent
// when present, even when zero.
func mergeAnalysis(m *AnalysisReply, fb learning.Analysis) learning.Analysis {
	if m == nil {
		return fb
	}
	out := fb
	if m.RelevanceScore != nil {
		out.RelevanceScore = *m.RelevanceScore
	}
	if m.QualityScore != nil {
		out.QualityScore = *m.QualityScore
	}
	if m.CommunityRating != nil {
		out.CommunityRating = *m.CommunityRating
	}
	out.TransitionFit = orString(m.TransitionFit, fb.TransitionFit)
	if ts, ok := parseDate(m.LastUpdated); ok {
		out.LastUpdated = ts.Format("2006-01-02")
	}
	out.Pros = orSlice(m.Pros, fb.Pros)
	out.Cons = orSlice(m.Cons, fb.Cons)
	return out
}

func orString(v, fb string) string {
	if strings.TrimSpace(v) == "" {
		return fb
	}
	return v
}

func orSlice(v, fb []string) []string {
	if len(nonNil(v)) == 0 {
		return fb
	}
	return v
}

// htmlTag matches the tags models actually wrap text in. Anything else in angle brackets, such as
// "vector<int>" or "map<string, int>", is text.
var htmlTag = regexp.MustCompile(`(?i)</?(a|b|i|u|s|em|strong|small|sub|sup|code|pre|p|br|hr|div|span|ul|ol|li|h[1-6]|blockquote|table|tr|td|th)(?:\s[^<>]*)?/?>`)

var blockTags = map[string]bool{
	"br": true, "hr": true, "p": true, "div": true, "pre": true, "blockquote": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// cleanText strips known HTML tags, decodes entities and collapses whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "&") && !htmlTag.MatchString(s) {
		return strings.Join(strings.Fields(s), " ")
	}

	// Escape every bracket outside a known tag so the parser keeps it as text.
	var b strings.Builder
	last := 0
	for _, m := range htmlTag.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(escapeBrackets(s[last:m[0]]))
		b.WriteString(s[m[0]:m[1]])
		if blockTags[strings.ToLower(s[m[2]:m[3]])] {
			b.WriteByte(' ')
		}
		last = m[1]
	}
	b.WriteString(escapeBrackets(s[last:]))

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String())); err == nil {
		s = doc.Text()
	}
	return strings.Join(strings.Fields(s), " ")
}

var bracketEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeBrackets(s string) string { return bracketEscaper.Replace(s) }

func validURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func nonNil(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = cleanText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
