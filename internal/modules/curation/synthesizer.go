package curation

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

// Score ranges for synthesized records. They describe nothing real; they only keep the UI plausible.
const (
	synthQualityMin = 8.0
	synthQualityMax = 10.0
	synthRatingMin  = 4.2
	synthRatingMax  = 5.0
)

// CuratedTypes is the category set used for a single module's fallback list.
var CuratedTypes = []learning.ResourceType{
	learning.ResourceVideo,
	learning.ResourceDocumentation,
	learning.ResourceInteractive,
	learning.ResourceExercise,
}

// Synthesizer produces randomized but well-formed resource records without any network access.
// It never fails. Safe for concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSynthesizer uses src for all randomness; nil seeds from the clock.
func NewSynthesizer(src rand.Source) *Synthesizer {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>17|1)
	}
	return &Synthesizer{rng: rand.New(src), now: time.Now}
}

// NewSeededSynthesizer is deterministic for a given seed.
func NewSeededSynthesizer(seed uint64) *Synthesizer {
	return NewSynthesizer(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *Synthesizer) uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Synthesizer) intn(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

// Resource synthesizes one record of type t about topic.
func (s *Synthesizer) Resource(req learning.CurationRequest, t learning.ResourceType, topic string) learning.Resource {
	req = req.Normalized()
	if strings.TrimSpace(topic) == "" {
		topic = req.Topic()
	}
	rating := learning.Round1(s.uniform(synthRatingMin, synthRatingMax))
	updated := s.now().UTC().AddDate(0, 0, -s.intn(3, 180)).Truncate(24 * time.Hour)

	r := learning.Resource{
		Type:            t,
		Title:           templateTitle(t, req, topic),
		URL:             TemplateURL(t, req, topic),
		Duration:        s.duration(t),
		Difficulty:      req.Difficulty(),
		Description:     templateDescription(t, req, topic),
		QualityScore:    learning.Round1(s.uniform(synthQualityMin, synthQualityMax)),
		CommunityRating: &rating,
		LastUpdated:     &updated,
		WhyRecommended:  defaultJustification(req, topic),
		Provenance:      learning.ProvenanceFallback,
	}
	r.SourceSpecificFields = s.sourceFields(t, req, topic)
	return r
}

// ForTypes returns one record per type, in the order given.
func (s *Synthesizer) ForTypes(req learning.CurationRequest, types []learning.ResourceType, topic string) []learning.Resource {
	out := make([]learning.Resource, 0, len(types))
	for _, t := range types {
		out = append(out, s.Resource(req, t, topic))
	}
	return out
}

// Curated is the fallback list for one module: one record per CuratedTypes entry.
func (s *Synthesizer) Curated(req learning.CurationRequest) []learning.Resource {
	return s.ForTypes(req, CuratedTypes, req.Normalized().Topic())
}

// ForQueries generates every query x type combination, sorts by quality score descending
// (insertion order on ties) and keeps at most limit records.
func (s *Synthesizer) ForQueries(req learning.CurationRequest, queries []string, limit int) []learning.Resource {
	out := make([]learning.Resource, 0, len(queries)*len(learning.AllResourceTypes))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		for _, t := range learning.AllResourceTypes {
			r := s.Resource(req, t, q)
			r.SourceSpecificFields["query"] = q
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QualityScore > out[j].QualityScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Optimization synthesizes the slice plan and analysis for one caller-supplied resource.
func (s *Synthesizer) Optimization(req learning.CurationRequest, ref learning.ResourceRef) (learning.SlicedContent, learning.Analysis) {
	req = req.Normalized()
	title := ref.Title
	if title == "" {
		title = req.TargetLanguage + " essentials for " + req.CurrentLanguage + " developers"
	}
	minutes := s.intn(15, 45)
	mid := minutes / 2

	sliced := learning.SlicedContent{
		Title: title,
		KeyConcepts: []string{
			req.TargetLanguage + " syntax compared to " + req.CurrentLanguage,
			"Idiomatic " + req.TargetLanguage + " patterns",
			"Common pitfalls when coming from " + req.CurrentLanguage,
		},
		DifficultyLevel: string(req.Difficulty()),
		EstimatedTime:   fmt.Sprintf("%d minutes", minutes),
		TimeSegments: []learning.TimeSegment{
			{Start: "00:00", End: clock(mid), Topic: "Core concepts"},
			{Start: clock(mid), End: clock(minutes), Topic: "Hands-on examples"},
		},
		OptimalSections: []string{"Introduction", "Side-by-side comparison", "Practice"},
		LearningObjectives: []string{
			"Map familiar " + req.CurrentLanguage + " constructs onto " + req.TargetLanguage,
			"Write small " + req.TargetLanguage + " programs without translation overhead",
		},
		Prerequisites: []string{"Working knowledge of " + req.CurrentLanguage},
	}
	analysis := learning.Analysis{
		RelevanceScore:  learning.Round1(s.uniform(synthQualityMin, synthQualityMax)),
		QualityScore:    learning.Round1(s.uniform(synthQualityMin, synthQualityMax)),
		TransitionFit:   fmt.Sprintf("Good fit for %s developers moving to %s at the %s level", req.CurrentLanguage, req.TargetLanguage, req.SkillLevel),
		CommunityRating: learning.Round1(s.uniform(synthRatingMin, synthRatingMax)),
		LastUpdated:     s.now().UTC().AddDate(0, 0, -s.intn(3, 120)).Format("2006-01-02"),
		Pros:            []string{"Focused on transferable concepts", "Concise examples"},
		Cons:            []string{"May skip advanced " + req.TargetLanguage + " features"},
	}
	return sliced, analysis
}

// Discovered describes the page at rawURL as if it had been scraped.
func (s *Synthesizer) Discovered(req learning.CurationRequest, rawURL string) learning.DiscoveredContent {
	req = req.Normalized()
	t := GuessResourceType(rawURL)
	host := hostOf(rawURL)
	topic := req.Topic()
	return learning.DiscoveredContent{
		Title:       fmt.Sprintf("%s on %s", topic, host),
		Description: fmt.Sprintf("Learning material from %s for %s developers picking up %s.", host, req.CurrentLanguage, req.TargetLanguage),
		Content: fmt.Sprintf("This %s walks through %s with examples that contrast %s and %s.",
			t, strings.ToLower(topic), req.CurrentLanguage, req.TargetLanguage),
		Type:          t,
		Difficulty:    req.Difficulty(),
		EstimatedTime: s.duration(t),
	}
}

func (s *Synthesizer) duration(t learning.ResourceType) string {
	switch t {
	case learning.ResourceVideo:
		return fmt.Sprintf("%d min", s.intn(12, 60))
	case learning.ResourceDocumentation:
		return fmt.Sprintf("%d min read", s.intn(10, 30))
	case learning.ResourceInteractive:
		return fmt.Sprintf("%d hours", s.intn(1, 4))
	case learning.ResourceArticle:
		return fmt.Sprintf("%d min read", s.intn(5, 15))
	default:
		return fmt.Sprintf("%d exercises", s.intn(5, 20))
	}
}

func (s *Synthesizer) sourceFields(t learning.ResourceType, req learning.CurationRequest, topic string) map[string]any {
	switch t {
	case learning.ResourceVideo:
		start := s.intn(0, 20)
		return map[string]any{
			"platform":    "YouTube",
			"timeSegment": fmt.Sprintf("%s-%s", clock(start), clock(start+s.intn(5, 15))),
		}
	case learning.ResourceDocumentation:
		return map[string]any{"section": topic}
	case learning.ResourceInteractive:
		return map[string]any{"platform": "Replit"}
	case learning.ResourceArticle:
		return map[string]any{"publication": "Medium"}
	default:
		return map[string]any{"platform": "Exercism", "stars": s.intn(100, 5000)}
	}
}

func templateTitle(t learning.ResourceType, req learning.CurationRequest, topic string) string {
	switch t {
	case learning.ResourceVideo:
		return fmt.Sprintf("%s for %s Developers: %s", req.TargetLanguage, req.CurrentLanguage, topic)
	case learning.ResourceDocumentation:
		return fmt.Sprintf("Official %s Documentation: %s", req.TargetLanguage, topic)
	case learning.ResourceInteractive:
		return fmt.Sprintf("Interactive %s Playground: %s", req.TargetLanguage, topic)
	case learning.ResourceArticle:
		return fmt.Sprintf("From %s to %s: %s Explained", req.CurrentLanguage, req.TargetLanguage, topic)
	default:
		return fmt.Sprintf("%s Practice Exercises: %s", req.TargetLanguage, topic)
	}
}

func templateDescription(t learning.ResourceType, req learning.CurationRequest, topic string) string {
	return fmt.Sprintf("A %s %s that maps %s concepts onto %s %s.",
		req.Difficulty(), t, req.CurrentLanguage, req.TargetLanguage, strings.ToLower(topic))
}

func defaultJustification(req learning.CurationRequest, topic string) string {
	return fmt.Sprintf("Bridges your %s background to %s %s at the %s level.",
		req.CurrentLanguage, req.TargetLanguage, strings.ToLower(topic), req.SkillLevel)
}

// TemplateURL builds the per-type URL used whenever no real one is known.
func TemplateURL(t learning.ResourceType, req learning.CurationRequest, topic string) string {
	cur := learning.Slug(req.CurrentLanguage)
	target := learning.Slug(req.TargetLanguage)
	top := learning.Slug(topic)
	label := hostLabel(req.TargetLanguage)

	switch t {
	case learning.ResourceVideo:
		return "https://www.youtube.com/results?search_query=" + url.QueryEscape(cur+"-to-"+target+"-"+top)
	case learning.ResourceDocumentation:
		return "https://docs." + label + ".org/" + url.PathEscape(top)
	case learning.ResourceInteractive:
		return "https://replit.com/languages/" + label
	case learning.ResourceArticle:
		return "https://medium.com/tag/" + url.PathEscape(cur+"-to-"+target)
	default:
		return "https://exercism.org/tracks/" + label + "/exercises"
	}
}

// hostLabel turns a display name into something usable as a DNS label: "C++" -> "cpp", "C#" -> "csharp".
func hostLabel(lang string) string {
	s := strings.ToLower(strings.TrimSpace(lang))
	s = strings.ReplaceAll(s, "++", "pp")
	s = strings.ReplaceAll(s, "#", "sharp")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "lang"
	}
	return out
}

// GuessResourceType infers a category from a URL's host and path.
func GuessResourceType(rawURL string) learning.ResourceType {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return learning.ResourceArticle
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)
	switch {
	case strings.Contains(host, "youtube") || strings.Contains(host, "youtu.be") || strings.Contains(host, "vimeo"):
		return learning.ResourceVideo
	case strings.HasPrefix(host, "docs.") || strings.Contains(path, "/docs") || strings.Contains(path, "/reference"):
		return learning.ResourceDocumentation
	case strings.Contains(host, "exercism") || strings.Contains(host, "leetcode") || strings.Contains(host, "codewars"):
		return learning.ResourceExercise
	case strings.Contains(host, "replit") || strings.Contains(host, "codecademy") || strings.Contains(path, "playground"):
		return learning.ResourceInteractive
	default:
		return learning.ResourceArticle
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "the web"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
