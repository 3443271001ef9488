package curation

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/platform/apierr"
)

func validateLanguages(current, target string) error {
	if strings.TrimSpace(current) == "" {
		return apierr.Invalid("currentLanguage is required")
	}
	if strings.TrimSpace(target) == "" {
		return apierr.Invalid("targetLanguage is required")
	}
	return nil
}

// Curate returns resources for one pathway module: the model's list when it validates, otherwise the
// synthesized four-category set.
func (p *Pipeline) Curate(ctx context.Context, req learning.CurationRequest) ([]learning.Resource, error) {
	req = req.Normalized()
	if err := validateLanguages(req.CurrentLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}
	if req.ModuleTitle == "" && req.ModuleDescription == "" {
		return nil, apierr.Invalid("moduleTitle or moduleDescription is required")
	}

	system, user := CurationPrompt(req)
	res := runItem(ctx, p, "curate", req.Topic(), system, user, ParseCuration)

	resources := res.Value
	if res.State != StateExtracted {
		resources = p.synth.Curated(req)
	}
	out := Normalize(req, resources)
	p.log.Debug("curation done",
		"module", req.Topic(),
		"state", string(res.State),
		"resources", len(out),
	)
	return out, nil
}

// Optimize refines each caller-supplied resource with one model call, at most MaxConcurrency in flight,
// all bounded by BatchDeadline. The result has exactly one entry per input, in input order.
func (p *Pipeline) Optimize(ctx context.Context, req learning.CurationRequest, resources []json.RawMessage) ([]learning.OptimizedResource, error) {
	req = req.Normalized()
	if err := validateLanguages(req.CurrentLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, apierr.Invalid("resources must be a non-empty array")
	}

	batchCtx, cancel := context.WithTimeout(ctx, p.cfg.BatchDeadline)
	defer cancel()

	out := make([]learning.OptimizedResource, len(resources))

	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(p.cfg.MaxConcurrency)
	for i, raw := range resources {
		g.Go(func() error {
			ref := learning.ParseResourceRef(raw)
			system, user := OptimizationPrompt(req, ref)
			res := runItem(gctx, p, "optimize", itemName(i), system, user, ParseOptimization)

			item := learning.OptimizedResource{
				OriginalURL:      ref.URL,
				OriginalResource: ref.Raw,
				Provenance:       learning.ProvenanceModel,
			}
			fbSliced, fbAnalysis := p.synth.Optimization(req, ref)
			if res.State == StateExtracted {
				item.SlicedContent = mergeSliced(res.Value.Sliced, fbSliced)
				item.AIAnalysis = mergeAnalysis(res.Value.Analysis, fbAnalysis)
			} else {
				item.SlicedContent, item.AIAnalysis = fbSliced, fbAnalysis
				item.Provenance = learning.ProvenanceFallback
			}
			out[i] = NormalizeOptimization(req, item)
			return nil
		})
	}
	// Items never return an error; Wait is the join.
	_ = g.Wait()

	p.log.Debug("optimization batch done",
		"items", len(out),
		"fallbacks", countProvenance(out, learning.ProvenanceFallback),
	)
	return out, nil
}

// Discover describes the page at req.URL and suggests one resource per category alongside it.
// No page is fetched.
func (p *Pipeline) Discover(ctx context.Context, req learning.DiscoveryRequest) (learning.Discovery, error) {
	if !validURL(req.URL) {
		return learning.Discovery{}, apierr.Invalid("url must be an absolute http(s) URL")
	}
	if err := validateLanguages(req.CurrentLanguage, req.TargetLanguage); err != nil {
		return learning.Discovery{}, err
	}
	if err := ctx.Err(); err != nil {
		return learning.Discovery{}, err
	}

	creq := learning.CurationRequest{
		CurrentLanguage: req.CurrentLanguage,
		TargetLanguage:  req.TargetLanguage,
		SkillLevel:      req.SkillLevel,
	}.Normalized()

	content := p.synth.Discovered(creq, req.URL)
	resources := Normalize(creq, p.synth.ForTypes(creq, learning.AllResourceTypes, creq.Topic()))

	return learning.Discovery{
		Content:   content,
		Resources: resources,
		Metadata: learning.DiscoveryMetadata{
			TotalResources: len(resources),
			Sources:        sources(req.URL, resources),
			ScrapingTime:   time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Search fans the queries out over every category and returns the best SearchLimit records by quality score.
func (p *Pipeline) Search(ctx context.Context, req learning.SearchRequest) ([]learning.Resource, error) {
	if err := validateLanguages(req.CurrentLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}
	queries := learning.Goals(req.SearchQueries).Compact()
	if len(queries) == 0 {
		return nil, apierr.Invalid("searchQueries must contain at least one query")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	creq := learning.CurationRequest{
		CurrentLanguage: req.CurrentLanguage,
		TargetLanguage:  req.TargetLanguage,
		SkillLevel:      req.SkillLevel,
	}.Normalized()
	return Normalize(creq, p.synth.ForQueries(creq, queries, p.cfg.SearchLimit)), nil
}

func sources(pageURL string, resources []learning.Resource) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(raw string) {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return
		}
		h := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	add(pageURL)
	for _, r := range resources {
		add(r.URL)
	}
	if len(out) > 1 {
		sort.Strings(out[1:])
	}
	return out
}

func countProvenance(items []learning.OptimizedResource, p learning.Provenance) int {
	n := 0
	for _, it := range items {
		if it.Provenance == p {
			n++
		}
	}
	return n
}
