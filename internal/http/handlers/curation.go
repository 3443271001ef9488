package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/http/response"
	"github.com/yungbote/langbridge-backend/internal/platform/apierr"
	"github.com/yungbote/langbridge-backend/internal/platform/logger"
)

// Curator is the curation pipeline as the handlers see it.
type Curator interface {
	Discover(ctx context.Context, req learning.DiscoveryRequest) (learning.Discovery, error)
	Optimize(ctx context.Context, req learning.CurationRequest, resources []json.RawMessage) ([]learning.OptimizedResource, error)
	Curate(ctx context.Context, req learning.CurationRequest) ([]learning.Resource, error)
	Search(ctx context.Context, req learning.SearchRequest) ([]learning.Resource, error)
}

type CurationHandler struct {
	log     *logger.Logger
	curator Curator
}

func NewCurationHandler(log *logger.Logger, curator Curator) *CurationHandler {
	return &CurationHandler{
		log:     log.With("handler", "CurationHandler"),
		curator: curator,
	}
}

type optimizationRequest struct {
	Resources       []json.RawMessage `json:"resources"`
	CurrentLanguage string            `json:"currentLanguage"`
	TargetLanguage  string            `json:"targetLanguage"`
	SkillLevel      string            `json:"skillLevel"`
}

// POST /api/resource-discovery
func (h *CurationHandler) DiscoverResources(c *gin.Context) {
	var req learning.DiscoveryRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.curator.Discover(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "DiscoverResources", err)
		return
	}
	response.RespondOK(c, gin.H{
		"content":   out.Content,
		"resources": out.Resources,
		"metadata":  out.Metadata,
	})
}

// POST /api/content-optimization
func (h *CurationHandler) OptimizeContent(c *gin.Context) {
	var req optimizationRequest
	if !h.bind(c, &req) {
		return
	}
	creq := learning.CurationRequest{
		CurrentLanguage: req.CurrentLanguage,
		TargetLanguage:  req.TargetLanguage,
		SkillLevel:      req.SkillLevel,
	}
	out, err := h.curator.Optimize(c.Request.Context(), creq, req.Resources)
	if err != nil {
		h.fail(c, "OptimizeContent", err)
		return
	}
	response.RespondOK(c, gin.H{"sliced_content": out})
}

// POST /api/resource-curation
func (h *CurationHandler) CurateResources(c *gin.Context) {
	var req learning.CurationRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.curator.Curate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "CurateResources", err)
		return
	}
	response.RespondOK(c, gin.H{"resources": out})
}

// POST /api/resource-search
func (h *CurationHandler) SearchResources(c *gin.Context) {
	var req learning.SearchRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.curator.Search(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "SearchResources", err)
		return
	}
	response.RespondOK(c, gin.H{"resources": out})
}

func (h *CurationHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondErr(c, apierr.Invalid("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *CurationHandler) fail(c *gin.Context, op string, err error) {
	_, isAPI := apierr.As(err)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Debug(op+" abandoned", "error", err, "path", c.FullPath())
	case !isAPI:
		h.log.Error(op+" failed", "error", err, "path", c.FullPath())
		_ = c.Error(err)
	}
	response.RespondErr(c, err)
}
