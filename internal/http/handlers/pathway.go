package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
	"github.com/yungbote/langbridge-backend/internal/http/response"
	"github.com/yungbote/langbridge-backend/internal/platform/apierr"
)

// PathwayFunc lays out the module map for a language pair.
type PathwayFunc func(req learning.CurationRequest) ([]learning.PathwayModule, error)

type PathwayHandler struct {
	pathway PathwayFunc
}

func NewPathwayHandler(pathway PathwayFunc) *PathwayHandler {
	return &PathwayHandler{pathway: pathway}
}

type pathwayQuery struct {
	CurrentLanguage string `form:"currentLanguage"`
	TargetLanguage  string `form:"targetLanguage"`
	SkillLevel      string `form:"skillLevel"`
}

// GET /api/pathway/modules
func (h *PathwayHandler) ListModules(c *gin.Context) {
	var q pathwayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondErr(c, apierr.Invalid("invalid query: %v", err))
		return
	}
	mods, err := h.pathway(learning.CurationRequest{
		CurrentLanguage: q.CurrentLanguage,
		TargetLanguage:  q.TargetLanguage,
		SkillLevel:      q.SkillLevel,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": mods})
}
