package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadyFunc reports whether the process can serve traffic and, if not, why.
type ReadyFunc func() (bool, string)

type HealthHandler struct {
	ready ReadyFunc
}

func NewHealthHandler(ready ReadyFunc) *HealthHandler { return &HealthHandler{ready: ready} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		if ok, reason := h.ready(); !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "reason": reason})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
