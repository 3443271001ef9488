package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/langbridge-backend/internal/platform/apierr"
)

const (
	codeInternal       = "internal_error"
	codeClientClosed   = "client_closed_request"
	codeTimeout        = "timeout"
	StatusClientClosed = 499
)

var (
	errInternal     = errors.New("internal server error")
	errClientClosed = errors.New("client closed request")
	errTimeout      = errors.New("request timed out")
)

// RespondErr maps err onto the error envelope. A cancelled request gets 499 and an expired deadline 503.
// Anything else that is not an *apierr.Error becomes a generic 500 so internals never reach the caller.
func RespondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		RespondError(c, StatusClientClosed, codeClientClosed, errClientClosed)
		return
	case errors.Is(err, context.DeadlineExceeded):
		RespondError(c, http.StatusServiceUnavailable, codeTimeout, errTimeout)
		return
	}
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, codeInternal, errInternal)
}
