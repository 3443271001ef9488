package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Success: false,
		Error:   msg,
		Code:    code,
	})
}

// RespondOK writes payload with success:true merged in at the top level.
func RespondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
