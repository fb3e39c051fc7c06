package respond

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sport-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object. SupportID correlates the
// response with the server-side log line.
type ErrorBody struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	SupportID string      `json:"supportId"`
	Details   interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	supportID := uuid.NewString()
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
		"support_id": supportID,
	}
	if details != nil {
		fields["details"] = details
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			SupportID: supportID,
			Details:   details,
		},
	})
}
