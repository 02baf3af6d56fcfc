package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError represents a structured error response
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after_ms,omitempty"`
}

// Common error codes
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeSeedsUnavailable     = "SEEDS_UNAVAILABLE"
	ErrCodeGenerationExhausted  = "GENERATION_EXHAUSTED"
)

// RespondError sends a structured error response and aborts the chain.
func RespondError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:    code,
			Message: message,
		},
	})
}

// RespondErrorWithDetails sends a structured error response with details
func RespondErrorWithDetails(c *gin.Context, status int, code string, message string, details string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// RespondErrorWithRetry sends a structured error response with retry hint
func RespondErrorWithRetry(c *gin.Context, status int, code string, message string, retryAfterMs int) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:       code,
			Message:    message,
			RetryAfter: retryAfterMs,
		},
	})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 error
func Unauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// AIServiceUnavailable sends a 502 for a failed call to the generative service.
func AIServiceUnavailable(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
		"error": APIError{
			Code:       ErrCodeAIServiceUnavailable,
			Message:    "Generative service is temporarily unavailable",
			Details:    details,
			RetryAfter: 5000,
		},
	})
}

// SeedsUnavailable sends a 503 when no seed corpus is loaded.
func SeedsUnavailable(c *gin.Context) {
	RespondError(c, http.StatusServiceUnavailable, ErrCodeSeedsUnavailable, "No seed corpus is loaded")
}
