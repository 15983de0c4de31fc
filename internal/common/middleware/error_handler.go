package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fc-pro-backend/internal/common/errors"
)

// ErrorHandler recovers panics and renders queued handler errors as JSON.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithRequestID(requestID).
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr, logger)
	})
}

// RequestID assigns a request id, honoring one supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger zerolog.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	response := ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	}

	logError(appErr, logger, c)

	c.JSON(getHTTPStatusCode(appErr), response)
}

func getHTTPStatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest,
		errors.ErrCodeWalletDisconnected, errors.ErrCodeWrongChain,
		errors.ErrCodePriceNotLoaded, errors.ErrCodeInvalidTarget,
		errors.ErrCodeUsernameLookup:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTierUnavailable:
		return http.StatusConflict
	case errors.ErrCodeInsufficientBalance:
		return http.StatusPaymentRequired
	case errors.ErrCodeChainRead, errors.ErrCodeFarcasterAPI, errors.ErrCodePurchaseFailed:
		return http.StatusBadGateway
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, logger zerolog.Logger, c *gin.Context) {
	evt := logger.Error()
	switch {
	case appErr.IsValidation():
		evt = logger.Info()
	case !appErr.IsInternal():
		evt = logger.Warn()
	}

	evt = evt.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if appErr.Cause != nil {
		evt = evt.Err(appErr.Cause)
	}
	evt.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// Abort renders err through the shared error envelope and stops the chain.
func Abort(c *gin.Context, logger zerolog.Logger, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		sendErrorResponse(c, appErr, logger)
	} else {
		sendErrorResponse(c, errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred"), logger)
	}
	c.Abort()
}
