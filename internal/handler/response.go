package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/domain"
	"billscan/internal/pipeline"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response. Code carries the error kind
// so callers can distinguish, say, our own admission denial from an upstream
// rate limit.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// errorKindStatus maps pipeline error kinds to HTTP statuses and codes.
func errorKindStatus(kind domain.ErrorKind) (status int, code string) {
	switch kind {
	case domain.ErrKindAdmissionDenied:
		return http.StatusTooManyRequests, "ADMISSION_DENIED"
	case domain.ErrKindUpstreamAuth:
		return http.StatusBadGateway, "UPSTREAM_AUTH"
	case domain.ErrKindUpstreamRateLimit:
		return http.StatusTooManyRequests, "UPSTREAM_RATE_LIMIT"
	case domain.ErrKindMalformedResponse:
		return http.StatusBadGateway, "MALFORMED_RESPONSE"
	default:
		return http.StatusBadGateway, "UPSTREAM_FAILURE"
	}
}

// HandleError maps a pipeline or domain error and sends the appropriate
// error response.
func HandleError(c *gin.Context, err error) {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		status, code := errorKindStatus(stageErr.Kind)
		RespondError(c, status, code, stageErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png")
	case errors.Is(err, domain.ErrFileTooLarge):
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
	case errors.Is(err, domain.ErrEmptyFile):
		RespondError(c, http.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty")
	case errors.Is(err, domain.ErrInvalidReportInput):
		RespondError(c, http.StatusBadRequest, "INVALID_REPORT_INPUT", "report payload does not match expected format")
	default:
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
