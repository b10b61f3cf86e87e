package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/middleware"
	"docanalyzer/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rle *analyzer.RateLimitError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", "token is invalid or has expired"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusForbidden, "EMAIL_NOT_VERIFIED", "please verify your email before performing this action"
	case errors.Is(err, domain.ErrEmailAlreadyVerified):
		return http.StatusConflict, "EMAIL_ALREADY_VERIFIED", "email address is already verified"
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, "WEAK_PASSWORD", err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, docx, txt, xlsx, csv, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusBadRequest, "NO_FILES", "no files provided"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidAnalysisType):
		return http.StatusBadRequest, "INVALID_ANALYSIS_TYPE", "invalid analysis type"
	case errors.Is(err, domain.ErrInvalidPriority):
		return http.StatusBadRequest, "INVALID_PRIORITY", "invalid priority; allowed: standard, urgent"
	case errors.Is(err, domain.ErrInvalidLanguage):
		return http.StatusBadRequest, "INVALID_LANGUAGE", "unsupported language; allowed: pl, en, de, uk, es"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS", "invalid status"
	case errors.Is(err, domain.ErrInvalidTier):
		return http.StatusBadRequest, "INVALID_TIER", "invalid subscription tier"
	case errors.Is(err, domain.ErrOrderNotEditable):
		return http.StatusConflict, "ORDER_NOT_EDITABLE", "order can no longer be modified"
	case errors.Is(err, domain.ErrOrderAlreadyPaid):
		return http.StatusConflict, "ORDER_ALREADY_PAID", "order is already paid"
	case errors.Is(err, domain.ErrOrderCancelled):
		return http.StatusConflict, "ORDER_CANCELLED", "order is cancelled"
	case errors.Is(err, domain.ErrOrderNotPaid):
		return http.StatusPaymentRequired, "ORDER_NOT_PAID", "order has not been paid"
	case errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusBadRequest, "AMOUNT_MISMATCH", "amount does not match order price"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusBadRequest, "NO_DOCUMENTS", "order has no uploaded documents"
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return http.StatusConflict, "ANALYSIS_IN_PROGRESS", "analysis is already in progress"
	case errors.Is(err, domain.ErrAnalysisNotRetryable):
		return http.StatusConflict, "ANALYSIS_NOT_RETRYABLE", "only failed analyses can be retried"
	case errors.Is(err, domain.ErrAnalyzerUnavailable):
		return http.StatusServiceUnavailable, "ANALYZER_UNAVAILABLE", "no analysis provider is configured"
	case errors.Is(err, domain.ErrPaymentUnavailable):
		return http.StatusServiceUnavailable, "PAYMENT_UNAVAILABLE", "payment processing is not configured"
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, "INVALID_SIGNATURE", "invalid webhook signature"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "export format must be csv or xlsx"
	case errors.As(err, &rle):
		return http.StatusTooManyRequests, "RATE_LIMITED", "analysis provider is rate limited; try again later"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("path", c.Request.URL.Path).Msg("handler: internal error")
	}
	RespondError(c, status, code, msg)
}

// callerFrom extracts the authenticated caller. Returns false if the auth
// context is missing (error response already written).
func callerFrom(c *gin.Context) (service.Caller, bool) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return service.Caller{}, false
	}
	return caller, true
}

// parseID reads a UUID path parameter. Returns false if it is malformed
// (error response already written).
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
