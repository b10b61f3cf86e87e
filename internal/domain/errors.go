package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user is inactive")
	ErrEmailNotVerified     = errors.New("email address is not verified")
	ErrEmailAlreadyVerified = errors.New("email address is already verified")
	ErrWeakPassword         = errors.New("password must be at least 8 characters")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrNoFiles              = errors.New("no files provided")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrUploadFailed         = errors.New("file upload to storage failed")

	ErrInvalidAnalysisType = errors.New("invalid analysis type")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidLanguage     = errors.New("unsupported language")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTier         = errors.New("invalid subscription tier")
	ErrOrderNotEditable    = errors.New("order can no longer be modified")
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
	ErrOrderCancelled      = errors.New("order is cancelled")
	ErrOrderNotPaid        = errors.New("order has not been paid")
	ErrAmountMismatch      = errors.New("amount does not match order price")
	ErrNoDocuments         = errors.New("order has no uploaded documents")

	ErrAnalysisInProgress   = errors.New("analysis is already in progress")
	ErrAnalysisNotRetryable = errors.New("only failed analyses can be retried")
	ErrAnalyzerUnavailable  = errors.New("no analysis provider is configured")
	ErrPaymentUnavailable   = errors.New("payment processing is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrUnsupportedFormat    = errors.New("export format must be csv or xlsx")
)
