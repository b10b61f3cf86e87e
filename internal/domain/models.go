package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a registered customer.
type User struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	Email             string           `db:"email" json:"email"`
	PasswordHash      string           `db:"password_hash" json:"-"`
	FirstName         string           `db:"first_name" json:"first_name"`
	LastName          string           `db:"last_name" json:"last_name"`
	Company           string           `db:"company" json:"company"`
	SubscriptionTier  SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`
	PreferredLanguage string           `db:"preferred_language" json:"preferred_language"`
	Role              UserRole         `db:"role" json:"role"`
	IsActive          bool             `db:"is_active" json:"is_active"`
	EmailVerified     bool             `db:"email_verified" json:"email_verified"`
	EmailVerifiedAt   *time.Time       `db:"email_verified_at" json:"email_verified_at,omitempty"`
	ResetTokenID      *string          `db:"password_reset_token_id" json:"-"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Order is a user's paid request to analyze one or more documents.
type Order struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	UserID          uuid.UUID     `db:"user_id" json:"user_id"`
	Title           string        `db:"title" json:"title"`
	Description     string        `db:"description" json:"description"`
	AnalysisType    AnalysisType  `db:"analysis_type" json:"analysis_type"`
	Priority        OrderPriority `db:"priority" json:"priority"`
	Language        string        `db:"language" json:"language"`
	Status          OrderStatus   `db:"status" json:"status"`
	PriceCents      int64         `db:"price_cents" json:"price_cents"`
	Currency        string        `db:"currency" json:"currency"`
	PaymentIntentID *string       `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	PaidAt          *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CompletedAt     *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// IsPaid reports whether a payment has been recorded for the order.
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// OrderDetail is an order together with its documents.
type OrderDetail struct {
	Order
	Documents []Document `json:"documents"`
}

// Document stores metadata about a file uploaded to an order.
type Document struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	OrderID      uuid.UUID  `db:"order_id" json:"order_id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	ContentType  string     `db:"content_type" json:"content_type"`
	ContentHash  string     `db:"content_hash" json:"content_hash"`
	S3Bucket     string     `db:"s3_bucket" json:"-"`
	S3Key        string     `db:"s3_key" json:"-"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Analysis is the structured LLM result for one document of an order.
type Analysis struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	OrderID          uuid.UUID       `db:"order_id" json:"order_id"`
	DocumentID       uuid.UUID       `db:"document_id" json:"document_id"`
	UserID           uuid.UUID       `db:"user_id" json:"user_id"`
	AnalysisType     AnalysisType    `db:"analysis_type" json:"analysis_type"`
	Language         string          `db:"language" json:"language"`
	Status           AnalysisStatus  `db:"status" json:"status"`
	Result           json.RawMessage `db:"result" json:"result"`
	RawResponse      string          `db:"raw_response" json:"raw_response,omitempty"`
	ModelUsed        string          `db:"model_used" json:"model_used"`
	PromptUsed       string          `db:"prompt_used" json:"-"`
	FieldProvenance  json.RawMessage `db:"field_provenance" json:"field_provenance,omitempty"`
	Confidence       float64         `db:"confidence" json:"confidence"`
	ProcessingTimeMs int64           `db:"processing_time_ms" json:"processing_time_ms"`
	CacheHit         bool            `db:"cache_hit" json:"cache_hit"`
	Attempts         int             `db:"attempts" json:"attempts"`
	RetryAfter       *time.Time      `db:"retry_after" json:"retry_after,omitempty"`
	ErrorMessage     string          `db:"error_message" json:"error_message,omitempty"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderAudit is one entry in an order's audit trail.
type OrderAudit struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OrderID   uuid.UUID        `db:"order_id" json:"order_id"`
	UserID    *uuid.UUID       `db:"user_id" json:"user_id,omitempty"`
	Action    OrderAuditAction `db:"action" json:"action"`
	Changes   json.RawMessage  `db:"changes" json:"changes"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// PaymentEvent records a processed payment webhook event so replays are ignored.
type PaymentEvent struct {
	ID          string     `db:"id" json:"id"`
	Type        string     `db:"type" json:"type"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	ProcessedAt time.Time  `db:"processed_at" json:"processed_at"`
}

// Stats holds dashboard totals for a user.
type Stats struct {
	TotalOrders        int   `db:"total_orders" json:"total_orders"`
	PendingOrders      int   `db:"pending_orders" json:"pending_orders"`
	PaidOrders         int   `db:"paid_orders" json:"paid_orders"`
	ProcessingOrders   int   `db:"processing_orders" json:"processing_orders"`
	CompletedOrders    int   `db:"completed_orders" json:"completed_orders"`
	FailedOrders       int   `db:"failed_orders" json:"failed_orders"`
	TotalSpentCents    int64 `db:"total_spent_cents" json:"total_spent_cents"`
	TotalDocuments     int   `db:"total_documents" json:"total_documents"`
	AnalysesCompleted  int   `db:"analyses_completed" json:"analyses_completed"`
	AnalysesFailed     int   `db:"analyses_failed" json:"analyses_failed"`
	AnalysesInProgress int   `db:"analyses_in_progress" json:"analyses_in_progress"`
}
