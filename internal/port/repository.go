package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docanalyzer/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenID string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, passwordHash, expectedTokenID string) error
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID uuid.UUID
	Status domain.OrderStatus // empty means any
}

// OrderRepository defines the contract for order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter, offset, limit int) ([]domain.Order, int, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
	// SetPaymentIntent stores the order's payment intent; an empty id clears it.
	SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
	// MarkPaid records payment on an unpaid order and moves it to paid, or to
	// uploaded when it already has documents. It returns ErrOrderAlreadyPaid
	// when payment was recorded earlier.
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, paidAt time.Time) (*domain.Order, error)
	// StartProcessing moves a paid order with documents into processing.
	// It returns ErrAnalysisInProgress when the order is not in a startable state.
	StartProcessing(ctx context.Context, orderID uuid.UUID) error
	// Complete sets a terminal status and stamps completed_at.
	Complete(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

// DocumentRepository defines the contract for uploaded document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Document, error)
	CountUploaded(ctx context.Context, orderID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, docID uuid.UUID) error
}

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Analysis, error)
	// UpdateResult persists the outcome fields of an analysis.
	UpdateResult(ctx context.Context, analysis *domain.Analysis) error
	// ClaimQueued atomically moves up to limit queued analyses whose retry_after
	// has passed into processing and returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Analysis, error)
	// CountByStatus returns per-status analysis counts for an order.
	CountByStatus(ctx context.Context, orderID uuid.UUID) (map[domain.AnalysisStatus]int, error)
	ListCompleted(ctx context.Context, offset, limit int) ([]domain.Analysis, error)
}

// OrderAuditRepository defines the contract for order audit trail persistence.
type OrderAuditRepository interface {
	Create(ctx context.Context, entry *domain.OrderAudit) error
	ListByOrder(ctx context.Context, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error)
}

// PaymentEventRepository records processed payment webhook events.
type PaymentEventRepository interface {
	// Record stores the event and reports false when it was already recorded.
	Record(ctx context.Context, event *domain.PaymentEvent) (bool, error)
	// Forget removes a recorded event so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

// StatsRepository defines the contract for dashboard aggregates.
type StatsRepository interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.Stats, error)
}
