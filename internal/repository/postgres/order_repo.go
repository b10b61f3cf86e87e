package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type orderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo creates a new PostgreSQL-backed OrderRepository.
func NewOrderRepo(db *sqlx.DB) port.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	query := `INSERT INTO orders (id, user_id, title, description, analysis_type, priority,
		language, status, price_cents, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.UserID, order.Title, order.Description, order.AnalysisType, order.Priority,
		order.Language, order.Status, order.PriceCents, order.Currency, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orderRepo.Create: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("orderRepo.GetByID: %w", err)
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter port.OrderFilter, offset, limit int) ([]domain.Order, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	var orders []domain.Order
	if err := r.db.SelectContext(ctx, &orders, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()
	query := `UPDATE orders SET title = $1, description = $2, analysis_type = $3, priority = $4,
		language = $5, price_cents = $6, updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		order.Title, order.Description, order.AnalysisType, order.Priority,
		order.Language, order.PriceCents, order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("orderRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("orderRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE orders SET payment_intent_id = NULLIF($1, ''), updated_at = NOW() WHERE id = $2",
		paymentIntentID, orderID)
	if err != nil {
		return fmt.Errorf("orderRepo.SetPaymentIntent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, paidAt time.Time) (*domain.Order, error) {
	var order domain.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders
		SET paid_at = $1,
			payment_intent_id = COALESCE(NULLIF($2, ''), payment_intent_id),
			status = CASE
				WHEN EXISTS (SELECT 1 FROM documents d WHERE d.order_id = orders.id AND d.status = 'uploaded')
				THEN 'uploaded'
				ELSE 'paid'
			END,
			updated_at = NOW()
		WHERE id = $3 AND paid_at IS NULL AND status = 'pending'
		RETURNING *`,
		paidAt, paymentIntentID, orderID)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("orderRepo.MarkPaid: %w", err)
	}

	current, getErr := r.GetByID(ctx, orderID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == domain.OrderStatusCancelled {
		return nil, domain.ErrOrderCancelled
	}
	return nil, domain.ErrOrderAlreadyPaid
}

func (r *orderRepo) StartProcessing(ctx context.Context, orderID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'processing', completed_at = NULL, updated_at = NOW()
		WHERE id = $1
		  AND paid_at IS NOT NULL
		  AND status IN ('paid', 'uploaded', 'completed', 'failed')
		  AND EXISTS (SELECT 1 FROM documents d WHERE d.order_id = orders.id AND d.status = 'uploaded')`,
		orderID)
	if err != nil {
		return fmt.Errorf("orderRepo.StartProcessing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAnalysisInProgress
	}
	return nil
}

func (r *orderRepo) Complete(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, completed_at = NOW(), updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return fmt.Errorf("orderRepo.Complete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
