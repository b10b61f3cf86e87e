package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type paymentEventRepo struct {
	db *sqlx.DB
}

// NewPaymentEventRepo creates a new PostgreSQL-backed PaymentEventRepository.
func NewPaymentEventRepo(db *sqlx.DB) port.PaymentEventRepository {
	return &paymentEventRepo{db: db}
}

func (r *paymentEventRepo) Record(ctx context.Context, event *domain.PaymentEvent) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_events (id, type, order_id, processed_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, event.OrderID)
	if err != nil {
		return false, fmt.Errorf("paymentEventRepo.Record: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *paymentEventRepo) Forget(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM payment_events WHERE id = $1", eventID); err != nil {
		return fmt.Errorf("paymentEventRepo.Forget: %w", err)
	}
	return nil
}
