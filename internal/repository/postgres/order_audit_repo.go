package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

type orderAuditRepo struct {
	db *sqlx.DB
}

// NewOrderAuditRepo creates a new PostgreSQL-backed OrderAuditRepository.
func NewOrderAuditRepo(db *sqlx.DB) port.OrderAuditRepository {
	return &orderAuditRepo{db: db}
}

func (r *orderAuditRepo) Create(ctx context.Context, entry *domain.OrderAudit) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_audit (id, order_id, user_id, action, changes)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.OrderID, entry.UserID, entry.Action, jsonOrEmpty(entry.Changes))
	if err != nil {
		return fmt.Errorf("orderAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *orderAuditRepo) ListByOrder(ctx context.Context, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM order_audit WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, 0, fmt.Errorf("orderAuditRepo.ListByOrder count: %w", err)
	}

	var entries []domain.OrderAudit
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM order_audit
		 WHERE order_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		orderID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("orderAuditRepo.ListByOrder: %w", err)
	}
	return entries, total, nil
}
