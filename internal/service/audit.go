package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// recordAudit writes an order audit entry. Failures are logged but never
// block business logic.
func recordAudit(ctx context.Context, repo port.OrderAuditRepository, orderID uuid.UUID, userID *uuid.UUID,
	action domain.OrderAuditAction, changes map[string]interface{}) {
	if repo == nil {
		return
	}
	raw := json.RawMessage("{}")
	if len(changes) > 0 {
		if b, err := json.Marshal(changes); err == nil {
			raw = b
		}
	}
	entry := &domain.OrderAudit{
		ID:      uuid.New(),
		OrderID: orderID,
		UserID:  userID,
		Action:  action,
		Changes: raw,
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("order_id", orderID.String()).Str("action", string(action)).
			Msg("service.recordAudit: failed to write audit entry")
	}
}

// loadOrder fetches an order the caller may see. Orders of other users look
// missing unless readOnly is set and the caller is an admin.
func loadOrder(ctx context.Context, repo port.OrderRepository, caller Caller, orderID uuid.UUID, readOnly bool) (*domain.Order, error) {
	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID && !(readOnly && caller.IsAdmin()) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}
