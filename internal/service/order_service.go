package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/port"
)

// CreateOrderInput is the DTO for creating an order.
type CreateOrderInput struct {
	Title        string               `json:"title" binding:"required,max=255"`
	Description  string               `json:"description"`
	AnalysisType domain.AnalysisType  `json:"analysis_type" binding:"required"`
	Priority     domain.OrderPriority `json:"priority"`
	Language     string               `json:"language"`
}

// UpdateOrderInput is the DTO for updating an order. Nil fields are left unchanged.
type UpdateOrderInput struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	AnalysisType *domain.AnalysisType  `json:"analysis_type"`
	Priority     *domain.OrderPriority `json:"priority"`
	Language     *string               `json:"language"`
}

// PriceEntry is the price of one analysis type.
type PriceEntry struct {
	AnalysisType domain.AnalysisType `json:"analysis_type"`
	Standard     int64               `json:"standard"`
	Urgent       int64               `json:"urgent"`
}

// PriceList is the public price table.
type PriceList struct {
	Currency         string       `json:"currency"`
	UrgentMultiplier float64      `json:"urgent_multiplier"`
	Prices           []PriceEntry `json:"prices"`
}

// OrderService defines the order management contract.
type OrderService interface {
	Create(ctx context.Context, caller Caller, input CreateOrderInput, requestLanguage string) (*domain.Order, error)
	Get(ctx context.Context, caller Caller, orderID uuid.UUID) (*domain.OrderDetail, error)
	List(ctx context.Context, caller Caller, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error)
	Update(ctx context.Context, caller Caller, orderID uuid.UUID, input UpdateOrderInput) (*domain.Order, error)
	Cancel(ctx context.Context, caller Caller, orderID uuid.UUID) (*domain.Order, error)
	History(ctx context.Context, caller Caller, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error)
	Pricing() PriceList
}

type orderService struct {
	orderRepo port.OrderRepository
	docRepo   port.DocumentRepository
	userRepo  port.UserRepository
	auditRepo port.OrderAuditRepository
	pricing   config.PricingConfig
	currency  string
}

// NewOrderService creates a new OrderService implementation.
func NewOrderService(
	orderRepo port.OrderRepository,
	docRepo port.DocumentRepository,
	userRepo port.UserRepository,
	auditRepo port.OrderAuditRepository,
	pricing config.PricingConfig,
	currency string,
) OrderService {
	if currency == "" {
		currency = "usd"
	}
	return &orderService{
		orderRepo: orderRepo,
		docRepo:   docRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		pricing:   pricing,
		currency:  strings.ToLower(currency),
	}
}

// Price returns the price in cents for an analysis type and priority.
func Price(pricing config.PricingConfig, analysisType domain.AnalysisType, priority domain.OrderPriority) (int64, error) {
	base, ok := pricing.Prices[string(analysisType)]
	if !ok || !domain.ValidAnalysisTypes[analysisType] {
		return 0, domain.ErrInvalidAnalysisType
	}
	switch priority {
	case domain.PriorityStandard:
		return base, nil
	case domain.PriorityUrgent:
		mult := pricing.UrgentMultiplier
		if mult <= 0 {
			mult = 1.5
		}
		return int64(math.Round(float64(base) * mult)), nil
	default:
		return 0, domain.ErrInvalidPriority
	}
}

func (s *orderService) Create(ctx context.Context, caller Caller, input CreateOrderInput, requestLanguage string) (*domain.Order, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityStandard
	}
	price, err := Price(s.pricing, input.AnalysisType, input.Priority)
	if err != nil {
		return nil, err
	}

	lang, err := s.orderLanguage(ctx, caller, input.Language, requestLanguage)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:           uuid.New(),
		UserID:       caller.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		AnalysisType: input.AnalysisType,
		Priority:     input.Priority,
		Language:     lang,
		Status:       domain.OrderStatusPending,
		PriceCents:   price,
		Currency:     s.currency,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditOrderCreated, map[string]interface{}{
		"analysis_type": order.AnalysisType, "priority": order.Priority, "price_cents": order.PriceCents,
	})
	log.Info().Str("order_id", order.ID.String()).Str("user_id", caller.UserID.String()).
		Str("analysis_type", string(order.AnalysisType)).Int64("price_cents", price).
		Msg("service.orderService.Create: order created")
	return order, nil
}

// orderLanguage resolves the analysis language: explicit input, then the
// user's preference, then the request language.
func (s *orderService) orderLanguage(ctx context.Context, caller Caller, explicit, requestLanguage string) (string, error) {
	if explicit != "" {
		lang, ok := i18n.Normalize(explicit)
		if !ok {
			return "", domain.ErrInvalidLanguage
		}
		return lang, nil
	}
	preferred := ""
	if user, err := s.userRepo.GetByID(ctx, caller.UserID); err == nil {
		preferred = user.PreferredLanguage
	}
	return i18n.Resolve("", preferred, requestLanguage), nil
}

func (s *orderService) Get(ctx context.Context, caller Caller, orderID uuid.UUID) (*domain.OrderDetail, error) {
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, true)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("listing order documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return &domain.OrderDetail{Order: *order, Documents: docs}, nil
}

func (s *orderService) List(ctx context.Context, caller Caller, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	if status != "" && !domain.ValidOrderStatuses[status] {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.orderRepo.List(ctx, port.OrderFilter{UserID: caller.UserID, Status: status}, offset, limit)
}

func (s *orderService) Update(ctx context.Context, caller Caller, orderID uuid.UUID, input UpdateOrderInput) (*domain.Order, error) {
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, false)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, domain.ErrOrderCancelled
	}

	changes := map[string]interface{}{}
	if input.Title != nil {
		order.Title = strings.TrimSpace(*input.Title)
		changes["title"] = order.Title
	}
	if input.Description != nil {
		order.Description = strings.TrimSpace(*input.Description)
		changes["description"] = order.Description
	}

	repriced := false
	billing := input.AnalysisType != nil || input.Priority != nil || input.Language != nil
	if billing && order.IsPaid() {
		return nil, domain.ErrOrderNotEditable
	}
	if input.Language != nil {
		lang, ok := i18n.Normalize(*input.Language)
		if !ok {
			return nil, domain.ErrInvalidLanguage
		}
		order.Language = lang
		changes["language"] = lang
	}
	if input.AnalysisType != nil || input.Priority != nil {
		if input.AnalysisType != nil {
			order.AnalysisType = *input.AnalysisType
		}
		if input.Priority != nil {
			order.Priority = *input.Priority
		}
		price, err := Price(s.pricing, order.AnalysisType, order.Priority)
		if err != nil {
			return nil, err
		}
		repriced = price != order.PriceCents
		order.PriceCents = price
		changes["analysis_type"] = order.AnalysisType
		changes["priority"] = order.Priority
		changes["price_cents"] = price
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	// An intent created for the old price can no longer settle the order.
	if repriced && order.PaymentIntentID != nil {
		if err := s.orderRepo.SetPaymentIntent(ctx, order.ID, ""); err != nil {
			return nil, err
		}
		changes["payment_intent_id"] = nil
		order.PaymentIntentID = nil
	}
	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditOrderUpdated, changes)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, caller Caller, orderID uuid.UUID) (*domain.Order, error) {
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, false)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}
	if order.IsPaid() || order.Status != domain.OrderStatusPending {
		return nil, domain.ErrOrderNotEditable
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCancelled
	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditOrderCancelled, nil)
	return order, nil
}

func (s *orderService) History(ctx context.Context, caller Caller, orderID uuid.UUID, offset, limit int) ([]domain.OrderAudit, int, error) {
	if _, err := loadOrder(ctx, s.orderRepo, caller, orderID, true); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListByOrder(ctx, orderID, offset, limit)
}

func (s *orderService) Pricing() PriceList {
	list := PriceList{Currency: s.currency, UrgentMultiplier: s.pricing.UrgentMultiplier}
	for t := range domain.ValidAnalysisTypes {
		standard, err := Price(s.pricing, t, domain.PriorityStandard)
		if err != nil {
			continue
		}
		urgent, _ := Price(s.pricing, t, domain.PriorityUrgent)
		list.Prices = append(list.Prices, PriceEntry{AnalysisType: t, Standard: standard, Urgent: urgent})
	}
	sort.Slice(list.Prices, func(i, j int) bool {
		return list.Prices[i].AnalysisType < list.Prices[j].AnalysisType
	})
	return list
}
