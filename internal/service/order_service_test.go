package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
	"docanalyzer/internal/service"
	"docanalyzer/mocks"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		Prices: map[string]int64{
			"sentiment":      999,
			"entities":       999,
			"summary":        1499,
			"classification": 999,
			"translation":    1999,
			"keywords":       799,
			"comprehensive":  2999,
		},
		UrgentMultiplier: 1.5,
	}
}

type orderMocks struct {
	orderRepo *mocks.MockOrderRepo
	docRepo   *mocks.MockDocumentRepo
	userRepo  *mocks.MockUserRepo
	auditRepo *mocks.MockOrderAuditRepo
}

func newOrderService() (service.OrderService, orderMocks) {
	m := orderMocks{
		orderRepo: new(mocks.MockOrderRepo),
		docRepo:   new(mocks.MockDocumentRepo),
		userRepo:  new(mocks.MockUserRepo),
		auditRepo: new(mocks.MockOrderAuditRepo),
	}
	m.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := service.NewOrderService(m.orderRepo, m.docRepo, m.userRepo, m.auditRepo, testPricing(), "USD")
	return svc, m
}

func testCaller() service.Caller {
	return service.Caller{UserID: uuid.New(), Email: "user@test.com", Role: domain.RoleUser}
}

func testOrder(userID uuid.UUID) *domain.Order {
	return &domain.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "Q3 contracts",
		AnalysisType: domain.AnalysisSummary,
		Priority:     domain.PriorityStandard,
		Language:     "en",
		Status:       domain.OrderStatusPending,
		PriceCents:   1499,
		Currency:     "usd",
	}
}

func paidOrder(userID uuid.UUID, status domain.OrderStatus) *domain.Order {
	o := testOrder(userID)
	now := time.Now().UTC()
	o.PaidAt = &now
	o.Status = status
	return o
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name     string
		typ      domain.AnalysisType
		priority domain.OrderPriority
		want     int64
		wantErr  error
	}{
		{"standard summary", domain.AnalysisSummary, domain.PriorityStandard, 1499, nil},
		{"urgent summary rounds", domain.AnalysisSummary, domain.PriorityUrgent, 2249, nil},
		{"urgent comprehensive", domain.AnalysisComprehensive, domain.PriorityUrgent, 4499, nil},
		{"unknown type", domain.AnalysisType("poetry"), domain.PriorityStandard, 0, domain.ErrInvalidAnalysisType},
		{"unknown priority", domain.AnalysisSummary, domain.OrderPriority("asap"), 0, domain.ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Price(testPricing(), tt.typ, tt.priority)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice_DefaultUrgentMultiplier(t *testing.T) {
	pricing := testPricing()
	pricing.UrgentMultiplier = 0

	got, err := service.Price(pricing, domain.AnalysisKeywords, domain.PriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, int64(1199), got)
}

func TestOrderService_Create_ExplicitLanguage(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()

	m.orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.Create(context.Background(), caller, service.CreateOrderInput{
		Title:        " Contracts ",
		AnalysisType: domain.AnalysisTranslation,
		Priority:     domain.PriorityUrgent,
		Language:     "es-MX",
	}, "de")

	require.NoError(t, err)
	assert.Equal(t, "Contracts", order.Title)
	assert.Equal(t, "es", order.Language)
	assert.Equal(t, int64(2999), order.PriceCents)
	assert.Equal(t, "usd", order.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, caller.UserID, order.UserID)
	m.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestOrderService_Create_UsesPreferredLanguage(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()

	user := testUser()
	user.PreferredLanguage = "uk"
	m.userRepo.On("GetByID", mock.Anything, caller.UserID).Return(user, nil)
	m.orderRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	order, err := svc.Create(context.Background(), caller, service.CreateOrderInput{
		Title:        "Report",
		AnalysisType: domain.AnalysisSentiment,
	}, "de")

	require.NoError(t, err)
	assert.Equal(t, "uk", order.Language)
	assert.Equal(t, domain.PriorityStandard, order.Priority)
	assert.Equal(t, int64(999), order.PriceCents)
}

func TestOrderService_Create_FallsBackToRequestLanguage(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()

	user := testUser()
	user.PreferredLanguage = ""
	m.userRepo.On("GetByID", mock.Anything, caller.UserID).Return(user, nil)
	m.orderRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	order, err := svc.Create(context.Background(), caller, service.CreateOrderInput{
		Title:        "Report",
		AnalysisType: domain.AnalysisSentiment,
	}, "de-DE,de;q=0.9,en;q=0.8")

	require.NoError(t, err)
	assert.Equal(t, "de", order.Language)
}

func TestOrderService_Create_InvalidInput(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()

	_, err := svc.Create(context.Background(), caller, service.CreateOrderInput{
		Title:        "Report",
		AnalysisType: "poetry",
	}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAnalysisType)

	_, err = svc.Create(context.Background(), caller, service.CreateOrderInput{
		Title:        "Report",
		AnalysisType: domain.AnalysisSummary,
		Language:     "fr",
	}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidLanguage)

	m.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Get_OtherUserLooksMissing(t *testing.T) {
	svc, m := newOrderService()
	order := testOrder(uuid.New())
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	result, err := svc.Get(context.Background(), testCaller(), order.ID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_Get_AdminCanRead(t *testing.T) {
	svc, m := newOrderService()
	order := testOrder(uuid.New())
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.docRepo.On("ListByOrder", mock.Anything, order.ID).Return(nil, nil)

	admin := testCaller()
	admin.Role = domain.RoleAdmin

	result, err := svc.Get(context.Background(), admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, result.ID)
	assert.NotNil(t, result.Documents)
	assert.Empty(t, result.Documents)
}

func TestOrderService_Cancel_AdminCannotModify(t *testing.T) {
	svc, m := newOrderService()
	order := testOrder(uuid.New())
	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	admin := testCaller()
	admin.Role = domain.RoleAdmin

	_, err := svc.Cancel(context.Background(), admin, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_List(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()

	orders := []domain.Order{*testOrder(caller.UserID)}
	m.orderRepo.On("List", mock.Anything, port.OrderFilter{UserID: caller.UserID, Status: domain.OrderStatusPending}, 0, 20).
		Return(orders, 1, nil)

	result, total, err := svc.List(context.Background(), caller, domain.OrderStatusPending, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, result, 1)

	_, _, err = svc.List(context.Background(), caller, "bogus", 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderService_Update_RepricesUnpaidOrder(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)

	urgent := domain.PriorityUrgent
	comprehensive := domain.AnalysisComprehensive
	updated, err := svc.Update(context.Background(), caller, order.ID, service.UpdateOrderInput{
		AnalysisType: &comprehensive,
		Priority:     &urgent,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4499), updated.PriceCents)
	m.auditRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(e *domain.OrderAudit) bool {
		return e.Action == domain.AuditOrderUpdated
	}))
}

func TestOrderService_Update_RepriceClearsPaymentIntent(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := testOrder(caller.UserID)
	order.PaymentIntentID = strPtr("pi_old")

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)
	m.orderRepo.On("SetPaymentIntent", mock.Anything, order.ID, "").Return(nil)

	urgent := domain.PriorityUrgent
	updated, err := svc.Update(context.Background(), caller, order.ID, service.UpdateOrderInput{Priority: &urgent})

	require.NoError(t, err)
	assert.Equal(t, int64(2249), updated.PriceCents)
	assert.Nil(t, updated.PaymentIntentID)
	m.orderRepo.AssertCalled(t, "SetPaymentIntent", mock.Anything, order.ID, "")
}

func TestOrderService_Update_SamePriceKeepsPaymentIntent(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := testOrder(caller.UserID)
	order.PaymentIntentID = strPtr("pi_current")

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)

	standard := domain.PriorityStandard
	updated, err := svc.Update(context.Background(), caller, order.ID, service.UpdateOrderInput{Priority: &standard})

	require.NoError(t, err)
	require.NotNil(t, updated.PaymentIntentID)
	assert.Equal(t, "pi_current", *updated.PaymentIntentID)
	m.orderRepo.AssertNotCalled(t, "SetPaymentIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Update_PaidOrderKeepsBilling(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusPaid)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	urgent := domain.PriorityUrgent
	_, err := svc.Update(context.Background(), caller, order.ID, service.UpdateOrderInput{Priority: &urgent})
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)
	m.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_Update_PaidOrderTitle(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusPaid)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("Update", mock.Anything, order).Return(nil)

	updated, err := svc.Update(context.Background(), caller, order.ID, service.UpdateOrderInput{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestOrderService_Cancel(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := testOrder(caller.UserID)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	m.orderRepo.On("UpdateStatus", mock.Anything, order.ID, domain.OrderStatusCancelled).Return(nil)

	cancelled, err := svc.Cancel(context.Background(), caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_Cancel_PaidOrder(t *testing.T) {
	svc, m := newOrderService()
	caller := testCaller()
	order := paidOrder(caller.UserID, domain.OrderStatusPaid)

	m.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.Cancel(context.Background(), caller, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotEditable)
}

func TestOrderService_Pricing(t *testing.T) {
	svc, _ := newOrderService()

	list := svc.Pricing()
	assert.Equal(t, "usd", list.Currency)
	require.Len(t, list.Prices, 7)
	assert.Equal(t, domain.AnalysisClassification, list.Prices[0].AnalysisType)
	for _, p := range list.Prices {
		if p.AnalysisType == domain.AnalysisComprehensive {
			assert.Equal(t, int64(2999), p.Standard)
			assert.Equal(t, int64(4499), p.Urgent)
		}
	}
}
