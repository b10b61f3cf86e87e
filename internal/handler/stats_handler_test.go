package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/handler"
	"docanalyzer/mocks"
)

func TestStatsHandler_GetStats(t *testing.T) {
	svc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(svc)
	caller := testCaller()
	svc.On("GetStats", mock.Anything, caller.UserID).Return(&domain.Stats{TotalOrders: 3, TotalSpentCents: 4497}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/stats", nil, &caller)
	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.EqualValues(t, 3, data["total_orders"])
	svc.AssertExpectations(t)
}
