package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/handler"
	"docanalyzer/mocks"
)

func TestUserHandler_Me(t *testing.T) {
	svc := new(mocks.MockUserService)
	h := handler.NewUserHandler(svc)
	caller := testCaller()
	svc.On("GetByID", mock.Anything, caller.UserID).Return(&domain.User{ID: caller.UserID, PasswordHash: "hash"}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/users/me", nil, &caller)
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestUserHandler_UpdateMe_InvalidLanguage(t *testing.T) {
	svc := new(mocks.MockUserService)
	h := handler.NewUserHandler(svc)
	caller := testCaller()
	svc.On("UpdateProfile", mock.Anything, caller.UserID, mock.AnythingOfType("service.UpdateProfileInput")).
		Return(nil, domain.ErrInvalidLanguage)

	c, w := newContext(http.MethodPut, "/api/v1/users/me", jsonBody(t, map[string]string{"preferred_language": "fr"}), &caller)
	c.Request.Header.Set("Content-Type", "application/json")
	h.UpdateMe(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_LANGUAGE", decode(t, w).Error.Code)
}

func TestUserHandler_List(t *testing.T) {
	svc := new(mocks.MockUserService)
	h := handler.NewUserHandler(svc)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.User{{ID: uuid.New()}}, 1, nil)

	c, w := newContext(http.MethodGet, "/api/v1/admin/users", nil, nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode(t, w).Meta.Total)
}
