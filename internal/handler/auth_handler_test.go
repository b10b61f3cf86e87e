package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/handler"
	"docanalyzer/internal/middleware"
	"docanalyzer/internal/service"
	"docanalyzer/mocks"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil, nil)

	tokenPair := &service.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}
	mockAuth.On("Login", mock.Anything, service.LoginInput{
		Email:    "user@test.com",
		Password: "password123",
	}).Return(tokenPair, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, map[string]string{"email": "user@test.com", "password": "password123"}), nil)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil, nil)
	mockAuth.On("Login", mock.Anything, mock.AnythingOfType("service.LoginInput")).
		Return(nil, domain.ErrInvalidCredentials)

	c, w := newContext(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, map[string]string{"email": "user@test.com", "password": "wrong"}), nil)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, map[string]string{"email": "not-an-email"}), nil)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	mockAuth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_UsesRequestLanguage(t *testing.T) {
	mockReg := new(mocks.MockRegistrationService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), mockReg, nil)

	output := &service.RegisterOutput{User: &domain.User{ID: uuid.New(), Email: "new@test.com"}}
	mockReg.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput"), "de").Return(output, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/register", jsonBody(t, map[string]string{
		"email":      "new@test.com",
		"password":   "password123",
		"first_name": "Max",
		"last_name":  "Muster",
	}), nil)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextKeyLanguage, "de")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockReg.AssertExpectations(t)
}

func TestAuthHandler_Register_NotEnabled(t *testing.T) {
	h := handler.NewAuthHandler(new(mocks.MockAuthService), nil, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/register", nil, nil)
	h.Register(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	mockReg := new(mocks.MockRegistrationService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), mockReg, nil)
	mockReg.On("VerifyEmail", mock.Anything, "tok").Return(&domain.User{EmailVerified: true}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/auth/verify-email?token=tok", nil, nil)
	h.VerifyEmail(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockReg.AssertExpectations(t)
}

func TestAuthHandler_VerifyEmail_MissingToken(t *testing.T) {
	h := handler.NewAuthHandler(new(mocks.MockAuthService), new(mocks.MockRegistrationService), nil)

	c, w := newContext(http.MethodGet, "/api/v1/auth/verify-email", nil, nil)
	h.VerifyEmail(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	mockReg := new(mocks.MockRegistrationService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), mockReg, nil)
	caller := testCaller()
	mockReg.On("ResendVerification", mock.Anything, caller.UserID).Return(domain.ErrEmailAlreadyVerified)

	c, w := newContext(http.MethodPost, "/api/v1/auth/resend-verification", nil, &caller)
	h.ResendVerification(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_ALREADY_VERIFIED", decode(t, w).Error.Code)
}

func TestAuthHandler_ForgotPassword_AlwaysOK(t *testing.T) {
	mockReset := new(mocks.MockPasswordResetService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), nil, mockReset)
	mockReset.On("ForgotPassword", mock.Anything, service.ForgotPasswordInput{Email: "user@test.com"}).
		Return(errors.New("smtp down"))

	c, w := newContext(http.MethodPost, "/api/v1/auth/forgot-password",
		jsonBody(t, map[string]string{"email": "user@test.com"}), nil)
	c.Request.Header.Set("Content-Type", "application/json")

	h.ForgotPassword(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockReset.AssertExpectations(t)
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	mockReset := new(mocks.MockPasswordResetService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), nil, mockReset)
	mockReset.On("ResetPassword", mock.Anything, mock.AnythingOfType("service.ResetPasswordInput")).
		Return(domain.ErrInvalidToken)

	c, w := newContext(http.MethodPost, "/api/v1/auth/reset-password",
		jsonBody(t, map[string]string{"token": "t", "new_password": "newpassword1"}), nil)
	c.Request.Header.Set("Content-Type", "application/json")

	h.ResetPassword(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
