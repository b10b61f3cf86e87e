package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"anna@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email             string `json:"email" binding:"required" example:"anna@example.com"`
	Password          string `json:"password" binding:"required" example:"securepassword123"`
	FirstName         string `json:"first_name" binding:"required" example:"Anna"`
	LastName          string `json:"last_name" binding:"required" example:"Kowalska"`
	Company           string `json:"company" example:"Acme Sp. z o.o."`
	PreferredLanguage string `json:"preferred_language" example:"pl" enums:"pl,en,de,uk,es"`
}

// ForgotPasswordRequest represents the forgot-password request body.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required" example:"anna@example.com"`
}

// ResetPasswordRequest represents the reset-password request body.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	NewPassword string `json:"new_password" binding:"required" example:"newsecurepassword123"`
}

// UpdateProfileRequest represents the profile update request body.
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name" example:"Anna"`
	LastName          *string `json:"last_name" example:"Nowak"`
	Company           *string `json:"company" example:"Acme GmbH"`
	PreferredLanguage *string `json:"preferred_language" example:"de"`
	SubscriptionTier  *string `json:"subscription_tier" example:"professional" enums:"starter,professional,enterprise"`
}

// CreateOrderRequest represents the create order request body.
type CreateOrderRequest struct {
	Title        string `json:"title" binding:"required" example:"Supplier contract review"`
	Description  string `json:"description" example:"Two contracts from Q3"`
	AnalysisType string `json:"analysis_type" binding:"required" example:"comprehensive" enums:"sentiment,entities,summary,classification,translation,keywords,comprehensive"`
	Priority     string `json:"priority" example:"standard" enums:"standard,urgent"`
	Language     string `json:"language" example:"en" enums:"pl,en,de,uk,es"`
}

// UpdateOrderRequest represents the update order request body.
type UpdateOrderRequest struct {
	Title        *string `json:"title" example:"Supplier contract review (final)"`
	Description  *string `json:"description" example:"Updated description"`
	AnalysisType *string `json:"analysis_type" example:"summary"`
	Priority     *string `json:"priority" example:"urgent"`
	Language     *string `json:"language" example:"pl"`
}

// CreatePaymentRequest represents the optional payment request body.
type CreatePaymentRequest struct {
	AmountCents *int64 `json:"amount" example:"2999"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
