// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login"}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh tokens"}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register"}},
        "/auth/verify-email": {"get": {"tags": ["auth"], "summary": "Verify email"}},
        "/auth/resend-verification": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Resend verification email"}},
        "/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Request a password reset"}},
        "/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Reset password"}},
        "/pricing": {"get": {"tags": ["orders"], "summary": "Price list"}},
        "/users/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get own profile"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update own profile"}
        },
        "/admin/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users"}},
        "/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["stats"], "summary": "Get dashboard statistics"}},
        "/orders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "List own orders"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Create an order"}
        },
        "/orders/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Get an order"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Update an order"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Cancel an order"}
        },
        "/orders/{id}/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Order audit trail"}},
        "/orders/{id}/payment-intent": {"post": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Start payment"}},
        "/orders/{id}/documents": {"get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "List order documents"}},
        "/orders/{id}/upload": {"post": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Upload documents"}},
        "/orders/{id}/analysis": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["analyses"], "summary": "List order analyses"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["analyses"], "summary": "Start analysis"}
        },
        "/orders/{id}/analysis/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["analyses"], "summary": "Export analyses"}},
        "/documents/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Get a document"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["documents"], "summary": "Delete a document"}
        },
        "/analyses/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["analyses"], "summary": "Get an analysis"}},
        "/analyses/{id}/retry": {"post": {"security": [{"BearerAuth": []}], "tags": ["analyses"], "summary": "Retry a failed analysis"}},
        "/webhooks/stripe": {"post": {"tags": ["payments"], "summary": "Stripe webhook"}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Document Analyzer API",
	Description:      "Orders, payments, uploads and multi-provider LLM document analysis.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
