package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/handler"
	"docanalyzer/internal/middleware"
	"docanalyzer/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCaller() service.Caller {
	return service.Caller{UserID: uuid.New(), Email: "user@test.com", Role: domain.RoleUser}
}

// newContext builds a test context with an authenticated caller. A nil
// caller leaves the context unauthenticated.
func newContext(method, target string, body io.Reader, caller *service.Caller) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = http.NoBody
	}
	c.Request, _ = http.NewRequest(method, target, body)
	if caller != nil {
		c.Set(middleware.ContextKeyUserID, caller.UserID)
		c.Set(middleware.ContextKeyEmail, caller.Email)
		c.Set(middleware.ContextKeyRole, string(caller.Role))
	}
	return c, w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func withID(c *gin.Context, id uuid.UUID) {
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
