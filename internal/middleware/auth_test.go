package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		id := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":   id.UserID,
			"tenant_id": id.TenantID,
			"role":      id.Role,
		})
	})
	return r
}

func signedToken(t *testing.T) (string, auth.Identity) {
	t.Helper()
	id := auth.Identity{UserID: uuid.New(), TenantID: uuid.New(), Email: "e@x.io", Role: "admin"}
	tok, err := auth.GenerateToken(id, secret, time.Hour)
	require.NoError(t, err)
	return tok, id
}

func TestAuthMiddleware(t *testing.T) {
	tok, id := signedToken(t)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid bearer", "Bearer " + tok, "", http.StatusOK},
		{"lowercase scheme", "bearer " + tok, "", http.StatusOK},
		{"missing header", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized},
		{"query not accepted", "", tok, http.StatusUnauthorized},
	}

	r := newRouter(AuthMiddleware(secret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/whoami"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), id.UserID.String())
				assert.Contains(t, w.Body.String(), `"role":"admin"`)
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestWebSocketAuthAcceptsQueryToken(t *testing.T) {
	tok, id := signedToken(t)
	r := newRouter(WebSocketAuth(secret))

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.TenantID.String())
}

func TestHelpersWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Equal(t, uuid.Nil, GetTenantID(c))
	assert.Empty(t, GetRole(c))
}
