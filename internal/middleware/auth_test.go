package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sportshop-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter() (*gin.Engine, *struct{ id, email, role string }) {
	gin.SetMode(gin.TestMode)
	seen := &struct{ id, email, role string }{}

	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		seen.id, _ = utils.GetUserIDFromContext(ctx)
		seen.email = utils.GetUserEmailFromContext(ctx)
		seen.role = utils.GetUserRoleFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r, seen
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("MissingHeader", func(t *testing.T) {
		r, _ := authTestRouter()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		r, _ := authTestRouter()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongSigningKey", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "U1"})
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		r, _ := authTestRouter()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidTokenThreadsCaller", func(t *testing.T) {
		signed := signToken(t, jwt.MapClaims{
			"user_id": "U1",
			"email":   "u1@shop.test",
			"role":    "STAFF",
		})

		r, seen := authTestRouter()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "U1", seen.id)
		assert.Equal(t, "u1@shop.test", seen.email)
		assert.Equal(t, "STAFF", seen.role)
	})
}

func TestRateLimitMiddleware_BurstThenThrottle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	var throttled bool
	for i := 0; i < burstGeneral+5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			throttled = true
		}
	}
	assert.True(t, throttled)
}
