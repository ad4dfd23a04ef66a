package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beautypos/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, role model.Role, typ string) string {
	t.Helper()
	claims := JWTClaims{
		UserID:   uuid.NewString(),
		Username: "ana",
		Name:     "Ana",
		Role:     string(role),
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protected(capability model.Capability) *gin.Engine {
	r := gin.New()
	r.GET("/x", JWTAuth(testSecret), RequireCapability(capability), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Actor().UserName)
	})
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protected(model.CapSell)

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, signed(t, model.RoleEmployee, "refresh")).Code)

	w := call(r, signed(t, model.RoleEmployee, "access"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", w.Body.String())
}

func TestRequireCapability(t *testing.T) {
	r := protected(model.CapAuthorizeOverrides)
	assert.Equal(t, http.StatusForbidden, call(r, signed(t, model.RoleEmployee, "access")).Code)
	assert.Equal(t, http.StatusOK, call(r, signed(t, model.RoleManager, "access")).Code)
}

func TestRequestIDEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestLimiterWindow(t *testing.T) {
	l := NewLimiter("t", 2, time.Minute)
	now := time.Now()

	ok, _ := l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1", now)
	assert.False(t, ok)
	ok, _ = l.allow("2.2.2.2", now)
	assert.True(t, ok)

	ok, _ = l.allow("1.1.1.1", now.Add(2*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 1, l.Purge(now.Add(3*time.Minute)))
}

func TestRecoveryHidesPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/x", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
