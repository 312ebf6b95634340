package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/internal/service"
	"github.com/noah-isme/faculty-leave-api/pkg/config"
	"github.com/noah-isme/faculty-leave-api/pkg/logger"
)

func newRouter(tokens *service.TokenService, metrics *service.MetricsService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/secure", JWT(tokens), RequireRoles(roles...), func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID, "log_user": c.GetString(logger.ContextUserIDKey)})
	})
	return r
}

func issue(t *testing.T, tokens *service.TokenService, role models.UserRole) string {
	t.Helper()
	token, err := tokens.Issue(models.User{ID: "user-1", Role: role, DeptID: "cse", Email: "u@example.com"}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestJWTAndRBAC(t *testing.T) {
	tokens := service.NewTokenService(config.JWTConfig{Secret: "secret"})
	r := newRouter(tokens, nil, models.RoleHOD, models.RoleAdmin)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "role not allowed", header: "Bearer " + issue(t, tokens, models.RoleFaculty), status: http.StatusForbidden},
		{name: "allowed", header: "Bearer " + issue(t, tokens, models.RoleHOD), status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"user":"user-1","log_user":"user-1"}`, w.Body.String())
			}
		})
	}
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	tokens := service.NewTokenService(config.JWTConfig{Secret: "secret"})
	other := service.NewTokenService(config.JWTConfig{Secret: "other"})
	r := newRouter(tokens, nil, models.RoleFaculty)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, other, models.RoleFaculty))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	tokens := service.NewTokenService(config.JWTConfig{Secret: "secret"})
	metrics := service.NewMetricsService()
	r := newRouter(tokens, metrics, models.RoleFaculty)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsMiddlewareSkipsProbesAndBucketsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/leaves/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/leaves/a", "/leaves/b", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/leaves/:id",status="200"} 2
http_requests_total{method="GET",path="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "http_requests_total"))
}
