package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newTestRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares...)
	r.GET("/protected", func(c *gin.Context) {
		claims, _ := Claims(c)
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	r := newTestRouter(JWT(validatorStub{claims: &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}}))

	w := serve(r, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stu-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
}

func TestRequireRoles(t *testing.T) {
	student := validatorStub{claims: &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}}
	admin := validatorStub{claims: &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin}}

	assert.Equal(t, http.StatusForbidden, serve(newTestRouter(JWT(student), RequireRoles(models.RoleAdmin)), "Bearer good").Code)
	assert.Equal(t, http.StatusOK, serve(newTestRouter(JWT(admin), RequireRoles(models.RoleAdmin)), "Bearer good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newTestRouter(RequireRoles(models.RoleAdmin)), "").Code)
}

type observerStub struct {
	routes   []string
	statuses []int
}

func (o *observerStub) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.routes = append(o.routes, path)
	o.statuses = append(o.statuses, status)
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(Metrics(observer, "/metrics"))
	r.GET("/submissions/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/submissions/abc", "/metrics", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{"/submissions/:id", unmatchedRoute}, observer.routes)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, observer.statuses)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, true)
	meta := ExtractMeta(c)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.NotContains(t, meta, processingTimeMS)

	c.Set(requestStartKey, time.Now().Add(-5*time.Millisecond))
	meta = ExtractMeta(c)
	assert.GreaterOrEqual(t, meta[processingTimeMS].(int64), int64(5))
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin})
	})
	r.PATCH("/submissions/:id/review", Audit(zap.New(core), "review", "submission"), func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/submissions/sub-1/review", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/submissions/missing/review", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "review", fields["action"])
	assert.Equal(t, "sub-1", fields["resource_id"])
	assert.Equal(t, "adm-1", fields["actor_id"])
}
