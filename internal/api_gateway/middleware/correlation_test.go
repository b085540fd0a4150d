package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCorrelationRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(CorrelationID())
	r.GET("/ping", func(c *gin.Context) {
		seen = GetCorrelationID(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestCorrelationID_GeneratesWhenMissing(t *testing.T) {
	router, seen := newCorrelationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	echoed := w.Header().Get(CorrelationIDHeader)
	require.NotEmpty(t, echoed)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.Equal(t, echoed, *seen, "handler and response header should agree")
}

func TestCorrelationID_KeepsCallerSupplied(t *testing.T) {
	router, seen := newCorrelationRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(CorrelationIDHeader, "recon-2026-08-01-7")
	router.ServeHTTP(w, req)

	assert.Equal(t, "recon-2026-08-01-7", w.Header().Get(CorrelationIDHeader))
	assert.Equal(t, "recon-2026-08-01-7", *seen)
}

func TestGetCorrelationID_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetCorrelationID(c))
}
