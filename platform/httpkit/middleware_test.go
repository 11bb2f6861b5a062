package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"medicare_backend/platform/logger"
)

func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())

	var ginID, ctxID string
	engine.GET("/", func(c *gin.Context) {
		ginID = c.GetString(ContextRequestIDKey)
		ctxID, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if ginID == "" {
		t.Fatal("no request ID assigned")
	}
	if ctxID != ginID {
		t.Fatalf("request context ID = %q, gin context ID = %q", ctxID, ginID)
	}
	if got := rec.Header().Get(HeaderRequestID); got != ginID {
		t.Fatalf("response header ID = %q, want %q", got, ginID)
	}
}

func TestRequestIDKeepsInboundID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())

	var ctxID string
	engine.GET("/", func(c *gin.Context) {
		ctxID, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-supplied-id")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if ctxID != "client-supplied-id" {
		t.Fatalf("request context ID = %q, want the client-supplied one", ctxID)
	}
}
