package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roguepikachu/roster/pkg/ctxutil"
)

func TestRequestIDMiddleware_SetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if got := w.Header().Get(headerRequestID); len(got) != 36 {
		t.Fatalf("%s header should be a generated UUID, got %q", headerRequestID, got)
	}
	if got := w.Header().Get(headerClientID); len(got) != 36 {
		t.Fatalf("%s header should be a generated UUID, got %q", headerClientID, got)
	}
}

func TestRequestIDMiddleware_PropagatesProvided(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())

	var ctxRequestID, ctxClientID string
	r.GET("/ping", func(c *gin.Context) {
		ctxRequestID = ctxutil.RequestID(c.Request.Context())
		ctxClientID = ctxutil.ClientID(c.Request.Context())
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "rid-xyz")
	req.Header.Set("X-Client-ID", "cid-xyz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get(headerRequestID) != "rid-xyz" || w.Header().Get(headerClientID) != "cid-xyz" {
		t.Fatalf("did not propagate provided headers: %s %s", w.Header().Get(headerRequestID), w.Header().Get(headerClientID))
	}
	if ctxRequestID != "rid-xyz" || ctxClientID != "cid-xyz" {
		t.Fatalf("context ids mismatch: %q %q", ctxRequestID, ctxClientID)
	}
}

func TestRequestIDMiddleware_GeneratesUniqueIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	ids := make(map[string]bool)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := w.Header().Get(headerRequestID)
		if ids[id] {
			t.Fatalf("duplicate request ID: %s", id)
		}
		ids[id] = true
	}
}
