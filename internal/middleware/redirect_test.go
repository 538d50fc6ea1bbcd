package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/case-gallery/internal/middleware"
)

type mockRedirector struct {
	redirect func(ctx context.Context, target string) (string, bool)
}

func (m *mockRedirector) RedirectIfCrossMode(ctx context.Context, target string) (string, bool) {
	return m.redirect(ctx, target)
}

var _ middleware.Redirector = (*mockRedirector)(nil)

func TestCrossModeRedirect(t *testing.T) {
	var seen string
	rd := &mockRedirector{redirect: func(_ context.Context, target string) (string, bool) {
		seen = target
		switch target {
		case "/gallery/face/?utm_source=mail":
			return "/case-category/face/", true
		case "/gallery/?s=nose":
			return "/cases/?s=nose", true
		case "/cases/?s=chin&ref=x":
			return "/gallery/search/chin/", true
		}
		return "", false
	}}
	h := middleware.NewCrossModeRedirect(rd)(trivialHandler)

	tests := []struct {
		method, target string
		wantCode       int
		wantLocation   string
	}{
		{http.MethodGet, "/gallery/face/?utm_source=mail", http.StatusMovedPermanently, "/case-category/face/?utm_source=mail"},
		{http.MethodGet, "/gallery/?s=nose", http.StatusMovedPermanently, "/cases/?s=nose"},
		{http.MethodGet, "/cases/?s=chin&ref=x", http.StatusMovedPermanently, "/gallery/search/chin/?ref=x"},
		{http.MethodHead, "/gallery/face/?utm_source=mail", http.StatusMovedPermanently, "/case-category/face/?utm_source=mail"},
		{http.MethodGet, "/about/", http.StatusOK, ""},
		{http.MethodPost, "/gallery/face/?utm_source=mail", http.StatusOK, ""},
	}
	for _, tc := range tests {
		seen = ""
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tc.wantCode, rec.Code, tc.target)
		assert.Equal(t, tc.wantLocation, rec.Header().Get("Location"), tc.target)
		if tc.method == http.MethodPost {
			assert.Empty(t, seen, "non-GET requests are not inspected")
		}
	}
}
