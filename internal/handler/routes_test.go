package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"cors-anywhere-go/internal/config"
	"cors-anywhere-go/internal/metrics"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer target.Close()

	cfg := config.Default()
	cfg.Metrics.Enabled = true
	m := metrics.New()

	proxy := newTestProxyHandler(t, cfg, m)
	health := NewHealthHandler(cfg, "test")

	e := echo.New()
	RegisterRoutes(e, cfg, m, proxy, health)

	encoded := url.QueryEscape(target.URL + "/data")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{"GET /proxy/status", http.MethodGet, "/proxy/status", http.StatusOK, `"version":"test"`},
		{"GET /metrics", http.MethodGet, "/metrics", http.StatusOK, "cors_proxy_"},
		{"GET / info page", http.MethodGet, "/", http.StatusOK, "Usage:"},
		{"GET /?target", http.MethodGet, "/?" + encoded, http.StatusOK, `{"ok":true}`},
		{"POST /?target", http.MethodPost, "/?" + encoded, http.StatusOK, `{"ok":true}`},
		{"OPTIONS /?target", http.MethodOptions, "/?" + encoded, http.StatusOK, ""},
		{"GET /any/path?target", http.MethodGet, "/any/path?" + encoded, http.StatusOK, `{"ok":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	m := metrics.New()

	e := echo.New()
	RegisterRoutes(e, cfg, m, newTestProxyHandler(t, cfg, m), NewHealthHandler(cfg, "test"))

	// Without a metrics route the path falls through to the proxy's info page.
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "cors_proxy_") {
		t.Error("metrics exposed while disabled")
	}
}
