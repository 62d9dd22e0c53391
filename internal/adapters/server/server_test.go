package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/todoboard/internal/backend"
)

func newTestHandler(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	handler, _, err := NewHandler(cfg, Dependencies{Tasks: backend.NewStore()})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return handler
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestNewHandlerComposesRoutes verifies health, REST and metrics routes share one router.
func TestNewHandlerComposesRoutes(t *testing.T) {
	h := newTestHandler(t, Config{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("%s = %d %q", path, rec.Code, rec.Body.String())
		}
	}

	if rec := do(t, h, http.MethodPost, "/todos", `{"title":"A"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/todos/1", ""); rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "not_found") {
		t.Fatalf("unknown route = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"todoboard_http_requests_total", `route="/todos/{id}"`, "todoboard_tasks 1"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

// TestNormalizeConfig verifies defaults and collision checks.
func TestNormalizeConfig(t *testing.T) {
	cfg, err := normalizeConfig(Config{MCPEndpoint: "agents/", MetricsPath: " "})
	if err != nil {
		t.Fatalf("normalizeConfig() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.MCPEndpoint != "/agents" || cfg.MetricsPath != "/metrics" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if cfg.ServerName != "todoboard" || cfg.ServerVersion != "dev" {
		t.Fatalf("unexpected server identity %#v", cfg)
	}

	if _, err := normalizeConfig(Config{MCPEndpoint: "/x", MetricsPath: "/x"}); err == nil {
		t.Fatal("expected collision error")
	}
	if _, err := normalizeConfig(Config{MCPEndpoint: "/todos"}); err == nil {
		t.Fatal("expected built-in route collision error")
	}
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected missing tasks dependency error")
	}
}

// TestServeStopsOnCancel verifies graceful shutdown when the context ends.
func TestServeStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, listener, newTestHandler(t, Config{}), nil)
	}()

	url := "http://" + listener.Addr().String() + "/healthz"
	var resp *http.Response
	for attempt := 0; attempt < 50; attempt++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve() did not stop after cancel")
	}
}
