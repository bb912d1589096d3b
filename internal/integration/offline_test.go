package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDialAddress(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
		ok       bool
	}{
		{"https://router.huggingface.co/v1", "router.huggingface.co:443", true},
		{"http://localhost:11434", "localhost:11434", true},
		{"http://example.com/path", "example.com:80", true},
		{"http://[::1]:8080", "[::1]:8080", true},
		{"ftp://example.com", "", false},
		{"not a url", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := dialAddress(tt.endpoint)
		if got != tt.want || ok != tt.ok {
			t.Errorf("dialAddress(%q) = %q, %v; want %q, %v", tt.endpoint, got, ok, tt.want, tt.ok)
		}
	}
}

func TestConnectivityChecker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	checker := NewConnectivityChecker(time.Second)
	if !checker.IsReachable(context.Background(), srv.URL) {
		t.Errorf("%s should be reachable", srv.URL)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()
	if checker.IsReachable(context.Background(), closedURL) {
		t.Errorf("%s should be unreachable after close", closedURL)
	}

	if checker.IsReachable(context.Background(), "::bad") {
		t.Error("unparseable endpoint should be unreachable")
	}
}
