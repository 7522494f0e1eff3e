package passage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		w.Write([]byte("The quick brown fox jumps over the lazy dog.\n"))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, 0)

	text, err := provider.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "The quick brown fox jumps over the lazy dog." {
		t.Errorf("Expected trimmed passage text, got %q", text)
	}
}

func TestHTTPProvider_Fetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, 0)

	if _, err := provider.Fetch(context.Background()); err == nil {
		t.Error("Expected error for non-2xx response")
	}
}

func TestHTTPProvider_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, 20*time.Millisecond)

	if _, err := provider.Fetch(context.Background()); err == nil {
		t.Error("Expected error when the endpoint exceeds the client timeout")
	}
}

func TestHTTPProvider_Fetch_Unreachable(t *testing.T) {
	provider := NewHTTPProvider("http://127.0.0.1:1/paragraphs/1", 100*time.Millisecond)

	if _, err := provider.Fetch(context.Background()); err == nil {
		t.Error("Expected error for an unreachable endpoint")
	}
}

func TestStaticProvider(t *testing.T) {
	provider := &StaticProvider{Text: "offline passage"}

	text, err := provider.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if text != "offline passage" {
		t.Errorf("Expected static passage, got %q", text)
	}
}
