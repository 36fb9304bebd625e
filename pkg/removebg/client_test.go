package removebg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRemove(t *testing.T) {
	transparent := []byte("transparent-png")
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart upload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"files":   []map[string]string{{"url": server.URL + "/public.png"}},
		})
	})
	mux.HandleFunc("/v1/ai/beta/remove-background", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-freepik-api-key") != "fp-key" {
			t.Errorf("missing freepik api key header")
		}
		if got := r.FormValue("image_url"); got != server.URL+"/public.png" {
			t.Errorf("unexpected image_url: %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/result.png"})
	})
	mux.HandleFunc("/result.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(transparent)
	})

	client := NewClient(server.URL+"/upload", server.URL+"/fallback", server.URL, "fp-key", 5*time.Second)
	got, err := client.Remove(context.Background(), []byte("opaque-png"))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if string(got) != string(transparent) {
		t.Fatalf("unexpected result payload: %q", got)
	}
}

func TestRemoveFallsBackToSecondHost(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/fallback", func(w http.ResponseWriter, r *http.Request) {
		// 0x0.st style: bare URL in the body.
		fmt.Fprint(w, server.URL+"/public.png")
	})
	mux.HandleFunc("/v1/ai/beta/remove-background", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"high_resolution": server.URL + "/result.png"})
	})
	mux.HandleFunc("/result.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	client := NewClient(server.URL+"/upload", server.URL+"/fallback", server.URL, "fp-key", 5*time.Second)
	got, err := client.Remove(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if string(got) != "ok" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestRemoveAllUploadsFail(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	client := NewClient(server.URL+"/upload", server.URL+"/fallback", server.URL, "fp-key", 5*time.Second)
	if _, err := client.Remove(context.Background(), []byte("png")); err == nil {
		t.Fatal("expected error when all upload hosts fail")
	}
}

func TestRemoveUnconfigured(t *testing.T) {
	client := NewClient("http://u", "http://f", "http://fp", "", 5*time.Second)
	if client.Configured() {
		t.Fatal("client without key must not report configured")
	}
	if _, err := client.Remove(context.Background(), []byte("png")); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
