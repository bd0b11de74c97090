package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestGeminiClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply("halo")))
	}))
	defer srv.Close()

	client := NewGeminiClient([]string{"k1"}, "gemini-2.5-flash", WithBaseURL(srv.URL))
	got, err := client.Complete(context.Background(), "tes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "halo" {
		t.Errorf("got %q", got)
	}
}

func TestGeminiClient_RotatesOnQuota(t *testing.T) {
	var keysSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keysSeen = append(keysSeen, key)
		if key != "k3" {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		w.Write([]byte(geminiReply("jadwal")))
	}))
	defer srv.Close()

	client := NewGeminiClient([]string{"k1", "k2", "k3"}, "gemini-2.5-flash", WithBaseURL(srv.URL))
	got, err := client.Complete(context.Background(), "tes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "jadwal" {
		t.Errorf("got %q", got)
	}
	if len(keysSeen) != 3 || keysSeen[0] != "k1" || keysSeen[2] != "k3" {
		t.Errorf("keys tried in wrong order: %v", keysSeen)
	}
}

func TestGeminiClient_AllKeysDrained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient([]string{"k1", "k2"}, "gemini-2.5-flash", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), "tes")
	if !errors.Is(err, ErrAllKeysDrained) {
		t.Errorf("expected ErrAllKeysDrained, got %v", err)
	}
}

func TestGeminiClient_NonQuotaErrorFailsImmediately(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient([]string{"k1", "k2"}, "gemini-2.5-flash", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), "tes")
	if err == nil || !strings.Contains(err.Error(), "INVALID_ARGUMENT") {
		t.Fatalf("expected API error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-quota error should not rotate keys, got %d calls", calls)
	}
}

func TestGeminiClient_NoKeys(t *testing.T) {
	client := NewGeminiClient(nil, "gemini-2.5-flash")
	_, err := client.Complete(context.Background(), "tes")
	if !errors.Is(err, ErrNoAPIKeys) {
		t.Errorf("expected ErrNoAPIKeys, got %v", err)
	}
}
