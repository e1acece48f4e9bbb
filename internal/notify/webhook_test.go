package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNotify_PostsMultipartFields(t *testing.T) {
	var received map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm failed: %v", err)
		}
		received = make(map[string]string)
		for key, values := range r.MultipartForm.Value {
			received[key] = values[0]
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, 5*time.Second)
	fields := map[string]string{
		"name":      "Jo",
		"email":     "jo@example.com",
		"rating":    "5",
		"review":    "A lovely tribute",
		"_language": "nl",
	}

	if err := wh.Notify(context.Background(), fields); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	for key, want := range fields {
		if received[key] != want {
			t.Errorf("Field %s = %q, want %q", key, received[key], want)
		}
	}
}

func TestNotify_ErrorStatusReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, 5*time.Second)
	if err := wh.Notify(context.Background(), map[string]string{"name": "Jo"}); err == nil {
		t.Error("Expected error for 4xx response")
	}
}

func TestNotify_DisabledWithoutURL(t *testing.T) {
	wh := NewWebhook("", 5*time.Second)
	if wh.Enabled() {
		t.Error("Empty URL should disable the webhook")
	}
	if err := wh.Notify(context.Background(), map[string]string{"name": "Jo"}); err != nil {
		t.Errorf("Disabled webhook should be a no-op, got %v", err)
	}
}
