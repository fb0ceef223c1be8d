package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/whatsheet/whatsheet/internal/model"
)

func TestDeliver_TextOnly(t *testing.T) {
	t.Parallel()

	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sendResponse{Message: "Sent", MessageID: "abc-123"})
	}))
	t.Cleanup(srv.Close)

	c := NewWhatsAppClient(srv.URL, time.Second, nil)

	outcome, err := c.Deliver(context.Background(), "919876543210", "hello", "")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if outcome != model.SentTextOnly {
		t.Fatalf("expected SentTextOnly, got %v", outcome)
	}
	if got.Phone != "919876543210" || got.Message != "hello" || got.ImageURL != "" {
		t.Fatalf("unexpected request payload: %+v", got)
	}
}

func TestDeliver_WithImage(t *testing.T) {
	t.Parallel()

	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(sendResponse{Message: "Sent", MessageID: "abc"})
	}))
	t.Cleanup(srv.Close)

	c := NewWhatsAppClient(srv.URL, time.Second, nil)

	outcome, err := c.Deliver(context.Background(), "919876543210", "caption",
		"https://drive.google.com/file/d/FILE123/view?usp=sharing")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if outcome != model.SentWithImage {
		t.Fatalf("expected SentWithImage, got %v", outcome)
	}
	if got.ImageURL != "https://drive.google.com/uc?id=FILE123" {
		t.Fatalf("expected rewritten drive link, got %q", got.ImageURL)
	}
}

func TestDeliver_ImageFailureFallsBackToText(t *testing.T) {
	t.Parallel()

	var calls []sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		calls = append(calls, req)

		if req.ImageURL != "" {
			http.Error(w, "image fetch failed", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(sendResponse{Message: "Sent", MessageID: "abc"})
	}))
	t.Cleanup(srv.Close)

	c := NewWhatsAppClient(srv.URL, time.Second, nil)

	outcome, err := c.Deliver(context.Background(), "919876543210", "caption", "https://img.example/x.png")
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if outcome != model.SentTextOnly {
		t.Fatalf("expected SentTextOnly after fallback, got %v", outcome)
	}
	if len(calls) != 2 {
		t.Fatalf("expected image attempt then text attempt, got %d calls", len(calls))
	}
	if calls[0].ImageURL == "" || calls[1].ImageURL != "" {
		t.Fatalf("unexpected call order: %+v", calls)
	}
}

func TestDeliver_TotalFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session dropped", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewWhatsAppClient(srv.URL, time.Second, nil)

	outcome, err := c.Deliver(context.Background(), "919876543210", "hello", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if outcome != model.Failed {
		t.Fatalf("expected Failed outcome, got %v", outcome)
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	connected := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(statusResponse{Connected: connected, State: "OPENING"})
	}))
	t.Cleanup(srv.Close)

	c := NewWhatsAppClient(srv.URL, time.Second, nil)

	if err := c.Ready(context.Background()); err == nil {
		t.Fatalf("expected not-ready error")
	}

	connected = true
	if err := c.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() error: %v", err)
	}
}

func TestDirectDriveLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{
			"https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing",
			"https://drive.google.com/uc?id=1AbC_dEf",
		},
		{"https://example.com/cat.png", "https://example.com/cat.png"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DirectDriveLink(tc.in); got != tc.want {
			t.Fatalf("DirectDriveLink(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
