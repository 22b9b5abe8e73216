package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestResendSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("missing bearer auth")
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Errorf("missing idempotency key")
		}
		var body resendRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.From != "verification@email.cherrizbox.com" || len(body.To) != 1 {
			t.Errorf("unexpected envelope: %+v", body)
		}
		if !strings.Contains(body.HTML, "482913") {
			t.Errorf("html should carry the code")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer srv.Close()

	s := NewResendSender("re_test", srv.URL, 5*time.Second)
	id, err := s.Send(context.Background(), Message{
		From:    "verification@email.cherrizbox.com",
		To:      "review@cherrizbox.com",
		Subject: "Social Media Verification Code - instagram",
		HTML:    "<p>482913</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "email-123" {
		t.Fatalf("expected provider id, got %q", id)
	}
}

func TestResendSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"name":"validation_error","message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewResendSender("re_test", srv.URL, 5*time.Second)
	_, err := s.Send(context.Background(), Message{From: "x", To: "y", Subject: "z"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "validation_error") {
		t.Fatalf("error should carry provider detail: %v", err)
	}
}
