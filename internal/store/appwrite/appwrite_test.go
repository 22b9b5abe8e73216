package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cherrizbox/socialverify/internal/store"
)

func newTestClient(srvURL string) *Client {
	return New(srvURL+"/v1", "proj", "key", "db", "col", 5*time.Second)
}

func TestFindByAccountID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db/collections/col/documents" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query().Get("queries[]")
		if !strings.Contains(q, "creatoraccountid") || !strings.Contains(q, "u1") {
			t.Errorf("query filter missing account id: %q", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 1,
			"documents": [{
				"$id": "d1",
				"creatoraccountid": "u1",
				"social_media": "instagram",
				"social_media_username": "annx",
				"social_media_number": "482913",
				"social_media_number_correct": true
			}]
		}`))
	}))
	defer srv.Close()

	docs, err := newTestClient(srv.URL).FindByAccountID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByAccountID: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	d := docs[0]
	if d.ID != "d1" || d.SocialMedia != "instagram" || d.VerificationCode != "482913" || !d.CodeConfirmed {
		t.Fatalf("unexpected document: %+v", d)
	}
}

func TestSetVerificationCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/v1/databases/db/collections/col/documents/d1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Data["social_media_number"] != "123456" {
			t.Errorf("code not written: %v", body.Data)
		}
		if v, ok := body.Data["social_media_number_correct"].(bool); !ok || v {
			t.Errorf("flag not reset: %v", body.Data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"$id":"d1"}`))
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).SetVerificationCode(context.Background(), "d1", "123456"); err != nil {
		t.Fatalf("SetVerificationCode: %v", err)
	}
}

func TestSetVerificationCodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Document not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SetVerificationCode(context.Background(), "nope", "123456")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestFindByAccountIDServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"general_unknown","message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FindByAccountID(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("error should carry status: %v", err)
	}
}
