package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/cherrizbox/socialverify/internal/account"
	"github.com/cherrizbox/socialverify/internal/email"
	"github.com/cherrizbox/socialverify/internal/store"
	"github.com/cherrizbox/socialverify/internal/verify"
)

type stubAccounts struct {
	acct *account.Account
	err  error
}

func (s *stubAccounts) Get(ctx context.Context, userID string) (*account.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.acct, nil
}

type stubProfiles struct {
	docs    []store.ProfileDocument
	findErr error
	setErr  error
	updates int
}

func (s *stubProfiles) FindByAccountID(ctx context.Context, accountID string) ([]store.ProfileDocument, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.docs, nil
}

func (s *stubProfiles) SetVerificationCode(ctx context.Context, documentID, code string) error {
	s.updates++
	return s.setErr
}

type stubSender struct {
	err  error
	sent int
}

func (s *stubSender) Send(ctx context.Context, m email.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent++
	return "email-1", nil
}

func testServer(accounts account.Service, profiles store.Profiles, sender email.Sender, policy verify.Policy) *httptest.Server {
	d := &verify.Dispatcher{
		Accounts:  accounts,
		Profiles:  profiles,
		Sender:    sender,
		Templates: email.DefaultTemplates(),
		Policy:    policy,
		From:      "verification@email.cherrizbox.com",
		To:        "review@cherrizbox.com",
	}
	h := NewRouter(RouterConfig{Handler: &Handler{Dispatcher: d}})
	return httptest.NewServer(h)
}

func happyDeps() (*stubAccounts, *stubProfiles, *stubSender) {
	return &stubAccounts{acct: &account.Account{ID: "u1", Name: "Ann", Email: "ann@x.com"}},
		&stubProfiles{docs: []store.ProfileDocument{{
			ID:                  "d1",
			AccountID:           "u1",
			SocialMedia:         "instagram",
			SocialMediaUsername: "annx",
		}}},
		&stubSender{}
}

func postJSON(t *testing.T, url, body string) (int, Result) {
	t.Helper()
	resp, err := http.Post(url+"/v1/verification/send", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestSendCodeSuccess(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !out.OK || out.Message != "Verification code sent successfully" {
		t.Fatalf("unexpected body: %+v", out)
	}
	if !regexp.MustCompile(`^[0-9]{6}$`).MatchString(out.Code) {
		t.Fatalf("expected 6-digit code, got %q", out.Code)
	}
	if profiles.updates != 1 || sender.sent != 1 {
		t.Fatalf("expected one update and one email, got %d/%d", profiles.updates, sender.sent)
	}
}

func TestSendCodeMissingUserID(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"socialMedia":"instagram"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if out.OK || out.Message != "User data is required." {
		t.Fatalf("unexpected body: %+v", out)
	}
	if out.Code != "" {
		t.Fatalf("failure body must not carry a code")
	}
}

func TestSendCodeEmptyBody(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if out.Message != "User data is required." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestSendCodeInvalidJSON(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{broken`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if out.OK || out.Message != "Invalid request format." {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestSendCodeFormEncoded(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/verification/send",
		"application/x-www-form-urlencoded",
		strings.NewReader("userId=u1&socialMedia=tiktok"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSendCodeAccountNotFound(t *testing.T) {
	_, profiles, sender := happyDeps()
	srv := testServer(&stubAccounts{err: account.ErrNotFound}, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"ghost"}`)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if out.Message != "User document not found." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestSendCodeNoDocument(t *testing.T) {
	accounts, _, sender := happyDeps()
	srv := testServer(accounts, &stubProfiles{}, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if out.Message != "User document not found." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestSendCodeReuseReturnsStored(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	profiles.docs[0].VerificationCode = "482913"
	srv := testServer(accounts, profiles, sender, verify.PolicyReuse)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if out.Code != "482913" {
		t.Fatalf("expected stored code, got %q", out.Code)
	}
	if profiles.updates != 0 {
		t.Fatalf("reuse must not update the document")
	}
}

func TestSendCodeReuseWithoutStoredCode(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyReuse)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if out.Message != "No verification code found." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestSendCodeProviderFailure(t *testing.T) {
	accounts, profiles, _ := happyDeps()
	srv := testServer(accounts, profiles, &stubSender{err: errors.New("smtp down")}, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if out.OK || out.Message != "An internal server error occurred." {
		t.Fatalf("unexpected body: %+v", out)
	}
	if out.Code != "" {
		t.Fatalf("500 must not leak partial success fields")
	}
}

func TestSendCodeStoreFailure(t *testing.T) {
	accounts, _, sender := happyDeps()
	srv := testServer(accounts, &stubProfiles{findErr: errors.New("store down")}, sender, verify.PolicyGenerate)
	defer srv.Close()

	status, out := postJSON(t, srv.URL, `{"userId":"u1"}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if out.Message != "An internal server error occurred." {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestHealthz(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	accounts, profiles, sender := happyDeps()
	srv := testServer(accounts, profiles, sender, verify.PolicyGenerate)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}
