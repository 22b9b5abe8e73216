package verify

import (
	"errors"
	"testing"
)

func TestParseRequestJSON(t *testing.T) {
	req, err := ParseRequest("application/json", []byte(`{"userId":"u1","socialMedia":"instagram","socialMediaUsername":"annx"}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.UserID != "u1" || req.SocialMedia != "instagram" || req.SocialMediaUsername != "annx" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestJSONWithCharset(t *testing.T) {
	req, err := ParseRequest("application/json; charset=utf-8", []byte(`{"userId":"u1"}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.UserID != "u1" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestForm(t *testing.T) {
	body := "userId=u2&socialMedia=tiktok&socialMediaUsername=dancer"
	req, err := ParseRequest("application/x-www-form-urlencoded", []byte(body))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.UserID != "u2" || req.SocialMedia != "tiktok" || req.SocialMediaUsername != "dancer" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestNoContentTypeFallsBackToJSON(t *testing.T) {
	req, err := ParseRequest("", []byte(`{"userId":"u3"}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.UserID != "u3" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestUnknownContentTypeFallsBackToJSON(t *testing.T) {
	req, err := ParseRequest("text/plain", []byte(`{"userId":"u4"}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.UserID != "u4" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestEmptyPayload(t *testing.T) {
	// payload vacío = registro vacío = falta userId
	_, err := ParseRequest("application/json", nil)
	if !errors.Is(err, ErrUserDataRequired) {
		t.Fatalf("expected ErrUserDataRequired, got %v", err)
	}
}

func TestParseRequestMissingUserID(t *testing.T) {
	_, err := ParseRequest("application/json", []byte(`{"socialMedia":"instagram"}`))
	if !errors.Is(err, ErrUserDataRequired) {
		t.Fatalf("expected ErrUserDataRequired, got %v", err)
	}
}

func TestParseRequestInvalidJSON(t *testing.T) {
	_, err := ParseRequest("application/json", []byte(`{not json`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestParseRequestInvalidForm(t *testing.T) {
	_, err := ParseRequest("application/x-www-form-urlencoded", []byte("%zz=broken"))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
