package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteErrorOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "invitation_not_found", "Invalid invitation code")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "details") {
		t.Fatalf("expected no details, got %s", rec.Body.String())
	}
}

func TestWriteErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "invalid_code_format", "first", "first", "second")

	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "invalid_code_format" || len(envelope.Error.Details) != 2 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"AB3DEF7H","extra":1}`))
	var dst struct {
		Code string `json:"code"`
	}
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	empty := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeOptionalJSON(empty, &dst); err != nil {
		t.Fatalf("expected empty body accepted, got %v", err)
	}

	withBody := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com"}`))
	if err := DecodeOptionalJSON(withBody, &dst); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dst.Email != "a@example.com" {
		t.Fatalf("expected email decoded, got %q", dst.Email)
	}

	broken := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	if err := DecodeOptionalJSON(broken, &dst); err == nil {
		t.Fatalf("expected syntax error")
	}
}
