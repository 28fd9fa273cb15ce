package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/craftdeck/internal/model"
)

func TestWriteJSON_SetsContentTypeAndBody(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusOK, map[string]string{"hello": "world"})

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json; charset=utf-8")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body[hello] = %q, want %q", body["hello"], "world")
	}
}

func TestWriteJSON_DoesNotOverrideCallerContentType(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "application/problem+json")

	WriteJSON(w, http.StatusOK, map[string]string{})

	if ct := w.Result().Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want caller value preserved", ct)
	}
}

func TestRedirect_Returns302WithLocation(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Redirect(w, r, "/home")

	resp := w.Result()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/home" {
		t.Errorf("Location = %q, want %q", loc, "/home")
	}
}

func TestRedirectWithStatus_OverridesStatusCode(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RedirectWithStatus(w, r, "https://idp.example.com/authorize", http.StatusTemporaryRedirect)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
}

func TestWriteError_IncludesFieldForValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, model.NewMissingFieldError("email", "メールアドレス"))

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeMissingField {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeMissingField)
	}
	if body.Field != "email" {
		t.Errorf("field = %q, want %q", body.Field, "email")
	}
	if body.Category != "validation" {
		t.Errorf("category = %q, want %q", body.Category, "validation")
	}
}

func TestWriteInternalServerError_DoesNotLeakDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
	if body.Field != "" {
		t.Errorf("field = %q, want empty", body.Field)
	}
}
