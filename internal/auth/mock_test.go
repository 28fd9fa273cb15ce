package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/session"
)

func TestMockSessionAuth_LoginWithCredentials_EmptyEmail_ReturnsValidationError(t *testing.T) {
	g := NewMockSessionAuth(newTestSessionStore())

	w := httptest.NewRecorder()
	user, apiErr := g.LoginWithCredentials(w, "", "secret")
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
	if apiErr == nil {
		t.Fatal("expected validation error for empty email")
	}
	if apiErr.Field != "email" {
		t.Errorf("field = %q, want %q", apiErr.Field, "email")
	}
	if apiErr.Code != model.ErrCodeMissingField {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeMissingField)
	}

	// セッションが発行されないこと
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			t.Error("session cookie should not be issued on validation failure")
		}
	}
}

func TestMockSessionAuth_LoginWithCredentials_EmptyPassword_ReturnsValidationError(t *testing.T) {
	g := NewMockSessionAuth(newTestSessionStore())

	w := httptest.NewRecorder()
	_, apiErr := g.LoginWithCredentials(w, "user@example.com", "")
	if apiErr == nil {
		t.Fatal("expected validation error for empty password")
	}
	if apiErr.Field != "password" {
		t.Errorf("field = %q, want %q", apiErr.Field, "password")
	}
}

func TestMockSessionAuth_LoginWithCredentials_Success_IssuesSession(t *testing.T) {
	g := NewMockSessionAuth(newTestSessionStore())

	w := httptest.NewRecorder()
	user, apiErr := g.LoginWithCredentials(w, "user@example.com", "any-password")
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if user == nil {
		t.Fatal("expected user")
	}
	if user.Email != "user@example.com" {
		t.Errorf("email = %q, want submitted email", user.Email)
	}
	if user.ID == "" {
		t.Error("expected generated user id")
	}

	// 発行されたCookieで同一クライアントが認証されること
	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	restored, err := g.GetUser(r)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if restored == nil {
		t.Fatal("expected user from issued session")
	}
	if restored.ID != user.ID {
		t.Errorf("restored.ID = %q, want %q", restored.ID, user.ID)
	}
}

func TestMockSessionAuth_HostedSignIn_NotConfigured(t *testing.T) {
	g := NewMockSessionAuth(newTestSessionStore())

	if _, err := g.SignInURL("state"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SignInURL err = %v, want ErrNotConfigured", err)
	}
	if _, err := g.HandleCallback(context.Background(), httptest.NewRecorder(), "code"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("HandleCallback err = %v, want ErrNotConfigured", err)
	}
	if g.Configured() {
		t.Error("Configured() = true, want false")
	}
}
