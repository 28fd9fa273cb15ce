package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/craftdeck/internal/model"
)

func newTestStore() *Store {
	return NewStore(Config{
		Secret:       "test-session-secret-32bytes-long!",
		MaxAge:       604800,
		CookieSecure: false,
		CookieDomain: "",
	})
}

func testUser() *model.User {
	return &model.User{
		ID:        "user-123",
		Email:     "user@example.com",
		FirstName: "John",
		LastName:  "Doe",
		AvatarURL: "https://cdn.example.com/avatar.png",
	}
}

func requestWithCookies(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestStore_IssueThenRead_RestoresUser(t *testing.T) {
	store := newTestStore()
	w := httptest.NewRecorder()

	if err := store.Issue(w, testUser()); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := store.Read(requestWithCookies(t, w))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	user := claims.User()
	if user.ID != "user-123" {
		t.Errorf("ID = %q, want %q", user.ID, "user-123")
	}
	if user.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "user@example.com")
	}
	if user.FirstName != "John" || user.LastName != "Doe" {
		t.Errorf("name = %q %q, want John Doe", user.FirstName, user.LastName)
	}
}

func TestStore_Issue_CookieAttributes(t *testing.T) {
	store := NewStore(Config{
		Secret:       "secret",
		MaxAge:       604800,
		CookieSecure: true,
	})
	w := httptest.NewRecorder()

	if err := store.Issue(w, testUser()); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("name = %q, want %q", c.Name, CookieName)
	}
	if !c.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if !c.Secure {
		t.Error("session cookie should be Secure when configured")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("samesite = %v, want Lax", c.SameSite)
	}
	if c.MaxAge != 604800 {
		t.Errorf("max-age = %d, want %d", c.MaxAge, 604800)
	}
}

func TestStore_Read_NoCookie_ReturnsErrNoSession(t *testing.T) {
	store := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := store.Read(r)
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestStore_Read_TamperedToken_ReturnsErrInvalidSession(t *testing.T) {
	store := newTestStore()
	w := httptest.NewRecorder()
	if err := store.Issue(w, testUser()); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	c := w.Result().Cookies()[0]
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: c.Value + "x"})

	_, err := store.Read(r)
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestStore_Read_WrongSecret_ReturnsErrInvalidSession(t *testing.T) {
	issuer := NewStore(Config{Secret: "secret-a", MaxAge: 3600})
	verifier := NewStore(Config{Secret: "secret-b", MaxAge: 3600})

	w := httptest.NewRecorder()
	if err := issuer.Issue(w, testUser()); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err := verifier.Read(requestWithCookies(t, w))
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestStore_Read_ExpiredToken_ReturnsErrInvalidSession(t *testing.T) {
	store := newTestStore()

	// 期限切れトークンを直接生成する
	now := time.Now().UTC()
	claims := Claims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-session-secret-32bytes-long!"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: signed})

	_, readErr := store.Read(r)
	if !errors.Is(readErr, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", readErr)
	}
}

func TestStore_Clear_ExpiresCookie(t *testing.T) {
	store := newTestStore()
	w := httptest.NewRecorder()

	store.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != "" {
		t.Errorf("value = %q, want empty", c.Value)
	}
	if c.MaxAge != -1 {
		t.Errorf("max-age = %d, want -1", c.MaxAge)
	}
}

func TestStore_NeedsRefresh_SlidingTTL(t *testing.T) {
	store := newTestStore()

	fresh := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(6 * 24 * time.Hour)),
		},
	}
	if store.NeedsRefresh(fresh) {
		t.Error("fresh session should not need refresh")
	}

	aging := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * 24 * time.Hour)),
		},
	}
	if !store.NeedsRefresh(aging) {
		t.Error("session past half its lifetime should need refresh")
	}
}
