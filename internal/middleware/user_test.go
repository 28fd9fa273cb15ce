package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/session"
)

func newTestStore() *session.Store {
	return session.NewStore(session.Config{
		Secret: "test-session-secret-32bytes-long!",
		MaxAge: 604800,
	})
}

func newTestGateway(store *session.Store) auth.Gateway {
	return auth.NewMockSessionAuth(store)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestUserResolver_NoSession_PassesThroughAnonymous(t *testing.T) {
	store := newTestStore()
	mw := NewUserResolver(newTestGateway(store), store, nil)

	var sawUser bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = UserFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if sawUser {
		t.Error("anonymous request should not carry a user in context")
	}
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 (anonymous is not an error)", w.Result().StatusCode)
	}
}

func TestUserResolver_ValidSession_InjectsUser(t *testing.T) {
	store := newTestStore()
	mw := NewUserResolver(newTestGateway(store), store, nil)

	issueW := httptest.NewRecorder()
	if err := store.Issue(issueW, &model.User{ID: "user-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var got *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range issueW.Result().Cookies() {
		r.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", got.ID, "user-1")
	}
}

func TestUserResolver_AgingSession_ReissuesCookie(t *testing.T) {
	store := newTestStore()
	mw := NewUserResolver(newTestGateway(store), store, nil)

	// 残り有効期間が半分を切ったセッショントークンを直接生成する
	now := time.Now().UTC()
	claims := session.Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-6 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-session-secret-32bytes-long!"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: signed})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	var reissued bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			reissued = true
		}
	}
	if !reissued {
		t.Error("expected sliding-TTL session reissue for aging session")
	}
}

type countingSessionMetrics struct {
	refreshes int
}

func (m *countingSessionMetrics) RecordSessionRefresh() {
	m.refreshes++
}

func TestUserResolver_AgingSession_RecordsRefreshMetric(t *testing.T) {
	store := newTestStore()
	recorder := &countingSessionMetrics{}
	mw := NewUserResolver(newTestGateway(store), store, recorder)

	now := time.Now().UTC()
	claims := session.Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-6 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(1 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-session-secret-32bytes-long!"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: signed})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	var reissued bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			reissued = true
		}
	}
	if !reissued {
		t.Fatal("expected sliding-TTL session reissue for aging session")
	}
	if recorder.refreshes != 1 {
		t.Errorf("refresh recorded %d times, want 1", recorder.refreshes)
	}
}

func TestUserResolver_FreshSession_DoesNotRecordRefresh(t *testing.T) {
	store := newTestStore()
	recorder := &countingSessionMetrics{}
	mw := NewUserResolver(newTestGateway(store), store, recorder)

	issueW := httptest.NewRecorder()
	if err := store.Issue(issueW, &model.User{ID: "user-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	for _, c := range issueW.Result().Cookies() {
		r.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if recorder.refreshes != 0 {
		t.Errorf("fresh session recorded %d refreshes, want 0", recorder.refreshes)
	}
}

func TestPageGuard_Anonymous_RedirectsToLanding(t *testing.T) {
	var called bool
	handler := NewPageGuard()(okHandler(&called))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
	if called {
		t.Error("protected handler should not run for anonymous request")
	}
}

func TestPageGuard_Authenticated_PassesThrough(t *testing.T) {
	var called bool
	handler := NewPageGuard()(okHandler(&called))

	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	r = r.WithContext(ContextWithUser(r.Context(), &model.User{ID: "user-1"}))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !called {
		t.Error("authenticated request should reach the handler")
	}
}

func TestAPIGuard_Anonymous_Returns401JSON(t *testing.T) {
	var called bool
	handler := NewAPIGuard()(okHandler(&called))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/creatives", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q, want JSON error body", ct)
	}
	if called {
		t.Error("protected handler should not run for anonymous request")
	}
}
