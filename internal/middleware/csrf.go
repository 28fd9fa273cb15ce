package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/response"
)

const (
	// CSRFCookieName はCSRFトークンを保持するCookieの名前。
	// HTMLフォームのhiddenフィールドへの埋め込みとJavaScriptからの
	// 読み取りの両方を想定し、HttpOnlyではない。
	CSRFCookieName = "csrf_token"

	// csrfHeaderName はリクエストヘッダーからCSRFトークンを読み取る際のヘッダー名。
	csrfHeaderName = "X-CSRF-Token"

	// csrfFormField はフォームボディからCSRFトークンを読み取る際のフィールド名。
	csrfFormField = "csrf_token"
)

// CSRFConfig はCSRFミドルウェアの設定。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware はCSRFトークンの生成・検証ミドルウェアを返す。
// 安全なメソッド（GET, HEAD, OPTIONS）はトークン検証をスキップし、
// 未設定であればCSRFトークンCookieを設定する。
// 状態変更メソッド（POST等）はCookieのトークンと、ヘッダーまたは
// フォームフィールドで送信されたトークンの一致を必須とする。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				ensureCSRFCookie(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			cookieToken, err := r.Cookie(CSRFCookieName)
			if err != nil || cookieToken.Value == "" {
				slog.Warn("CSRF validation failed: missing cookie token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFError(w)
				return
			}

			submitted := r.Header.Get(csrfHeaderName)
			if submitted == "" {
				// HTMLフォームからの送信はhiddenフィールドでトークンを運ぶ
				submitted = r.PostFormValue(csrfFormField)
			}
			if submitted == "" {
				slog.Warn("CSRF validation failed: missing submitted token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFError(w)
				return
			}

			if subtle.ConstantTimeCompare([]byte(cookieToken.Value), []byte(submitted)) != 1 {
				slog.Warn("CSRF validation failed: token mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeCSRFError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest は現在のリクエストのCSRFトークンを返す。
// ページハンドラーがフォームのhiddenフィールドに埋め込むために使用する。
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func writeCSRFError(w http.ResponseWriter) {
	response.WriteError(w, http.StatusForbidden, &model.APIError{
		Code:     "CSRF_VALIDATION_FAILED",
		Message:  "リクエストの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	})
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// ensureCSRFCookie はCSRFトークンCookieが未設定の場合に設定する。
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, config CSRFConfig) {
	_, err := r.Cookie(CSRFCookieName)
	if err == nil {
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   86400,
		HttpOnly: false,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateCSRFToken は暗号的に安全なCSRFトークンを生成する。
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
