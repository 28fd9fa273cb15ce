// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/middleware"
	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/response"
	"github.com/hitoshi/craftdeck/internal/theme"
	"github.com/hitoshi/craftdeck/internal/view"
)

// oauthStateCookie はホスト型サインインのstateパラメータを保持するCookie名。
const oauthStateCookie = "oauth_state"

// LoginMetrics はログイン結果の記録先。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
// StateSecretが設定されている場合、stateクッキーはHMAC-SHA256で署名される。
type AuthHandlerConfig struct {
	AuthMode     string
	CookieSecure bool
	CookieDomain string
	StateSecret  string
}

// signState はstate値に署名を付加する。secretが空なら素通し。
func signState(secret, state string) string {
	if secret == "" {
		return state
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(state))
	return state + "." + hex.EncodeToString(mac.Sum(nil))
}

// verifyState はクッキーの署名付き値とクエリのstateを照合する。
func verifyState(secret, cookieValue, state string) bool {
	if state == "" {
		return false
	}
	return hmac.Equal([]byte(cookieValue), []byte(signState(secret, state)))
}

// AuthHandler は認証関連のHTTPハンドラー。
// 実際の認証はGatewayに委譲し、ここではHTTPフローのみを扱う。
type AuthHandler struct {
	gateway auth.Gateway
	view    *view.Renderer
	metrics LoginMetrics
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil可。
func NewAuthHandler(gateway auth.Gateway, renderer *view.Renderer, metrics LoginMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
		view:    renderer,
		metrics: metrics,
		config:  config,
	}
}

// Login はホスト型サインインフローを開始する。
// GET /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	url, err := h.gateway.SignInURL(state)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			response.WriteError(w, http.StatusNotImplemented, model.NewAuthNotConfiguredError())
			return
		}
		slog.Error("failed to build sign-in URL", slog.String("error", err.Error()))
		response.WriteInternalServerError(w)
		return
	}

	// 署名付きstateをCookieに保存し、コールバックで照合する（CSRF対策）
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    signState(h.config.StateSecret, state),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.Redirect(w, r, url)
}

// Callback はホスト型サインインのコールバックを処理する。
// GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || !verifyState(h.config.StateSecret, stateCookie.Value, state) {
		slog.Warn("sign-in state mismatch", slog.String("query_state", state))
		response.WriteError(w, http.StatusBadRequest, model.NewInvalidStateError())
		return
	}

	// stateクッキーは一度きり
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		response.WriteError(w, http.StatusBadRequest, model.NewMissingFieldError("code", "認可コード"))
		return
	}

	user, err := h.gateway.HandleCallback(r.Context(), w, code)
	if err != nil {
		slog.Error("sign-in callback failed", slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.RecordLoginFailure("provider")
		}
		response.WriteError(w, http.StatusBadGateway, model.NewAuthFailedError())
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}
	slog.Info("user signed in", slog.String("user_id", user.ID))
	response.Redirect(w, r, "/home")
}

// MockLogin はモック認証のログインフォーム送信を処理する。
// POST /api/auth/login
func (h *AuthHandler) MockLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.WriteError(w, http.StatusBadRequest, model.NewInvalidFieldError("form", "フォーム"))
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, apiErr := h.gateway.LoginWithCredentials(w, email, password)
	if apiErr != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure("validation")
		}
		if wantsHTML(r) {
			h.view.Landing(w, http.StatusBadRequest, view.LandingData{
				BaseData: view.BaseData{
					Title:     "ホーム",
					Theme:     theme.Resolve(r),
					Themes:    model.Themes,
					CSRFToken: middleware.TokenFromRequest(r),
				},
				AuthConfigured: h.gateway.Configured(),
				SignInURL:      "/auth/login",
				LoginError:     apiErr,
			})
			return
		}
		response.WriteError(w, http.StatusBadRequest, apiErr)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}
	response.Redirect(w, r, "/home")
}

// Logout はセッションを破棄してランディングへ戻す。冪等。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gateway.Logout(w)
	response.Redirect(w, r, "/")
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	response.WriteJSON(w, http.StatusOK, user)
}

// Info は認証プロバイダの設定状態を返す診断エンドポイント。
// 資格情報そのものは一切含まない。
// GET /auth/info
func (h *AuthHandler) Info(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"mode":       h.config.AuthMode,
		"configured": h.gateway.Configured(),
	})
}

// wantsHTML はブラウザのフォーム送信かどうかをAcceptヘッダーで判定する。
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
