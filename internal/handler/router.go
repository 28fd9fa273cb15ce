package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/metrics"
	"github.com/hitoshi/craftdeck/internal/middleware"
	"github.com/hitoshi/craftdeck/internal/profile"
	"github.com/hitoshi/craftdeck/internal/response"
	"github.com/hitoshi/craftdeck/internal/session"
	"github.com/hitoshi/craftdeck/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger   *slog.Logger
	Gateway  auth.Gateway
	Sessions *session.Store
	Renderer *view.Renderer

	Creatives CreativesLister
	Validator *profile.Validator

	RateLimiter *middleware.RateLimiter
	Metrics     metrics.MetricsCollector
	Gatherer    prometheus.Gatherer

	AuthMode          string
	CORSAllowedOrigin string
	CookieSecure      bool
	CookieDomain      string
	StateSecret       string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → CSRF → UserResolver
//
// 認可の判断はルートグループごとのゲートが行う。ページは未認証を
// ランディングへリダイレクトし、APIは401 JSONで応答する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.CORSAllowedOrigin != "" {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCSRFMiddleware(middleware.CSRFConfig{
		CookieSecure: deps.CookieSecure,
		CookieDomain: deps.CookieDomain,
	}))
	r.Use(middleware.NewUserResolver(deps.Gateway, deps.Sessions, deps.Metrics))

	authHandler := NewAuthHandler(deps.Gateway, deps.Renderer, deps.Metrics, AuthHandlerConfig{
		AuthMode:     deps.AuthMode,
		CookieSecure: deps.CookieSecure,
		CookieDomain: deps.CookieDomain,
		StateSecret:  deps.StateSecret,
	})
	themeHandler := NewThemeHandler()
	creativesHandler := NewCreativesHandler(deps.Creatives)
	pageHandler := NewPageHandler(deps.Renderer, deps.Gateway, deps.Creatives, deps.Validator)

	// --- 公開ルート ---

	r.Get("/", pageHandler.Landing)
	r.Get("/healthz", handleHealthz)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Get("/auth/info", authHandler.Info)

	// テーマは匿名訪問者も切り替えられる（CSRF保護のみ）
	r.Post("/api/theme", themeHandler.Update)

	// ログアウトは冪等なので認証ゲートを通さない
	r.Post("/api/auth/logout", authHandler.Logout)

	// ログイン試行はIP単位の専用レート制限を通す
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.LoginMiddleware())
		r.Get("/auth/login", authHandler.Login)
		r.Get("/auth/callback", authHandler.Callback)
		r.Post("/api/auth/login", authHandler.MockLogin)
	})

	// --- 保護ページ（未認証はランディングへリダイレクト） ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewPageGuard())
		r.Get("/home", pageHandler.Home)
		r.Get("/profile", pageHandler.ProfileForm)
		r.Post("/profile", pageHandler.ProfileSubmit)
	})

	// --- 保護API（未認証は401 JSON、ユーザー単位のレート制限） ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAPIGuard())
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Get("/api/auth/me", authHandler.Me)
		r.Get("/api/creatives", creativesHandler.List)
	})

	return r
}

// handleHealthz は死活監視用エンドポイント。
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
