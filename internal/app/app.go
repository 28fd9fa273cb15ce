// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/config"
	"github.com/hitoshi/craftdeck/internal/creatives"
	"github.com/hitoshi/craftdeck/internal/handler"
	"github.com/hitoshi/craftdeck/internal/logger"
	"github.com/hitoshi/craftdeck/internal/metrics"
	"github.com/hitoshi/craftdeck/internal/middleware"
	"github.com/hitoshi/craftdeck/internal/profile"
	"github.com/hitoshi/craftdeck/internal/security"
	"github.com/hitoshi/craftdeck/internal/session"
	"github.com/hitoshi/craftdeck/internal/view"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("auth_mode", string(cfg.AuthMode)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はWebサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. セッションストア
	sessions := session.NewStore(session.Config{
		Secret:       cfg.SessionSecret,
		MaxAge:       cfg.SessionMaxAge,
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	})

	// 2. 認証ゲートウェイ（起動モードで実装を選択）
	gateway, err := newGateway(cfg, sessions)
	if err != nil {
		return err
	}

	// 3. SSRFガード付きの上流クライアント
	guard := security.NewUpstreamGuard()
	if err := guard.ValidateBaseURL(cfg.CreativesAPIURL); err != nil {
		return fmt.Errorf("invalid CREATIVES_API_URL: %w", err)
	}

	// 4. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	creativesClient := creatives.NewClient(
		guard.NewSafeClient(cfg.UpstreamTimeout),
		cfg.CreativesAPIURL,
		slog.Default(),
		collector,
	)

	// 5. テンプレートレンダラー
	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// 6. レート制限（req/min -> req/sec に変換）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		LoginRate:       rate.Limit(float64(cfg.RateLimitLogin) / 60.0),
		LoginBurst:      cfg.RateLimitLogin,
		CleanupInterval: 5 * time.Minute,
	})
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:   slog.Default(),
		Gateway:  gateway,
		Sessions: sessions,
		Renderer: renderer,

		Creatives: creativesClient,
		Validator: profile.NewValidator(security.NewFieldSanitizer()),

		RateLimiter: rateLimiter,
		Metrics:     collector,
		Gatherer:    registry,

		AuthMode:          string(cfg.AuthMode),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CookieSecure:      cfg.CookieSecure,
		CookieDomain:      cfg.CookieDomain,
		StateSecret:       cfg.AuthKitCookieSecret,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// newGateway はAUTH_MODEに応じた認証ゲートウェイを構築する。
// mockモードでIDプロバイダーの資格情報が無い場合は劣化動作し、
// ホスト型サインインのルートは501で応答する。
func newGateway(cfg *config.Config, sessions *session.Store) (auth.Gateway, error) {
	switch cfg.AuthMode {
	case config.AuthModeAuthKit:
		provider := auth.NewAuthKitClient(auth.AuthKitConfig{
			ClientID:    cfg.AuthKitClientID,
			APIKey:      cfg.AuthKitAPIKey,
			RedirectURI: cfg.AuthKitRedirectURI,
		})
		return auth.NewDelegatedIdentityAuth(provider, sessions), nil
	case config.AuthModeMock:
		if !cfg.AuthKitConfigured() {
			slog.Warn("identity provider credentials are not set, hosted sign-in is disabled")
		}
		return auth.NewMockSessionAuth(sessions), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", cfg.AuthMode)
	}
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
