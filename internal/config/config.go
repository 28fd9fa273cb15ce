// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AuthMode は認証ゲートウェイの実装を選択する起動時設定。
type AuthMode string

const (
	// AuthModeMock はモックセッション認証（非空の資格情報を受理）を示す。
	AuthModeMock AuthMode = "mock"
	// AuthModeAuthKit はホスト型IDプロバイダーへの委譲認証を示す。
	AuthModeAuthKit AuthMode = "authkit"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Auth
	AuthMode AuthMode

	// AuthKit (ホスト型IDプロバイダー)
	AuthKitClientID     string
	AuthKitAPIKey       string
	AuthKitRedirectURI  string
	AuthKitCookieSecret string

	// Session
	SessionSecret string
	SessionMaxAge int

	// Upstream
	CreativesAPIURL string
	UpstreamTimeout time.Duration

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（開発用、既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合は変数名を列挙したエラーを返し、プロセスは起動してはならない。
// AuthKit関連の変数はAUTH_MODE=authkitの場合のみ必須となる。
// mockモードで未設定の場合、ホスト型サインインのルートは501で応答し、UIは機能を無効化して劣化動作する。
func Load() (*Config, error) {
	// .envは存在しない環境が普通なのでエラーは無視する
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	cfg.CreativesAPIURL = os.Getenv("CREATIVES_API_URL")
	if cfg.CreativesAPIURL == "" {
		missing = append(missing, "CREATIVES_API_URL")
	}

	mode := AuthMode(getEnvString("AUTH_MODE", string(AuthModeMock)))
	if mode != AuthModeMock && mode != AuthModeAuthKit {
		return nil, fmt.Errorf("invalid AUTH_MODE: %q (want %q or %q)", mode, AuthModeMock, AuthModeAuthKit)
	}
	cfg.AuthMode = mode

	cfg.AuthKitClientID = os.Getenv("AUTHKIT_CLIENT_ID")
	cfg.AuthKitAPIKey = os.Getenv("AUTHKIT_API_KEY")
	cfg.AuthKitRedirectURI = os.Getenv("AUTHKIT_REDIRECT_URI")
	cfg.AuthKitCookieSecret = os.Getenv("AUTHKIT_COOKIE_SECRET")

	// 委譲認証モードではIDプロバイダーの資格情報が欠けたまま起動してはならない
	if mode == AuthModeAuthKit {
		if cfg.AuthKitClientID == "" {
			missing = append(missing, "AUTHKIT_CLIENT_ID")
		}
		if cfg.AuthKitAPIKey == "" {
			missing = append(missing, "AUTHKIT_API_KEY")
		}
		if cfg.AuthKitRedirectURI == "" {
			missing = append(missing, "AUTHKIT_REDIRECT_URI")
		}
		if cfg.AuthKitCookieSecret == "" {
			missing = append(missing, "AUTHKIT_COOKIE_SECRET")
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 604800) // 7日
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// AuthKitConfigured はホスト型IDプロバイダーの資格情報が揃っているかを返す。
func (c *Config) AuthKitConfigured() bool {
	return c.AuthKitClientID != "" && c.AuthKitAPIKey != "" && c.AuthKitRedirectURI != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
