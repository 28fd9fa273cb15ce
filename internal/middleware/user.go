// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/response"
	"github.com/hitoshi/craftdeck/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// SessionMetrics はセッション再発行の記録先。
type SessionMetrics interface {
	RecordSessionRefresh()
}

// NewUserResolver はセッションからユーザーを復元してコンテキストに注入する
// ミドルウェアを返す。未認証リクエストはそのまま通過させる（匿名は正常な状態）。
// 認証・未認証の判断と応答は後段のRequireUser系ミドルウェアが行う。
// スライディングTTL: セッションの残り有効期間が半分を切っていたら再発行し、
// metricsに記録する。metricsはnil可。
func NewUserResolver(gateway auth.Gateway, sessions *session.Store, metrics SessionMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gateway.GetUser(r)
			if err != nil {
				// 復元の予期しない失敗は匿名として継続する（ページ全体を壊さない）
				slog.Error("failed to resolve user from session",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			// スライディングTTLによるセッション再発行
			if claims, readErr := sessions.Read(r); readErr == nil && sessions.NeedsRefresh(claims) {
				if issueErr := sessions.Issue(w, user); issueErr != nil {
					slog.Error("failed to refresh session", slog.String("error", issueErr.Error()))
				} else if metrics != nil {
					metrics.RecordSessionRefresh()
				}
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewPageGuard は保護ページ用の認証ゲートを返す。
// 未認証の場合は公開ランディングへリダイレクトする（透過的なナビゲーション）。
func NewPageGuard() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				response.Redirect(w, r, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewAPIGuard は保護APIルート用の認証ゲートを返す。
// 未認証の場合は401の統一エラーフォーマットで応答する。
func NewAPIGuard() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				response.WriteError(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// UserResolverを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
