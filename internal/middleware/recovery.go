package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/craftdeck/internal/response"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 統一フォーマットの500レスポンスを返すミドルウェアを生成する。
// 外部依存の失敗はハンドラー境界で処理されるのが原則であり、
// ここに到達するのは取りこぼしたバグのみ。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					response.WriteInternalServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
