// Package response はHTTPレスポンスの統一的な構築を提供する。
// 全ルートハンドラーはJSON・リダイレクト・エラーのレスポンスをこのパッケージ経由で返す。
package response

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
)

// WriteJSON はdataをJSONシリアライズしてレスポンスボディに書き込む。
// 呼び出し側が既にContent-Typeを設定していない限り
// "application/json; charset=utf-8" を設定する。
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Redirect は302でLocationヘッダー付きリダイレクトを書き込む。
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	RedirectWithStatus(w, r, url, http.StatusFound)
}

// RedirectWithStatus は指定ステータスコードでリダイレクトを書き込む。
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, url string, statusCode int) {
	http.Redirect(w, r, url, statusCode)
}

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。バリデーションエラーでは
// UIが対象フォームフィールドを特定できるようfieldを含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Field    string `json:"field,omitempty"`
}

// WriteError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Field:    apiErr.Field,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
