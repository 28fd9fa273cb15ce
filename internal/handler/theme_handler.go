package handler

import (
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/response"
	"github.com/hitoshi/craftdeck/internal/theme"
)

// ThemeHandler はテーマ設定のHTTPハンドラー。
type ThemeHandler struct{}

// NewThemeHandler はThemeHandlerを生成する。
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Update はテーマCookieを更新する。
// 未定義のテーマ値は拒否する（書き込み側の検証）。成功時はRefererに
// リダイレクトしてページ再描画で新テーマを反映する。Refererが無い
// 呼び出し（fetch等）にはJSONで応答する。
// POST /api/theme
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	value := r.PostFormValue("theme")
	t := model.Theme(value)
	if !t.IsValid() {
		response.WriteError(w, http.StatusBadRequest, model.NewInvalidThemeError(value))
		return
	}

	theme.SetCookie(w, t)

	if referer := r.Header.Get("Referer"); referer != "" {
		response.Redirect(w, r, referer)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
