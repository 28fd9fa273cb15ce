// Package theme はUIテーマ設定のCookieによる読み書きを提供する。
// テーマは機密情報ではないため平文・非HttpOnlyのCookieで保持する。
// 署名されないためCookieの値は任意の文字列を取り得る。読み取り側は
// 定義済み集合への所属を検証し、不正な値はデフォルトテーマに丸める。
package theme

import (
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
)

const (
	// CookieName はテーマ設定Cookieの名前。
	CookieName = "theme"

	// cookieMaxAge はテーマCookieの有効期間（1年）。
	cookieMaxAge = 31536000
)

// FromRequest はリクエストのCookieヘッダーからテーマの生の値を読み取る。
// Cookieが存在しない場合はfalseを返す。集合への所属検証は行わない。
func FromRequest(r *http.Request) (model.Theme, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return model.Theme(cookie.Value), true
}

// Resolve はリクエストから描画に使用するテーマを決定する。
// Cookieが未設定、または定義済み集合に含まれない値の場合はデフォルトテーマを返す。
// 描画パスが任意のCookie値でクラッシュしないことを保証する。
func Resolve(r *http.Request) model.Theme {
	t, ok := FromRequest(r)
	if !ok || !t.IsValid() {
		return model.DefaultTheme
	}
	return t
}

// SetCookie はテーマ設定Cookieをレスポンスに書き込む。
// UIの表示設定であり機密情報ではないためHttpOnly・Secureは付与しない。
func SetCookie(w http.ResponseWriter, t model.Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
