package model

// Theme はUIテーマの識別子を表す。
// クライアント側に平文Cookieとして保存される。
type Theme string

const (
	ThemeLight    Theme = "light"
	ThemeDark     Theme = "dark"
	ThemeCupcake  Theme = "cupcake"
	ThemeBusiness Theme = "business"
	ThemeNight    Theme = "night"
	ThemeDracula  Theme = "dracula"
	ThemeWinter   Theme = "winter"
)

// DefaultTheme はテーマCookieが未設定または不正な場合のフォールバック。
const DefaultTheme = ThemeLight

// Themes は選択可能な全テーマの一覧。
var Themes = []Theme{
	ThemeLight,
	ThemeDark,
	ThemeCupcake,
	ThemeBusiness,
	ThemeNight,
	ThemeDracula,
	ThemeWinter,
}

// IsValid はテーマが定義済みの集合に含まれるかを判定する。
// Cookieの値は任意の文字列を取り得るため、読み取り側・書き込み側の
// 両方でこの検証を通す必要がある。
func (t Theme) IsValid() bool {
	for _, v := range Themes {
		if t == v {
			return true
		}
	}
	return false
}
