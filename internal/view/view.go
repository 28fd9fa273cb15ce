// Package view は埋め込みテンプレートによるサーバーサイドHTMLレンダリングを提供する。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pages はレイアウトと組み合わせてレンダリングするページテンプレートの一覧。
var pages = []string{"landing", "home", "profile"}

// BaseData は全ページ共通のテンプレートデータ。
type BaseData struct {
	Title     string
	Theme     model.Theme
	Themes    []model.Theme
	User      *model.User
	CSRFToken string
}

// LandingData はランディングページのテンプレートデータ。
type LandingData struct {
	BaseData
	AuthConfigured bool
	SignInURL      string
	LoginError     *model.APIError
}

// HomeData はダッシュボードページのテンプレートデータ。
type HomeData struct {
	BaseData
	Creatives []model.Creative
	Degraded  bool
}

// ProfileData はプロフィール編集ページのテンプレートデータ。
type ProfileData struct {
	BaseData
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	FieldErrors map[string]string
	Saved       bool
}

// Renderer は埋め込みテンプレートをレンダリングする。
// テンプレートは起動時に一度パースされ、以降読み取り専用。
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer はテンプレートをパースしてRendererを生成する。
// パース失敗は設定不備であり、起動時に検出されるべきエラーとして返す。
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS,
			"templates/layout.html",
			fmt.Sprintf("templates/%s.html", page),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Landing はランディングページをレンダリングする。
func (r *Renderer) Landing(w http.ResponseWriter, status int, data LandingData) {
	r.render(w, status, "landing", data)
}

// Home はダッシュボードページをレンダリングする。
func (r *Renderer) Home(w http.ResponseWriter, status int, data HomeData) {
	r.render(w, status, "home", data)
}

// Profile はプロフィール編集ページをレンダリングする。
func (r *Renderer) Profile(w http.ResponseWriter, status int, data ProfileData) {
	r.render(w, status, "profile", data)
}

// render はレイアウト込みでページを書き出す。
// テンプレート実行エラーはこの時点でヘッダーが送信済みのため、ログのみ残す。
func (r *Renderer) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := r.templates[page]
	if !ok {
		slog.Error("unknown template page", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
