package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/auth"
	"github.com/hitoshi/craftdeck/internal/middleware"
	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/profile"
	"github.com/hitoshi/craftdeck/internal/response"
	"github.com/hitoshi/craftdeck/internal/theme"
	"github.com/hitoshi/craftdeck/internal/view"
)

// PageHandler はサーバーレンダリングされるページのHTTPハンドラー。
type PageHandler struct {
	view      *view.Renderer
	gateway   auth.Gateway
	creatives CreativesLister
	validator *profile.Validator
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(renderer *view.Renderer, gateway auth.Gateway, creatives CreativesLister, validator *profile.Validator) *PageHandler {
	return &PageHandler{
		view:      renderer,
		gateway:   gateway,
		creatives: creatives,
		validator: validator,
	}
}

// baseData は全ページ共通のテンプレートデータを組み立てる。
func (h *PageHandler) baseData(r *http.Request, title string) view.BaseData {
	user, _ := middleware.UserFromContext(r.Context())
	return view.BaseData{
		Title:     title,
		Theme:     theme.Resolve(r),
		Themes:    model.Themes,
		User:      user,
		CSRFToken: middleware.TokenFromRequest(r),
	}
}

// Landing は公開ランディングページを表示する。
// 有効なセッションを持つ訪問者はダッシュボードへ送る。
// GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		response.Redirect(w, r, "/home")
		return
	}

	h.view.Landing(w, http.StatusOK, view.LandingData{
		BaseData:       h.baseData(r, "ホーム"),
		AuthConfigured: h.gateway.Configured(),
		SignInURL:      "/auth/login",
	})
}

// Home は認証済みダッシュボードを表示する。
// クリエイティブ一覧の取得失敗はページ全体を壊さず、通知付きの
// 縮退表示にフォールバックする。
// GET /home
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := view.HomeData{BaseData: h.baseData(r, "ダッシュボード")}

	creatives, err := h.creatives.List(r.Context())
	if err != nil {
		slog.Error("failed to load creatives for dashboard",
			slog.String("dependency", "creatives"),
			slog.String("error", err.Error()),
		)
		data.Degraded = true
	} else {
		data.Creatives = creatives
	}

	h.view.Home(w, http.StatusOK, data)
}

// ProfileForm はプロフィール編集フォームを表示する。
// GET /profile
func (h *PageHandler) ProfileForm(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	h.view.Profile(w, http.StatusOK, view.ProfileData{
		BaseData:    h.baseData(r, "プロフィール"),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Phone:       user.Phone,
		FieldErrors: map[string]string{},
	})
}

// ProfileSubmit はプロフィール編集フォームの送信を処理する。
// 検証エラーはフィールド単位でフォームに再表示する。検証を通過した
// 内容の永続化は外部コラボレーターの責務であり、ここでは確認表示のみ行う。
// POST /profile
func (h *PageHandler) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.WriteError(w, http.StatusBadRequest, model.NewInvalidFieldError("form", "フォーム"))
		return
	}

	input := profile.Input{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
	}

	validated, fieldErrs := h.validator.Validate(input)

	data := view.ProfileData{
		BaseData:    h.baseData(r, "プロフィール"),
		FirstName:   validated.FirstName,
		LastName:    validated.LastName,
		Email:       validated.Email,
		Phone:       validated.Phone,
		FieldErrors: map[string]string{},
	}

	if len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			data.FieldErrors[fe.Field] = fe.Message
		}
		h.view.Profile(w, http.StatusBadRequest, data)
		return
	}

	data.Saved = true
	h.view.Profile(w, http.StatusOK, data)
}
