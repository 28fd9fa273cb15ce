package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// バリデーションエラーの場合はFieldに対象フォームフィールドの識別子を持つ。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, upstream, system
	Action   string // ユーザー向け対処方法
	Field    string // バリデーションエラーの対象フィールド（該当する場合のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeInvalidField      = "INVALID_FIELD"
	ErrCodeInvalidTheme      = "INVALID_THEME"
	ErrCodeAuthNotConfigured = "AUTH_NOT_CONFIGURED"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeUpstreamFailed    = "UPSTREAM_FAILED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewMissingFieldError は必須フィールド未入力エラーを生成する。
func NewMissingFieldError(field, label string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("%sは必須です。", label),
		Category: "validation",
		Action:   fmt.Sprintf("%sを入力してください。", label),
		Field:    field,
	}
}

// NewInvalidFieldError はフィールド形式不正エラーを生成する。
func NewInvalidFieldError(field, label string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidField,
		Message:  fmt.Sprintf("%sの形式が正しくありません。", label),
		Category: "validation",
		Action:   fmt.Sprintf("%sの入力内容を確認してください。", label),
		Field:    field,
	}
}

// NewInvalidThemeError は未定義テーマの指定エラーを生成する。
func NewInvalidThemeError(theme string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTheme,
		Message:  fmt.Sprintf("無効なテーマです: %s", theme),
		Category: "validation",
		Action:   "定義済みのテーマから選択してください。",
		Field:    "theme",
	}
}

// NewAuthNotConfiguredError はIDプロバイダー未設定エラーを生成する。
// ホスト型サインインが設定されていない環境では501として返される。
func NewAuthNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthNotConfigured,
		Message:  "外部IDプロバイダーが設定されていません。",
		Category: "system",
		Action:   "管理者に連絡してください。",
	}
}

// NewInvalidStateError はOAuth stateパラメータ不一致エラーを生成する。
func NewInvalidStateError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidState,
		Message:  "認証リクエストの検証に失敗しました。",
		Category: "auth",
		Action:   "ログインを最初からやり直してください。",
	}
}

// NewAuthFailedError は外部IDプロバイダーとの認証失敗エラーを生成する。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "しばらく待ってから再度ログインしてください。",
	}
}

// NewUpstreamFailedError は外部依存サービスの呼び出し失敗エラーを生成する。
func NewUpstreamFailedError(dependency string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  fmt.Sprintf("外部サービス（%s）との通信に失敗しました。", dependency),
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
