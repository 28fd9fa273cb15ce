// Package auth は認証ゲートウェイとその実装バリアントを提供する。
//
// ルートハンドラーはGatewayインターフェースのみに依存し、モックセッション認証と
// 外部IDプロバイダーへの委譲認証のどちらが有効かを意識しない。
// バリアントは起動時に設定（AUTH_MODE）で選択される。
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
)

// ErrNotConfigured はホスト型IDプロバイダーの資格情報が未設定であることを示す。
// 呼び出し側はこのエラーを501として扱い、UIはログイン機能を無効化して
// ページ全体の描画を失敗させずに劣化動作する。
var ErrNotConfigured = errors.New("auth: identity provider not configured")

// Gateway は認証に関する全操作のインターフェース。
type Gateway interface {
	// GetUser はリクエストから認証済みユーザーを復元する。
	// 未認証（セッションなし・期限切れ・署名不正）は正常な状態であり
	// (nil, nil)を返す。復号失敗はログに記録した上で匿名として扱う。
	GetUser(r *http.Request) (*model.User, error)

	// SignInURL は外部IDプロバイダーのホスト型サインインURLを生成する。
	// プロバイダーが未設定の場合はErrNotConfiguredを返す。
	SignInURL(state string) (string, error)

	// HandleCallback はプロバイダーコールバックの認可コードを交換し、
	// セッションCookieを発行してユーザーを返す。
	HandleCallback(ctx context.Context, w http.ResponseWriter, code string) (*model.User, error)

	// LoginWithCredentials は資格情報によるログインを処理する。
	// バリデーション失敗時はセッションを発行せずAPIErrorを返す。
	LoginWithCredentials(w http.ResponseWriter, email, password string) (*model.User, *model.APIError)

	// Logout はセッションCookieを失効させる。
	// アクティブなセッションがない場合でも成功する（冪等）。
	Logout(w http.ResponseWriter)

	// Configured はホスト型サインインが利用可能かを返す。
	// UIのログイン機能の有効・無効の判定に使用する。
	Configured() bool
}
