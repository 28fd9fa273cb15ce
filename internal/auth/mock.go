package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/session"
)

// MockSessionAuth は開発・検証用のモック認証を行うGateway実装。
// 資格情報の検証は「両フィールドが非空であること」のみで、どんな値でも
// ログインに成功する。AUTH_MODE=mockでのみ選択され、本番の委譲認証モードでは
// 一切使用されない。
type MockSessionAuth struct {
	sessions *session.Store
}

// NewMockSessionAuth はMockSessionAuthを生成する。
func NewMockSessionAuth(sessions *session.Store) *MockSessionAuth {
	return &MockSessionAuth{sessions: sessions}
}

// GetUser はセッションCookieからユーザーを復元する。
// 未認証は(nil, nil)を返す。
func (g *MockSessionAuth) GetUser(r *http.Request) (*model.User, error) {
	claims, err := g.sessions.Read(r)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			slog.Warn("session verification failed, treating as anonymous",
				slog.String("path", r.URL.Path),
			)
		}
		return nil, nil
	}
	return claims.User(), nil
}

// SignInURL はモックモードでは提供されない。
func (g *MockSessionAuth) SignInURL(state string) (string, error) {
	return "", ErrNotConfigured
}

// HandleCallback はモックモードでは提供されない。
func (g *MockSessionAuth) HandleCallback(ctx context.Context, w http.ResponseWriter, code string) (*model.User, error) {
	return nil, ErrNotConfigured
}

// LoginWithCredentials はモックログインを処理する。
// メールアドレス・パスワードのいずれかが空の場合はバリデーションエラーを返し、
// セッションは発行しない。両方が非空であればモックユーザーを生成し
// セッションを発行する。
func (g *MockSessionAuth) LoginWithCredentials(w http.ResponseWriter, email, password string) (*model.User, *model.APIError) {
	if email == "" {
		return nil, model.NewMissingFieldError("email", "メールアドレス")
	}
	if password == "" {
		return nil, model.NewMissingFieldError("password", "パスワード")
	}

	user := &model.User{
		ID:        "user-" + uuid.New().String(),
		Email:     email,
		FirstName: "John",
		LastName:  "Doe",
		AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=John",
	}

	if err := g.sessions.Issue(w, user); err != nil {
		slog.Error("failed to issue mock session", slog.String("error", err.Error()))
		return nil, &model.APIError{
			Code:     "SESSION_ISSUE_FAILED",
			Message:  "セッションの発行に失敗しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		}
	}

	slog.Info("mock user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", fmt.Sprintf("%.3s***", email)),
	)
	return user, nil
}

// Logout はセッションCookieを失効させる。冪等。
func (g *MockSessionAuth) Logout(w http.ResponseWriter) {
	g.sessions.Clear(w)
}

// Configured はモックモードでは常にfalseを返す。
// ホスト型サインインのUIは無効化される。
func (g *MockSessionAuth) Configured() bool {
	return false
}

// compile-time interface check
var _ Gateway = (*MockSessionAuth)(nil)
