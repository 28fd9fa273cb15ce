package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/session"
)

// DelegatedIdentityAuth は外部IDプロバイダーへの委譲認証を行うGateway実装。
// 認証そのものはプロバイダーのホスト型サインインが担い、このゲートウェイは
// コールバックのコード交換とセッションCookieの発行のみを行う。
type DelegatedIdentityAuth struct {
	provider IdentityProvider
	sessions *session.Store
}

// NewDelegatedIdentityAuth はDelegatedIdentityAuthを生成する。
// providerがnilの場合は未設定として扱い、ホスト型サインインの操作は
// ErrNotConfiguredを返す。
func NewDelegatedIdentityAuth(provider IdentityProvider, sessions *session.Store) *DelegatedIdentityAuth {
	return &DelegatedIdentityAuth{
		provider: provider,
		sessions: sessions,
	}
}

// GetUser はセッションCookieからユーザーを復元する。
// セッションの欠如・期限切れ・署名不正はいずれも匿名として(nil, nil)を返す。
// 署名不正はログに残す（改竄または秘密鍵のローテーション漏れの兆候）。
func (g *DelegatedIdentityAuth) GetUser(r *http.Request) (*model.User, error) {
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

// SignInURL はプロバイダーのホスト型サインインURLを生成する。
func (g *DelegatedIdentityAuth) SignInURL(state string) (string, error) {
	if g.provider == nil {
		return "", ErrNotConfigured
	}
	return g.provider.SignInURL(state), nil
}

// HandleCallback は認可コードをプロバイダーで交換し、セッションを発行する。
func (g *DelegatedIdentityAuth) HandleCallback(ctx context.Context, w http.ResponseWriter, code string) (*model.User, error) {
	if g.provider == nil {
		return nil, ErrNotConfigured
	}

	pu, err := g.provider.Authenticate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with identity provider: %w", err)
	}

	user := &model.User{
		ID:        pu.ID,
		Email:     pu.Email,
		FirstName: pu.FirstName,
		LastName:  pu.LastName,
		AvatarURL: pu.AvatarURL,
	}

	if err := g.sessions.Issue(w, user); err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	slog.Info("user signed in via identity provider",
		slog.String("user_id", user.ID),
	)
	return user, nil
}

// LoginWithCredentials は委譲認証モードでは使用できない。
// 資格情報はプロバイダーのホスト型サインインでのみ検証される。
func (g *DelegatedIdentityAuth) LoginWithCredentials(w http.ResponseWriter, email, password string) (*model.User, *model.APIError) {
	return nil, model.NewAuthNotConfiguredError()
}

// Logout はセッションCookieを失効させる。冪等。
func (g *DelegatedIdentityAuth) Logout(w http.ResponseWriter) {
	g.sessions.Clear(w)
}

// Configured はプロバイダーの資格情報が設定済みかを返す。
func (g *DelegatedIdentityAuth) Configured() bool {
	return g.provider != nil
}

// compile-time interface check
var _ Gateway = (*DelegatedIdentityAuth)(nil)
