package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAuthorizeURL    = "https://api.workos.com/user_management/authorize"
	defaultAuthenticateURL = "https://api.workos.com/user_management/authenticate"
)

// AuthKitConfig はホスト型IDプロバイダーの設定。
type AuthKitConfig struct {
	ClientID    string
	APIKey      string
	RedirectURI string

	// テスト用にオーバーライド可能なURL
	AuthorizeURL    string
	AuthenticateURL string

	// HTTPClientが未指定の場合はタイムアウト付きのデフォルトクライアントを使用する。
	HTTPClient *http.Client
}

// AuthKitClient はホスト型IDプロバイダーとのHTTP通信を行う。
type AuthKitClient struct {
	config AuthKitConfig
}

// NewAuthKitClient はAuthKitClientを生成する。
func NewAuthKitClient(config AuthKitConfig) *AuthKitClient {
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = defaultAuthorizeURL
	}
	if config.AuthenticateURL == "" {
		config.AuthenticateURL = defaultAuthenticateURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AuthKitClient{config: config}
}

// SignInURL はホスト型サインインページの認可URLを生成する。
func (c *AuthKitClient) SignInURL(state string) string {
	params := url.Values{
		"client_id":     {c.config.ClientID},
		"redirect_uri":  {c.config.RedirectURI},
		"response_type": {"code"},
		"provider":      {"authkit"},
		"state":         {state},
	}
	return c.config.AuthorizeURL + "?" + params.Encode()
}

// authenticateRequest はプロバイダーの認証エンドポイントへのリクエストボディ。
type authenticateRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
}

// authenticateResponse はプロバイダーの認証エンドポイントのレスポンス。
type authenticateResponse struct {
	User struct {
		ID                string `json:"id"`
		Email             string `json:"email"`
		FirstName         string `json:"first_name"`
		LastName          string `json:"last_name"`
		ProfilePictureURL string `json:"profile_picture_url"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

// Authenticate は認可コードをプロバイダーで交換し、ユーザー情報を取得する。
func (c *AuthKitClient) Authenticate(ctx context.Context, code string) (*ProviderUser, error) {
	reqBody, err := json.Marshal(authenticateRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.APIKey,
		GrantType:    "authorization_code",
		Code:         code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode authenticate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.AuthenticateURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read authenticate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var authResp authenticateResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return nil, fmt.Errorf("failed to parse authenticate response: %w", err)
	}

	if authResp.User.ID == "" {
		return nil, fmt.Errorf("empty user id in authenticate response")
	}

	return &ProviderUser{
		ID:        authResp.User.ID,
		Email:     authResp.User.Email,
		FirstName: authResp.User.FirstName,
		LastName:  authResp.User.LastName,
		AvatarURL: authResp.User.ProfilePictureURL,
	}, nil
}

// ProviderUser は外部IDプロバイダーから取得したユーザー情報を表す。
type ProviderUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// IdentityProvider は外部IDプロバイダーのインターフェース。
// 将来的に複数プロバイダーに対応するための抽象化。
type IdentityProvider interface {
	// SignInURL はホスト型サインインの認可URLを生成する。
	SignInURL(state string) string
	// Authenticate は認可コードを交換し、ユーザー情報を取得する。
	Authenticate(ctx context.Context, code string) (*ProviderUser, error)
}

// compile-time interface check
var _ IdentityProvider = (*AuthKitClient)(nil)
