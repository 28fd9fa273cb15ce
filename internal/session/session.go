// Package session は署名付きCookieによるステートレスなセッション管理を提供する。
// セッションはサーバー側に保存されず、HS256で署名されたトークンを
// __session Cookieとしてクライアントに渡し、リクエストごとに検証・復元する。
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/craftdeck/internal/model"
)

// CookieName はセッションCookieの名前。
const CookieName = "__session"

var (
	// ErrNoSession はセッションCookieが存在しないことを示す。
	// 未認証は正常な状態であり、呼び出し側はエラーではなく匿名として扱う。
	ErrNoSession = errors.New("session: no session cookie")

	// ErrInvalidSession は署名検証の失敗または期限切れを示す。
	// 期限切れは明示的なユーザー操作なしに起こる唯一の遷移であり、
	// 匿名と等価に扱われなければならない。
	ErrInvalidSession = errors.New("session: invalid or expired session")
)

// Claims はセッショントークンに埋め込むユーザー情報。
// サーバー側ストアを持たないため、ユーザーの復元に必要な属性を全て含む。
type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// User はクレームからユーザーを復元する。
func (c *Claims) User() *model.User {
	return &model.User{
		ID:        c.Subject,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		AvatarURL: c.AvatarURL,
	}
}

// Config はセッションストアの設定。
type Config struct {
	Secret       string
	MaxAge       int // 秒
	CookieSecure bool
	CookieDomain string
}

// Store は署名付きセッションCookieの発行・検証・破棄を行う。
// 設定は起動時に与えられ、以降読み取り専用として扱う。
type Store struct {
	config Config
}

// NewStore はStoreを生成する。
func NewStore(config Config) *Store {
	return &Store{config: config}
}

// Issue はユーザーのセッショントークンを署名し、Cookieとしてレスポンスに設定する。
func (s *Store) Issue(w http.ResponseWriter, user *model.User) error {
	now := time.Now().UTC()
	claims := Claims{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.MaxAge) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		MaxAge:   s.config.MaxAge,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read はリクエストのセッションCookieを検証しクレームを返す。
// Cookieが無い場合はErrNoSession、署名不正・期限切れの場合はErrInvalidSessionを返す。
func (s *Store) Read(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Clear はセッションCookieを失効させる。
// セッションが存在しない場合でも成功する（冪等）。
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// NeedsRefresh はスライディングTTLによる再発行が必要かを判定する。
// 残り有効期間が設定値の半分を切ったら再発行する。
func (s *Store) NeedsRefresh(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return false
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	return remaining < time.Duration(s.config.MaxAge)*time.Second/2
}
