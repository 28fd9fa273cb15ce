// Package model はドメインモデルを定義する。
package model

// User は認証済みユーザーを表す。
// 外部IDプロバイダーまたはモックログインから生成され、
// リクエストごとにセッショントークンから復元される。
// このシステム側で永続化・更新されることはない。
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// FullName は表示用のフルネームを返す。
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
