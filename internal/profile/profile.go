// Package profile はプロフィール編集フォームのバリデーションを提供する。
// プロフィールの永続化は外部コラボレーターの責務であり、このシステムは
// 検証とサニタイズのみを行う。
package profile

import (
	"net/mail"
	"regexp"

	"github.com/hitoshi/craftdeck/internal/model"
	"github.com/hitoshi/craftdeck/internal/security"
)

// Input はプロフィール編集フォームの送信内容。
type Input struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Profile は検証・サニタイズ済みのプロフィール。
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// phonePattern は電話番号の許容形式。数字・ハイフン・空白・先頭の+を許す。
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)

// Validator はプロフィール入力の検証を行う。
type Validator struct {
	sanitizer *security.FieldSanitizer
}

// NewValidator はValidatorを生成する。
func NewValidator(sanitizer *security.FieldSanitizer) *Validator {
	return &Validator{sanitizer: sanitizer}
}

// Validate は入力をサニタイズした上でフィールド単位の検証を行う。
// 違反したルールはフィールド識別子付きのAPIErrorとして全て返され、
// UIは対象フォームフィールドの横にメッセージを表示できる。
// エラーが1件もない場合のみProfileが有効。
func (v *Validator) Validate(in Input) (Profile, []*model.APIError) {
	p := Profile{
		FirstName: v.sanitizer.Sanitize(in.FirstName),
		LastName:  v.sanitizer.Sanitize(in.LastName),
		Email:     v.sanitizer.Sanitize(in.Email),
		Phone:     v.sanitizer.Sanitize(in.Phone),
	}

	var errs []*model.APIError

	if p.FirstName == "" {
		errs = append(errs, model.NewMissingFieldError("firstName", "名"))
	}
	if p.LastName == "" {
		errs = append(errs, model.NewMissingFieldError("lastName", "姓"))
	}

	if p.Email == "" {
		errs = append(errs, model.NewMissingFieldError("email", "メールアドレス"))
	} else if _, err := mail.ParseAddress(p.Email); err != nil {
		errs = append(errs, model.NewInvalidFieldError("email", "メールアドレス"))
	}

	// 電話番号は任意項目。入力がある場合のみ形式を検証する。
	if p.Phone != "" && !phonePattern.MatchString(p.Phone) {
		errs = append(errs, model.NewInvalidFieldError("phone", "電話番号"))
	}

	return p, errs
}
