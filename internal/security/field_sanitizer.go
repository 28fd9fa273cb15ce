package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FieldSanitizer はフォーム入力のテキストフィールドをサニタイズする。
// プロフィールの氏名や電話番号は平文テキストであり、マークアップを
// 一切含むべきでないため、bluemondayのStrictPolicyで全タグを除去する。
// サニタイズ結果はページに再描画される前に必ずこのパスを通る。
type FieldSanitizer struct {
	policy *bluemonday.Policy
}

// NewFieldSanitizer はFieldSanitizerを生成する。
func NewFieldSanitizer() *FieldSanitizer {
	return &FieldSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを全て除去し、前後の空白を落とした平文を返す。
// 同一入力に対して常に同一出力を返す（冪等）。
func (s *FieldSanitizer) Sanitize(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}
