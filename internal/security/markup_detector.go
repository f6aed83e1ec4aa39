// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MarkupDetector は連絡先などのプレーンテキスト項目にHTMLマークアップが含まれるかを判定する。
// PasswordHasher はbcryptによるパスワードの一方向ハッシュと照合を行う。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// MarkupDetector はbluemondayのStrictPolicyでユーザー入力を検査する。
// 入力そのものは書き換えない。
type MarkupDetector struct {
	policy *bluemonday.Policy
}

// NewMarkupDetector はMarkupDetectorを生成する。
// bluemondayのポリシーはスレッドセーフなため、1インスタンスを共有してよい。
func NewMarkupDetector() *MarkupDetector {
	return &MarkupDetector{
		policy: bluemonday.StrictPolicy(),
	}
}

// ContainsMarkup はStrictPolicyで除去される要素（タグ、コメントなど）が含まれる場合にtrueを返す。
// bluemondayはテキストを実体参照にエスケープするため、双方をアンエスケープしてから比較する。
// "a < b" や "Smith & Sons" のような記号はマークアップとみなさない。
func (d *MarkupDetector) ContainsMarkup(raw string) bool {
	if raw == "" {
		return false
	}
	return html.UnescapeString(d.policy.Sanitize(raw)) != html.UnescapeString(raw)
}
