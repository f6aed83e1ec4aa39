package security

import (
	"testing"
)

func TestMarkupDetector_ContainsMarkup(t *testing.T) {
	detector := NewMarkupDetector()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "プレーンテキスト", input: "Muhammad", want: false},
		{name: "メールアドレス", input: "yazid@gmail.com", want: false},
		{name: "電話番号", input: "+62 821-6736-1472", want: false},
		{name: "アポストロフィ", input: "O'Brien", want: false},
		{name: "アンパサンド", input: "Smith & Sons", want: false},
		{name: "空白で区切られた不等号", input: "a < b > c", want: false},
		{name: "実体参照の文字列", input: "&lt;x&gt;", want: false},
		{name: "前後の空白", input: "  Yazid  ", want: false},
		{name: "空文字列", input: "", want: false},
		{name: "太字タグ", input: "<b>Muhammad</b>", want: true},
		{name: "scriptタグ", input: "<script>alert('x')</script>Asseweth", want: true},
		{name: "属性付きimgタグ", input: "<img src=x onerror=alert(1)>", want: true},
		{name: "山括弧で囲まれたアドレス", input: "Yazid <yazid@gmail.com>", want: true},
		{name: "HTMLコメント", input: "Yazid<!-- x -->", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.ContainsMarkup(tt.input); got != tt.want {
				t.Errorf("ContainsMarkup(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
