package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestInputSanitizer_StripsAllTags(t *testing.T) {
	s := NewInputSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "Buy milk", "Buy milk"},
		{"空文字列", "", ""},
		{"装飾タグの除去", "<b>Buy</b> <i>milk</i>", "Buy milk"},
		{"scriptタグの除去", "<script>alert(1)</script>today", "today"},
		{"属性付きタグの除去", `<a href="https://example.com">link</a>`, "link"},
		{"不完全なタグ", "<img src=x onerror=alert(1)>text", "text"},
		{"タグのみの入力は空になる", "<b></b>", ""},
		{"記号はエスケープせず保持", "Tom & Jerry <3", "Tom & Jerry <3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// エンティティエスケープで文字数が膨張しないこと。
// 「<」100文字がエスケープで400文字になると文字数制約を通過した入力が
// 保存時に制約違反になるため、出力の文字数は入力を超えてはならない。
func TestInputSanitizer_DoesNotInflateLength(t *testing.T) {
	s := NewInputSanitizer()

	input := strings.Repeat("<", 100)
	got := s.Sanitize(input)

	if got != input {
		t.Errorf("Sanitize(%q) = %q, want unchanged", input, got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("rune count = %d, want 100", n)
	}
}

func TestInputSanitizer_PlainTextIsStable(t *testing.T) {
	s := NewInputSanitizer()

	once := s.Sanitize("<b>Buy milk</b>")
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("sanitized output is not stable: %q != %q", once, twice)
	}
}
