package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizer はユーザー入力テキストのサニタイズ機能のインターフェース。
// タスクのタイトル・説明文のバリデーション前に使用される。
type InputSanitizer interface {
	// Sanitize は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
	// 文字参照（&amp;等）は復号するため、出力の文字数が入力を超えることはない。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// inputSanitizer はInputSanitizerの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerの新しいインスタンスを生成する。
// タスクのタイトル・説明文はプレーンテキストとして扱うため、
// タグを一切許可しないStrictPolicyを使用する。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からすべてのHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyは残ったテキストをエンティティエスケープするため、
// そのままでは「<」1文字が「&lt;」4文字に膨張し文字数制約を壊す。
// プレーンテキストとして保存する前提なので、エスケープは復号して返す。
func (s *inputSanitizer) Sanitize(raw string) string {
	return html.UnescapeString(s.policy.Sanitize(raw))
}
