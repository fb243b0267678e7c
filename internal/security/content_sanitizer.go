// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は求人説明やプロフィールなどの自由入力テキストを
// 保存前にサニタイズし、ダッシュボードに埋め込まれた際のXSSを防ぐ。
// bluemondayライブラリを使用した許可リストベースのポリシーを用いる。
package security

import "github.com/microcosm-cc/bluemonday"

// ContentSanitizerService は自由入力テキストのサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// Sanitize は複数行の説明文をサニタイズして返す。
	// 最小限の整形タグ（p, br, ul, ol, li, strong, em）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string

	// SanitizeStrict は1行フィールド（タイトル、氏名、スキル等）から
	// すべてのHTMLタグを除去したテキストを返す。
	SanitizeStrict(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	description *bluemonday.Policy
	strict      *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	desc := bluemonday.NewPolicy()
	// 説明文に許可する整形タグ。リンクや画像は許可しない
	// （cv_url / logo_urlは専用フィールドで扱う）。
	desc.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	return &contentSanitizer{
		description: desc,
		strict:      bluemonday.StrictPolicy(),
	}
}

// Sanitize は複数行の説明文をサニタイズして返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return s.description.Sanitize(raw)
}

// SanitizeStrict は1行フィールドからすべてのHTMLタグを除去する。
func (s *contentSanitizer) SanitizeStrict(raw string) string {
	return s.strict.Sanitize(raw)
}
