package security

import (
	"strings"
	"testing"
)

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		// want に含まれるべき部分文字列
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>業務内容の説明</p>",
			wantContains: []string{"<p>業務内容の説明</p>"},
		},
		{
			name:         "brタグが許可される",
			input:        "行1<br>行2",
			wantContains: []string{"行1", "行2"},
		},
		{
			name:         "ulタグとliタグが許可される",
			input:        "<ul><li>要件1</li><li>要件2</li></ul>",
			wantContains: []string{"<ul>", "<li>", "要件1", "要件2", "</li>", "</ul>"},
		},
		{
			name:         "olタグとliタグが許可される",
			input:        "<ol><li>手順1</li><li>手順2</li></ol>",
			wantContains: []string{"<ol>", "<li>", "手順1", "手順2"},
		},
		{
			name:         "strongタグが許可される",
			input:        "<strong>必須スキル</strong>",
			wantContains: []string{"<strong>必須スキル</strong>"},
		},
		{
			name:         "emタグが許可される",
			input:        "<em>歓迎</em>",
			wantContains: []string{"<em>歓迎</em>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_DangerousContent は危険なタグ・属性が除去されることを検証する。
func TestSanitize_DangerousContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name    string
		input   string
		banned  []string
		allowed []string
	}{
		{
			name:    "scriptタグが除去される",
			input:   `<p>説明</p><script>alert("xss")</script>`,
			banned:  []string{"<script", "alert"},
			allowed: []string{"<p>説明</p>"},
		},
		{
			name:   "iframeタグが除去される",
			input:  `<iframe src="https://evil.example.com"></iframe>本文`,
			banned: []string{"<iframe", "evil.example.com"},
			allowed: []string{
				"本文",
			},
		},
		{
			name:    "onerror属性付きimgが除去される",
			input:   `<img src=x onerror=alert(1)>エンジニア募集`,
			banned:  []string{"<img", "onerror"},
			allowed: []string{"エンジニア募集"},
		},
		{
			name:    "aタグは許可されない",
			input:   `<a href="javascript:alert(1)">リンク</a>`,
			banned:  []string{"<a", "javascript:"},
			allowed: []string{"リンク"},
		},
		{
			name:    "styleタグが除去される",
			input:   "<style>body{display:none}</style><p>表示</p>",
			banned:  []string{"<style", "display:none"},
			allowed: []string{"<p>表示</p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, banned := range tt.banned {
				if strings.Contains(got, banned) {
					t.Errorf("Sanitize(%q) = %q, expected %q to be removed", tt.input, got, banned)
				}
			}
			for _, allowed := range tt.allowed {
				if !strings.Contains(got, allowed) {
					t.Errorf("Sanitize(%q) = %q, expected to keep %q", tt.input, got, allowed)
				}
			}
		})
	}
}

// TestSanitizeStrict_StripsAllTags は1行フィールド向けに全タグが除去されることを検証する。
func TestSanitizeStrict_StripsAllTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "バックエンドエンジニア", "バックエンドエンジニア"},
		{"formatting tags stripped", "<strong>山田</strong>太郎", "山田太郎"},
		{"script stripped", `<script>alert("x")</script>山田`, "山田"},
		{"paragraph stripped", "<p>Go</p>", "Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.SanitizeStrict(tt.input); got != tt.want {
				t.Errorf("SanitizeStrict(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力となることを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	input := `<p>説明</p><script>alert(1)</script><ul><li>要件</li></ul>`
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)

	if first != second {
		t.Errorf("expected idempotent sanitization: first %q, second %q", first, second)
	}
}
