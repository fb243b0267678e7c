// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleCandidate は求職者ロール。
	RoleCandidate Role = "candidate"
	// RoleCompany は企業ロール。
	RoleCompany Role = "company"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleCompany
}

// WorkHistory は求職者の職歴1件を表す。
type WorkHistory struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Years   string `json:"years"`
}

// User はサービス利用ユーザーを表す。
// リソースサーバーのusersコレクションに格納されるドキュメントそのもので、
// ロールに応じて求職者フィールドまたは企業フィールドのどちらかが使われる。
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`

	// 求職者フィールド
	FullName    string        `json:"full_name,omitempty"`
	CVURL       string        `json:"cv_url,omitempty"`
	Skills      []string      `json:"skills,omitempty"`
	WorkHistory []WorkHistory `json:"work_history,omitempty"`

	// 企業フィールド
	CompanyName string `json:"company_name,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisplayName は画面表示用の名前を返す。
// 求職者は氏名、企業は企業名を優先し、未設定の場合はメールアドレスを返す。
func (u *User) DisplayName() string {
	switch u.Role {
	case RoleCandidate:
		if u.FullName != "" {
			return u.FullName
		}
	case RoleCompany:
		if u.CompanyName != "" {
			return u.CompanyName
		}
	}
	return u.Email
}

// Session はユーザーのログインセッションを表す。
// セッションストアには現在ユーザーのスナップショットごとシリアライズして保存する。
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
