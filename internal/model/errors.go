// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, offer, application, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken              = "EMAIL_TAKEN"
	ErrCodeInvalidRole             = "INVALID_ROLE"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeOfferNotFound           = "OFFER_NOT_FOUND"
	ErrCodeOfferNotActive          = "OFFER_NOT_ACTIVE"
	ErrCodeOfferNotOwned           = "OFFER_NOT_OWNED"
	ErrCodeDuplicateApplication    = "DUPLICATE_APPLICATION"
	ErrCodeApplicationNotFound     = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeConfirmationRequired    = "CONFIRMATION_REQUIRED"
	ErrCodeSectionNotFound         = "SECTION_NOT_FOUND"
)

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidRoleError はロール未指定・不正エラーを生成する。
func NewInvalidRoleError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  "ロールを選択してください。",
		Category: "validation",
		Action:   "candidateまたはcompanyのいずれかを指定してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewOfferNotFoundError は求人未検出エラーを生成する。
func NewOfferNotFoundError(offerID string) *APIError {
	return &APIError{
		Code:     ErrCodeOfferNotFound,
		Message:  fmt.Sprintf("指定された求人が見つかりません: %s", offerID),
		Category: "offer",
		Action:   "求人一覧を再読み込みしてください。",
	}
}

// NewOfferNotActiveError は非公開求人への応募エラーを生成する。
func NewOfferNotActiveError(offerID string) *APIError {
	return &APIError{
		Code:     ErrCodeOfferNotActive,
		Message:  fmt.Sprintf("この求人は現在募集を終了しています: %s", offerID),
		Category: "offer",
		Action:   "公開中の求人から選択してください。",
	}
}

// NewOfferNotOwnedError は他社求人への操作エラーを生成する。
func NewOfferNotOwnedError(offerID string) *APIError {
	return &APIError{
		Code:     ErrCodeOfferNotOwned,
		Message:  fmt.Sprintf("この求人を操作する権限がありません: %s", offerID),
		Category: "auth",
		Action:   "自社で公開した求人のみ操作できます。",
	}
}

// NewDuplicateApplicationError は同一求人への重複応募エラーを生成する。
func NewDuplicateApplicationError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateApplication,
		Message:  "この求人には既に応募しています。",
		Category: "application",
		Action:   "応募一覧から選考状況を確認してください。",
	}
}

// NewApplicationNotFoundError は応募未検出エラーを生成する。
func NewApplicationNotFoundError(applicationID string) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  fmt.Sprintf("指定された応募が見つかりません: %s", applicationID),
		Category: "application",
		Action:   "応募者一覧を再読み込みしてください。",
	}
}

// NewInvalidStatusTransitionError は許可されない選考状態遷移エラーを生成する。
func NewInvalidStatusTransitionError(from, to ApplicationStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatusTransition,
		Message:  fmt.Sprintf("選考状態を %s から %s へ変更することはできません。", from, to),
		Category: "application",
		Action:   "確定済み（accepted/rejected）の応募は変更できません。",
	}
}

// NewConfirmationRequiredError は確認フラグ未指定エラーを生成する。
// 求人のクローズ・再公開・削除は明示的な確認を必須とする。
func NewConfirmationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeConfirmationRequired,
		Message:  "この操作には確認が必要です。",
		Category: "validation",
		Action:   "confirmにtrueを指定して再度リクエストしてください。",
	}
}

// NewSectionNotFoundError は未定義セクションへの遷移エラーを生成する。
func NewSectionNotFoundError(sectionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSectionNotFound,
		Message:  fmt.Sprintf("指定されたセクションは存在しません: %s", sectionID),
		Category: "validation",
		Action:   "セクション一覧から有効なセクションを指定してください。",
	}
}
