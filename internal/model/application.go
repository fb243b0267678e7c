// Package model はドメインモデルを定義する。
package model

// ApplicationStatus は応募の選考状態を表す。
type ApplicationStatus string

const (
	// ApplicationStatusPending は応募直後の未対応状態。
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusInReview は選考中の状態。
	ApplicationStatusInReview ApplicationStatus = "in_review"
	// ApplicationStatusAccepted は採用決定の終端状態。
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected は不採用の終端状態。
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Valid は状態が定義済みの値かどうかを返す。
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusInReview,
		ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Terminal は状態が終端（以後の遷移を受け付けない）かどうかを返す。
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// CanTransitionTo は現在の状態からnextへの遷移が許されるかを返す。
// pendingとin_reviewからはin_review・accepted・rejectedへ遷移でき、
// 終端状態からの遷移とpendingへの巻き戻しは許可しない。
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case ApplicationStatusInReview, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application は求職者の1求人への応募を表す。
// 同一の(CandidateID, OfferID)の組に対する応募は高々1件を意図する
// （クライアント側のcheck-then-insertで保証し、アトミックではない）。
type Application struct {
	ID          string            `json:"id"`
	OfferID     string            `json:"offer_id"`
	CandidateID string            `json:"candidate_id"`
	SubmittedAt string            `json:"submitted_at"` // YYYY-MM-DD
	Status      ApplicationStatus `json:"status"`
}
