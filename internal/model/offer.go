// Package model はドメインモデルを定義する。
package model

// OfferStatus は求人の公開状態を表す。
type OfferStatus string

const (
	// OfferStatusActive は公開中の求人状態。
	OfferStatusActive OfferStatus = "active"
	// OfferStatusClosed は掲載を終了した求人状態。
	OfferStatusClosed OfferStatus = "closed"
)

// Offer は企業が公開する求人を表す。
// CompanyIDで所有企業（role=companyのUser）を参照する。
type Offer struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Requirements []string    `json:"requirements"`
	Salary       string      `json:"salary,omitempty"`
	Modality     string      `json:"modality"`
	CompanyID    string      `json:"company_id"`
	Status       OfferStatus `json:"status"`
}
