// Package repository はリソースサーバー上のコレクションへの
// データアクセスインターフェースを定義する。
//
// 永続化はすべて外部のリソースサーバーが担い、本パッケージの実装は
// resource.Client経由でコレクションCRUDと等値フィルタを呼び出す薄い層となる。
package repository

import (
	"context"

	"github.com/hitoshi/jobdesk/internal/model"
)

// UserRepository はユーザーデータへのアクセスインターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByCredentials はメールアドレスとパスワードの等値フィルタでユーザーを
	// 検索する。一致しない場合はnilを返す。
	FindByCredentials(ctx context.Context, email, password string) (*model.User, error)

	// ListCompanies はrole=companyの全ユーザーを返す。
	ListCompanies(ctx context.Context) ([]*model.User, error)

	// ListByIDs はid集合の一括等値フィルタでユーザーを取得する。
	// 空集合の場合は空スライスを返す。
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)

	// Create はユーザーを作成し、作成後のユーザーを返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// Replace はユーザー全体を置き換え、更新後のユーザーを返す。
	Replace(ctx context.Context, user *model.User) (*model.User, error)
}

// OfferRepository は求人データへのアクセスインターフェース。
type OfferRepository interface {
	// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Offer, error)

	// ListActive はstatus=activeの全求人を返す。
	ListActive(ctx context.Context) ([]*model.Offer, error)

	// ListByCompany は指定企業が所有する全求人（状態を問わない）を返す。
	ListByCompany(ctx context.Context, companyID string) ([]*model.Offer, error)

	// ListActiveByCompany は指定企業の公開中求人のみを返す。
	ListActiveByCompany(ctx context.Context, companyID string) ([]*model.Offer, error)

	// ListByIDs はid集合の一括等値フィルタで求人を取得する。
	ListByIDs(ctx context.Context, ids []string) ([]*model.Offer, error)

	// Create は求人を作成し、作成後の求人を返す。
	Create(ctx context.Context, offer *model.Offer) (*model.Offer, error)

	// Replace は求人全体を置き換え、更新後の求人を返す。
	Replace(ctx context.Context, offer *model.Offer) (*model.Offer, error)

	// UpdateStatus はstatusフィールドのみを部分更新する。
	UpdateStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error)

	// Delete は指定IDの求人を削除する。
	Delete(ctx context.Context, id string) error
}

// ApplicationRepository は応募データへのアクセスインターフェース。
type ApplicationRepository interface {
	// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Application, error)

	// FindByOfferAndCandidate は(求人ID, 候補者ID)の組で応募を検索する。
	// 応募していない場合はnilを返す（エラーではない）。
	FindByOfferAndCandidate(ctx context.Context, offerID, candidateID string) (*model.Application, error)

	// ListByCandidate は候補者の全応募を返す。
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.Application, error)

	// ListByOffer は求人への全応募を返す。
	ListByOffer(ctx context.Context, offerID string) ([]*model.Application, error)

	// Create は応募を作成し、作成後の応募を返す。
	Create(ctx context.Context, app *model.Application) (*model.Application, error)

	// UpdateStatus はstatusフィールドのみを部分更新する。
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error)

	// Delete は指定IDの応募を削除する。
	Delete(ctx context.Context, id string) error
}
