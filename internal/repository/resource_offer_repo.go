package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/resource"
)

// ResourceOfferRepo はリソースサーバーのoffersコレクションを使用した求人リポジトリ。
type ResourceOfferRepo struct {
	client *resource.Client
}

// NewResourceOfferRepo はResourceOfferRepoを生成する。
func NewResourceOfferRepo(client *resource.Client) *ResourceOfferRepo {
	return &ResourceOfferRepo{client: client}
}

// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *ResourceOfferRepo) FindByID(ctx context.Context, id string) (*model.Offer, error) {
	offer := &model.Offer{}
	err := r.client.Get(ctx, resource.CollectionOffers, id, offer)
	if resource.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find offer by ID: %w", err)
	}
	return offer, nil
}

// ListActive はstatus=activeの全求人を返す。
func (r *ResourceOfferRepo) ListActive(ctx context.Context) ([]*model.Offer, error) {
	return r.list(ctx, url.Values{"status": {string(model.OfferStatusActive)}})
}

// ListByCompany は指定企業が所有する全求人を返す。
func (r *ResourceOfferRepo) ListByCompany(ctx context.Context, companyID string) ([]*model.Offer, error) {
	return r.list(ctx, url.Values{"company_id": {companyID}})
}

// ListActiveByCompany は指定企業の公開中求人のみを返す。
func (r *ResourceOfferRepo) ListActiveByCompany(ctx context.Context, companyID string) ([]*model.Offer, error) {
	return r.list(ctx, url.Values{
		"company_id": {companyID},
		"status":     {string(model.OfferStatusActive)},
	})
}

// ListByIDs はid集合の一括等値フィルタで求人を取得する。
func (r *ResourceOfferRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Offer, error) {
	if len(ids) == 0 {
		return []*model.Offer{}, nil
	}
	return r.list(ctx, url.Values{"id": ids})
}

// Create は求人を作成し、作成後の求人を返す。
func (r *ResourceOfferRepo) Create(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	created := &model.Offer{}
	if err := r.client.Create(ctx, resource.CollectionOffers, offer, created); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return created, nil
}

// Replace は求人全体を置き換え、更新後の求人を返す。
func (r *ResourceOfferRepo) Replace(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	updated := &model.Offer{}
	if err := r.client.Replace(ctx, resource.CollectionOffers, offer.ID, offer, updated); err != nil {
		return nil, fmt.Errorf("failed to replace offer: %w", err)
	}
	return updated, nil
}

// UpdateStatus はstatusフィールドのみを部分更新する。
func (r *ResourceOfferRepo) UpdateStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error) {
	updated := &model.Offer{}
	patch := map[string]any{"status": status}
	if err := r.client.Patch(ctx, resource.CollectionOffers, id, patch, updated); err != nil {
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}
	return updated, nil
}

// Delete は指定IDの求人を削除する。
func (r *ResourceOfferRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, resource.CollectionOffers, id); err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

// list は等値フィルタで求人を取得する。
func (r *ResourceOfferRepo) list(ctx context.Context, filters url.Values) ([]*model.Offer, error) {
	var offers []*model.Offer
	if err := r.client.List(ctx, resource.CollectionOffers, filters, &offers); err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// compile-time interface check
var _ OfferRepository = (*ResourceOfferRepo)(nil)
