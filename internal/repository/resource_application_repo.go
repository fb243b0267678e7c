package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/resource"
)

// ResourceApplicationRepo はリソースサーバーのapplicationsコレクションを使用した応募リポジトリ。
type ResourceApplicationRepo struct {
	client *resource.Client
}

// NewResourceApplicationRepo はResourceApplicationRepoを生成する。
func NewResourceApplicationRepo(client *resource.Client) *ResourceApplicationRepo {
	return &ResourceApplicationRepo{client: client}
}

// FindByID は指定IDの応募を取得する。見つからない場合はnilを返す。
func (r *ResourceApplicationRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	app := &model.Application{}
	err := r.client.Get(ctx, resource.CollectionApplications, id, app)
	if resource.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	return app, nil
}

// FindByOfferAndCandidate は(求人ID, 候補者ID)の組で応募を検索する。
// 応募していない場合はnilを返す。
func (r *ResourceApplicationRepo) FindByOfferAndCandidate(ctx context.Context, offerID, candidateID string) (*model.Application, error) {
	apps, err := r.list(ctx, url.Values{
		"offer_id":     {offerID},
		"candidate_id": {candidateID},
	})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return apps[0], nil
}

// ListByCandidate は候補者の全応募を返す。
func (r *ResourceApplicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.Application, error) {
	return r.list(ctx, url.Values{"candidate_id": {candidateID}})
}

// ListByOffer は求人への全応募を返す。
func (r *ResourceApplicationRepo) ListByOffer(ctx context.Context, offerID string) ([]*model.Application, error) {
	return r.list(ctx, url.Values{"offer_id": {offerID}})
}

// Create は応募を作成し、作成後の応募を返す。
func (r *ResourceApplicationRepo) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	created := &model.Application{}
	if err := r.client.Create(ctx, resource.CollectionApplications, app, created); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

// UpdateStatus はstatusフィールドのみを部分更新する。
func (r *ResourceApplicationRepo) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
	updated := &model.Application{}
	patch := map[string]any{"status": status}
	if err := r.client.Patch(ctx, resource.CollectionApplications, id, patch, updated); err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return updated, nil
}

// Delete は指定IDの応募を削除する。
func (r *ResourceApplicationRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, resource.CollectionApplications, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return nil
}

// list は等値フィルタで応募を取得する。
func (r *ResourceApplicationRepo) list(ctx context.Context, filters url.Values) ([]*model.Application, error) {
	var apps []*model.Application
	if err := r.client.List(ctx, resource.CollectionApplications, filters, &apps); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// compile-time interface check
var _ ApplicationRepository = (*ResourceApplicationRepo)(nil)
