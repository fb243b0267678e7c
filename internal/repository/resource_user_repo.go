package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/resource"
)

// ResourceUserRepo はリソースサーバーのusersコレクションを使用したユーザーリポジトリ。
type ResourceUserRepo struct {
	client *resource.Client
}

// NewResourceUserRepo はResourceUserRepoを生成する。
func NewResourceUserRepo(client *resource.Client) *ResourceUserRepo {
	return &ResourceUserRepo{client: client}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *ResourceUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.client.Get(ctx, resource.CollectionUsers, id, user)
	if resource.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *ResourceUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, url.Values{"email": {email}})
}

// FindByCredentials はメールアドレスとパスワードでユーザーを検索する。
// 一致しない場合はnilを返す。
func (r *ResourceUserRepo) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	return r.findOne(ctx, url.Values{"email": {email}, "password": {password}})
}

// ListCompanies はrole=companyの全ユーザーを返す。
func (r *ResourceUserRepo) ListCompanies(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	filters := url.Values{"role": {string(model.RoleCompany)}}
	if err := r.client.List(ctx, resource.CollectionUsers, filters, &users); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return users, nil
}

// ListByIDs はid集合の一括等値フィルタでユーザーを取得する。
func (r *ResourceUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	if err := r.client.List(ctx, resource.CollectionUsers, url.Values{"id": ids}, &users); err != nil {
		return nil, fmt.Errorf("failed to list users by ids: %w", err)
	}
	return users, nil
}

// Create はユーザーを作成し、作成後のユーザーを返す。
func (r *ResourceUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := &model.User{}
	if err := r.client.Create(ctx, resource.CollectionUsers, user, created); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// Replace はユーザー全体を置き換え、更新後のユーザーを返す。
func (r *ResourceUserRepo) Replace(ctx context.Context, user *model.User) (*model.User, error) {
	updated := &model.User{}
	if err := r.client.Replace(ctx, resource.CollectionUsers, user.ID, user, updated); err != nil {
		return nil, fmt.Errorf("failed to replace user: %w", err)
	}
	return updated, nil
}

// findOne は等値フィルタで検索し、先頭の1件を返す。0件の場合はnilを返す。
func (r *ResourceUserRepo) findOne(ctx context.Context, filters url.Values) (*model.User, error) {
	var users []*model.User
	if err := r.client.List(ctx, resource.CollectionUsers, filters, &users); err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// compile-time interface check
var _ UserRepository = (*ResourceUserRepo)(nil)
