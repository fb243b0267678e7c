package section

import (
	"context"
	"sync"

	"github.com/hitoshi/jobdesk/internal/model"
)

// Manager はセッションごとのRouterのライフサイクルを管理するページレベルの
// コントローラ。Routerはセクションが最初に参照されたときに生成され、
// ログアウト時にDropで破棄される。
// ロードコールバックはロール+セクション単位で共有登録され、
// 現在ユーザーはコンテキスト経由で各コールバックに届く。
type Manager struct {
	mu      sync.Mutex
	routers map[string]*Router // セッションID → Router
	loads   map[model.Role]map[string]LoadFunc
}

// NewManager はManagerを生成する。
func NewManager() *Manager {
	return &Manager{
		routers: make(map[string]*Router),
		loads: map[model.Role]map[string]LoadFunc{
			model.RoleCandidate: {},
			model.RoleCompany:   {},
		},
	}
}

// RegisterLoad はロール+セクションの組にロードコールバックを登録する。
// 以後に生成されるRouterすべてに適用される。
func (m *Manager) RegisterLoad(role model.Role, sectionID string, load LoadFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[role][sectionID] = load
}

// router はセッションのRouterを取得し、存在しなければロールの既定構成で生成する。
func (m *Manager) router(sessionID string, role model.Role) (*Router, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.routers[sessionID]; ok {
		return r, nil
	}

	ids, defaultID := SectionsForRole(role)
	r, err := NewRouter(ids, defaultID)
	if err != nil {
		return nil, err
	}
	for id, load := range m.loads[role] {
		if err := r.RegisterLoad(id, load); err != nil {
			return nil, err
		}
	}
	m.routers[sessionID] = r
	return r, nil
}

// Show はセッションのダッシュボードで指定セクションへ遷移する。
// 遷移後の全セクション状態と、ロードコールバックが返したデータを返す。
func (m *Manager) Show(ctx context.Context, sessionID string, role model.Role, sectionID string) ([]State, any, error) {
	r, err := m.router(sessionID, role)
	if err != nil {
		return nil, nil, err
	}
	data, err := r.Show(ctx, sectionID)
	if err != nil {
		return nil, nil, err
	}
	return r.States(), data, nil
}

// States はセッションの全セクション状態を返す。
func (m *Manager) States(sessionID string, role model.Role) ([]State, error) {
	r, err := m.router(sessionID, role)
	if err != nil {
		return nil, err
	}
	return r.States(), nil
}

// Drop はセッションのRouterを破棄する。ログアウト時に呼び出す。
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.routers, sessionID)
}
