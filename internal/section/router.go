// Package section はシングルページダッシュボードのセクション切替を管理する。
//
// セクションは相互排他の表示パネルで、常にちょうど1つだけが可視となる。
// 遷移は無条件（任意のセクションから任意のセクションへ）で、
// ロードコールバックが登録されているセクションへ切り替えた場合は
// 切替後にコールバックを呼び出し、その結果をセクションのデータとして返す。
package section

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/jobdesk/internal/model"
)

// ロールごとの既定セクションID。
const (
	SectionOffers         = "offers"
	SectionOfferDetails   = "offer_details"
	SectionMyApplications = "my_applications"
	SectionCompanies      = "companies"
	SectionCompanyOffers  = "company_offers"
	SectionMyOffers       = "my_offers"
	SectionNewOffer       = "new_offer"
	SectionApplicants     = "applicants"
	SectionProfile        = "profile"
)

// LoadFunc はセクション表示時に呼び出されるデータロードコールバック。
// 戻り値はそのセクションに表示するペイロードとなる。
type LoadFunc func(ctx context.Context) (any, error)

// State はセクション1つの表示状態を表す。
type State struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	// Active はナビゲーションのハイライト対象かどうか。可視セクションと常に一致する。
	Active bool `json:"active"`
}

// Router は1つのダッシュボード画面のセクション可視状態を管理する。
// 「現在可視のセクション」を指す単一の可変ポインタ以外に状態を持たない。
type Router struct {
	mu      sync.Mutex
	order   []string
	known   map[string]bool
	current string
	loads   map[string]LoadFunc
}

// NewRouter はRouterを生成する。defaultIDのセクションが初期表示となる。
func NewRouter(ids []string, defaultID string) (*Router, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one section is required")
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	if !known[defaultID] {
		return nil, fmt.Errorf("default section %q is not registered", defaultID)
	}
	return &Router{
		order:   append([]string(nil), ids...),
		known:   known,
		current: defaultID,
		loads:   make(map[string]LoadFunc),
	}, nil
}

// RegisterLoad はセクションのロードコールバックを登録する。
// 未定義のセクションを指定した場合はエラーを返す。
func (r *Router) RegisterLoad(id string, load LoadFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known[id] {
		return model.NewSectionNotFoundError(id)
	}
	r.loads[id] = load
	return nil
}

// Show は指定セクションを可視にし、他のすべてのセクションを不可視にする。
// ロードコールバックが登録されていればデータを取得して返す。
// 可視状態の切替はコールバックの失敗より先に確定する
// （元の画面と同様、ロード失敗はセクション内のエラー表示として扱われる）。
func (r *Router) Show(ctx context.Context, id string) (any, error) {
	r.mu.Lock()
	if !r.known[id] {
		r.mu.Unlock()
		return nil, model.NewSectionNotFoundError(id)
	}
	r.current = id
	load := r.loads[id]
	r.mu.Unlock()

	if load == nil {
		return nil, nil
	}
	data, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load section %s: %w", id, err)
	}
	return data, nil
}

// Current は現在可視のセクションIDを返す。
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Visible は指定セクションが可視かどうかを返す。
func (r *Router) Visible(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current == id
}

// States は全セクションの表示状態を登録順で返す。
func (r *Router) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make([]State, len(r.order))
	for i, id := range r.order {
		visible := id == r.current
		states[i] = State{ID: id, Visible: visible, Active: visible}
	}
	return states
}

// SectionsForRole はロールに応じたセクションID一覧と既定セクションを返す。
func SectionsForRole(role model.Role) (ids []string, defaultID string) {
	switch role {
	case model.RoleCompany:
		return []string{
			SectionMyOffers,
			SectionNewOffer,
			SectionApplicants,
			SectionProfile,
		}, SectionMyOffers
	default:
		return []string{
			SectionOffers,
			SectionOfferDetails,
			SectionMyApplications,
			SectionCompanies,
			SectionCompanyOffers,
			SectionProfile,
		}, SectionOffers
	}
}
