// Package candidate は求職者ダッシュボードのワークフローを提供する。
//
// 求人の閲覧・検索、応募、応募履歴の確認、企業一覧、プロフィール編集を扱う。
// 求人と企業・応募と求人の突き合わせは、参照IDの集合を一括等値フィルタで
// 解決してからメモリ上で結合する。
package candidate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/repository"
	"github.com/hitoshi/jobdesk/internal/security"
)

// unknownCompanyName は所有企業が解決できなかった求人に表示する名前。
const unknownCompanyName = "不明な企業"

// Recorder は応募件数メトリクスの記録インターフェース。
type Recorder interface {
	RecordApplicationSubmitted()
}

// Service は求職者ワークフローサービス。
type Service struct {
	offerRepo repository.OfferRepository
	userRepo  repository.UserRepository
	appRepo   repository.ApplicationRepository
	sanitizer security.ContentSanitizerService
	recorder  Recorder
	logger    *slog.Logger
}

// NewService は求職者ワークフローサービスを生成する。
func NewService(
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	appRepo repository.ApplicationRepository,
	sanitizer security.ContentSanitizerService,
	recorder Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		offerRepo: offerRepo,
		userRepo:  userRepo,
		appRepo:   appRepo,
		sanitizer: sanitizer,
		recorder:  recorder,
		logger:    logger,
	}
}

// OfferFilter は求人一覧の絞り込み条件。
// 両方指定された場合はANDで適用される。
type OfferFilter struct {
	TitleContains   string
	CompanyContains string
}

// OfferView は企業名を解決済みの求人ビュー。
type OfferView struct {
	model.Offer
	CompanyName string `json:"company_name"`
}

// ListOffers は公開中の求人一覧を企業名付きで返す。
// タイトル・企業名の部分一致フィルタは大文字小文字を区別しない。
func (s *Service) ListOffers(ctx context.Context, filter OfferFilter) ([]OfferView, error) {
	offers, err := s.offerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}

	companies, err := s.resolveCompanies(ctx, offers)
	if err != nil {
		return nil, err
	}

	title := strings.ToLower(strings.TrimSpace(filter.TitleContains))
	company := strings.ToLower(strings.TrimSpace(filter.CompanyContains))

	views := make([]OfferView, 0, len(offers))
	for _, offer := range offers {
		view := newOfferView(offer, companies)
		if title != "" && !strings.Contains(strings.ToLower(view.Title), title) {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(view.CompanyName), company) {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

// OfferDetail は求人1件を企業名付きで返す。
func (s *Service) OfferDetail(ctx context.Context, offerID string) (*OfferView, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	if offer == nil {
		return nil, model.NewOfferNotFoundError(offerID)
	}

	companies, err := s.resolveCompanies(ctx, []*model.Offer{offer})
	if err != nil {
		return nil, err
	}
	view := newOfferView(offer, companies)
	return &view, nil
}

// Apply は求職者を求人に応募させる。
// 重複応募の確認は「検索してから作成」の2段階で行うため、同時応募の競合までは防げない。
func (s *Service) Apply(ctx context.Context, candidateID, offerID string) (*model.Application, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	if offer == nil {
		return nil, model.NewOfferNotFoundError(offerID)
	}
	if offer.Status != model.OfferStatusActive {
		return nil, model.NewOfferNotActiveError(offerID)
	}

	existing, err := s.appRepo.FindByOfferAndCandidate(ctx, offerID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateApplicationError()
	}

	app := &model.Application{
		ID:          uuid.New().String(),
		OfferID:     offerID,
		CandidateID: candidateID,
		SubmittedAt: time.Now().Format("2006-01-02"),
		Status:      model.ApplicationStatusPending,
	}
	created, err := s.appRepo.Create(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordApplicationSubmitted()
	}
	s.logger.Info("application submitted",
		slog.String("application_id", created.ID),
		slog.String("offer_id", offerID),
		slog.String("candidate_id", candidateID))
	return created, nil
}

// ApplicationView は求人情報を解決済みの応募ビュー。
// 応募後に求人が削除された場合でも応募自体は残り、求人欄が空になる。
type ApplicationView struct {
	model.Application
	OfferTitle  string `json:"offer_title"`
	CompanyName string `json:"company_name"`
}

// MyApplications は求職者の応募履歴を求人タイトル・企業名付きで返す。
func (s *Service) MyApplications(ctx context.Context, candidateID string) ([]ApplicationView, error) {
	apps, err := s.appRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if len(apps) == 0 {
		return []ApplicationView{}, nil
	}

	offerIDs := make([]string, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	for _, app := range apps {
		if !seen[app.OfferID] {
			seen[app.OfferID] = true
			offerIDs = append(offerIDs, app.OfferID)
		}
	}

	offers, err := s.offerRepo.ListByIDs(ctx, offerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve offers: %w", err)
	}
	offersByID := make(map[string]*model.Offer, len(offers))
	for _, offer := range offers {
		offersByID[offer.ID] = offer
	}

	companies, err := s.resolveCompanies(ctx, offers)
	if err != nil {
		return nil, err
	}

	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		view := ApplicationView{Application: *app}
		if offer, ok := offersByID[app.OfferID]; ok {
			view.OfferTitle = offer.Title
			view.CompanyName = companyNameOf(offer.CompanyID, companies)
		}
		views = append(views, view)
	}
	return views, nil
}

// CompanyView は企業一覧に表示する企業情報。
type CompanyView struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListCompanies は登録済みの全企業を返す。
func (s *Service) ListCompanies(ctx context.Context) ([]CompanyView, error) {
	users, err := s.userRepo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	views := make([]CompanyView, 0, len(users))
	for _, u := range users {
		views = append(views, CompanyView{
			ID:          u.ID,
			CompanyName: u.DisplayName(),
			LogoURL:     u.LogoURL,
			Sector:      u.Sector,
			Description: u.Description,
		})
	}
	return views, nil
}

// CompanyOffers は指定企業の公開中求人のみを返す。
func (s *Service) CompanyOffers(ctx context.Context, companyID string) ([]OfferView, error) {
	company, err := s.userRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	if company == nil || company.Role != model.RoleCompany {
		return nil, model.NewUserNotFoundError(companyID)
	}

	offers, err := s.offerRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company offers: %w", err)
	}

	name := company.DisplayName()
	views := make([]OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, OfferView{Offer: *offer, CompanyName: name})
	}
	return views, nil
}

// ProfileInput は求職者プロフィール編集の入力。
// Skillsはカンマ区切り、Experienceはセミコロン区切りの「職種,会社,年数」形式。
type ProfileInput struct {
	FullName   string `json:"full_name"`
	CVURL      string `json:"cv_url"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
}

// UpdateProfile は求職者プロフィールを更新し、更新後のユーザーを返す。
// メールアドレス・パスワード・ロールは変更されない。
func (s *Service) UpdateProfile(ctx context.Context, current *model.User, input ProfileInput) (*model.User, error) {
	updated := *current
	updated.FullName = s.sanitizer.SanitizeStrict(strings.TrimSpace(input.FullName))
	updated.CVURL = strings.TrimSpace(input.CVURL)
	updated.Skills = splitList(input.Skills)
	updated.WorkHistory = parseWorkHistory(input.Experience)
	for i := range updated.Skills {
		updated.Skills[i] = s.sanitizer.SanitizeStrict(updated.Skills[i])
	}

	user, err := s.userRepo.Replace(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("candidate profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// resolveCompanies は求人群が参照する企業を一括で取得する。
func (s *Service) resolveCompanies(ctx context.Context, offers []*model.Offer) (map[string]*model.User, error) {
	ids := make([]string, 0, len(offers))
	seen := make(map[string]bool, len(offers))
	for _, offer := range offers {
		if offer.CompanyID != "" && !seen[offer.CompanyID] {
			seen[offer.CompanyID] = true
			ids = append(ids, offer.CompanyID)
		}
	}
	if len(ids) == 0 {
		return map[string]*model.User{}, nil
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve companies: %w", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func newOfferView(offer *model.Offer, companies map[string]*model.User) OfferView {
	return OfferView{
		Offer:       *offer,
		CompanyName: companyNameOf(offer.CompanyID, companies),
	}
}

func companyNameOf(companyID string, companies map[string]*model.User) string {
	if company, ok := companies[companyID]; ok {
		return company.DisplayName()
	}
	return unknownCompanyName
}

// splitList はカンマ区切り文字列を前後空白を除いたスライスに分解する。
// 空要素は捨てる。
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// parseWorkHistory はセミコロン区切りの「職種,会社,年数」形式を職歴に変換する。
// 3要素に満たないエントリは無視する。
func parseWorkHistory(raw string) []model.WorkHistory {
	history := []model.WorkHistory{}
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.SplitN(entry, ",", 3)
		if len(parts) < 3 {
			continue
		}
		item := model.WorkHistory{
			Title:   strings.TrimSpace(parts[0]),
			Company: strings.TrimSpace(parts[1]),
			Years:   strings.TrimSpace(parts[2]),
		}
		if item.Title == "" && item.Company == "" && item.Years == "" {
			continue
		}
		history = append(history, item)
	}
	return history
}
