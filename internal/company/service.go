// Package company は企業ダッシュボードのワークフローを提供する。
//
// 自社求人の作成・編集・公開制御・削除、応募者の確認と選考状態の更新、
// 企業プロフィール編集を扱う。自社以外の求人への操作はすべて拒否する。
package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/repository"
	"github.com/hitoshi/jobdesk/internal/security"
)

// Recorder は求人・応募メトリクスの記録インターフェース。
type Recorder interface {
	RecordOfferCreated()
	RecordApplicationsCascadeDeleted(count int)
}

// Service は企業ワークフローサービス。
type Service struct {
	offerRepo repository.OfferRepository
	userRepo  repository.UserRepository
	appRepo   repository.ApplicationRepository
	sanitizer security.ContentSanitizerService
	recorder  Recorder
	logger    *slog.Logger
}

// NewService は企業ワークフローサービスを生成する。
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

// MyOffers は自社の全求人（公開状態を問わない）を返す。
func (s *Service) MyOffers(ctx context.Context, companyID string) ([]*model.Offer, error) {
	offers, err := s.offerRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company offers: %w", err)
	}
	return offers, nil
}

// OfferInput は求人フォームの入力。Requirementsはカンマ区切り。
type OfferInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Salary       string `json:"salary"`
	Modality     string `json:"modality"`
}

// SubmitOffer は求人を作成または更新する。
// editingIDが空のときは新規作成（公開状態active）、指定されたときは
// 所有確認のうえ全体を置き換える。既存求人の公開状態は維持される。
func (s *Service) SubmitOffer(ctx context.Context, companyID, editingID string, input OfferInput) (*model.Offer, error) {
	offer := &model.Offer{
		Title:        s.sanitizer.SanitizeStrict(strings.TrimSpace(input.Title)),
		Description:  s.sanitizer.Sanitize(input.Description),
		Requirements: splitList(input.Requirements),
		Salary:       strings.TrimSpace(input.Salary),
		Modality:     strings.TrimSpace(input.Modality),
		CompanyID:    companyID,
	}
	for i := range offer.Requirements {
		offer.Requirements[i] = s.sanitizer.SanitizeStrict(offer.Requirements[i])
	}

	if editingID == "" {
		offer.ID = uuid.New().String()
		offer.Status = model.OfferStatusActive

		created, err := s.offerRepo.Create(ctx, offer)
		if err != nil {
			return nil, fmt.Errorf("failed to create offer: %w", err)
		}

		if s.recorder != nil {
			s.recorder.RecordOfferCreated()
		}
		s.logger.Info("offer created",
			slog.String("offer_id", created.ID),
			slog.String("company_id", companyID))
		return created, nil
	}

	existing, err := s.ownedOffer(ctx, companyID, editingID)
	if err != nil {
		return nil, err
	}

	offer.ID = existing.ID
	offer.Status = existing.Status
	updated, err := s.offerRepo.Replace(ctx, offer)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.logger.Info("offer updated",
		slog.String("offer_id", updated.ID),
		slog.String("company_id", companyID))
	return updated, nil
}

// CloseOffer は自社求人の掲載を終了する。statusのみの部分更新で、
// 既存の応募には影響しない。
func (s *Service) CloseOffer(ctx context.Context, companyID, offerID string) (*model.Offer, error) {
	return s.setOfferStatus(ctx, companyID, offerID, model.OfferStatusClosed)
}

// ActivateOffer は掲載終了した自社求人を再公開する。
func (s *Service) ActivateOffer(ctx context.Context, companyID, offerID string) (*model.Offer, error) {
	return s.setOfferStatus(ctx, companyID, offerID, model.OfferStatusActive)
}

// DeleteOffer は自社求人と、その求人への全応募を削除する。
// 応募を先に1件ずつ削除してから求人本体を削除する。
// トランザクションはないため、途中で失敗した場合は削除済みの応募は戻らない。
func (s *Service) DeleteOffer(ctx context.Context, companyID, offerID string) error {
	if _, err := s.ownedOffer(ctx, companyID, offerID); err != nil {
		return err
	}

	apps, err := s.appRepo.ListByOffer(ctx, offerID)
	if err != nil {
		return fmt.Errorf("failed to list applications for offer: %w", err)
	}
	for _, app := range apps {
		if err := s.appRepo.Delete(ctx, app.ID); err != nil {
			return fmt.Errorf("failed to delete application %s: %w", app.ID, err)
		}
	}

	if err := s.offerRepo.Delete(ctx, offerID); err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	if s.recorder != nil && len(apps) > 0 {
		s.recorder.RecordApplicationsCascadeDeleted(len(apps))
	}
	s.logger.Info("offer deleted",
		slog.String("offer_id", offerID),
		slog.String("company_id", companyID),
		slog.Int("cascade_deleted_applications", len(apps)))
	return nil
}

// ApplicantView は応募者一覧に表示する応募者情報。
type ApplicantView struct {
	Application model.Application `json:"application"`
	Candidate   *model.User       `json:"candidate,omitempty"`
}

// Applicants は自社求人への応募者一覧を、応募者プロフィールを解決して返す。
// 応募者のユーザーが削除済みの場合はCandidateがnilになる。
func (s *Service) Applicants(ctx context.Context, companyID, offerID string) ([]ApplicantView, error) {
	if _, err := s.ownedOffer(ctx, companyID, offerID); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if len(apps) == 0 {
		return []ApplicantView{}, nil
	}

	ids := make([]string, 0, len(apps))
	seen := make(map[string]bool, len(apps))
	for _, app := range apps {
		if !seen[app.CandidateID] {
			seen[app.CandidateID] = true
			ids = append(ids, app.CandidateID)
		}
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve candidates: %w", err)
	}
	usersByID := make(map[string]*model.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	views := make([]ApplicantView, 0, len(apps))
	for _, app := range apps {
		views = append(views, ApplicantView{
			Application: *app,
			Candidate:   usersByID[app.CandidateID],
		})
	}
	return views, nil
}

// ApplicantDetail は自社求人への応募者1名の詳細を返す。
func (s *Service) ApplicantDetail(ctx context.Context, companyID, offerID, candidateID string) (*ApplicantView, error) {
	if _, err := s.ownedOffer(ctx, companyID, offerID); err != nil {
		return nil, err
	}

	app, err := s.appRepo.FindByOfferAndCandidate(ctx, offerID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(candidateID)
	}

	candidate, err := s.userRepo.FindByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &ApplicantView{Application: *app, Candidate: candidate}, nil
}

// UpdateApplicationStatus は自社求人への応募の選考状態を更新する。
// 終端状態（accepted/rejected）からの変更は拒否する。
func (s *Service) UpdateApplicationStatus(ctx context.Context, companyID, applicationID string, next model.ApplicationStatus) (*model.Application, error) {
	if !next.Valid() || next == model.ApplicationStatusPending {
		return nil, model.NewInvalidStatusTransitionError(model.ApplicationStatusPending, next)
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(applicationID)
	}

	if _, err := s.ownedOffer(ctx, companyID, app.OfferID); err != nil {
		return nil, err
	}

	if !app.Status.CanTransitionTo(next) {
		return nil, model.NewInvalidStatusTransitionError(app.Status, next)
	}

	updated, err := s.appRepo.UpdateStatus(ctx, applicationID, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	s.logger.Info("application status updated",
		slog.String("application_id", applicationID),
		slog.String("from", string(app.Status)),
		slog.String("to", string(next)))
	return updated, nil
}

// ProfileInput は企業プロフィール編集の入力。
type ProfileInput struct {
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
}

// UpdateProfile は企業プロフィールを更新し、更新後のユーザーを返す。
// メールアドレス・パスワード・ロールは変更されない。
func (s *Service) UpdateProfile(ctx context.Context, current *model.User, input ProfileInput) (*model.User, error) {
	updated := *current
	updated.CompanyName = s.sanitizer.SanitizeStrict(strings.TrimSpace(input.CompanyName))
	updated.LogoURL = strings.TrimSpace(input.LogoURL)
	updated.Sector = s.sanitizer.SanitizeStrict(strings.TrimSpace(input.Sector))
	updated.Description = s.sanitizer.Sanitize(input.Description)

	user, err := s.userRepo.Replace(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("company profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// setOfferStatus は所有確認のうえstatusのみを部分更新する。
func (s *Service) setOfferStatus(ctx context.Context, companyID, offerID string, status model.OfferStatus) (*model.Offer, error) {
	if _, err := s.ownedOffer(ctx, companyID, offerID); err != nil {
		return nil, err
	}

	updated, err := s.offerRepo.UpdateStatus(ctx, offerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer status: %w", err)
	}

	s.logger.Info("offer status updated",
		slog.String("offer_id", offerID),
		slog.String("status", string(status)))
	return updated, nil
}

// ownedOffer は求人を取得し、companyIDが所有していることを確認する。
func (s *Service) ownedOffer(ctx context.Context, companyID, offerID string) (*model.Offer, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	if offer == nil {
		return nil, model.NewOfferNotFoundError(offerID)
	}
	if offer.CompanyID != companyID {
		return nil, model.NewOfferNotOwnedError(offerID)
	}
	return offer, nil
}

// splitList はカンマ区切り文字列を前後空白を除いたスライスに分解する。
func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
