package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobdesk/internal/candidate"
	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
)

// CandidateServiceInterface は求職者ハンドラーが必要とするサービスインターフェース。
type CandidateServiceInterface interface {
	// ListOffers は公開中の求人一覧を企業名付きで返す。
	ListOffers(ctx context.Context, filter candidate.OfferFilter) ([]candidate.OfferView, error)
	// OfferDetail は求人1件を企業名付きで返す。
	OfferDetail(ctx context.Context, offerID string) (*candidate.OfferView, error)
	// Apply は求職者を求人に応募させる。
	Apply(ctx context.Context, candidateID, offerID string) (*model.Application, error)
	// MyApplications は求職者の応募履歴を返す。
	MyApplications(ctx context.Context, candidateID string) ([]candidate.ApplicationView, error)
	// ListCompanies は登録済みの全企業を返す。
	ListCompanies(ctx context.Context) ([]candidate.CompanyView, error)
	// CompanyOffers は指定企業の公開中求人を返す。
	CompanyOffers(ctx context.Context, companyID string) ([]candidate.OfferView, error)
	// UpdateProfile は求職者プロフィールを更新する。
	UpdateProfile(ctx context.Context, current *model.User, input candidate.ProfileInput) (*model.User, error)
}

// SessionRefresher はプロフィール更新後にセッション内の現在ユーザーを
// 追従させるインターフェース。session.Storeの部分集合として定義する。
type SessionRefresher interface {
	Refresh(ctx context.Context, id string, user *model.User) error
}

// CandidateHandler は求職者ダッシュボードのHTTPハンドラー。
type CandidateHandler struct {
	service   CandidateServiceInterface
	refresher SessionRefresher
}

// NewCandidateHandler はCandidateHandlerを生成する。
func NewCandidateHandler(service CandidateServiceInterface, refresher SessionRefresher) *CandidateHandler {
	return &CandidateHandler{
		service:   service,
		refresher: refresher,
	}
}

// ListOffers は求人一覧を返す。
// GET /api/candidate/offers?title=&company=
func (h *CandidateHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter := candidate.OfferFilter{
		TitleContains:   r.URL.Query().Get("title"),
		CompanyContains: r.URL.Query().Get("company"),
	}

	offers, err := h.service.ListOffers(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, offers)
}

// OfferDetail は求人詳細を返す。
// GET /api/candidate/offers/{id}
func (h *CandidateHandler) OfferDetail(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.OfferDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, offer)
}

// Apply は求人への応募を処理する。
// POST /api/candidate/offers/{id}/apply
func (h *CandidateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	app, err := h.service.Apply(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, app)
}

// MyApplications は応募履歴を返す。
// GET /api/candidate/applications
func (h *CandidateHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	apps, err := h.service.MyApplications(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, apps)
}

// ListCompanies は企業一覧を返す。
// GET /api/candidate/companies
func (h *CandidateHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, companies)
}

// CompanyOffers は指定企業の公開中求人を返す。
// GET /api/candidate/companies/{id}/offers
func (h *CandidateHandler) CompanyOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.CompanyOffers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, offers)
}

// UpdateProfile は求職者プロフィールの更新を処理する。
// PUT /api/candidate/profile
// 更新後はセッション内の現在ユーザーのスナップショットも更新する。
func (h *CandidateHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	var input candidate.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if sessionID, err := middleware.SessionIDFromContext(r.Context()); err == nil {
		if err := h.refresher.Refresh(r.Context(), sessionID, updated); err != nil {
			slog.Error("failed to refresh session", slog.String("error", err.Error()))
		}
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(updated))
}
