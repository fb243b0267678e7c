package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobdesk/internal/company"
	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
)

// CompanyServiceInterface は企業ハンドラーが必要とするサービスインターフェース。
type CompanyServiceInterface interface {
	// MyOffers は自社の全求人を返す。
	MyOffers(ctx context.Context, companyID string) ([]*model.Offer, error)
	// SubmitOffer は求人を作成または更新する。
	SubmitOffer(ctx context.Context, companyID, editingID string, input company.OfferInput) (*model.Offer, error)
	// CloseOffer は自社求人の掲載を終了する。
	CloseOffer(ctx context.Context, companyID, offerID string) (*model.Offer, error)
	// ActivateOffer は掲載終了した自社求人を再公開する。
	ActivateOffer(ctx context.Context, companyID, offerID string) (*model.Offer, error)
	// DeleteOffer は自社求人と全応募を削除する。
	DeleteOffer(ctx context.Context, companyID, offerID string) error
	// Applicants は自社求人への応募者一覧を返す。
	Applicants(ctx context.Context, companyID, offerID string) ([]company.ApplicantView, error)
	// ApplicantDetail は応募者1名の詳細を返す。
	ApplicantDetail(ctx context.Context, companyID, offerID, candidateID string) (*company.ApplicantView, error)
	// UpdateApplicationStatus は応募の選考状態を更新する。
	UpdateApplicationStatus(ctx context.Context, companyID, applicationID string, next model.ApplicationStatus) (*model.Application, error)
	// UpdateProfile は企業プロフィールを更新する。
	UpdateProfile(ctx context.Context, current *model.User, input company.ProfileInput) (*model.User, error)
}

// CompanyHandler は企業ダッシュボードのHTTPハンドラー。
type CompanyHandler struct {
	service   CompanyServiceInterface
	refresher SessionRefresher
}

// NewCompanyHandler はCompanyHandlerを生成する。
func NewCompanyHandler(service CompanyServiceInterface, refresher SessionRefresher) *CompanyHandler {
	return &CompanyHandler{
		service:   service,
		refresher: refresher,
	}
}

// submitOfferRequest は求人フォームのリクエストボディ。
// EditingIDが空のときは新規作成、指定されたときは既存求人の更新となる。
type submitOfferRequest struct {
	EditingID string `json:"editing_id"`
	company.OfferInput
}

// statusChangeRequest は掲載状態変更のリクエストボディ。
// 誤操作防止のため、Confirmにtrueを指定しない限り受け付けない。
type statusChangeRequest struct {
	Confirm bool `json:"confirm"`
}

// updateApplicationStatusRequest は選考状態更新のリクエストボディ。
type updateApplicationStatusRequest struct {
	Status model.ApplicationStatus `json:"status"`
}

// MyOffers は自社求人の一覧を返す。
// GET /api/company/offers
func (h *CompanyHandler) MyOffers(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	offers, err := h.service.MyOffers(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, offers)
}

// SubmitOffer は求人の作成・更新を処理する。
// POST /api/company/offers
func (h *CompanyHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	var req submitOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	offer, err := h.service.SubmitOffer(r.Context(), user.ID, req.EditingID, req.OfferInput)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if req.EditingID != "" {
		status = http.StatusOK
	}
	writeJSONResponse(w, status, offer)
}

// OfferDetail は自社求人1件を返す（編集フォームの初期値用）。
// GET /api/company/offers/{id}
func (h *CompanyHandler) OfferDetail(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	offers, err := h.service.MyOffers(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	offerID := chi.URLParam(r, "id")
	for _, offer := range offers {
		if offer.ID == offerID {
			writeJSONResponse(w, http.StatusOK, offer)
			return
		}
	}
	writeAPIErrorResponse(w, http.StatusNotFound, model.NewOfferNotFoundError(offerID))
}

// CloseOffer は求人の掲載終了を処理する。
// POST /api/company/offers/{id}/close
func (h *CompanyHandler) CloseOffer(w http.ResponseWriter, r *http.Request) {
	h.changeOfferStatus(w, r, h.service.CloseOffer)
}

// ActivateOffer は求人の再公開を処理する。
// POST /api/company/offers/{id}/activate
func (h *CompanyHandler) ActivateOffer(w http.ResponseWriter, r *http.Request) {
	h.changeOfferStatus(w, r, h.service.ActivateOffer)
}

// changeOfferStatus は確認フラグを検証したうえで掲載状態を変更する。
func (h *CompanyHandler) changeOfferStatus(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, companyID, offerID string) (*model.Offer, error)) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if !req.Confirm {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewConfirmationRequiredError())
		return
	}

	offer, err := change(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, offer)
}

// DeleteOffer は求人の削除を処理する。応募も連動して削除される。
// DELETE /api/company/offers/{id}?confirm=true
func (h *CompanyHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewConfirmationRequiredError())
		return
	}

	if err := h.service.DeleteOffer(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Applicants は自社求人への応募者一覧を返す。
// GET /api/company/offers/{id}/applicants
func (h *CompanyHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	views, err := h.service.Applicants(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toApplicantResponses(views))
}

// ApplicantDetail は応募者1名の詳細を返す。
// GET /api/company/offers/{id}/applicants/{candidateID}
func (h *CompanyHandler) ApplicantDetail(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	view, err := h.service.ApplicantDetail(r.Context(), user.ID, chi.URLParam(r, "id"), chi.URLParam(r, "candidateID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toApplicantResponse(*view))
}

// UpdateApplicationStatus は応募の選考状態更新を処理する。
// PATCH /api/company/applications/{id}/status
func (h *CompanyHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	var req updateApplicationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	app, err := h.service.UpdateApplicationStatus(r.Context(), user.ID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, app)
}

// UpdateProfile は企業プロフィールの更新を処理する。
// PUT /api/company/profile
func (h *CompanyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	var input company.ProfileInput
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

// applicantResponse は応募者情報のAPIレスポンス。候補者のパスワードは含めない。
type applicantResponse struct {
	Application model.Application `json:"application"`
	Candidate   *userResponse     `json:"candidate,omitempty"`
}

func toApplicantResponse(view company.ApplicantView) applicantResponse {
	resp := applicantResponse{Application: view.Application}
	if view.Candidate != nil {
		u := toUserResponse(view.Candidate)
		resp.Candidate = &u
	}
	return resp
}

func toApplicantResponses(views []company.ApplicantView) []applicantResponse {
	resps := make([]applicantResponse, 0, len(views))
	for _, view := range views {
		resps = append(resps, toApplicantResponse(view))
	}
	return resps
}
