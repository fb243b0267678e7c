package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/section"
)

// SectionManagerInterface はセクションハンドラーが必要とするインターフェース。
type SectionManagerInterface interface {
	// Show は指定セクションへ遷移し、全セクション状態とロード結果を返す。
	Show(ctx context.Context, sessionID string, role model.Role, sectionID string) ([]section.State, any, error)
	// States は全セクション状態を返す。
	States(sessionID string, role model.Role) ([]section.State, error)
}

// SectionHandler はダッシュボードのセクション切替のHTTPハンドラー。
type SectionHandler struct {
	manager SectionManagerInterface
}

// NewSectionHandler はSectionHandlerを生成する。
func NewSectionHandler(manager SectionManagerInterface) *SectionHandler {
	return &SectionHandler{manager: manager}
}

// sectionsResponse はセクション状態のAPIレスポンス。
type sectionsResponse struct {
	Sections []section.State `json:"sections"`
	Data     any             `json:"data,omitempty"`
}

// States は現在の全セクション状態を返す。
// GET /api/sections
func (h *SectionHandler) States(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	states, err := h.manager.States(sessionID, user.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sectionsResponse{Sections: states})
}

// Show は指定セクションへの遷移を処理する。
// POST /api/sections/{id}
// ロードコールバックの結果をdataフィールドに含めて返す。
func (h *SectionHandler) Show(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	states, data, err := h.manager.Show(r.Context(), sessionID, user.Role, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sectionsResponse{Sections: states, Data: data})
}
