package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobdesk/internal/auth"
	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, input auth.RegisterInput) (*model.User, error)
	// Login はメールアドレスとパスワードでログインし、セッションを発行する。
	Login(ctx context.Context, email, password string) (*model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// SessionDropper はログアウト時にセッション付随状態を破棄するインターフェース。
// section.Managerの部分集合として定義する。
type SessionDropper interface {
	Drop(sessionID string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // 秒
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions middleware.SessionFinder
	dropper  SessionDropper
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions middleware.SessionFinder, dropper SessionDropper, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		dropper:  dropper,
		config:   config,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードは含めない。
type userResponse struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	Role        model.Role          `json:"role"`
	DisplayName string              `json:"display_name"`
	FullName    string              `json:"full_name,omitempty"`
	CVURL       string              `json:"cv_url,omitempty"`
	Skills      []string            `json:"skills,omitempty"`
	WorkHistory []model.WorkHistory `json:"work_history,omitempty"`
	CompanyName string              `json:"company_name,omitempty"`
	LogoURL     string              `json:"logo_url,omitempty"`
	Sector      string              `json:"sector,omitempty"`
	Description string              `json:"description,omitempty"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		DisplayName: user.DisplayName(),
		FullName:    user.FullName,
		CVURL:       user.CVURL,
		Skills:      user.Skills,
		WorkHistory: user.WorkHistory,
		CompanyName: user.CompanyName,
		LogoURL:     user.LogoURL,
		Sector:      user.Sector,
		Description: user.Description,
	}
}

// Register はユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toUserResponse(user))
}

// Login はログインを処理し、セッションIDをHTTP Only Cookieに設定する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONResponse(w, http.StatusOK, toUserResponse(sess.User))
}

// Logout はセッションを破棄し、Cookieを削除する。
// POST /auth/logout
// Cookieがない場合でも204を返す（冪等）。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
		if h.dropper != nil {
			h.dropper.Drop(cookie.Value)
		}
	}

	// Cookieを無効化
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在ログイン中のユーザーを返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	sess, err := h.sessions.Find(r.Context(), cookie.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if sess == nil || sess.User == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialsError())
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(sess.User))
}
