package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jobdesk/internal/metrics"
	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// セッションストアのRedisクライアントなどが実装する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder

	// ヘルスチェック・メトリクス
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer

	// 認証
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig
	SessionDropper SessionDropper

	// セッション追従
	SessionRefresher SessionRefresher

	// ワークフロー
	CandidateService CandidateServiceInterface
	CompanyService   CompanyServiceInterface

	// セクション
	SectionManager SectionManagerInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → LoggingMiddleware → RecoveryMiddleware
//	→（/auth, /api）CSRFMiddleware →（/apiのみ）SessionMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// /health、/metrics、/api/csrf-tokenは認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionFinder, deps.SessionDropper, deps.AuthConfig)
	candidateHandler := NewCandidateHandler(deps.CandidateService, deps.SessionRefresher)
	companyHandler := NewCompanyHandler(deps.CompanyService, deps.SessionRefresher)
	sectionHandler := NewSectionHandler(deps.SectionManager)

	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート
	r.Group(func(r chi.Router) {
		r.Use(csrf)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: CSRF → Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// セクション切替
		r.Route("/api/sections", func(r chi.Router) {
			r.Get("/", sectionHandler.States)
			r.Post("/{id}", sectionHandler.Show)
		})

		// 求職者ダッシュボード
		r.Route("/api/candidate", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleCandidate))

			r.Get("/offers", candidateHandler.ListOffers)
			r.Route("/offers/{id}", func(r chi.Router) {
				r.Get("/", candidateHandler.OfferDetail)
				// POST /api/candidate/offers/{id}/apply - 応募（専用レート制限を追加）
				r.With(deps.RateLimiter.ApplyMiddleware()).Post("/apply", candidateHandler.Apply)
			})
			r.Get("/applications", candidateHandler.MyApplications)
			r.Get("/companies", candidateHandler.ListCompanies)
			r.Get("/companies/{id}/offers", candidateHandler.CompanyOffers)
			r.Put("/profile", candidateHandler.UpdateProfile)
		})

		// 企業ダッシュボード
		r.Route("/api/company", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleCompany))

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", companyHandler.MyOffers)
				r.Post("/", companyHandler.SubmitOffer)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", companyHandler.OfferDetail)
					r.Post("/close", companyHandler.CloseOffer)
					r.Post("/activate", companyHandler.ActivateOffer)
					r.Delete("/", companyHandler.DeleteOffer)

					r.Get("/applicants", companyHandler.Applicants)
					r.Get("/applicants/{candidateID}", companyHandler.ApplicantDetail)
				})
			})

			r.Patch("/applications/{id}/status", companyHandler.UpdateApplicationStatus)
			r.Put("/profile", companyHandler.UpdateProfile)
		})
	})

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// セッションストアへの到達性を確認する。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
