package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hitoshi/jobdesk/internal/auth"
	"github.com/hitoshi/jobdesk/internal/candidate"
	"github.com/hitoshi/jobdesk/internal/company"
	"github.com/hitoshi/jobdesk/internal/config"
	"github.com/hitoshi/jobdesk/internal/database"
	"github.com/hitoshi/jobdesk/internal/handler"
	"github.com/hitoshi/jobdesk/internal/logger"
	"github.com/hitoshi/jobdesk/internal/metrics"
	"github.com/hitoshi/jobdesk/internal/middleware"
	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/repository"
	"github.com/hitoshi/jobdesk/internal/resource"
	"github.com/hitoshi/jobdesk/internal/resourced"
	"github.com/hitoshi/jobdesk/internal/section"
	"github.com/hitoshi/jobdesk/internal/security"
	"github.com/hitoshi/jobdesk/internal/session"
)

// Init はアプリケーションの初期化を行う。
// .envがあれば読み込み、JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. .envの読み込み（存在しない場合は環境変数のみを使用する）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandResourced:
		return runResourced(cfg, args[1:])
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// redisHealth はhandler.HealthCheckerをRedisクライアントに適合させるアダプタ。
type redisHealth struct {
	client *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

// runServe はダッシュボードAPIサーバーモードで起動する。
// Redis接続を開き、リソースサーバーへのクライアントと全依存関係を
// ワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. セッションストア（Redis）
	redisClient, err := session.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to open redis: %w", err)
	}
	defer redisClient.Close()

	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL())

	slog.Info("redis connection established", slog.String("addr", cfg.RedisAddr))

	// 2. メトリクスコレクタ
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リソースサーバークライアントとリポジトリ
	resourceClient := resource.New(cfg.ResourceBaseURL, &http.Client{Timeout: 10 * time.Second}, collector)
	userRepo := repository.NewResourceUserRepo(resourceClient)
	offerRepo := repository.NewResourceOfferRepo(resourceClient)
	appRepo := repository.NewResourceApplicationRepo(resourceClient)

	// 4. セキュリティサービスの初期化
	sanitizer := security.NewContentSanitizer()

	// 5. ドメインサービスの初期化
	authService := auth.NewService(userRepo, sessions, slog.Default())
	candidateService := candidate.NewService(offerRepo, userRepo, appRepo, sanitizer, collector, slog.Default())
	companyService := company.NewService(offerRepo, userRepo, appRepo, sanitizer, collector, slog.Default())

	// 6. セクションマネージャの構築
	sectionManager := section.NewManager()
	registerSectionLoads(sectionManager, candidateService, companyService)

	// 7. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configのレート値はreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ApplyRate = rate.Limit(float64(cfg.RateLimitApply) / 60.0)
	rateLimiterCfg.ApplyBurst = cfg.RateLimitApply

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:    rateLimiter,
		Logger:         slog.Default(),
		StatusRecorder: collector,

		HealthChecker: redisHealth{client: redisClient},
		Gatherer:      registry,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		SessionDropper:   sectionManager,
		SessionRefresher: sessions,

		CandidateService: candidateService,
		CompanyService:   companyService,

		SectionManager: sectionManager,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	return serveHTTP(router, cfg.ServerPort, "API server")
}

// registerSectionLoads はセクション表示時のデータロードを登録する。
// 各コールバックは現在ユーザーをコンテキストから取得する。
// パラメータ付きのセクション（求人詳細など）は専用エンドポイント側で
// データを取得するため、ここでは登録しない。
func registerSectionLoads(manager *section.Manager, candidateService *candidate.Service, companyService *company.Service) {
	manager.RegisterLoad(model.RoleCandidate, section.SectionOffers, func(ctx context.Context) (any, error) {
		return candidateService.ListOffers(ctx, candidate.OfferFilter{})
	})
	manager.RegisterLoad(model.RoleCandidate, section.SectionMyApplications, func(ctx context.Context) (any, error) {
		user, err := middleware.UserFromContext(ctx)
		if err != nil {
			return nil, err
		}
		return candidateService.MyApplications(ctx, user.ID)
	})
	manager.RegisterLoad(model.RoleCandidate, section.SectionCompanies, func(ctx context.Context) (any, error) {
		return candidateService.ListCompanies(ctx)
	})
	manager.RegisterLoad(model.RoleCandidate, section.SectionProfile, func(ctx context.Context) (any, error) {
		return middleware.UserFromContext(ctx)
	})

	manager.RegisterLoad(model.RoleCompany, section.SectionMyOffers, func(ctx context.Context) (any, error) {
		user, err := middleware.UserFromContext(ctx)
		if err != nil {
			return nil, err
		}
		return companyService.MyOffers(ctx, user.ID)
	})
	manager.RegisterLoad(model.RoleCompany, section.SectionProfile, func(ctx context.Context) (any, error) {
		return middleware.UserFromContext(ctx)
	})
}

// runResourced はリソースサーバーモードで起動する。
// デフォルトではPostgresバックエンドを使用し、-memフラグで
// インメモリバックエンド（ローカル開発・テスト用）に切り替えられる。
func runResourced(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resourced", flag.ContinueOnError)
	useMemory := fs.Bool("mem", false, "use in-memory store instead of Postgres")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse resourced flags: %w", err)
	}

	var store resourced.CollectionStore
	if *useMemory {
		slog.Info("resource server using in-memory store")
		store = resourced.NewMemoryStore()
	} else {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for resourced mode (or pass -mem)")
		}
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		slog.Info("database connection established",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		)
		store = resourced.NewPostgresStore(db)
	}

	api := resourced.NewHandler(store, slog.Default())
	return serveHTTP(api.Routes(), cfg.ResourcePort, "resource server")
}

// serveHTTP はHTTPサーバーを起動し、SIGINT/SIGTERMでグレースフルシャットダウンする。
func serveHTTP(h http.Handler, port, name string) error {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate mode")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
