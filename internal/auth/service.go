// Package auth はユーザー登録・ログイン・ログアウトを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/repository"
	"github.com/hitoshi/jobdesk/internal/session"
)

// Service は認証サービス。
type Service struct {
	userRepo repository.UserRepository
	sessions session.Store
	logger   *slog.Logger
}

// NewService は認証サービスを生成する。
func NewService(userRepo repository.UserRepository, sessions session.Store, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register は新規ユーザーを登録する。
// ロール未選択はリソースサーバーへの問い合わせより先に弾く。
// メールアドレスの一意性は「検索してから作成」の2段階で確認するため、
// 同時登録の競合までは防げない（リソースサーバー側に一意制約はない）。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	role := model.Role(strings.TrimSpace(input.Role))
	if !role.Valid() {
		return nil, model.NewInvalidRoleError()
	}

	email := strings.TrimSpace(input.Email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError(email)
	}

	user := &model.User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: input.Password,
		Role:     role,
	}
	// ロール固有フィールドは空のまま作成し、プロフィール編集で埋める
	if role == model.RoleCandidate {
		user.Skills = []string{}
		user.WorkHistory = []model.WorkHistory{}
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("role", string(created.Role)))
	return created, nil
}

// Login はメールアドレスとパスワードでログインし、新規セッションを発行する。
// 認証失敗の理由（ユーザー不在かパスワード不一致か）は区別せず同一エラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByCredentials(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	sess, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)))
	return sess, nil
}

// Logout はセッションを破棄する。既に存在しないセッションでもエラーにしない。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
