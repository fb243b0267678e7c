package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/jobdesk/internal/model"
)

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	findByCredentialsFn func(ctx context.Context, email, password string) (*model.User, error)
	listCompaniesFn     func(ctx context.Context) ([]*model.User, error)
	listByIDsFn         func(ctx context.Context, ids []string) ([]*model.User, error)
	createFn            func(ctx context.Context, user *model.User) (*model.User, error)
	replaceFn           func(ctx context.Context, user *model.User) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *mockUserRepo) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	return m.findByCredentialsFn(ctx, email, password)
}

func (m *mockUserRepo) ListCompanies(ctx context.Context) ([]*model.User, error) {
	return m.listCompaniesFn(ctx)
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	return m.listByIDsFn(ctx, ids)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return m.createFn(ctx, user)
}

func (m *mockUserRepo) Replace(ctx context.Context, user *model.User) (*model.User, error) {
	return m.replaceFn(ctx, user)
}

type mockSessionStore struct {
	createFn  func(ctx context.Context, user *model.User) (*model.Session, error)
	findFn    func(ctx context.Context, id string) (*model.Session, error)
	refreshFn func(ctx context.Context, id string, user *model.User) error
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockSessionStore) Create(ctx context.Context, user *model.User) (*model.Session, error) {
	return m.createFn(ctx, user)
}

func (m *mockSessionStore) Find(ctx context.Context, id string) (*model.Session, error) {
	return m.findFn(ctx, id)
}

func (m *mockSessionStore) Refresh(ctx context.Context, id string, user *model.User) error {
	return m.refreshFn(ctx, id, user)
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates candidate with empty profile fields", func(t *testing.T) {
		var created *model.User
		userRepo := &mockUserRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
				return nil, nil
			},
			createFn: func(ctx context.Context, user *model.User) (*model.User, error) {
				created = user
				return user, nil
			},
		}
		service := NewService(userRepo, &mockSessionStore{}, testLogger())

		user, err := service.Register(ctx, RegisterInput{
			Email:    "taro@example.com",
			Password: "secret",
			Role:     "candidate",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID == "" {
			t.Error("expected generated ID")
		}
		if user.Role != model.RoleCandidate {
			t.Errorf("expected role candidate, got %s", user.Role)
		}
		if created.Skills == nil || len(created.Skills) != 0 {
			t.Errorf("expected empty skills slice, got %v", created.Skills)
		}
		if created.WorkHistory == nil || len(created.WorkHistory) != 0 {
			t.Errorf("expected empty work history, got %v", created.WorkHistory)
		}
	})

	t.Run("rejects missing role before any lookup", func(t *testing.T) {
		lookedUp := false
		userRepo := &mockUserRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
				lookedUp = true
				return nil, nil
			},
		}
		service := NewService(userRepo, &mockSessionStore{}, testLogger())

		_, err := service.Register(ctx, RegisterInput{Email: "a@example.com", Password: "x", Role: ""})

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRole {
			t.Fatalf("expected INVALID_ROLE, got %v", err)
		}
		if lookedUp {
			t.Error("expected no repository call for invalid role")
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		service := NewService(&mockUserRepo{}, &mockSessionStore{}, testLogger())

		_, err := service.Register(ctx, RegisterInput{Email: "a@example.com", Password: "x", Role: "admin"})

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRole {
			t.Fatalf("expected INVALID_ROLE, got %v", err)
		}
	})

	t.Run("rejects taken email", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
				return &model.User{ID: "u1", Email: email}, nil
			},
		}
		service := NewService(userRepo, &mockSessionStore{}, testLogger())

		_, err := service.Register(ctx, RegisterInput{
			Email:    "taken@example.com",
			Password: "x",
			Role:     "company",
		})

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
			t.Fatalf("expected EMAIL_TAKEN, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues session on matching credentials", func(t *testing.T) {
		user := &model.User{ID: "u1", Email: "taro@example.com", Role: model.RoleCandidate}
		userRepo := &mockUserRepo{
			findByCredentialsFn: func(ctx context.Context, email, password string) (*model.User, error) {
				if email == user.Email && password == "secret" {
					return user, nil
				}
				return nil, nil
			},
		}
		sessions := &mockSessionStore{
			createFn: func(ctx context.Context, u *model.User) (*model.Session, error) {
				return &model.Session{ID: "sess-1", User: u}, nil
			},
		}
		service := NewService(userRepo, sessions, testLogger())

		sess, err := service.Login(ctx, "taro@example.com", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess.ID != "sess-1" {
			t.Errorf("expected session sess-1, got %s", sess.ID)
		}
		if sess.User.ID != "u1" {
			t.Errorf("expected user u1 in session, got %s", sess.User.ID)
		}
	})

	t.Run("rejects wrong credentials without distinguishing cause", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByCredentialsFn: func(ctx context.Context, email, password string) (*model.User, error) {
				return nil, nil
			},
		}
		service := NewService(userRepo, &mockSessionStore{}, testLogger())

		_, err := service.Login(ctx, "taro@example.com", "wrong")

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
			t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	deleted := ""
	sessions := &mockSessionStore{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	service := NewService(&mockUserRepo{}, sessions, testLogger())

	if err := service.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("expected session sess-1 deleted, got %q", deleted)
	}
}
