package candidate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hitoshi/jobdesk/internal/model"
	"github.com/hitoshi/jobdesk/internal/security"
)

type mockOfferRepo struct {
	findByIDFn            func(ctx context.Context, id string) (*model.Offer, error)
	listActiveFn          func(ctx context.Context) ([]*model.Offer, error)
	listByCompanyFn       func(ctx context.Context, companyID string) ([]*model.Offer, error)
	listActiveByCompanyFn func(ctx context.Context, companyID string) ([]*model.Offer, error)
	listByIDsFn           func(ctx context.Context, ids []string) ([]*model.Offer, error)
	createFn              func(ctx context.Context, offer *model.Offer) (*model.Offer, error)
	replaceFn             func(ctx context.Context, offer *model.Offer) (*model.Offer, error)
	updateStatusFn        func(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error)
	deleteFn              func(ctx context.Context, id string) error
}

func (m *mockOfferRepo) FindByID(ctx context.Context, id string) (*model.Offer, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockOfferRepo) ListActive(ctx context.Context) ([]*model.Offer, error) {
	return m.listActiveFn(ctx)
}

func (m *mockOfferRepo) ListByCompany(ctx context.Context, companyID string) ([]*model.Offer, error) {
	return m.listByCompanyFn(ctx, companyID)
}

func (m *mockOfferRepo) ListActiveByCompany(ctx context.Context, companyID string) ([]*model.Offer, error) {
	return m.listActiveByCompanyFn(ctx, companyID)
}

func (m *mockOfferRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Offer, error) {
	return m.listByIDsFn(ctx, ids)
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	return m.createFn(ctx, offer)
}

func (m *mockOfferRepo) Replace(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	return m.replaceFn(ctx, offer)
}

func (m *mockOfferRepo) UpdateStatus(ctx context.Context, id string, status model.OfferStatus) (*model.Offer, error) {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockOfferRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

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

type mockAppRepo struct {
	findByIDFn                func(ctx context.Context, id string) (*model.Application, error)
	findByOfferAndCandidateFn func(ctx context.Context, offerID, candidateID string) (*model.Application, error)
	listByCandidateFn         func(ctx context.Context, candidateID string) ([]*model.Application, error)
	listByOfferFn             func(ctx context.Context, offerID string) ([]*model.Application, error)
	createFn                  func(ctx context.Context, app *model.Application) (*model.Application, error)
	updateStatusFn            func(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error)
	deleteFn                  func(ctx context.Context, id string) error
}

func (m *mockAppRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockAppRepo) FindByOfferAndCandidate(ctx context.Context, offerID, candidateID string) (*model.Application, error) {
	return m.findByOfferAndCandidateFn(ctx, offerID, candidateID)
}

func (m *mockAppRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.Application, error) {
	return m.listByCandidateFn(ctx, candidateID)
}

func (m *mockAppRepo) ListByOffer(ctx context.Context, offerID string) ([]*model.Application, error) {
	return m.listByOfferFn(ctx, offerID)
}

func (m *mockAppRepo) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	return m.createFn(ctx, app)
}

func (m *mockAppRepo) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockAppRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestService(offers *mockOfferRepo, users *mockUserRepo, apps *mockAppRepo) *Service {
	return NewService(offers, users, apps, security.NewContentSanitizer(), nil, testLogger())
}

func TestListOffers(t *testing.T) {
	ctx := context.Background()

	offers := []*model.Offer{
		{ID: "o1", Title: "Goエンジニア", CompanyID: "c1", Status: model.OfferStatusActive},
		{ID: "o2", Title: "データアナリスト", CompanyID: "c2", Status: model.OfferStatusActive},
		{ID: "o3", Title: "Goバックエンド", CompanyID: "deleted", Status: model.OfferStatusActive},
	}
	offerRepo := &mockOfferRepo{
		listActiveFn: func(ctx context.Context) ([]*model.Offer, error) {
			return offers, nil
		},
	}
	userRepo := &mockUserRepo{
		listByIDsFn: func(ctx context.Context, ids []string) ([]*model.User, error) {
			return []*model.User{
				{ID: "c1", Role: model.RoleCompany, CompanyName: "テック商事"},
				{ID: "c2", Role: model.RoleCompany, CompanyName: "データ工房"},
			}, nil
		},
	}
	service := newTestService(offerRepo, userRepo, &mockAppRepo{})

	t.Run("resolves company names with fallback", func(t *testing.T) {
		views, err := service.ListOffers(ctx, OfferFilter{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(views) != 3 {
			t.Fatalf("expected 3 offers, got %d", len(views))
		}
		if views[0].CompanyName != "テック商事" {
			t.Errorf("expected resolved company name, got %q", views[0].CompanyName)
		}
		if views[2].CompanyName != unknownCompanyName {
			t.Errorf("expected fallback company name, got %q", views[2].CompanyName)
		}
	})

	t.Run("filters by title case-insensitively", func(t *testing.T) {
		views, err := service.ListOffers(ctx, OfferFilter{TitleContains: "go"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("expected 2 offers, got %d", len(views))
		}
	})

	t.Run("combines title and company filters with AND", func(t *testing.T) {
		views, err := service.ListOffers(ctx, OfferFilter{TitleContains: "go", CompanyContains: "テック"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(views) != 1 || views[0].ID != "o1" {
			t.Fatalf("expected only o1, got %v", views)
		}
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	activeOffer := &model.Offer{ID: "o1", Title: "Goエンジニア", CompanyID: "c1", Status: model.OfferStatusActive}

	t.Run("creates pending application", func(t *testing.T) {
		offerRepo := &mockOfferRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Offer, error) {
				return activeOffer, nil
			},
		}
		appRepo := &mockAppRepo{
			findByOfferAndCandidateFn: func(ctx context.Context, offerID, candidateID string) (*model.Application, error) {
				return nil, nil
			},
			createFn: func(ctx context.Context, app *model.Application) (*model.Application, error) {
				return app, nil
			},
		}
		service := newTestService(offerRepo, &mockUserRepo{}, appRepo)

		app, err := service.Apply(ctx, "u1", "o1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if app.Status != model.ApplicationStatusPending {
			t.Errorf("expected pending status, got %s", app.Status)
		}
		if app.ID == "" {
			t.Error("expected generated application ID")
		}
		if app.SubmittedAt == "" {
			t.Error("expected submitted_at to be set")
		}
	})

	t.Run("rejects duplicate application", func(t *testing.T) {
		offerRepo := &mockOfferRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Offer, error) {
				return activeOffer, nil
			},
		}
		appRepo := &mockAppRepo{
			findByOfferAndCandidateFn: func(ctx context.Context, offerID, candidateID string) (*model.Application, error) {
				return &model.Application{ID: "a1", OfferID: offerID, CandidateID: candidateID}, nil
			},
		}
		service := newTestService(offerRepo, &mockUserRepo{}, appRepo)

		_, err := service.Apply(ctx, "u1", "o1")

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateApplication {
			t.Fatalf("expected DUPLICATE_APPLICATION, got %v", err)
		}
	})

	t.Run("rejects closed offer", func(t *testing.T) {
		offerRepo := &mockOfferRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Offer, error) {
				return &model.Offer{ID: id, Status: model.OfferStatusClosed}, nil
			},
		}
		service := newTestService(offerRepo, &mockUserRepo{}, &mockAppRepo{})

		_, err := service.Apply(ctx, "u1", "o1")

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeOfferNotActive {
			t.Fatalf("expected OFFER_NOT_ACTIVE, got %v", err)
		}
	})

	t.Run("rejects missing offer", func(t *testing.T) {
		offerRepo := &mockOfferRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.Offer, error) {
				return nil, nil
			},
		}
		service := newTestService(offerRepo, &mockUserRepo{}, &mockAppRepo{})

		_, err := service.Apply(ctx, "u1", "missing")

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeOfferNotFound {
			t.Fatalf("expected OFFER_NOT_FOUND, got %v", err)
		}
	})
}

func TestMyApplications(t *testing.T) {
	ctx := context.Background()

	appRepo := &mockAppRepo{
		listByCandidateFn: func(ctx context.Context, candidateID string) ([]*model.Application, error) {
			return []*model.Application{
				{ID: "a1", OfferID: "o1", CandidateID: candidateID, Status: model.ApplicationStatusAccepted},
				{ID: "a2", OfferID: "gone", CandidateID: candidateID, Status: model.ApplicationStatusPending},
			}, nil
		},
	}
	var requestedOfferIDs []string
	offerRepo := &mockOfferRepo{
		listByIDsFn: func(ctx context.Context, ids []string) ([]*model.Offer, error) {
			requestedOfferIDs = ids
			return []*model.Offer{
				{ID: "o1", Title: "Goエンジニア", CompanyID: "c1"},
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		listByIDsFn: func(ctx context.Context, ids []string) ([]*model.User, error) {
			return []*model.User{{ID: "c1", Role: model.RoleCompany, CompanyName: "テック商事"}}, nil
		},
	}
	service := newTestService(offerRepo, userRepo, appRepo)

	views, err := service.MyApplications(ctx, "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(views))
	}
	if len(requestedOfferIDs) != 2 {
		t.Errorf("expected batch resolution of 2 offer IDs, got %v", requestedOfferIDs)
	}
	if views[0].OfferTitle != "Goエンジニア" || views[0].CompanyName != "テック商事" {
		t.Errorf("expected resolved offer info, got %+v", views[0])
	}
	// 求人が消えた応募は求人欄が空のまま残る
	if views[1].OfferTitle != "" {
		t.Errorf("expected empty offer title for deleted offer, got %q", views[1].OfferTitle)
	}
}

func TestCompanyOffers(t *testing.T) {
	ctx := context.Background()

	t.Run("returns active offers with company name", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Role: model.RoleCompany, CompanyName: "テック商事"}, nil
			},
		}
		offerRepo := &mockOfferRepo{
			listActiveByCompanyFn: func(ctx context.Context, companyID string) ([]*model.Offer, error) {
				return []*model.Offer{{ID: "o1", CompanyID: companyID, Status: model.OfferStatusActive}}, nil
			},
		}
		service := newTestService(offerRepo, userRepo, &mockAppRepo{})

		views, err := service.CompanyOffers(ctx, "c1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(views) != 1 || views[0].CompanyName != "テック商事" {
			t.Fatalf("unexpected result: %+v", views)
		}
	})

	t.Run("rejects non-company user", func(t *testing.T) {
		userRepo := &mockUserRepo{
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Role: model.RoleCandidate}, nil
			},
		}
		service := newTestService(&mockOfferRepo{}, userRepo, &mockAppRepo{})

		_, err := service.CompanyOffers(ctx, "u1")

		apiErr := &model.APIError{}
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
			t.Fatalf("expected USER_NOT_FOUND, got %v", err)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		replaceFn: func(ctx context.Context, user *model.User) (*model.User, error) {
			return user, nil
		},
	}
	service := newTestService(&mockOfferRepo{}, userRepo, &mockAppRepo{})

	current := &model.User{
		ID:    "u1",
		Email: "taro@example.com",
		Role:  model.RoleCandidate,
	}
	updated, err := service.UpdateProfile(ctx, current, ProfileInput{
		FullName:   "山田 太郎",
		CVURL:      "https://example.com/cv.pdf",
		Skills:     "Go, PostgreSQL, , Redis",
		Experience: "バックエンド開発,テック商事,3;壊れたエントリ;SRE,データ工房,1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.FullName != "山田 太郎" {
		t.Errorf("unexpected full name: %q", updated.FullName)
	}
	if len(updated.Skills) != 3 {
		t.Fatalf("expected 3 skills, got %v", updated.Skills)
	}
	if updated.Skills[0] != "Go" || updated.Skills[2] != "Redis" {
		t.Errorf("unexpected skills: %v", updated.Skills)
	}
	if len(updated.WorkHistory) != 2 {
		t.Fatalf("expected 2 work history entries, got %v", updated.WorkHistory)
	}
	if updated.WorkHistory[0].Company != "テック商事" || updated.WorkHistory[1].Years != "1" {
		t.Errorf("unexpected work history: %+v", updated.WorkHistory)
	}
	// メールアドレスとロールは保持される
	if updated.Email != "taro@example.com" || updated.Role != model.RoleCandidate {
		t.Errorf("expected identity fields preserved, got %+v", updated)
	}
}

func TestUpdateProfileSanitizesInput(t *testing.T) {
	userRepo := &mockUserRepo{
		replaceFn: func(ctx context.Context, user *model.User) (*model.User, error) {
			return user, nil
		},
	}
	service := newTestService(&mockOfferRepo{}, userRepo, &mockAppRepo{})

	updated, err := service.UpdateProfile(context.Background(), &model.User{ID: "u1", Role: model.RoleCandidate}, ProfileInput{
		FullName: `<script>alert("x")</script>山田`,
		Skills:   "<b>Go</b>",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.FullName != "山田" {
		t.Errorf("expected script tag stripped, got %q", updated.FullName)
	}
	if len(updated.Skills) != 1 || updated.Skills[0] != "Go" {
		t.Errorf("expected tags stripped from skills, got %v", updated.Skills)
	}
}
