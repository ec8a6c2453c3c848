package example

import (
	"context"
	"errors"
	"testing"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/notification"
	"github.com/dyohan9/bothub-engine/internal/repository"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
	"github.com/dyohan9/bothub-engine/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	repoSvc := repo.NewService(repos, notification.NewLogMailer())
	return NewService(repos, repoSvc), repos
}

func TestCreateExample(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "fly to Paris",
		Intent:       "travel",
		Entities:     []EntityRequest{{Start: 7, End: 12, Entity: "city"}},
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}
	if example.ID == 0 {
		t.Error("example ID should be assigned")
	}
	if example.Version == nil || example.Version.Language != "en" {
		t.Error("example should land in the base language version")
	}

	// 同一文本同一意图不可重复
	if _, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "fly to Paris",
		Intent:       "travel",
	}); err == nil {
		t.Error("duplicate text and intent should be rejected")
	}
}

func TestCreateExampleValidation(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	other := testutil.CreateUser(t, repos.DB, "other")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	// 意图和实体至少其一
	if _, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
	}); err == nil {
		t.Error("example without intent and entities should be rejected")
	}

	// 实体区间越界
	if _, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hi",
		Intent:       "greet",
		Entities:     []EntityRequest{{Start: 0, End: 99, Entity: "w"}},
	}); !errors.Is(err, model.ErrInvalidEntitySpan) {
		t.Errorf("error = %v, want ErrInvalidEntitySpan", err)
	}

	// 读者不可贡献
	if _, err := svc.CreateExample(ctx, other, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
		Intent:       "greet",
	}); !errors.Is(err, model.ErrNotAllowed) {
		t.Errorf("error = %v, want ErrNotAllowed", err)
	}

	// 匿名不可贡献
	if _, err := svc.CreateExample(ctx, nil, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
		Intent:       "greet",
	}); !errors.Is(err, model.ErrNotAllowed) {
		t.Errorf("anonymous error = %v, want ErrNotAllowed", err)
	}
}

func TestDeleteExample(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
		Intent:       "greet",
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}

	if err := svc.DeleteExample(ctx, owner, example.ID); err != nil {
		t.Fatalf("DeleteExample() error = %v", err)
	}

	reloaded, err := repos.Example.GetByID(example.ID)
	if err != nil {
		t.Fatalf("GetByID() after delete error = %v", err)
	}
	if !reloaded.IsDeleted() {
		t.Error("example should be soft deleted, row must stay")
	}

	// 重复删除报冲突
	if err := svc.DeleteExample(ctx, owner, example.ID); !errors.Is(err, model.ErrAlreadyDeleted) {
		t.Errorf("second delete error = %v, want ErrAlreadyDeleted", err)
	}
}

func TestCreateTranslation(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "fly to Paris",
		Intent:       "travel",
		Entities:     []EntityRequest{{Start: 7, End: 12, Entity: "city"}},
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}

	translation, err := svc.CreateTranslation(ctx, owner, example.ID, &CreateTranslationRequest{
		Language: "pt",
		Text:     "voar para Paris",
		Entities: []EntityRequest{{Start: 10, End: 15, Entity: "city"}},
	})
	if err != nil {
		t.Fatalf("CreateTranslation() error = %v", err)
	}
	if translation.Language != "pt" {
		t.Errorf("language = %q, want pt", translation.Language)
	}
}

func TestCreateTranslationSameLanguage(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
		Intent:       "greet",
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}

	if _, err := svc.CreateTranslation(ctx, owner, example.ID, &CreateTranslationRequest{
		Language: "en",
		Text:     "hello again",
	}); !errors.Is(err, model.ErrSameLanguage) {
		t.Errorf("error = %v, want ErrSameLanguage", err)
	}
}

func TestCreateTranslationEntityMismatch(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "fly to Paris",
		Intent:       "travel",
		Entities:     []EntityRequest{{Start: 7, End: 12, Entity: "city"}},
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}

	_, err = svc.CreateTranslation(ctx, owner, example.ID, &CreateTranslationRequest{
		Language: "pt",
		Text:     "voar para Paris amanhã",
		Entities: []EntityRequest{
			{Start: 10, End: 15, Entity: "city"},
			{Start: 16, End: 22, Entity: "date"},
		},
	})
	if !errors.Is(err, model.ErrEntityMismatch) {
		t.Fatalf("error = %v, want ErrEntityMismatch", err)
	}

	var mismatch *model.EntityMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatal("error should carry both entity multisets")
	}
	if mismatch.OriginalEntities["city"] != 1 {
		t.Errorf("original entities = %v, want city once", mismatch.OriginalEntities)
	}
	if mismatch.Entities["date"] != 1 {
		t.Errorf("submitted entities = %v, want date once", mismatch.Entities)
	}

	// 位置不同但多重集一致是合法的
	if _, err := svc.CreateTranslation(ctx, owner, example.ID, &CreateTranslationRequest{
		Language: "pt",
		Text:     "para Paris voar",
		Entities: []EntityRequest{{Start: 5, End: 10, Entity: "city"}},
	}); err != nil {
		t.Errorf("order-independent multiset should pass, got %v", err)
	}
}

func TestListTranslations(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example, err := svc.CreateExample(ctx, owner, &CreateExampleRequest{
		RepositoryID: repository.ID,
		Text:         "hello",
		Intent:       "greet",
	})
	if err != nil {
		t.Fatalf("CreateExample() error = %v", err)
	}

	for _, language := range []string{"pt", "de"} {
		if _, err := svc.CreateTranslation(ctx, owner, example.ID, &CreateTranslationRequest{
			Language: language,
			Text:     "hello in " + language,
		}); err != nil {
			t.Fatalf("CreateTranslation(%s) error = %v", language, err)
		}
	}

	translations, err := svc.ListTranslations(ctx, owner, example.ID)
	if err != nil {
		t.Fatalf("ListTranslations() error = %v", err)
	}
	if len(translations) != 2 {
		t.Errorf("len(translations) = %d, want 2", len(translations))
	}
}
