package training

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dyohan9/bothub-engine/internal/model"
	"github.com/dyohan9/bothub-engine/internal/nlp"
	"github.com/dyohan9/bothub-engine/internal/notification"
	"github.com/dyohan9/bothub-engine/internal/repository"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
	"github.com/dyohan9/bothub-engine/internal/testutil"
)

// fakeNLPClient 记录调用并返回固定响应
type fakeNLPClient struct {
	trainCalls    []string
	analyzeCalls  []string
	evaluateCalls []string
	err           error
}

func (c *fakeNLPClient) Train(ctx context.Context, authorizationID string) (*nlp.Response, error) {
	c.trainCalls = append(c.trainCalls, authorizationID)
	if c.err != nil {
		return nil, c.err
	}
	return &nlp.Response{StatusCode: 200, Payload: json.RawMessage(`{"queued":true}`)}, nil
}

func (c *fakeNLPClient) Analyze(ctx context.Context, authorizationID string, req *nlp.AnalyzeRequest) (*nlp.Response, error) {
	c.analyzeCalls = append(c.analyzeCalls, authorizationID)
	if c.err != nil {
		return nil, c.err
	}
	return &nlp.Response{StatusCode: 200, Payload: json.RawMessage(`{"intent":"greet"}`)}, nil
}

func (c *fakeNLPClient) Evaluate(ctx context.Context, authorizationID string, req *nlp.EvaluateRequest) (*nlp.Response, error) {
	c.evaluateCalls = append(c.evaluateCalls, authorizationID)
	if c.err != nil {
		return nil, c.err
	}
	return &nlp.Response{StatusCode: 200, Payload: json.RawMessage(`{"accuracy":0.9}`)}, nil
}

func newTestService(t *testing.T) (*Service, *repo.Service, *repository.Repositories, *fakeNLPClient) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)
	repoSvc := repo.NewService(repos, notification.NewLogMailer())
	client := &fakeNLPClient{}
	return NewService(repos, repoSvc, client), repoSvc, repos, client
}

// addExample 在指定语言的当前版本里落一条样本
func addExample(t *testing.T, repoSvc *repo.Service, repos *repository.Repositories, repository *model.Repository, language, text, intent string) *model.RepositoryExample {
	t.Helper()
	version, err := repoSvc.CurrentVersion(context.Background(), repository, language)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	example := &model.RepositoryExample{
		VersionID: version.ID,
		Text:      text,
		Intent:    intent,
	}
	if err := repos.Example.Create(example); err != nil {
		t.Fatalf("failed to create example: %v", err)
	}
	return example
}

func TestStartTraining(t *testing.T) {
	svc, _, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	version, err := svc.StartTraining(ctx, repository, owner, "en")
	if err != nil {
		t.Fatalf("StartTraining() error = %v", err)
	}
	if version.State() != model.VersionStateTraining {
		t.Errorf("state = %v, want training", version.State())
	}

	// 冻结后下一次拿到并冻结的是新版本
	next, err := svc.StartTraining(ctx, repository, owner, "en")
	if err != nil {
		t.Fatalf("second StartTraining() error = %v", err)
	}
	if next.ID == version.ID {
		t.Error("second training must freeze a fresh version")
	}
}

func TestStartTrainingPermissions(t *testing.T) {
	svc, _, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	other := testutil.CreateUser(t, repos.DB, "other")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	if _, err := svc.StartTraining(ctx, repository, other, "en"); !errors.Is(err, model.ErrTrainingNotAllowed) {
		t.Errorf("reader StartTraining error = %v, want ErrTrainingNotAllowed", err)
	}

	if _, err := svc.Train(ctx, repository, other, "en"); !errors.Is(err, model.ErrTrainingNotAllowed) {
		t.Errorf("reader Train error = %v, want ErrTrainingNotAllowed", err)
	}
}

func TestTrainDelegates(t *testing.T) {
	svc, _, repos, client := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	resp, err := svc.Train(ctx, repository, owner, "en")
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(client.trainCalls) != 1 {
		t.Fatalf("train calls = %d, want 1", len(client.trainCalls))
	}
	if client.trainCalls[0] == "" {
		t.Error("train should be called with the caller's authorization ID")
	}
}

func TestSaveTraining(t *testing.T) {
	svc, _, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	version, err := svc.StartTraining(ctx, repository, owner, "en")
	if err != nil {
		t.Fatalf("StartTraining() error = %v", err)
	}

	botData := []byte{0x01, 0x02, 0x03}
	trained, err := svc.SaveTraining(ctx, version.ID, botData)
	if err != nil {
		t.Fatalf("SaveTraining() error = %v", err)
	}
	if trained.State() != model.VersionStateTrained {
		t.Errorf("state = %v, want trained", trained.State())
	}

	data, err := svc.GetBotData(ctx, owner, version.ID)
	if err != nil {
		t.Fatalf("GetBotData() error = %v", err)
	}
	if len(data) != len(botData) {
		t.Errorf("bot data = %v, want %v", data, botData)
	}

	// 终态不可重复保存
	if _, err := svc.SaveTraining(ctx, version.ID, []byte("other")); !errors.Is(err, model.ErrAlreadyTrained) {
		t.Errorf("second SaveTraining error = %v, want ErrAlreadyTrained", err)
	}
}

func TestGetBotDataPermissions(t *testing.T) {
	svc, _, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	other := testutil.CreateUser(t, repos.DB, "other")
	repository := testutil.CreateRepository(t, repos.DB, owner, "secret", "en", true)

	version, err := svc.StartTraining(ctx, repository, owner, "en")
	if err != nil {
		t.Fatalf("StartTraining() error = %v", err)
	}
	if _, err := svc.SaveTraining(ctx, version.ID, []byte("data")); err != nil {
		t.Fatalf("SaveTraining() error = %v", err)
	}

	if _, err := svc.GetBotData(ctx, other, version.ID); !errors.Is(err, model.ErrNotAllowed) {
		t.Errorf("private bot data error = %v, want ErrNotAllowed", err)
	}
}

func TestRasaNLUData(t *testing.T) {
	svc, repoSvc, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	example := addExample(t, repoSvc, repos, repository, "en", "fly to Paris", "travel")
	if err := repos.DB.Create(&model.ExampleEntity{
		ExampleID:  example.ID,
		EntitySpan: model.EntitySpan{Start: 7, End: 12, Entity: "city"},
	}).Error; err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	addExample(t, repoSvc, repos, repository, "en", "what a day", "weather")

	version, err := repoSvc.CurrentVersion(ctx, repository, "en")
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}

	data, err := svc.RasaNLUData(ctx, version)
	if err != nil {
		t.Fatalf("RasaNLUData() error = %v", err)
	}
	if len(data.CommonExamples) != 2 {
		t.Fatalf("len(common_examples) = %d, want 2", len(data.CommonExamples))
	}

	found := false
	for _, rasaExample := range data.CommonExamples {
		for _, entity := range rasaExample.Entities {
			if entity.Entity == "city" && entity.Value == "Paris" {
				found = true
			}
		}
	}
	if !found {
		t.Error("entity value should be derived from the text")
	}
}

func TestRasaNLUDataSkipsInvalidTranslations(t *testing.T) {
	svc, repoSvc, repos, _ := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	// 有实体的样本翻译缺少实体标注，目标语言下无效
	withEntity := addExample(t, repoSvc, repos, repository, "en", "fly to Paris", "travel")
	if err := repos.DB.Create(&model.ExampleEntity{
		ExampleID:  withEntity.ID,
		EntitySpan: model.EntitySpan{Start: 7, End: 12, Entity: "city"},
	}).Error; err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	if err := repos.Example.CreateTranslation(&model.RepositoryTranslation{
		OriginalExampleID: withEntity.ID,
		Language:          "pt",
		Text:              "voar para Paris",
	}); err != nil {
		t.Fatalf("CreateTranslation() error = %v", err)
	}

	// 无实体样本的翻译没有问题
	plain := addExample(t, repoSvc, repos, repository, "en", "hello", "greet")
	if err := repos.Example.CreateTranslation(&model.RepositoryTranslation{
		OriginalExampleID: plain.ID,
		Language:          "pt",
		Text:              "olá",
	}); err != nil {
		t.Fatalf("CreateTranslation() error = %v", err)
	}

	ptVersion, err := repoSvc.CurrentVersion(ctx, repository, "pt")
	if err != nil {
		t.Fatalf("CurrentVersion(pt) error = %v", err)
	}

	data, err := svc.RasaNLUData(ctx, ptVersion)
	if err != nil {
		t.Fatalf("RasaNLUData() error = %v", err)
	}
	if len(data.CommonExamples) != 1 {
		t.Fatalf("len(common_examples) = %d, want 1", len(data.CommonExamples))
	}
	if data.CommonExamples[0].Text != "olá" {
		t.Errorf("text = %q, want %q", data.CommonExamples[0].Text, "olá")
	}
}

func TestAnalyzeAllowsAnonymous(t *testing.T) {
	svc, _, repos, client := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	resp, err := svc.Analyze(ctx, repository, nil, &nlp.AnalyzeRequest{Text: "hello", Language: "en"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(client.analyzeCalls) != 1 {
		t.Errorf("analyze calls = %d, want 1", len(client.analyzeCalls))
	}
}

func TestEvaluate(t *testing.T) {
	svc, repoSvc, repos, client := newTestService(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, repos.DB, "owner")
	other := testutil.CreateUser(t, repos.DB, "other")
	repository := testutil.CreateRepository(t, repos.DB, owner, "weather", "en", false)

	addExample(t, repoSvc, repos, repository, "en", "hello", "greet")

	// 意图不足两个
	if _, err := svc.Evaluate(ctx, repository, owner, &nlp.EvaluateRequest{Language: "en"}); err == nil {
		t.Error("evaluate with a single intent should fail")
	}

	addExample(t, repoSvc, repos, repository, "en", "goodbye", "farewell")

	// 无写权限
	if _, err := svc.Evaluate(ctx, repository, other, &nlp.EvaluateRequest{Language: "en"}); !errors.Is(err, model.ErrTrainingNotAllowed) {
		t.Errorf("reader evaluate error = %v, want ErrTrainingNotAllowed", err)
	}

	resp, err := svc.Evaluate(ctx, repository, owner, &nlp.EvaluateRequest{Language: "en"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(client.evaluateCalls) != 1 {
		t.Errorf("evaluate calls = %d, want 1", len(client.evaluateCalls))
	}
}
