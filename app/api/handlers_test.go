package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
	"github.com/lysyi3m/sportwire/app/pipeline"
	"github.com/lysyi3m/sportwire/app/store"
	"github.com/lysyi3m/sportwire/app/tasks"
)

type stubArticleRepo struct {
	articles []feed.Article
}

func (r *stubArticleRepo) GetAll() ([]feed.Article, error) { return r.articles, nil }

func (r *stubArticleRepo) GetByCategory(category string) ([]feed.Article, error) {
	result := make([]feed.Article, 0)
	for _, a := range r.articles {
		if a.Category == category {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *stubArticleRepo) GetCount() (int, error)                     { return len(r.articles), nil }
func (r *stubArticleRepo) Exists(id string) (bool, error)             { return false, nil }
func (r *stubArticleRepo) Insert(article feed.Article) error          { return nil }
func (r *stubArticleRepo) UpdateScores(articles []feed.Article) error { return nil }
func (r *stubArticleRepo) UpdateCategories(a []feed.Article) error    { return nil }
func (r *stubArticleRepo) UpdateRanks(ordered []feed.Article) error   { return nil }
func (r *stubArticleRepo) MarkUnparseable(ids []string) error         { return nil }
func (r *stubArticleRepo) Delete(ids []string) error                  { return nil }
func (r *stubArticleRepo) SourceNames() ([]string, error)             { return []string{"BBC Sport"}, nil }

type stubMetadataRepo struct{}

func (r *stubMetadataRepo) Get() (*store.Metadata, error) {
	return &store.Metadata{
		LastUpdated:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		TotalArticles: 2,
		Sources:       []string{"BBC Sport"},
	}, nil
}

func (r *stubMetadataRepo) Touch(totalArticles int, sources []string) error { return nil }
func (r *stubMetadataRepo) SetScoring(t []string, d map[string]int) error   { return nil }
func (r *stubMetadataRepo) SetLastRanked(t time.Time) error                 { return nil }
func (r *stubMetadataRepo) SetLastCategorization(t time.Time) error         { return nil }

type stubScheduler struct {
	enqueued []tasks.TaskInterface
}

func (s *stubScheduler) Start() {}
func (s *stubScheduler) Stop()  {}
func (s *stubScheduler) EnqueueTask(t tasks.TaskInterface) error {
	s.enqueued = append(s.enqueued, t)
	return nil
}

func newTestServer(apiAccessKey string) (*stubScheduler, http.Handler) {
	articleRepo := &stubArticleRepo{
		articles: []feed.Article{
			{ID: "f1", Title: "Football story", Category: "football", HybridRank: 1},
			{ID: "c1", Title: "Cricket story", Category: "cricket", HybridRank: 2},
		},
	}
	scheduler := &stubScheduler{}
	orchestrator := pipeline.NewOrchestrator(nil, pipeline.NewScorer(),
		pipeline.NewFreshness(24*time.Hour), pipeline.NewDeduplicator(0.75, 0.85),
		pipeline.NewCategorizer(), pipeline.NewRanker(),
		articleRepo, &stubMetadataRepo{}, nil, nil)

	handler := NewHandler(articleRepo, &stubMetadataRepo{}, orchestrator, scheduler, 1)
	return scheduler, NewServer(handler, apiAccessKey)
}

func TestHandler_GetArticles(t *testing.T) {
	_, server := newTestServer("")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/articles", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var document store.Document
	if err := json.Unmarshal(recorder.Body.Bytes(), &document); err != nil {
		t.Fatalf("invalid document JSON: %v", err)
	}
	if len(document.Articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(document.Articles))
	}
	if recorder.Header().Get("X-Article-Count") != "2" {
		t.Errorf("unexpected article count header: %q", recorder.Header().Get("X-Article-Count"))
	}
}

func TestHandler_GetArticlesByCategory(t *testing.T) {
	_, server := newTestServer("")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/articles/football", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var document store.Document
	if err := json.Unmarshal(recorder.Body.Bytes(), &document); err != nil {
		t.Fatal(err)
	}
	if len(document.Articles) != 1 || document.Articles[0].ID != "f1" {
		t.Errorf("expected only the football article, got %+v", document.Articles)
	}
	if document.Metadata.TotalArticles != 1 {
		t.Errorf("category document total should be scoped, got %d", document.Metadata.TotalArticles)
	}
}

func TestHandler_GetArticlesByCategory_Unknown(t *testing.T) {
	_, server := newTestServer("")

	for _, category := range []string{"curling", "uncategorized"} {
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, httptest.NewRequest("GET", "/articles/"+category, nil))

		if recorder.Code != http.StatusNotFound {
			t.Errorf("category %q: expected 404, got %d", category, recorder.Code)
		}
	}
}

func TestHandler_GetHealth(t *testing.T) {
	_, server := newTestServer("")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["articles"] != float64(2) {
		t.Errorf("expected article count in health, got %v", health["articles"])
	}
}

func TestHandler_TriggerRun_RequiresAuth(t *testing.T) {
	scheduler, server := newTestServer("secret")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/run", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", recorder.Code)
	}

	request := httptest.NewRequest("POST", "/api/run", nil)
	request.Header.Set("X-API-Key", "wrong")
	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", recorder.Code)
	}

	request = httptest.NewRequest("POST", "/api/run", nil)
	request.Header.Set("X-API-Key", "secret")
	recorder = httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with valid key, got %d", recorder.Code)
	}

	if len(scheduler.enqueued) != 1 {
		t.Errorf("expected 1 enqueued task, got %d", len(scheduler.enqueued))
	}
}

func TestHandler_TriggerRun_BearerToken(t *testing.T) {
	_, server := newTestServer("secret")

	request := httptest.NewRequest("POST", "/api/run", nil)
	request.Header.Set("Authorization", "Bearer secret")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with bearer token, got %d", recorder.Code)
	}
}

func TestHandler_TriggerRun_DisabledWithoutKey(t *testing.T) {
	_, server := newTestServer("")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/run", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 when API is disabled, got %d", recorder.Code)
	}
}
