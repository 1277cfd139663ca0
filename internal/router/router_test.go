package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/criteria"
	"github.com/BerylCAtieno/document-compliance-api/internal/db"
	"github.com/BerylCAtieno/document-compliance-api/internal/extractor"
	"github.com/BerylCAtieno/document-compliance-api/internal/middleware"
	"github.com/BerylCAtieno/document-compliance-api/internal/prompt"
	"github.com/BerylCAtieno/document-compliance-api/internal/repository"
	"github.com/BerylCAtieno/document-compliance-api/internal/review"
	"github.com/BerylCAtieno/document-compliance-api/internal/services"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

type nopStreamer struct{}

func (nopStreamer) Stream(context.Context, completion.Request) (<-chan completion.Fragment, error) {
	ch := make(chan completion.Fragment)
	close(ch)
	return ch, nil
}

type failingChecker struct{}

func (failingChecker) Ping(context.Context) error { return errors.New("unreachable") }

func newTestHandler(t *testing.T, checkers map[string]middleware.HealthChecker) http.Handler {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	registry, err := extractor.New("docx")
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewRepository(database)
	logger := utils.NewNopLogger()
	svc := services.NewService(services.Dependencies{
		Repo:         repo,
		Extractor:    registry,
		Orchestrator: review.NewOrchestrator(nopStreamer{}, prompt.TemplateProtocol, logger),
		Catalog:      criteria.DefaultCatalog(),
	}, logger)

	if checkers == nil {
		checkers = map[string]middleware.HealthChecker{"database": repo}
	}
	return NewRouter(svc, Options{MaxFileSize: 1 << 20, Checkers: checkers}, logger)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]middleware.HealthChecker
		want     int
	}{
		{name: "healthy", want: http.StatusOK},
		{name: "storage down", checkers: map[string]middleware.HealthChecker{"storage": failingChecker{}}, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.checkers)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionFlowWithoutDocument(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil || session.ID == "" {
		t.Fatalf("decode session: %v %+v", err, session)
	}

	// No document uploaded yet: analysis is refused before streaming.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+session.ID+"/analyze", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("analyze status = %d, want 422", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+session.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+session.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("missing Access-Control-Allow-Origin, headers %v", rec.Header())
	}
}
