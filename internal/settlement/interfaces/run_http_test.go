package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	settlementapp "rental-cloud/internal/settlement/application"
)

type stubRunner struct {
	summary *settlementapp.RunSummary
	err     error
	runs    int
}

func (r *stubRunner) Run(ctx context.Context) (*settlementapp.RunSummary, error) {
	_ = ctx
	r.runs++
	return r.summary, r.err
}

func TestRunHandlerReturnsSummary(t *testing.T) {
	runner := &stubRunner{summary: &settlementapp.RunSummary{
		RunID:              "run-1",
		SettlementsCreated: 3,
		SettlementsSkipped: 1,
	}}
	h, err := NewRunHandler(runner, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.runs != 1 {
		t.Fatalf("runs = %d", runner.runs)
	}
	var got settlementapp.RunSummary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-1" || got.SettlementsCreated != 3 || got.SettlementsSkipped != 1 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestRunHandlerRejectsGet(t *testing.T) {
	runner := &stubRunner{summary: &settlementapp.RunSummary{}}
	h, err := NewRunHandler(runner, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settlements/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if runner.runs != 0 {
		t.Fatal("runner should not have been invoked")
	}
}

func TestRunHandlerRunFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("registry unavailable")}
	h, err := NewRunHandler(runner, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
