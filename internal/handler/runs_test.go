package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"orbitwatch/internal/metrics"
	"orbitwatch/internal/models"
	"orbitwatch/internal/repository/memory"
	"orbitwatch/internal/service"
)

type stubRunner struct {
	report *service.RunReport
	err    error
	calls  int
	ctxErr error
}

func (s *stubRunner) RunOnce(ctx context.Context) (*service.RunReport, error) {
	s.calls++
	s.ctxErr = ctx.Err()
	return s.report, s.err
}

func newEngine(h *RunHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)
	(&HealthHandler{DryRun: true}).Register(r)
	return r
}

func TestTrigger_FailedRunStillReturnsReport(t *testing.T) {
	runner := &stubRunner{report: &service.RunReport{ID: "r1", State: models.RunFailed}, err: service.ErrRunFailed}
	r := newEngine(&RunHandler{Runner: runner})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data service.RunReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if body.Data.State != models.RunFailed || runner.calls != 1 {
		t.Fatalf("report=%+v calls=%d", body.Data, runner.calls)
	}
}

func TestTrigger_ClientDisconnectDoesNotCancelRun(t *testing.T) {
	runner := &stubRunner{report: &service.RunReport{ID: "r2", State: models.RunSuccess}}
	r := newEngine(&RunHandler{Runner: runner})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if runner.calls != 1 {
		t.Fatalf("got=%d want=1", runner.calls)
	}
	if runner.ctxErr != nil {
		t.Fatalf("run ctx err=%v want=nil", runner.ctxErr)
	}
}

func TestList_ReturnsStoredRuns(t *testing.T) {
	store := memory.New()
	started := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	_ = store.InsertTelemetryRun(context.Background(), &models.TelemetryRun{ID: "a", State: models.RunSuccess, StartedAt: started})
	_ = store.InsertTelemetryRun(context.Background(), &models.TelemetryRun{ID: "b", State: models.RunPartial, StartedAt: started.Add(time.Hour)})
	r := newEngine(&RunHandler{Repo: store, Metrics: metrics.New()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?state=partial", nil))
	var body struct {
		Data []service.RunReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err=%v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != "b" {
		t.Fatalf("runs=%+v", body.Data)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?state=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", rec.Code)
	}
}
