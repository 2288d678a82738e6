package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duescope/internal/domain"
	"duescope/internal/ports"
)

type fakeEngine struct {
	result  domain.TimelineResult
	periods []domain.MembershipPeriod
	err     error
}

func (f *fakeEngine) ResolveMembershipPeriods(context.Context, string, time.Time, time.Time) ([]domain.MembershipPeriod, error) {
	return f.periods, f.err
}

func (f *fakeEngine) ReconcileCoverage(context.Context, string, time.Time, time.Time) (domain.TimelineResult, error) {
	return f.result, f.err
}

type fakeReports struct {
	enqueued []ports.ReportParams
	runs     map[uuid.UUID]ports.ReportRun
	rows     []ports.ReportRow
}

func (f *fakeReports) Enqueue(_ context.Context, params ports.ReportParams) (uuid.UUID, error) {
	f.enqueued = append(f.enqueued, params)
	return uuid.New(), nil
}

func (f *fakeReports) ClaimNext(context.Context) (ports.ReportRun, bool, error) {
	return ports.ReportRun{}, false, nil
}

func (f *fakeReports) SaveRow(context.Context, ports.ReportRow) error { return nil }

func (f *fakeReports) MarkCompleted(context.Context, uuid.UUID, int, int) error { return nil }

func (f *fakeReports) MarkFailed(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeReports) Get(_ context.Context, id uuid.UUID) (ports.ReportRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return ports.ReportRun{}, domain.ErrNotFound
	}
	return run, nil
}

func (f *fakeReports) ListRows(_ context.Context, _ uuid.UUID, filter ports.RowFilter) ([]ports.ReportRow, error) {
	var out []ports.ReportRow
	for _, row := range f.rows {
		if filter.OnlyGaps && row.GapDays == 0 {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func newTestServer(engine *fakeEngine, reports *fakeReports) http.Handler {
	if reports == nil {
		reports = &fakeReports{runs: map[uuid.UUID]ports.ReportRun{}}
	}
	return New(engine, reports, zap.NewNop()).Routes()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMemberCoverage(t *testing.T) {
	engine := &fakeEngine{result: domain.EmptyTimelineResult()}
	srv := newTestServer(engine, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/M-1/coverage", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.TimelineResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.Catchup.Summary != "no analysis available" {
		t.Fatalf("unexpected summary: %s", result.Catchup.Summary)
	}
}

func TestMemberCoverageNotFound(t *testing.T) {
	srv := newTestServer(&fakeEngine{err: domain.ErrNotFound}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/M-404/coverage", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMemberCoverageWindowValidation(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, nil)
	cases := []string{
		"/members/M-1/coverage?from=bogus",
		"/members/M-1/coverage?from=2024-03-01&to=2024-01-01",
		"/members/M-1/coverage?from=2019-01-01&to=2026-01-01",
	}
	for _, path := range cases {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestMemberPeriods(t *testing.T) {
	engine := &fakeEngine{periods: []domain.MembershipPeriod{{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}}}
	srv := newTestServer(engine, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/M-1/periods?from=2024-01-01&to=2024-12-31", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "2024-01-01") {
		t.Fatalf("expected period in body: %s", rec.Body.String())
	}
}

func TestEnqueueReport(t *testing.T) {
	reports := &fakeReports{runs: map[uuid.UUID]ports.ReportRun{}}
	srv := newTestServer(&fakeEngine{}, reports)

	body := strings.NewReader(`{"from":"2024-01-01","to":"2024-12-31","chapter":"Amsterdam","cadence":"Monthly"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(reports.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued run, got %d", len(reports.enqueued))
	}
	params := reports.enqueued[0]
	if params.Chapter != "Amsterdam" || params.Cadence != domain.CadenceMonthly {
		t.Fatalf("unexpected params: %+v", params)
	}
	if !strings.Contains(rec.Body.String(), "report_id") {
		t.Fatalf("expected report_id in body: %s", rec.Body.String())
	}
}

func TestEnqueueReportBadCadence(t *testing.T) {
	srv := newTestServer(&fakeEngine{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"cadence":"Fortnightly"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	id := uuid.New()
	reports := &fakeReports{runs: map[uuid.UUID]ports.ReportRun{
		id: {ID: id, Status: "completed", MemberCount: 12},
	}}
	srv := newTestServer(&fakeEngine{}, reports)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestListReportRowsFilters(t *testing.T) {
	id := uuid.New()
	reports := &fakeReports{
		runs: map[uuid.UUID]ports.ReportRun{id: {ID: id}},
		rows: []ports.ReportRow{
			{MemberID: "M-1", GapDays: 60},
			{MemberID: "M-2", GapDays: 0},
		},
	}
	srv := newTestServer(&fakeEngine{}, reports)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id.String()+"/rows?only_gaps=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Rows []ports.ReportRow `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Rows) != 1 || body.Rows[0].MemberID != "M-1" {
		t.Fatalf("expected only the gapped row, got %+v", body.Rows)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id.String()+"/rows?min_severity=Huge", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid severity, got %d", rec.Code)
	}
}
