package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"duescope/internal/domain"
	"duescope/internal/ports"
	"duescope/internal/services/coverage"
)

// maxWindowYears bounds explicit analysis windows to keep one request from
// walking decades of invoices.
const maxWindowYears = 5

type Server struct {
	engine  ports.CoverageReconciler
	reports ports.ReportRepository
	log     *zap.Logger
}

func New(engine ports.CoverageReconciler, reports ports.ReportRepository, log *zap.Logger) *Server {
	return &Server{engine: engine, reports: reports, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Route("/members/{memberID}", func(r chi.Router) {
		r.Get("/coverage", s.handleMemberCoverage)
		r.Get("/periods", s.handleMemberPeriods)
		r.Get("/timeline", s.handleMemberTimeline)
	})
	r.Post("/reports", s.handleEnqueueReport)
	r.Get("/reports/{runID}", s.handleGetReport)
	r.Get("/reports/{runID}/rows", s.handleListReportRows)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMemberCoverage(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.engine.ReconcileCoverage(r.Context(), memberID, from, to)
	if err != nil {
		s.writeEngineError(w, memberID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemberPeriods(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	periods, err := s.engine.ResolveMembershipPeriods(r.Context(), memberID, from, to)
	if err != nil {
		s.writeEngineError(w, memberID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": periods})
}

func (s *Server) handleMemberTimeline(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.engine.ReconcileCoverage(r.Context(), memberID, from, to)
	if err != nil {
		s.writeEngineError(w, memberID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": coverage.TimelineEvents(result),
		"stats":  result.Stats,
	})
}

func (s *Server) handleEnqueueReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From    string `json:"from,omitempty"`
		To      string `json:"to,omitempty"`
		Chapter string `json:"chapter,omitempty"`
		Cadence string `json:"cadence,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	params := ports.ReportParams{Chapter: body.Chapter}
	var err error
	if params.From, params.To, err = parseDates(body.From, body.To); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if params.Cadence, err = domain.ParseCadence(body.Cadence); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.reports.Enqueue(r.Context(), params)
	if err != nil {
		s.log.Error("enqueue report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"report_id": id.String()})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid report id"))
		return
	}
	run, err := s.reports.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("report not found"))
			return
		}
		s.log.Error("get report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListReportRows(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid report id"))
		return
	}
	var filter ports.RowFilter
	q := r.URL.Query()
	if v := q.Get("min_severity"); v != "" {
		if filter.MinSeverity, err = domain.ParseSeverity(v); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	filter.OnlyGaps = q.Get("only_gaps") == "true"
	filter.OnlyCatchup = q.Get("only_catchup") == "true"

	rows, err := s.reports.ListRows(r.Context(), runID, filter)
	if err != nil {
		s.log.Error("list report rows", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if rows == nil {
		rows = []ports.ReportRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) writeEngineError(w http.ResponseWriter, memberID string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New("member not found"))
		return
	}
	s.log.Error("coverage reconciliation", zap.String("member", memberID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

const dateLayout = "2006-01-02"

func parseWindow(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	return parseDates(q.Get("from"), q.Get("to"))
}

func parseDates(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		if from, err = time.Parse(dateLayout, fromStr); err != nil {
			return from, to, errors.New("from must be YYYY-MM-DD")
		}
	}
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			return from, to, errors.New("to must be YYYY-MM-DD")
		}
	}
	if !from.IsZero() && !to.IsZero() {
		if to.Before(from) {
			return from, to, errors.New("from must not be after to")
		}
		if to.After(from.AddDate(maxWindowYears, 0, 0)) {
			return from, to, errors.New("window exceeds 5 years")
		}
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
