package http

import (
	"log/slog"
	"net/http"
	"strings"

	"dairyledger/internal/core"
	"dairyledger/internal/services"
)

// handleReport returns the aggregate report for one ledger kind. An optional
// ?period= query (daily|weekly|monthly|yearly) adds trend buckets.
func (s *Server) handleReport(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}

		ctx := r.Context()
		resource := svc.Kind().Resource()

		report, err := svc.Report(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build report", "error", err, "resource", resource)
			writeError(w, http.StatusInternalServerError, "failed to build report")
			return
		}

		period := strings.TrimSpace(r.URL.Query().Get("period"))
		if period == "" {
			writeJSON(w, http.StatusOK, report)
			return
		}

		kind := core.PeriodKind(period)
		if !kind.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid period: must be daily, weekly, monthly, or yearly")
			return
		}

		trend, err := svc.Trend(ctx, kind)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build trend", "error", err, "resource", resource, "period", period)
			writeError(w, http.StatusInternalServerError, "failed to build report")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			core.Report
			Trend []core.PeriodBucket `json:"trend"`
		}{Report: report, Trend: trend})
	}
}
