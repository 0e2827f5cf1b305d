package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dairyledger/internal/core"
	"dairyledger/internal/services"
	"dairyledger/internal/store"
)

// handleRecords serves the collection endpoint for one ledger kind:
// GET lists, POST creates, PUT updates by body id, DELETE removes by query id.
func (s *Server) handleRecords(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listRecords(w, r, svc)
		case http.MethodPost:
			s.createRecord(w, r, svc)
		case http.MethodPut:
			s.updateRecord(w, r, svc)
		case http.MethodDelete:
			s.deleteRecord(w, r, svc)
		default:
			methodNotAllowed(w, "GET, POST, PUT, DELETE")
		}
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, svc *services.RecordService) {
	ctx := r.Context()
	resource := svc.Kind().Resource()

	var (
		records []core.Record
		err     error
	)

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	startDate := strings.TrimSpace(q.Get("startDate"))
	endDate := strings.TrimSpace(q.Get("endDate"))

	switch {
	case category != "":
		records, err = svc.ByCategory(ctx, core.Category(category))
	case startDate != "" && endDate != "":
		records, err = svc.ByDateRange(ctx, startDate, endDate)
	default:
		records, err = svc.List(ctx)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list records", "error", err, "resource", resource)
		writeError(w, http.StatusInternalServerError, "failed to fetch "+resource)
		return
	}

	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request, svc *services.RecordService) {
	ctx := r.Context()
	resource := svc.Kind().Resource()

	var draft core.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := svc.Create(ctx, draft)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create record", "error", err, "resource", resource)
		writeError(w, http.StatusInternalServerError, "failed to create record")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request, svc *services.RecordService) {
	ctx := r.Context()
	resource := svc.Kind().Resource()

	var body struct {
		ID string `json:"id"`
		core.Patch
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ID == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	record, err := svc.Update(ctx, body.ID, body.Patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to update record",
			"error", err, "resource", resource, "record_id", body.ID)
		writeError(w, http.StatusInternalServerError, "failed to update record")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, svc *services.RecordService) {
	ctx := r.Context()
	resource := svc.Kind().Resource()

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	if err := svc.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to delete record",
			"error", err, "resource", resource, "record_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
