package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"dairyledger/internal/services"
	"dairyledger/internal/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport streams the whole collection as an xlsx attachment. An empty
// collection is a 404: there is nothing to download.
func (s *Server) handleExport(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}

		ctx := r.Context()
		resource := svc.Kind().Resource()

		records, err := svc.List(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load records for export", "error", err, "resource", resource)
			writeError(w, http.StatusInternalServerError, "failed to export "+resource)
			return
		}
		if len(records) == 0 {
			writeError(w, http.StatusNotFound, "no "+resource+" to export")
			return
		}

		codec := xlsx.NewCodec(svc.Kind())
		f, err := codec.Write(records)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build workbook", "error", err, "resource", resource)
			writeError(w, http.StatusInternalServerError, "failed to export "+resource)
			return
		}
		defer f.Close()

		filename := fmt.Sprintf("%s-%s.xlsx", resource, time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		if _, err := f.WriteTo(w); err != nil {
			// Headers are gone by now; all we can do is log.
			slog.ErrorContext(ctx, "Failed to stream workbook", "error", err, "resource", resource)
		}
	}
}

// handleImport replaces the whole collection with the uploaded workbook's
// rows. A workbook without the required sheet is rejected before anything is
// touched. Accepts either a multipart form with a "file" field or a raw
// xlsx body.
func (s *Server) handleImport(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}

		ctx := r.Context()
		resource := svc.Kind().Resource()

		body, err := importBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload")
			return
		}
		defer body.Close()

		codec := xlsx.NewCodec(svc.Kind())
		records, err := codec.Read(body)
		if err != nil {
			if errors.Is(err, xlsx.ErrSheetNotFound) {
				writeError(w, http.StatusBadRequest,
					fmt.Sprintf("workbook has no %q sheet", codec.SheetName()))
				return
			}
			writeError(w, http.StatusBadRequest, "invalid workbook")
			return
		}

		if err := svc.ReplaceAll(ctx, records); err != nil {
			slog.ErrorContext(ctx, "Failed to replace collection", "error", err, "resource", resource)
			writeError(w, http.StatusInternalServerError, "failed to import "+resource)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"imported": len(records),
		})
	}
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("read multipart file: %w", err)
		}
		return file, nil
	}
	return r.Body, nil
}
