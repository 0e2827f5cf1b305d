package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"dairyledger/internal/services"
	"dairyledger/internal/store"
)

// handleBackup returns the whole collection as a downloadable JSON blob.
func (s *Server) handleBackup(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}

		ctx := r.Context()
		resource := svc.Kind().Resource()

		data, err := svc.ExportJSON(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export backup", "error", err, "resource", resource)
			writeError(w, http.StatusInternalServerError, "failed to back up "+resource)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+resource+`-backup.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// handleRestore replaces the collection from an uploaded JSON blob.
func (s *Server) handleRestore(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}

		ctx := r.Context()
		resource := svc.Kind().Resource()

		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.ImportJSON(ctx, data); err != nil {
			slog.ErrorContext(ctx, "Failed to restore backup", "error", err, "resource", resource)
			writeError(w, http.StatusBadRequest, "invalid backup payload")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// handleFileBackups manages timestamped on-disk backup copies. Only the file
// backend supports these; other backends report the capability as missing.
func (s *Server) handleFileBackups(svc *services.RecordService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resource := svc.Kind().Resource()

		backupper, ok := svc.Store().(store.Backupper)
		if !ok {
			writeError(w, http.StatusInternalServerError, "file backups are not supported by this backend")
			return
		}

		switch r.Method {
		case http.MethodGet:
			backups, err := backupper.ListBackups(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to list backups", "error", err, "resource", resource)
				writeError(w, http.StatusInternalServerError, "failed to list backups")
				return
			}
			if backups == nil {
				backups = []string{}
			}
			writeJSON(w, http.StatusOK, map[string][]string{"backups": backups})

		case http.MethodPost:
			path, err := backupper.Backup(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to create backup", "error", err, "resource", resource)
				writeError(w, http.StatusInternalServerError, "failed to create backup")
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"backup": path})

		case http.MethodPut:
			var body struct {
				Backup string `json:"backup"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Backup == "" {
				writeError(w, http.StatusBadRequest, "backup path is required")
				return
			}
			if err := backupper.Restore(ctx, body.Backup); err != nil {
				if errors.Is(err, store.ErrInvalidBackup) {
					writeError(w, http.StatusBadRequest, "invalid backup reference")
					return
				}
				slog.ErrorContext(ctx, "Failed to restore from backup",
					"error", err, "resource", resource, "backup", body.Backup)
				writeError(w, http.StatusInternalServerError, "failed to restore backup")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})

		default:
			methodNotAllowed(w, "GET, POST, PUT")
		}
	}
}
