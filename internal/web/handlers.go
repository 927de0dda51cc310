package web

import (
	"net/http"

	"github.com/storefleet/importer/internal/core"
	"github.com/storefleet/importer/internal/logging"
)

// handleImport accepts a multipart spreadsheet upload and runs the import
// pipeline synchronously. The response always carries the full ImportResult,
// including the audit trail, whatever the outcome.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	logger := logging.FromContext(r.Context())
	logger.Info("import upload received", "file", header.Filename, "size", header.Size)

	result := s.pipeline.Run(r.Context(), file, header.Filename)

	logger.Info("import finished",
		"import_id", result.ImportID,
		"state", string(result.State),
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)

	writeJSON(w, statusFor(result), result)
}

// statusFor maps a pipeline outcome to an HTTP status. Rejections are the
// client's to fix; rollbacks and inconsistencies are server-side failures.
func statusFor(result *core.ImportResult) int {
	switch {
	case result.RollbackInconsistent:
		return http.StatusInternalServerError
	case result.State == core.StateRejected:
		return http.StatusUnprocessableEntity
	case result.State == core.StateRolledBack:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
