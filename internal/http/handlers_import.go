package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/core"
)

// handleImportExpenses takes a multipart upload with a "file" part and a
// "userId" field. It answers 200 when at least one row was imported.
func (s *Server) handleImportExpenses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(w, r, core.NewValidationError("file", "File is too large"))
			return
		}
		s.writeError(w, r, core.NewValidationError("file", "Invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("userId")), 10, 64)
	if err != nil || userID <= 0 {
		s.writeError(w, r, core.NewValidationError("userId", "Invalid user ID"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, core.NewValidationError("file", "Please select a file to upload"))
		return
	}
	defer file.Close()

	res, err := s.deps.Imports.Import(r.Context(), userID, header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.ImportedCount == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}
