package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// downloadFile serves .zip files from the configured data directory.
// Anything else, including path traversal attempts, is a 404.
func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/download/")
	if filename == "" || filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".zip") {
		s.writeJSONError(w, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(s.dataDir, filename)
	if _, err := os.Stat(path); err != nil {
		s.writeJSONError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	http.ServeFile(w, r, path)
}
