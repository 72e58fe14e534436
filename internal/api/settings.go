package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drivesafe/roadwatch/internal/db"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.showSettings(w, r)
	case http.MethodPost:
		s.updateSettings(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) showSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.GetSettings()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve settings: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

// updateSettings fully replaces the configuration. There is no
// partial-field merge: omitted fields become zero and will be rejected.
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings db.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if settings.MobileCameraTTLMinutes <= 0 || settings.PoliceCheckTTLMinutes <= 0 ||
		settings.DuplicateRadiusMeters <= 0 || settings.DuplicateTimeWindowMinutes <= 0 ||
		settings.RateLimitMinutes <= 0 {
		s.writeJSONError(w, http.StatusBadRequest, "All settings values must be positive")
		return
	}

	if err := s.db.ReplaceSettings(settings); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update settings: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}
