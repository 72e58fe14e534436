package api

import (
	"encoding/json"
	"net/http"

	"github.com/drivesafe/roadwatch/internal/engine"
	"github.com/drivesafe/roadwatch/internal/geo"
)

// ReportCreateRequest is a community report submission.
type ReportCreateRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ReportType string  `json:"report_type"`
	UserID     string  `json:"user_id"`
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ReportCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	outcome, err := s.engine.SubmitReport(engine.Submission{
		Coordinate: geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		ReportType: req.ReportType,
		UserID:     req.UserID,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	// Rate-limited submissions are decisions, not errors: still 200.
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) listNearbyReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	center, radiusKm, err := parseLocationQuery(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	reports, err := s.engine.NearbyReports(center, radiusKm)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) listNearby(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	center, radiusKm, err := parseLocationQuery(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	data, err := s.engine.Nearby(center, radiusKm)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if data.Cameras == nil {
		data.Cameras = []engine.NearbyCamera{}
	}
	if data.Reports == nil {
		data.Reports = []engine.NearbyReport{}
	}
	s.writeJSON(w, http.StatusOK, data)
}
