package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/geo"
)

// CameraCreateRequest is the admin payload for inserting a camera.
type CameraCreateRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	CameraType string  `json:"camera_type"`
	RoadName   *string `json:"road_name"`
	SpeedLimit *int    `json:"speed_limit"`
	Direction  *string `json:"direction"`
}

func (s *Server) listNearbyCameras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	center, radiusKm, err := parseLocationQuery(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	cameras, err := s.engine.NearbyCameras(center, radiusKm)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cameras)
}

func (s *Server) createCamera(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CameraCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	coord := geo.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if !coord.Valid() {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid coordinate")
		return
	}
	if !db.ValidCameraType(req.CameraType) {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Unknown camera type %q", req.CameraType))
		return
	}

	cam := &db.SpeedCamera{
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CameraType: req.CameraType,
		RoadName:   req.RoadName,
		SpeedLimit: req.SpeedLimit,
		Direction:  req.Direction,
		IsActive:   true,
	}
	if err := s.db.CreateCamera(cam); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create camera: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, cam)
}

func (s *Server) listAllCameras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	cameras, err := s.db.ActiveCameras()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve cameras: %v", err))
		return
	}
	if cameras == nil {
		cameras = []db.SpeedCamera{}
	}
	s.writeJSON(w, http.StatusOK, cameras)
}

func (s *Server) seedCameras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	count, err := s.db.SeedCameras()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to seed cameras: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Seeded %d sample cameras", count),
		"count":   count,
	})
}
