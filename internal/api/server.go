package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/engine"
	"github.com/drivesafe/roadwatch/internal/geo"
)

// Version reported by the root endpoint.
const Version = "1.0.0"

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db      *db.DB
	engine  *engine.Engine
	dataDir string
}

func NewServer(db *db.DB, engine *engine.Engine, dataDir string) *Server {
	return &Server{
		db:      db,
		engine:  engine,
		dataDir: dataDir,
	}
}

// ServeMux returns the API routes. Callers mount it under /api.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.showRoot)
	mux.HandleFunc("/health", s.showHealth)
	mux.HandleFunc("/cameras", s.createCamera)
	mux.HandleFunc("/cameras/nearby", s.listNearbyCameras)
	mux.HandleFunc("/cameras/all", s.listAllCameras)
	mux.HandleFunc("/reports", s.createReport)
	mux.HandleFunc("/reports/nearby", s.listNearbyReports)
	mux.HandleFunc("/nearby", s.listNearby)
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/seed", s.seedCameras)
	mux.HandleFunc("/download/", s.downloadFile)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// CORSMiddleware allows cross-origin requests from the mobile clients.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine failures to HTTP statuses: validation
// errors are the caller's fault, anything else is a service error.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if engine.IsValidationError(err) {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSONError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) showRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Roadwatch API",
		"version": Version,
	})
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// parseLocationQuery extracts lat, lon, and radius_km (default 5) from
// the query string.
func parseLocationQuery(r *http.Request) (geo.Coordinate, float64, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return geo.Coordinate{}, 0, &engine.ValidationError{Field: "lat", Reason: "must be a number"}
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		return geo.Coordinate{}, 0, &engine.ValidationError{Field: "lon", Reason: "must be a number"}
	}

	radiusKm := 5.0
	if v := r.URL.Query().Get("radius_km"); v != "" {
		radiusKm, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return geo.Coordinate{}, 0, &engine.ValidationError{Field: "radius_km", Reason: "must be a number"}
		}
	}

	return geo.Coordinate{Latitude: lat, Longitude: lon}, radiusKm, nil
}
