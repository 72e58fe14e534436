package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drivesafe/roadwatch/internal/geo"
)

// Camera types recognised by the service.
const (
	CameraTypeFixed             = "fixed"
	CameraTypeAverageSpeedStart = "average_speed_start"
	CameraTypeAverageSpeedEnd   = "average_speed_end"
	CameraTypeRedLight          = "red_light"
)

// ValidCameraType reports whether t is one of the known camera types.
func ValidCameraType(t string) bool {
	switch t {
	case CameraTypeFixed, CameraTypeAverageSpeedStart, CameraTypeAverageSpeedEnd, CameraTypeRedLight:
		return true
	}
	return false
}

// SpeedCamera is a static camera installation. Cameras never expire;
// admins deactivate them instead of deleting.
type SpeedCamera struct {
	ID           string    `json:"id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CameraType   string    `json:"camera_type"`
	RoadName     *string   `json:"road_name"`
	SpeedLimit   *int      `json:"speed_limit"`
	Direction    *string   `json:"direction"`
	Confidence   int       `json:"confidence"`
	IsActive     bool      `json:"is_active"`
	LastVerified time.Time `json:"last_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// Coordinate returns the camera's position.
func (c *SpeedCamera) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

const cameraColumns = `id, latitude, longitude, camera_type, road_name, speed_limit,
	direction, confidence, is_active, last_verified, created_at`

// CreateCamera inserts a new camera. If ID is empty a UUID is generated;
// zero timestamps default to now and confidence defaults to 100.
func (db *DB) CreateCamera(cam *SpeedCamera) error {
	if cam.ID == "" {
		cam.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if cam.CreatedAt.IsZero() {
		cam.CreatedAt = now
	}
	if cam.LastVerified.IsZero() {
		cam.LastVerified = now
	}
	if cam.Confidence == 0 {
		cam.Confidence = 100
	}

	isActiveInt := 0
	if cam.IsActive {
		isActiveInt = 1
	}

	_, err := db.Exec(`
		INSERT INTO cameras (`+cameraColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cam.ID, cam.Latitude, cam.Longitude, cam.CameraType, cam.RoadName,
		cam.SpeedLimit, cam.Direction, cam.Confidence, isActiveInt,
		cam.LastVerified.Unix(), cam.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create camera: %w", err)
	}
	return nil
}

// ActiveCameras retrieves every active camera.
func (db *DB) ActiveCameras() ([]SpeedCamera, error) {
	rows, err := db.Query(`
		SELECT ` + cameraColumns + `
		FROM cameras
		WHERE is_active = 1
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	return scanCameras(rows)
}

// CamerasInBox retrieves cameras whose coordinate lies within the box,
// optionally restricted to active cameras. The box is a coarse
// pre-filter; callers re-check with the exact distance.
func (db *DB) CamerasInBox(box geo.BoundingBox, activeOnly bool) ([]SpeedCamera, error) {
	query := `
		SELECT ` + cameraColumns + `
		FROM cameras
		WHERE latitude >= ? AND latitude <= ?
		  AND longitude >= ? AND longitude <= ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` LIMIT 1000`

	rows, err := db.Query(query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras in box: %w", err)
	}
	defer rows.Close()

	return scanCameras(rows)
}

// DeactivateCamera marks a camera inactive without deleting it.
func (db *DB) DeactivateCamera(id string) error {
	result, err := db.Exec(`UPDATE cameras SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate camera: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("camera not found")
	}
	return nil
}

// DeleteAllCameras removes every camera row. Used before seeding.
func (db *DB) DeleteAllCameras() error {
	if _, err := db.Exec(`DELETE FROM cameras`); err != nil {
		return fmt.Errorf("failed to delete cameras: %w", err)
	}
	return nil
}

func scanCameras(rows *sql.Rows) ([]SpeedCamera, error) {
	var cameras []SpeedCamera
	for rows.Next() {
		var cam SpeedCamera
		var isActiveInt int
		var lastVerifiedUnix, createdAtUnix int64

		err := rows.Scan(
			&cam.ID,
			&cam.Latitude,
			&cam.Longitude,
			&cam.CameraType,
			&cam.RoadName,
			&cam.SpeedLimit,
			&cam.Direction,
			&cam.Confidence,
			&isActiveInt,
			&lastVerifiedUnix,
			&createdAtUnix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}

		cam.IsActive = isActiveInt == 1
		cam.LastVerified = time.Unix(lastVerifiedUnix, 0).UTC()
		cam.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		cameras = append(cameras, cam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cameras: %w", err)
	}
	return cameras, nil
}
