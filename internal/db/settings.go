package db

import (
	"database/sql"
	"fmt"
)

// Settings is the single mutable configuration row consumed by the
// report lifecycle engine. It is read at the start of every decision so
// changes take effect on the very next request.
type Settings struct {
	MobileCameraTTLMinutes     int `json:"mobile_camera_ttl_minutes"`
	PoliceCheckTTLMinutes      int `json:"police_check_ttl_minutes"`
	DuplicateRadiusMeters      int `json:"duplicate_radius_meters"`
	DuplicateTimeWindowMinutes int `json:"duplicate_time_window_minutes"`
	RateLimitMinutes           int `json:"rate_limit_minutes"`
}

// DefaultSettings returns the configuration used before any has been
// stored. Mobile camera deployments average 60-90 minutes and police
// checks 45-60, hence the defaults.
func DefaultSettings() Settings {
	return Settings{
		MobileCameraTTLMinutes:     75,
		PoliceCheckTTLMinutes:      52,
		DuplicateRadiusMeters:      200,
		DuplicateTimeWindowMinutes: 15,
		RateLimitMinutes:           5,
	}
}

// GetSettings retrieves the stored settings, or the defaults if none
// have ever been stored.
func (db *DB) GetSettings() (Settings, error) {
	var s Settings
	err := db.QueryRow(`
		SELECT mobile_camera_ttl_minutes, police_check_ttl_minutes,
			duplicate_radius_meters, duplicate_time_window_minutes,
			rate_limit_minutes
		FROM settings
		WHERE id = 1`).Scan(
		&s.MobileCameraTTLMinutes,
		&s.PoliceCheckTTLMinutes,
		&s.DuplicateRadiusMeters,
		&s.DuplicateTimeWindowMinutes,
		&s.RateLimitMinutes,
	)
	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// ReplaceSettings stores s as the configuration, fully replacing any
// previous row. Last write wins; there is no partial-field merge.
func (db *DB) ReplaceSettings(s Settings) error {
	_, err := db.Exec(`
		INSERT INTO settings (
			id, mobile_camera_ttl_minutes, police_check_ttl_minutes,
			duplicate_radius_meters, duplicate_time_window_minutes,
			rate_limit_minutes
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			mobile_camera_ttl_minutes = excluded.mobile_camera_ttl_minutes,
			police_check_ttl_minutes = excluded.police_check_ttl_minutes,
			duplicate_radius_meters = excluded.duplicate_radius_meters,
			duplicate_time_window_minutes = excluded.duplicate_time_window_minutes,
			rate_limit_minutes = excluded.rate_limit_minutes`,
		s.MobileCameraTTLMinutes,
		s.PoliceCheckTTLMinutes,
		s.DuplicateRadiusMeters,
		s.DuplicateTimeWindowMinutes,
		s.RateLimitMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
