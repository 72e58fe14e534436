package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drivesafe/roadwatch/internal/geo"
)

// Report types recognised by the service.
const (
	ReportTypeMobileCamera = "mobile_camera"
	ReportTypePoliceCheck  = "police_check"
)

// ValidReportType reports whether t is one of the known report types.
func ValidReportType(t string) bool {
	return t == ReportTypeMobileCamera || t == ReportTypePoliceCheck
}

// CommunityReport is an ephemeral user-submitted hazard. Reports are
// never deleted on expiry; read paths filter on expires_at instead.
type CommunityReport struct {
	ID            string    `json:"id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	ReportType    string    `json:"report_type"`
	UserID        string    `json:"user_id"`
	Confirmations int       `json:"confirmations"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      bool      `json:"is_active"`
}

// Coordinate returns the report's position.
func (r *CommunityReport) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

const reportColumns = `id, latitude, longitude, report_type, user_id,
	confirmations, created_at, expires_at, is_active`

// InsertReport persists a new report. If ID is empty a UUID is
// generated; a zero confirmation count defaults to 1.
func (db *DB) InsertReport(rpt *CommunityReport) error {
	if rpt.ID == "" {
		rpt.ID = uuid.New().String()
	}
	if rpt.Confirmations == 0 {
		rpt.Confirmations = 1
	}

	isActiveInt := 0
	if rpt.IsActive {
		isActiveInt = 1
	}

	_, err := db.Exec(`
		INSERT INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rpt.ID, rpt.Latitude, rpt.Longitude, rpt.ReportType, rpt.UserID,
		rpt.Confirmations, rpt.CreatedAt.Unix(), rpt.ExpiresAt.Unix(), isActiveInt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (db *DB) GetReport(id string) (*CommunityReport, error) {
	row := db.QueryRow(`
		SELECT `+reportColumns+`
		FROM reports
		WHERE id = ?`, id)

	rpt, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rpt, nil
}

// ReportByUserAndTypeSince returns the user's most recent report of the
// given type created at or after since, or nil if there is none. Used
// for rate limiting, so expiry and the active flag are deliberately
// ignored.
func (db *DB) ReportByUserAndTypeSince(userID, reportType string, since time.Time) (*CommunityReport, error) {
	row := db.QueryRow(`
		SELECT `+reportColumns+`
		FROM reports
		WHERE user_id = ? AND report_type = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, reportType, since.Unix())

	rpt, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recent report: %w", err)
	}
	return rpt, nil
}

// ActiveReportsByTypeSince returns active, unexpired reports of the
// given type created at or after since, oldest first. The stable
// ordering makes the duplicate-merge tie-break deterministic
// (earliest-created report wins).
func (db *DB) ActiveReportsByTypeSince(reportType string, since, now time.Time) ([]CommunityReport, error) {
	rows, err := db.Query(`
		SELECT `+reportColumns+`
		FROM reports
		WHERE report_type = ? AND is_active = 1
		  AND expires_at > ? AND created_at >= ?
		ORDER BY created_at ASC
		LIMIT 100`,
		reportType, now.Unix(), since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query active reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// IncrementConfirmations atomically adds one to a report's confirmation
// count and returns the new count. The increment happens in the
// database so racing confirmations cannot lose updates.
func (db *DB) IncrementConfirmations(id string) (int, error) {
	var count int
	err := db.QueryRow(`
		UPDATE reports
		SET confirmations = confirmations + 1
		WHERE id = ?
		RETURNING confirmations`, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("report not found")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment confirmations: %w", err)
	}
	return count, nil
}

// ReportsInBox retrieves active reports within the box that have not
// expired as of the given time. The box is a coarse pre-filter; callers
// re-check with the exact distance.
func (db *DB) ReportsInBox(box geo.BoundingBox, notExpiredAsOf time.Time) ([]CommunityReport, error) {
	rows, err := db.Query(`
		SELECT `+reportColumns+`
		FROM reports
		WHERE latitude >= ? AND latitude <= ?
		  AND longitude >= ? AND longitude <= ?
		  AND is_active = 1 AND expires_at > ?
		LIMIT 500`,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, notExpiredAsOf.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query reports in box: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// PurgeExpiredReports deletes reports that expired before the given
// time. Purely a storage-hygiene pass: correctness never depends on it
// because every read path filters on expires_at.
func (db *DB) PurgeExpiredReports(before time.Time) (int64, error) {
	result, err := db.Exec(`DELETE FROM reports WHERE expires_at <= ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired reports: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func scanReport(row *sql.Row) (*CommunityReport, error) {
	var rpt CommunityReport
	var isActiveInt int
	var createdAtUnix, expiresAtUnix int64

	err := row.Scan(
		&rpt.ID,
		&rpt.Latitude,
		&rpt.Longitude,
		&rpt.ReportType,
		&rpt.UserID,
		&rpt.Confirmations,
		&createdAtUnix,
		&expiresAtUnix,
		&isActiveInt,
	)
	if err != nil {
		return nil, err
	}

	rpt.IsActive = isActiveInt == 1
	rpt.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	rpt.ExpiresAt = time.Unix(expiresAtUnix, 0).UTC()
	return &rpt, nil
}

func scanReports(rows *sql.Rows) ([]CommunityReport, error) {
	var reports []CommunityReport
	for rows.Next() {
		var rpt CommunityReport
		var isActiveInt int
		var createdAtUnix, expiresAtUnix int64

		err := rows.Scan(
			&rpt.ID,
			&rpt.Latitude,
			&rpt.Longitude,
			&rpt.ReportType,
			&rpt.UserID,
			&rpt.Confirmations,
			&createdAtUnix,
			&expiresAtUnix,
			&isActiveInt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		rpt.IsActive = isActiveInt == 1
		rpt.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		rpt.ExpiresAt = time.Unix(expiresAtUnix, 0).UTC()
		reports = append(reports, rpt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}
