package db

import (
	"os"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	fname := t.Name() + ".db"
	_ = os.Remove(fname)

	db, err := NewDB(fname)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	t.Helper()
	fname := t.Name() + ".db"
	db.Close()
	_ = os.Remove(fname)
	_ = os.Remove(fname + "-shm")
	_ = os.Remove(fname + "-wal")
}

// createTestReport inserts an active report created at createdAt that
// expires after ttl.
func createTestReport(t *testing.T, db *DB, reportType, userID string, lat, lon float64, createdAt time.Time, ttl time.Duration) *CommunityReport {
	t.Helper()

	rpt := &CommunityReport{
		Latitude:   lat,
		Longitude:  lon,
		ReportType: reportType,
		UserID:     userID,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(ttl),
		IsActive:   true,
	}
	if err := db.InsertReport(rpt); err != nil {
		t.Fatalf("InsertReport failed: %v", err)
	}
	return rpt
}
