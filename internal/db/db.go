package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path and ensures the
// base schema exists. Schema changes beyond the base tables are handled
// by the versioned migrations in migrations/.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cameras (
			id                TEXT PRIMARY KEY,
			latitude          DOUBLE NOT NULL,
			longitude         DOUBLE NOT NULL,
			camera_type       TEXT NOT NULL,
			road_name         TEXT,
			speed_limit       BIGINT,
			direction         TEXT,
			confidence        BIGINT NOT NULL DEFAULT 100,
			is_active         INTEGER NOT NULL DEFAULT 1,
			last_verified     BIGINT NOT NULL,
			created_at        BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS reports (
			id                TEXT PRIMARY KEY,
			latitude          DOUBLE NOT NULL,
			longitude         DOUBLE NOT NULL,
			report_type       TEXT NOT NULL,
			user_id           TEXT NOT NULL,
			confirmations     BIGINT NOT NULL DEFAULT 1,
			created_at        BIGINT NOT NULL,
			expires_at        BIGINT NOT NULL,
			is_active         INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS settings (
			id                             INTEGER PRIMARY KEY CHECK (id = 1),
			mobile_camera_ttl_minutes      BIGINT NOT NULL,
			police_check_ttl_minutes       BIGINT NOT NULL,
			duplicate_radius_meters        BIGINT NOT NULL,
			duplicate_time_window_minutes  BIGINT NOT NULL,
			rate_limit_minutes             BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cameras_position ON cameras (latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_reports_position ON reports (latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_reports_user_type ON reports (user_id, report_type, created_at);
		CREATE INDEX IF NOT EXISTS idx_reports_type_created ON reports (report_type, created_at);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// AttachAdminRoutes mounts the debug surface: a tailSQL console for live
// queries against the hazard database and a gzip backup download.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://roadwatch.db", db.DB, &tailsql.DBOptions{
		Label: "Roadwatch DB",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			log.Printf("Failed to write backup file: %v", err)
		}
	}))
}
