package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/drivesafe/roadwatch/internal/api"
	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/engine"
	"github.com/drivesafe/roadwatch/internal/observability"
)

var (
	listen          = flag.String("listen", envOr("ROADWATCH_LISTEN", ":8080"), "Listen address")
	dbPath          = flag.String("db", envOr("ROADWATCH_DB", "roadwatch.db"), "Path to the sqlite database")
	dataDir         = flag.String("data-dir", envOr("ROADWATCH_DATA_DIR", "data"), "Directory served by the download endpoint")
	migrationsDir   = flag.String("migrations", "migrations", "Path to the schema migrations directory")
	compactInterval = flag.Duration("compact-interval", time.Hour, "How often to purge expired reports (0 disables)")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Optional .env for local development; flags and env cover production.
	_ = godotenv.Load()
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// "roadwatch migrate up|down|status" manages the schema and exits.
	if flag.Arg(0) == "migrate" {
		if err := runMigrate(database, flag.Arg(1)); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	metrics := observability.NewMetrics()
	eng := engine.New(database, clockwork.NewRealClock(), metrics)

	mux := http.NewServeMux()
	database.AttachAdminRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	apiMux := api.NewServer(database, eng, *dataDir).ServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.CORSMiddleware(apiMux)))

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if *compactInterval > 0 {
		g.Go(func() error {
			err := eng.RunCompactor(ctx, *compactInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

func runMigrate(database *db.DB, action string) error {
	switch action {
	case "up":
		return database.MigrateUp(*migrationsDir)
	case "down":
		return database.MigrateDown(*migrationsDir)
	case "status", "":
		version, dirty, err := database.MigrateVersion(*migrationsDir)
		if err != nil {
			return err
		}
		log.Printf("schema version %d (dirty=%v)", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down, or status)", action)
	}
}
