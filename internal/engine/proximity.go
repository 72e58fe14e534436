package engine

import (
	"math"
	"sort"

	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/geo"
)

// NearbyCamera is a camera annotated with its distance from the query
// center.
type NearbyCamera struct {
	db.SpeedCamera
	DistanceMeters int `json:"distance_meters"`
}

// NearbyReport is a live report annotated with its distance from the
// query center and the minutes until it expires.
type NearbyReport struct {
	db.CommunityReport
	DistanceMeters   int `json:"distance_meters"`
	ExpiresInMinutes int `json:"expires_in_minutes"`
}

// NearbyData bundles the camera and report results for one query.
type NearbyData struct {
	Cameras []NearbyCamera `json:"cameras"`
	Reports []NearbyReport `json:"reports"`
}

// NearbyCameras returns active cameras within radiusKm of center,
// sorted ascending by distance. The bounding box is only a coarse
// pre-filter; each candidate is re-checked with the exact great-circle
// distance before inclusion.
func (e *Engine) NearbyCameras(center geo.Coordinate, radiusKm float64) ([]NearbyCamera, error) {
	if err := validateQuery(center, radiusKm); err != nil {
		return nil, err
	}
	e.countQuery("cameras")

	box := geo.NewBoundingBox(center, radiusKm)
	candidates, err := e.store.CamerasInBox(box, true)
	if err != nil {
		return nil, err
	}

	results := make([]NearbyCamera, 0, len(candidates))
	distances := make(map[string]float64, len(candidates))
	for _, cam := range candidates {
		distance := geo.DistanceMeters(center, cam.Coordinate())
		if distance > radiusKm*1000 {
			continue
		}
		distances[cam.ID] = distance
		results = append(results, NearbyCamera{
			SpeedCamera:    cam,
			DistanceMeters: int(math.Round(distance)),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return distances[results[i].ID] < distances[results[j].ID]
	})
	return results, nil
}

// NearbyReports returns active, unexpired reports within radiusKm of
// center, sorted ascending by distance. Expiry is evaluated at read
// time: expired rows may still exist in storage but are never surfaced.
func (e *Engine) NearbyReports(center geo.Coordinate, radiusKm float64) ([]NearbyReport, error) {
	if err := validateQuery(center, radiusKm); err != nil {
		return nil, err
	}
	e.countQuery("reports")

	now := e.clock.Now().UTC()
	box := geo.NewBoundingBox(center, radiusKm)
	candidates, err := e.store.ReportsInBox(box, now)
	if err != nil {
		return nil, err
	}

	results := make([]NearbyReport, 0, len(candidates))
	distances := make(map[string]float64, len(candidates))
	for _, rpt := range candidates {
		distance := geo.DistanceMeters(center, rpt.Coordinate())
		if distance > radiusKm*1000 {
			continue
		}
		distances[rpt.ID] = distance
		results = append(results, NearbyReport{
			CommunityReport:  rpt,
			DistanceMeters:   int(math.Round(distance)),
			ExpiresInMinutes: int(math.Round(rpt.ExpiresAt.Sub(now).Minutes())),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return distances[results[i].ID] < distances[results[j].ID]
	})
	return results, nil
}

// Nearby composes the camera and report proximity queries for a single
// center and radius. The two result sets are independent; no
// cross-filtering is applied.
func (e *Engine) Nearby(center geo.Coordinate, radiusKm float64) (*NearbyData, error) {
	cameras, err := e.NearbyCameras(center, radiusKm)
	if err != nil {
		return nil, err
	}
	reports, err := e.NearbyReports(center, radiusKm)
	if err != nil {
		return nil, err
	}
	e.countQuery("combined")

	return &NearbyData{Cameras: cameras, Reports: reports}, nil
}

func validateQuery(center geo.Coordinate, radiusKm float64) error {
	if !center.Valid() {
		return &ValidationError{Field: "coordinate", Reason: "latitude must be in [-90,90] and longitude in [-180,180]"}
	}
	if radiusKm <= 0 {
		return &ValidationError{Field: "radius_km", Reason: "must be positive"}
	}
	return nil
}

func (e *Engine) countQuery(kind string) {
	if e.metrics != nil {
		e.metrics.NearbyQueries.WithLabelValues(kind).Inc()
	}
}
