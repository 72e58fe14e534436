// Package engine implements the report lifecycle: rate limiting per
// submitter, duplicate merging by space and time, TTL assignment, and
// proximity queries over the stored cameras and reports.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/geo"
	"github.com/drivesafe/roadwatch/internal/observability"
)

// Engine evaluates report submissions and serves proximity queries.
// Settings are re-read from the store on every decision so changes take
// effect on the next request.
type Engine struct {
	store   *db.DB
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// New creates an Engine. metrics may be nil.
func New(store *db.DB, clock clockwork.Clock, metrics *observability.Metrics) *Engine {
	return &Engine{
		store:   store,
		clock:   clock,
		metrics: metrics,
	}
}

// Submission is an incoming community report.
type Submission struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	ReportType string         `json:"report_type"`
	UserID     string         `json:"user_id"`
}

// Outcome is the decision for a submission. RateLimited and merged
// submissions are successful decisions, not errors: Accepted is false
// only for a rate-limit hit.
type Outcome struct {
	Accepted bool   `json:"success"`
	Message  string `json:"message"`
	ReportID string `json:"report_id,omitempty"`
}

// SubmitReport runs the lifecycle state machine for a submission:
// validate, rate-limit check, duplicate-merge check, and finally
// creation of a new report with a TTL from the current settings.
func (e *Engine) SubmitReport(sub Submission) (Outcome, error) {
	if err := validateSubmission(sub); err != nil {
		e.countSubmission(sub.ReportType, observability.OutcomeInvalid)
		return Outcome{}, err
	}

	settings, err := e.store.GetSettings()
	if err != nil {
		return Outcome{}, err
	}
	now := e.clock.Now().UTC()

	// Rate limit: one report per type per submitter per window,
	// regardless of location or whether the prior report expired.
	rateLimitWindow := time.Duration(settings.RateLimitMinutes) * time.Minute
	recent, err := e.store.ReportByUserAndTypeSince(sub.UserID, sub.ReportType, now.Add(-rateLimitWindow))
	if err != nil {
		return Outcome{}, err
	}
	if recent != nil {
		// Whole elapsed minutes, truncated: a report 4m59s old still
		// counts as 4 minutes, so the user is told to wait 1 more.
		elapsedMinutes := int(now.Sub(recent.CreatedAt).Minutes())
		waitMinutes := settings.RateLimitMinutes - elapsedMinutes
		e.countSubmission(sub.ReportType, observability.OutcomeRateLimited)
		return Outcome{
			Accepted: false,
			Message: fmt.Sprintf("Please wait %d more minutes before reporting another %s",
				waitMinutes, reportTypeLabel(sub.ReportType)),
		}, nil
	}

	// Duplicate merge: fold the submission into the earliest-created
	// live report of the same type within the radius and time window.
	window := time.Duration(settings.DuplicateTimeWindowMinutes) * time.Minute
	candidates, err := e.store.ActiveReportsByTypeSince(sub.ReportType, now.Add(-window), now)
	if err != nil {
		return Outcome{}, err
	}
	for _, existing := range candidates {
		if geo.DistanceMeters(sub.Coordinate, existing.Coordinate()) <= float64(settings.DuplicateRadiusMeters) {
			count, err := e.store.IncrementConfirmations(existing.ID)
			if err != nil {
				return Outcome{}, err
			}
			e.countSubmission(sub.ReportType, observability.OutcomeMerged)
			return Outcome{
				Accepted: true,
				Message:  fmt.Sprintf("Confirmed! %d users have reported this.", count),
				ReportID: existing.ID,
			}, nil
		}
	}

	// New report: the TTL is fixed by the settings in force now and is
	// never re-evaluated.
	ttlMinutes := settings.MobileCameraTTLMinutes
	if sub.ReportType == db.ReportTypePoliceCheck {
		ttlMinutes = settings.PoliceCheckTTLMinutes
	}

	rpt := &db.CommunityReport{
		Latitude:      sub.Coordinate.Latitude,
		Longitude:     sub.Coordinate.Longitude,
		ReportType:    sub.ReportType,
		UserID:        sub.UserID,
		Confirmations: 1,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(ttlMinutes) * time.Minute),
		IsActive:      true,
	}
	// Persist before responding: a failed insert must never have
	// produced a success outcome.
	if err := e.store.InsertReport(rpt); err != nil {
		return Outcome{}, err
	}

	e.countSubmission(sub.ReportType, observability.OutcomeAccepted)
	return Outcome{
		Accepted: true,
		Message:  "Reported. Thanks!",
		ReportID: rpt.ID,
	}, nil
}

func validateSubmission(sub Submission) error {
	if !sub.Coordinate.Valid() {
		return &ValidationError{Field: "coordinate", Reason: "latitude must be in [-90,90] and longitude in [-180,180]"}
	}
	if !db.ValidReportType(sub.ReportType) {
		return &ValidationError{Field: "report_type", Reason: fmt.Sprintf("unknown report type %q", sub.ReportType)}
	}
	if sub.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	return nil
}

// reportTypeLabel turns a report type into its user-facing form, e.g.
// "mobile_camera" -> "mobile camera".
func reportTypeLabel(reportType string) string {
	return strings.ReplaceAll(reportType, "_", " ")
}

func (e *Engine) countSubmission(reportType, outcome string) {
	if e.metrics != nil {
		e.metrics.Submissions.WithLabelValues(reportType, outcome).Inc()
	}
}
