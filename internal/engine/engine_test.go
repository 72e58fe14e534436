package engine

import (
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivesafe/roadwatch/internal/db"
	"github.com/drivesafe/roadwatch/internal/geo"
	"github.com/drivesafe/roadwatch/internal/observability"
)

var start = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *db.DB, *clockwork.FakeClock) {
	t.Helper()

	fname := t.Name() + ".db"
	_ = os.Remove(fname)

	store, err := db.NewDB(fname)
	require.NoError(t, err, "failed to create test DB")
	t.Cleanup(func() {
		store.Close()
		_ = os.Remove(fname)
		_ = os.Remove(fname + "-shm")
		_ = os.Remove(fname + "-wal")
	})

	clock := clockwork.NewFakeClockAt(start)
	return New(store, clock, observability.NewMetricsForTesting()), store, clock
}

func submit(lat, lon float64, reportType, userID string) Submission {
	return Submission{
		Coordinate: geo.Coordinate{Latitude: lat, Longitude: lon},
		ReportType: reportType,
		UserID:     userID,
	}
}

func TestSubmitReport_CreatesNewReport(t *testing.T) {
	e, store, _ := newTestEngine(t)

	outcome, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	assert.True(t, outcome.Accepted)
	assert.Equal(t, "Reported. Thanks!", outcome.Message)
	require.NotEmpty(t, outcome.ReportID)

	rpt, err := store.GetReport(outcome.ReportID)
	require.NoError(t, err)
	assert.Equal(t, 1, rpt.Confirmations)
	assert.True(t, rpt.IsActive)
	// Default mobile camera TTL is 75 minutes.
	assert.Equal(t, start.Add(75*time.Minute), rpt.ExpiresAt)
}

func TestSubmitReport_PoliceCheckTTL(t *testing.T) {
	e, store, _ := newTestEngine(t)

	outcome, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypePoliceCheck, "device-a"))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)

	rpt, err := store.GetReport(outcome.ReportID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(52*time.Minute), rpt.ExpiresAt)
}

func TestSubmitReport_RateLimited(t *testing.T) {
	e, _, _ := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// Same user and type immediately after, at a different location.
	second, err := e.SubmitReport(submit(53.4, -2.24, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	assert.False(t, second.Accepted)
	assert.Equal(t, "Please wait 5 more minutes before reporting another mobile camera", second.Message)
	assert.Empty(t, second.ReportID)
}

func TestSubmitReport_RateLimitWaitTruncatesMinutes(t *testing.T) {
	e, _, clock := newTestEngine(t)

	_, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypePoliceCheck, "device-a"))
	require.NoError(t, err)

	// 4m59s elapsed truncates to 4 whole minutes, so 1 minute remains.
	clock.Advance(4*time.Minute + 59*time.Second)

	outcome, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypePoliceCheck, "device-a"))
	require.NoError(t, err)
	assert.False(t, outcome.Accepted)
	assert.Equal(t, "Please wait 1 more minutes before reporting another police check", outcome.Message)
}

func TestSubmitReport_RateLimitExpiresAfterWindow(t *testing.T) {
	e, _, clock := newTestEngine(t)

	_, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)

	// Far away so the duplicate check cannot match.
	outcome, err := e.SubmitReport(submit(53.4, -2.24, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
}

func TestSubmitReport_RateLimitIsPerReportType(t *testing.T) {
	e, _, _ := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// Same user, other type: not rate limited.
	second, err := e.SubmitReport(submit(53.4, -2.24, db.ReportTypePoliceCheck, "device-a"))
	require.NoError(t, err)
	assert.True(t, second.Accepted)
}

func TestSubmitReport_DuplicateMerge(t *testing.T) {
	e, store, _ := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// ~120 m away, different submitter, within the merge window.
	second, err := e.SubmitReport(submit(51.5009, -0.1209, db.ReportTypeMobileCamera, "device-b"))
	require.NoError(t, err)

	assert.True(t, second.Accepted)
	assert.Equal(t, "Confirmed! 2 users have reported this.", second.Message)
	assert.Equal(t, first.ReportID, second.ReportID)

	merged, err := store.GetReport(first.ReportID)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Confirmations)

	// No second record was created.
	reports, err := store.ActiveReportsByTypeSince(db.ReportTypeMobileCamera, start.Add(-time.Hour), start)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestSubmitReport_DuplicateMergeDoesNotExtendExpiry(t *testing.T) {
	e, store, clock := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	second, err := e.SubmitReport(submit(51.5001, -0.1201, db.ReportTypeMobileCamera, "device-b"))
	require.NoError(t, err)
	require.Equal(t, first.ReportID, second.ReportID)

	rpt, err := store.GetReport(first.ReportID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(75*time.Minute), rpt.ExpiresAt, "merge must not extend expires_at")
}

func TestSubmitReport_NoMergeBeyondRadius(t *testing.T) {
	e, _, _ := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	// ~600 m away: outside the default 200 m merge radius.
	second, err := e.SubmitReport(submit(51.5050, -0.1230, db.ReportTypeMobileCamera, "device-b"))
	require.NoError(t, err)

	assert.True(t, second.Accepted)
	assert.Equal(t, "Reported. Thanks!", second.Message)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}

func TestSubmitReport_NoMergeOutsideTimeWindow(t *testing.T) {
	e, _, clock := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)

	// Past the 15 minute duplicate window but before the report expires.
	clock.Advance(20 * time.Minute)

	second, err := e.SubmitReport(submit(51.5001, -0.1201, db.ReportTypeMobileCamera, "device-b"))
	require.NoError(t, err)

	assert.True(t, second.Accepted)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}

func TestSubmitReport_MergePrefersEarliestCreated(t *testing.T) {
	e, _, clock := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypePoliceCheck, "device-a"))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = e.SubmitReport(submit(51.5030, -0.1200, db.ReportTypePoliceCheck, "device-b"))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	// ~167 m from both live reports; the earliest-created one wins.
	third, err := e.SubmitReport(submit(51.5015, -0.1200, db.ReportTypePoliceCheck, "device-c"))
	require.NoError(t, err)
	assert.True(t, third.Accepted)
	assert.Equal(t, first.ReportID, third.ReportID)
}

func TestSubmitReport_SettingsTakeEffectImmediately(t *testing.T) {
	e, store, _ := newTestEngine(t)

	custom := db.Settings{
		MobileCameraTTLMinutes:     30,
		PoliceCheckTTLMinutes:      10,
		DuplicateRadiusMeters:      50,
		DuplicateTimeWindowMinutes: 15,
		RateLimitMinutes:           2,
	}
	require.NoError(t, store.ReplaceSettings(custom))

	outcome, err := e.SubmitReport(submit(51.5, -0.12, db.ReportTypeMobileCamera, "device-a"))
	require.NoError(t, err)
	require.True(t, outcome.Accepted)

	rpt, err := store.GetReport(outcome.ReportID)
	require.NoError(t, err)
	assert.Equal(t, start.Add(30*time.Minute), rpt.ExpiresAt)

	// ~120 m away: beyond the reduced 50 m radius, so a new report.
	second, err := e.SubmitReport(submit(51.5009, -0.1209, db.ReportTypeMobileCamera, "device-b"))
	require.NoError(t, err)
	assert.True(t, second.Accepted)
	assert.NotEqual(t, outcome.ReportID, second.ReportID)
}

func TestSubmitReport_Validation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	tests := []struct {
		name string
		sub  Submission
	}{
		{"latitude out of range", submit(91, 0, db.ReportTypeMobileCamera, "device-a")},
		{"longitude out of range", submit(0, -181, db.ReportTypeMobileCamera, "device-a")},
		{"unknown report type", submit(51.5, -0.12, "traffic_jam", "device-a")},
		{"empty user id", submit(51.5, -0.12, db.ReportTypePoliceCheck, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SubmitReport(tt.sub)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected ValidationError, got %v", err)
		})
	}
}

// End-to-end lifecycle: default settings, one report, an immediate
// rate-limited retry, then a confirmation from a second device 120 m
// away.
func TestSubmitReport_FullScenario(t *testing.T) {
	e, store, _ := newTestEngine(t)

	first, err := e.SubmitReport(submit(51.5000, -0.1200, db.ReportTypeMobileCamera, "A"))
	require.NoError(t, err)
	require.True(t, first.Accepted)
	require.NotEmpty(t, first.ReportID)

	rpt, err := store.GetReport(first.ReportID)
	require.NoError(t, err)
	require.Equal(t, start.Add(75*time.Minute), rpt.ExpiresAt)

	retry, err := e.SubmitReport(submit(52.0, -1.0, db.ReportTypeMobileCamera, "A"))
	require.NoError(t, err)
	assert.False(t, retry.Accepted)
	assert.Contains(t, retry.Message, "wait 5 more minutes")

	confirm, err := e.SubmitReport(submit(51.5009, -0.1209, db.ReportTypeMobileCamera, "B"))
	require.NoError(t, err)
	assert.True(t, confirm.Accepted)
	assert.Equal(t, first.ReportID, confirm.ReportID)

	merged, err := store.GetReport(first.ReportID)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Confirmations)
}
