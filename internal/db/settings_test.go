package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetSettings_DefaultsWhenUnset(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	settings, err := db.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}

	if diff := cmp.Diff(DefaultSettings(), settings); diff != "" {
		t.Errorf("GetSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceSettings_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	want := Settings{
		MobileCameraTTLMinutes:     90,
		PoliceCheckTTLMinutes:      60,
		DuplicateRadiusMeters:      150,
		DuplicateTimeWindowMinutes: 20,
		RateLimitMinutes:           10,
	}

	if err := db.ReplaceSettings(want); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}

	got, err := db.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch after replace (-want +got):\n%s", diff)
	}
}

func TestReplaceSettings_LastWriteWins(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	first := DefaultSettings()
	if err := db.ReplaceSettings(first); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}

	second := Settings{
		MobileCameraTTLMinutes:     30,
		PoliceCheckTTLMinutes:      30,
		DuplicateRadiusMeters:      100,
		DuplicateTimeWindowMinutes: 5,
		RateLimitMinutes:           1,
	}
	if err := db.ReplaceSettings(second); err != nil {
		t.Fatalf("ReplaceSettings failed: %v", err)
	}

	got, err := db.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}
