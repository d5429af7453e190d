package store

import (
	"testing"

	"github.com/calebquinn/packlist/internal/database"
)

func setupSettingsTestDB(t *testing.T) (int64, *UserSettingsStore, *ConsentStore, *AIUsageStore, *AppStateStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	user, err := us.Create("hiker@example.com", "Hiker", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID, NewUserSettingsStore(db), NewConsentStore(db), NewAIUsageStore(db), NewAppStateStore(db)
}

func TestSettingsUpsert(t *testing.T) {
	userID, ss, _, _, _ := setupSettingsTestDB(t)

	if err := ss.Set(userID, "weight_unit", "lbs"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ss.Set(userID, "weight_unit", "kg"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := ss.Set(userID, "theme", "dark"); err != nil {
		t.Fatalf("set second key: %v", err)
	}

	all, err := ss.GetAll(userID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 || all["weight_unit"] != "kg" || all["theme"] != "dark" {
		t.Errorf("settings = %v", all)
	}

	v, err := ss.Get(userID, "weight_unit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "kg" {
		t.Errorf("weight_unit = %q, want kg", v)
	}
}

func TestConsentDefaultsToFalse(t *testing.T) {
	userID, _, cs, _, _ := setupSettingsTestDB(t)

	consent, err := cs.Get(userID)
	if err != nil {
		t.Fatalf("get consent: %v", err)
	}
	if consent.AIDataUsage || consent.Analytics {
		t.Errorf("default consent = %+v, want all false", consent)
	}

	updated, err := cs.Set(userID, true, false)
	if err != nil {
		t.Fatalf("set consent: %v", err)
	}
	if !updated.AIDataUsage || updated.Analytics {
		t.Errorf("updated consent = %+v", updated)
	}

	again, _ := cs.Get(userID)
	if !again.AIDataUsage {
		t.Error("consent not persisted")
	}
}

func TestAIUsageIncrement(t *testing.T) {
	userID, _, _, au, _ := setupSettingsTestDB(t)

	month := CurrentMonth()

	usage, err := au.Get(userID, month)
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if usage != nil {
		t.Fatalf("expected nil before first increment, got %+v", usage)
	}

	for i := 1; i <= 3; i++ {
		updated, err := au.Increment(userID, month)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if updated.Count != i {
			t.Errorf("count = %d, want %d", updated.Count, i)
		}
	}

	// A different month starts from scratch.
	other, err := au.Increment(userID, "2020-01")
	if err != nil {
		t.Fatalf("increment other month: %v", err)
	}
	if other.Count != 1 {
		t.Errorf("other month count = %d, want 1", other.Count)
	}
}

func TestAppStateRoundTrip(t *testing.T) {
	userID, _, _, _, as := setupSettingsTestDB(t)

	blob, err := as.LoadState(userID)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if blob != nil {
		t.Fatalf("expected nil snapshot for fresh user, got %d bytes", len(blob))
	}

	if err := as.SaveState(userID, []byte(`{"isNew":false}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := as.SaveState(userID, []byte(`{"isNew":true}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	blob, err = as.LoadState(userID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(blob) != `{"isNew":true}` {
		t.Errorf("blob = %s", blob)
	}
}
