package store

import (
	"testing"

	"github.com/calebquinn/packlist/internal/database"
)

func setupTripTestDB(t *testing.T) (*TripStore, *ChecklistStore, *ItemStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	user, err := us.Create("hiker@example.com", "Hiker", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewTripStore(db), NewChecklistStore(db), NewItemStore(db), user.ID
}

func TestTripCategorySeedData(t *testing.T) {
	ts, _, _, _ := setupTripTestDB(t)

	categories, err := ts.ListCategories()
	if err != nil {
		t.Fatalf("list trip categories: %v", err)
	}
	if len(categories) != 8 {
		t.Fatalf("expected 8 seed trip categories, got %d", len(categories))
	}
}

func TestTripCRUD(t *testing.T) {
	ts, _, _, userID := setupTripTestDB(t)

	lat, lon := 44.0582, -121.3153
	trip, err := ts.Create(userID, TripInput{
		Title:     "Three Sisters Loop",
		Location:  "Bend, OR",
		Latitude:  &lat,
		Longitude: &lon,
		StartDate: "2026-07-10",
		EndDate:   "2026-07-13",
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if trip.Title != "Three Sisters Loop" || trip.Latitude == nil || *trip.Latitude != lat {
		t.Errorf("trip = %+v", trip)
	}

	updated, err := ts.Update(trip.ID, TripInput{
		Title:     "Three Sisters Loop",
		Location:  "Sisters, OR",
		StartDate: "2026-07-11",
		EndDate:   "2026-07-14",
	})
	if err != nil {
		t.Fatalf("update trip: %v", err)
	}
	if updated.Location != "Sisters, OR" || updated.Latitude != nil {
		t.Errorf("updated = %+v", updated)
	}

	trips, err := ts.ListByUser(userID)
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}

	if err := ts.Delete(trip.ID); err != nil {
		t.Fatalf("delete trip: %v", err)
	}
	got, err := ts.GetByID(trip.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got != nil {
		t.Error("trip should be gone after delete")
	}
}

func TestTripChecklistLinkCounts(t *testing.T) {
	ts, cs, is, userID := setupTripTestDB(t)

	trip, _ := ts.Create(userID, TripInput{Title: "Overnighter"})
	cl, _ := cs.Create(userID, "Loadout", "")

	tent := mustItem(t, is, userID, "Tent", 4.5)
	socks := mustItem(t, is, userID, "Wool socks", 0.2)
	if _, err := cs.AddRows(cl.ID, []NewRow{
		{ItemID: tent.ID, Quantity: 1},
		{ItemID: socks.ID, Quantity: 3},
	}); err != nil {
		t.Fatalf("add rows: %v", err)
	}
	if _, err := cs.SetCompleted(cl.ID, socks.ID, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}

	if err := ts.LinkChecklist(trip.ID, cl.ID); err != nil {
		t.Fatalf("link checklist: %v", err)
	}

	got, err := ts.GetByID(trip.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if len(got.TripChecklists) != 1 {
		t.Fatalf("links = %+v", got.TripChecklists)
	}
	link := got.TripChecklists[0]
	if link.ChecklistID != cl.ID {
		t.Errorf("checklist_id = %d, want %d", link.ChecklistID, cl.ID)
	}
	// Counts are quantity weighted: 1 tent + 3 socks = 4 total, 3 completed.
	if link.TotalItems != 4 || link.CompletedItems != 3 {
		t.Errorf("counts = %d/%d, want 3/4 completed/total", link.CompletedItems, link.TotalItems)
	}
	if len(link.Checklists) != 1 || link.Checklists[0].Title != "Loadout" {
		t.Errorf("refs = %+v", link.Checklists)
	}

	if err := ts.UnlinkChecklist(trip.ID, cl.ID); err != nil {
		t.Fatalf("unlink checklist: %v", err)
	}
	got, _ = ts.GetByID(trip.ID)
	if len(got.TripChecklists) != 0 {
		t.Errorf("links after unlink = %+v", got.TripChecklists)
	}
}

func TestTripParticipants(t *testing.T) {
	ts, _, _, userID := setupTripTestDB(t)

	trip, _ := ts.Create(userID, TripInput{Title: "Group trip"})

	p, err := ts.AddParticipant(trip.ID, "Sam", "navigator")
	if err != nil {
		t.Fatalf("add participant: %v", err)
	}
	if p.Name != "Sam" || p.Role != "navigator" {
		t.Errorf("participant = %+v", p)
	}

	participants, err := ts.ListParticipants(trip.ID)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(participants) != 1 {
		t.Fatalf("got %d participants, want 1", len(participants))
	}

	if err := ts.DeleteParticipant(p.ID); err != nil {
		t.Fatalf("delete participant: %v", err)
	}
	participants, _ = ts.ListParticipants(trip.ID)
	if len(participants) != 0 {
		t.Errorf("participants after delete = %+v", participants)
	}
}

func TestSetRecommendation(t *testing.T) {
	ts, _, _, userID := setupTripTestDB(t)

	trip, _ := ts.Create(userID, TripInput{Title: "Overnighter"})

	markdown := "### Shelter\n- Tent (qty 1, weight 4.5 lbs)\n"
	if err := ts.SetRecommendation(trip.ID, markdown); err != nil {
		t.Fatalf("set recommendation: %v", err)
	}

	got, err := ts.GetByID(trip.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got.AIRecommendation != markdown {
		t.Errorf("recommendation = %q", got.AIRecommendation)
	}
}
