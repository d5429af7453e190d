package model

import (
	"encoding/json"
	"testing"
)

func TestChecklistRefsUnmarshalArray(t *testing.T) {
	var refs ChecklistRefs
	if err := json.Unmarshal([]byte(`[{"id":1,"title":"Loadout","category":"backpacking"}]`), &refs); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != 1 || refs[0].Title != "Loadout" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestChecklistRefsUnmarshalObject(t *testing.T) {
	var refs ChecklistRefs
	if err := json.Unmarshal([]byte(`{"id":2,"title":"Day hike","category":""}`), &refs); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != 2 || refs[0].Title != "Day hike" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestChecklistRefsUnmarshalNull(t *testing.T) {
	var refs ChecklistRefs
	if err := json.Unmarshal([]byte(`null`), &refs); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("refs = %+v, want empty", refs)
	}
}

func TestTripRoundTripsChecklistRefs(t *testing.T) {
	raw := `{"id":1,"title":"Overnighter","trip_checklists":[
		{"checklist_id":3,"checklists":{"id":3,"title":"Loadout","category":""},"totalItems":4,"completedItems":1}
	]}`
	var trip Trip
	if err := json.Unmarshal([]byte(raw), &trip); err != nil {
		t.Fatalf("unmarshal trip: %v", err)
	}
	if len(trip.TripChecklists) != 1 {
		t.Fatalf("links = %+v", trip.TripChecklists)
	}
	link := trip.TripChecklists[0]
	if len(link.Checklists) != 1 || link.Checklists[0].ID != 3 {
		t.Errorf("refs = %+v", link.Checklists)
	}
	if link.TotalItems != 4 || link.CompletedItems != 1 {
		t.Errorf("counts = %+v", link)
	}

	out, err := json.Marshal(trip)
	if err != nil {
		t.Fatalf("marshal trip: %v", err)
	}
	var again Trip
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if len(again.TripChecklists[0].Checklists) != 1 {
		t.Errorf("refs lost on round trip: %s", out)
	}
}
