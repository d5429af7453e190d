package state

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/calebquinn/packlist/internal/model"
)

type memPersister struct {
	mu    sync.Mutex
	blobs map[int64][]byte
	saves int
}

func newMemPersister() *memPersister {
	return &memPersister{blobs: make(map[int64][]byte)}
}

func (p *memPersister) SaveState(userID int64, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs[userID] = data
	p.saves++
	return nil
}

func (p *memPersister) LoadState(userID int64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blobs[userID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHydrateFreshUser(t *testing.T) {
	st := NewStore(1, newMemPersister(), testLogger())
	if err := st.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	s := st.State()
	if !s.IsNew {
		t.Error("expected isNew for fresh user")
	}
	if !s.NoItems || !s.NoChecklists || !s.NoTrips {
		t.Errorf("empty flags not set: %+v", s)
	}
}

func TestSnapshotRoundTripSelfHeals(t *testing.T) {
	p := newMemPersister()

	// Persist a snapshot with deliberately corrupted aggregates.
	corrupt := AppState{
		Checklists: []model.Checklist{{
			ID: 1,
			Items: []model.ChecklistItem{
				row(1, 10, 1.0, 1, true),
				row(1, 20, 2.0, 1, false),
			},
			Completion: model.Completion{Completed: 42, Total: 0, CurrentWeight: -5, TotalWeight: 1000},
		}},
		Trips: []model.Trip{{
			ID: 7,
			TripChecklists: []model.TripChecklist{{
				ChecklistID:    1,
				TotalItems:     99,
				CompletedItems: 99,
			}},
		}},
	}
	data, err := json.Marshal(corrupt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := p.SaveState(1, data); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	st := NewStore(1, p, testLogger())
	if err := st.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	s := st.State()
	checkCompletion(t, s.Checklists[0].Completion, 1, 2, 1.0, 3.0)
	link := s.Trips[0].TripChecklists[0]
	if link.TotalItems != 2 || link.CompletedItems != 1 {
		t.Errorf("trip link = %d/%d, want 1/2", link.CompletedItems, link.TotalItems)
	}
	if s.IsNew {
		t.Error("hydrated user should not be isNew")
	}
}

func TestHydrateDiscardsUnreadableSnapshot(t *testing.T) {
	p := newMemPersister()
	p.SaveState(1, []byte("{not json"))

	st := NewStore(1, p, testLogger())
	if err := st.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !st.State().IsNew {
		t.Error("unreadable snapshot should yield a fresh state")
	}
}

func TestDispatchPersistsLatestSnapshot(t *testing.T) {
	p := newMemPersister()
	st := NewStore(1, p, testLogger())
	if err := st.Hydrate(); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	st.Dispatch(AddItem{Item: model.Item{ID: 1, Name: "Tent", Weight: 3.0}})
	st.Dispatch(AddItem{Item: model.Item{ID: 2, Name: "Stove", Weight: 1.0}})
	st.Flush()

	data, err := p.LoadState(1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var saved AppState
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("unmarshal saved snapshot: %v", err)
	}
	if len(saved.Items) != 2 {
		t.Errorf("persisted items = %d, want 2", len(saved.Items))
	}

	// Reload through a second store: identical state after self-heal.
	st2 := NewStore(1, p, testLogger())
	if err := st2.Hydrate(); err != nil {
		t.Fatalf("re-hydrate: %v", err)
	}
	if got := len(st2.State().Items); got != 2 {
		t.Errorf("rehydrated items = %d, want 2", got)
	}
}

func TestManagerReusesStore(t *testing.T) {
	m := NewManager(newMemPersister(), testLogger())

	a, err := m.ForUser(1)
	if err != nil {
		t.Fatalf("first ForUser: %v", err)
	}
	a.Dispatch(AddItem{Item: model.Item{ID: 1, Name: "Tent"}})

	b, err := m.ForUser(1)
	if err != nil {
		t.Fatalf("second ForUser: %v", err)
	}
	if a != b {
		t.Error("expected the same store instance")
	}
	if len(b.State().Items) != 1 {
		t.Errorf("items = %d, want 1", len(b.State().Items))
	}

	other, err := m.ForUser(2)
	if err != nil {
		t.Fatalf("other user: %v", err)
	}
	if len(other.State().Items) != 0 {
		t.Error("stores must be isolated per user")
	}

	m.Flush()
}
