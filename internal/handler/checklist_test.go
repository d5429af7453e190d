package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/database"
	"github.com/calebquinn/packlist/internal/model"
	"github.com/calebquinn/packlist/internal/state"
	"github.com/calebquinn/packlist/internal/store"
	"github.com/calebquinn/packlist/internal/websocket"
)

type fixture struct {
	db         *sql.DB
	userID     int64
	manager    *state.Manager
	hub        *websocket.Hub
	itemH      *ItemHandler
	checklistH *ChecklistHandler
	itemStore  *store.ItemStore
	checklists *store.ChecklistStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	user, err := store.NewUserStore(db).Create("hiker@example.com", "Hiker", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	manager := state.NewManager(store.NewAppStateStore(db), logger)
	hub := websocket.NewHub(logger)
	itemStore := store.NewItemStore(db)
	checklistStore := store.NewChecklistStore(db)

	return &fixture{
		db:         db,
		userID:     user.ID,
		manager:    manager,
		hub:        hub,
		itemH:      NewItemHandler(itemStore, manager, hub, logger),
		checklistH: NewChecklistHandler(checklistStore, itemStore, manager, hub, logger),
		itemStore:  itemStore,
		checklists: checklistStore,
	}
}

func (f *fixture) userState(t *testing.T) state.AppState {
	t.Helper()
	st, err := f.manager.ForUser(f.userID)
	if err != nil {
		t.Fatalf("state for user: %v", err)
	}
	return st.State()
}

func TestChecklistFlowKeepsStateInSync(t *testing.T) {
	f := newFixture(t)

	// Create two items through the handler.
	var tent, socks model.Item
	for _, in := range []struct {
		body string
		dst  *model.Item
	}{
		{`{"name":"Tent","quantity":1,"weight":4.5}`, &tent},
		{`{"name":"Wool socks","quantity":1,"weight":0.25}`, &socks},
	} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(in.body))
		r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
		f.itemH.Create(w, r)
		if w.Code != http.StatusCreated {
			t.Fatalf("create item status = %d, body = %s", w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), in.dst); err != nil {
			t.Fatalf("decode item: %v", err)
		}
	}

	if got := f.userState(t); len(got.Items) != 2 {
		t.Fatalf("state items = %d, want 2", len(got.Items))
	}

	// Create a checklist and add both items.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/checklists", strings.NewReader(`{"title":"Loadout"}`))
	r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
	f.checklistH.Create(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create checklist status = %d", w.Code)
	}
	var cl model.Checklist
	json.Unmarshal(w.Body.Bytes(), &cl)

	addBody := fmt.Sprintf(`{"items":[{"item_id":%d,"quantity":1},{"item_id":%d,"quantity":1}]}`, tent.ID, socks.ID)
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/checklists/1/items", strings.NewReader(addBody))
	r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
	r.SetPathValue("id", fmt.Sprint(cl.ID))
	f.checklistH.AddItems(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("add items status = %d, body = %s", w.Code, w.Body.String())
	}

	st := f.userState(t)
	if len(st.Checklists) != 1 {
		t.Fatalf("state checklists = %d, want 1", len(st.Checklists))
	}
	comp := st.Checklists[0].Completion
	if comp.Total != 2 || comp.Completed != 0 || comp.TotalWeight != 4.75 {
		t.Errorf("completion = %+v", comp)
	}

	// Toggle the tent on.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPut, "/api/checklists/1/items/1", strings.NewReader(`{"completed":true}`))
	r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
	r.SetPathValue("id", fmt.Sprint(cl.ID))
	r.SetPathValue("itemId", fmt.Sprint(tent.ID))
	f.checklistH.ToggleItem(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body = %s", w.Code, w.Body.String())
	}

	comp = f.userState(t).Checklists[0].Completion
	if comp.Completed != 1 || comp.CurrentWeight != 4.5 {
		t.Errorf("after toggle: %+v", comp)
	}

	// Remove the socks row.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/api/checklists/1/items/2", nil)
	r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
	r.SetPathValue("id", fmt.Sprint(cl.ID))
	r.SetPathValue("itemId", fmt.Sprint(socks.ID))
	f.checklistH.RemoveItem(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}

	comp = f.userState(t).Checklists[0].Completion
	if comp.Total != 1 || comp.Completed != 1 || comp.TotalWeight != 4.5 {
		t.Errorf("after remove: %+v", comp)
	}
}

func TestChecklistOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)

	// A second user's checklist.
	other, err := store.NewUserStore(f.db).Create("other@example.com", "Other", "x")
	if err != nil {
		t.Fatalf("create other user: %v", err)
	}
	cl, err := f.checklists.Create(other.ID, "Not yours", "")
	if err != nil {
		t.Fatalf("create checklist: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/checklists/1", nil)
	r = r.WithContext(auth.WithAuth(context.Background(), auth.AuthContext{UserID: f.userID}))
	r.SetPathValue("id", fmt.Sprint(cl.ID))
	f.checklistH.Get(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
