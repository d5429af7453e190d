package store

import (
	"database/sql"
	"fmt"

	"github.com/calebquinn/packlist/internal/model"
)

type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

func scanTrip(scanner interface{ Scan(...any) error }) (*model.Trip, error) {
	var t model.Trip
	var lat, lon sql.NullFloat64
	var categoryID sql.NullInt64
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Location, &lat, &lon,
		&t.StartDate, &t.EndDate, &t.Notes, &categoryID,
		&t.AIRecommendation, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		t.Latitude = &lat.Float64
	}
	if lon.Valid {
		t.Longitude = &lon.Float64
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	return &t, nil
}

const tripCols = `id, user_id, title, location, latitude, longitude, start_date, end_date, notes, category_id, ai_recommendation, created_at, updated_at`

// TripInput carries the mutable trip fields for create/update.
type TripInput struct {
	Title      string   `json:"title"`
	Location   string   `json:"location"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Notes      string   `json:"notes"`
	CategoryID *int64   `json:"category_id"`
}

func (s *TripStore) Create(userID int64, in TripInput) (*model.Trip, error) {
	result, err := s.db.Exec(
		`INSERT INTO trips (user_id, title, location, latitude, longitude, start_date, end_date, notes, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.Title, in.Location, nullFloat(in.Latitude), nullFloat(in.Longitude),
		in.StartDate, in.EndDate, in.Notes, nullInt(in.CategoryID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the trip with its checklist links and participants, or nil.
func (s *TripStore) GetByID(id int64) (*model.Trip, error) {
	row := s.db.QueryRow(`SELECT `+tripCols+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}

	if err := s.loadAssociations(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TripStore) ListByUser(userID int64) ([]model.Trip, error) {
	rows, err := s.db.Query(
		`SELECT `+tripCols+` FROM trips WHERE user_id = ? ORDER BY start_date ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range trips {
		if err := s.loadAssociations(&trips[i]); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// loadAssociations fills the trip's checklist links (with quantity-weighted
// completion counts) and participants.
func (s *TripStore) loadAssociations(t *model.Trip) error {
	rows, err := s.db.Query(
		`SELECT tc.checklist_id, c.title, c.category,
		        COALESCE(SUM(ci.quantity), 0) AS total_items,
		        COALESCE(SUM(CASE WHEN ci.completed = 1 THEN ci.quantity ELSE 0 END), 0) AS completed_items
		 FROM trip_checklists tc
		 JOIN checklists c ON c.id = tc.checklist_id
		 LEFT JOIN checklist_items ci ON ci.checklist_id = tc.checklist_id
		 WHERE tc.trip_id = ?
		 GROUP BY tc.checklist_id, c.title, c.category
		 ORDER BY tc.checklist_id ASC`,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("list trip checklists: %w", err)
	}
	defer rows.Close()

	links := []model.TripChecklist{}
	for rows.Next() {
		var link model.TripChecklist
		var ref model.ChecklistRef
		if err := rows.Scan(&link.ChecklistID, &ref.Title, &ref.Category, &link.TotalItems, &link.CompletedItems); err != nil {
			return fmt.Errorf("scan trip checklist: %w", err)
		}
		ref.ID = link.ChecklistID
		link.Checklists = model.ChecklistRefs{ref}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	t.TripChecklists = links

	participants, err := s.ListParticipants(t.ID)
	if err != nil {
		return err
	}
	t.Participants = participants
	return nil
}

func (s *TripStore) Update(id int64, in TripInput) (*model.Trip, error) {
	_, err := s.db.Exec(
		`UPDATE trips SET title = ?, location = ?, latitude = ?, longitude = ?,
		        start_date = ?, end_date = ?, notes = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Title, in.Location, nullFloat(in.Latitude), nullFloat(in.Longitude),
		in.StartDate, in.EndDate, in.Notes, nullInt(in.CategoryID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return s.GetByID(id)
}

// SetRecommendation stores the latest AI recommendation text on the trip.
func (s *TripStore) SetRecommendation(id int64, text string) error {
	_, err := s.db.Exec(
		`UPDATE trips SET ai_recommendation = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		text, id,
	)
	if err != nil {
		return fmt.Errorf("set recommendation: %w", err)
	}
	return nil
}

func (s *TripStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

// LinkChecklist associates a checklist with a trip. Linking twice is a no-op.
func (s *TripStore) LinkChecklist(tripID, checklistID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO trip_checklists (trip_id, checklist_id) VALUES (?, ?)
		 ON CONFLICT(trip_id, checklist_id) DO NOTHING`,
		tripID, checklistID,
	)
	if err != nil {
		return fmt.Errorf("link checklist: %w", err)
	}
	return nil
}

func (s *TripStore) UnlinkChecklist(tripID, checklistID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM trip_checklists WHERE trip_id = ? AND checklist_id = ?`,
		tripID, checklistID,
	)
	if err != nil {
		return fmt.Errorf("unlink checklist: %w", err)
	}
	return nil
}

// --- Participants ---

func (s *TripStore) AddParticipant(tripID int64, name, role string) (*model.TripParticipant, error) {
	result, err := s.db.Exec(
		`INSERT INTO trip_participants (trip_id, name, role) VALUES (?, ?, ?)`,
		tripID, name, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var p model.TripParticipant
	row := s.db.QueryRow(`SELECT id, trip_id, name, role, created_at FROM trip_participants WHERE id = ?`, id)
	if err := row.Scan(&p.ID, &p.TripID, &p.Name, &p.Role, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return &p, nil
}

func (s *TripStore) ListParticipants(tripID int64) ([]model.TripParticipant, error) {
	rows, err := s.db.Query(
		`SELECT id, trip_id, name, role, created_at FROM trip_participants WHERE trip_id = ? ORDER BY id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []model.TripParticipant
	for rows.Next() {
		var p model.TripParticipant
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *TripStore) DeleteParticipant(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trip_participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

// --- Trip categories ---

func (s *TripStore) ListCategories() ([]model.TripCategory, error) {
	rows, err := s.db.Query(`SELECT id, name, sort_order FROM trip_categories ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list trip categories: %w", err)
	}
	defer rows.Close()

	var categories []model.TripCategory
	for rows.Next() {
		var c model.TripCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan trip category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
