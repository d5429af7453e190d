package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/calebquinn/packlist/internal/model"
)

type ChecklistStore struct {
	db *sql.DB
}

func NewChecklistStore(db *sql.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

func scanChecklist(scanner interface{ Scan(...any) error }) (*model.Checklist, error) {
	var cl model.Checklist
	err := scanner.Scan(&cl.ID, &cl.UserID, &cl.Title, &cl.Category, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

const checklistCols = `id, user_id, title, category, created_at, updated_at`

// checklistRowCols selects a checklist_items row joined with its item snapshot.
const checklistRowCols = `ci.id, ci.checklist_id, ci.item_id, ci.completed, ci.quantity,
	i.id, i.user_id, i.name, i.quantity, i.weight, i.notes, i.category_id, i.created_at, i.updated_at`

func scanChecklistRow(scanner interface{ Scan(...any) error }) (*model.ChecklistItem, error) {
	var row model.ChecklistItem
	var completed int
	var categoryID sql.NullInt64
	err := scanner.Scan(
		&row.ID, &row.ChecklistID, &row.ItemID, &completed, &row.Quantity,
		&row.Item.ID, &row.Item.UserID, &row.Item.Name, &row.Item.Quantity,
		&row.Item.Weight, &row.Item.Notes, &categoryID,
		&row.Item.CreatedAt, &row.Item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	row.Completed = completed != 0
	if categoryID.Valid {
		row.Item.CategoryID = &categoryID.Int64
	}
	return &row, nil
}

func (s *ChecklistStore) Create(userID int64, title, category string) (*model.Checklist, error) {
	result, err := s.db.Exec(
		`INSERT INTO checklists (user_id, title, category) VALUES (?, ?, ?)`,
		userID, title, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert checklist: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the checklist with its item rows, or nil if not found.
// Completion aggregates are left zero; callers derive them.
func (s *ChecklistStore) GetByID(id int64) (*model.Checklist, error) {
	row := s.db.QueryRow(`SELECT `+checklistCols+` FROM checklists WHERE id = ?`, id)
	cl, err := scanChecklist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist: %w", err)
	}

	items, err := s.ListRows(id)
	if err != nil {
		return nil, err
	}
	cl.Items = items
	return cl, nil
}

// ListByUser returns all of the user's checklists with their rows loaded.
func (s *ChecklistStore) ListByUser(userID int64) ([]model.Checklist, error) {
	rows, err := s.db.Query(
		`SELECT `+checklistCols+` FROM checklists WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer rows.Close()

	var lists []model.Checklist
	for rows.Next() {
		cl, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		lists = append(lists, *cl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		items, err := s.ListRows(lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

// ListRows returns the joined item rows for one checklist.
func (s *ChecklistStore) ListRows(checklistID int64) ([]model.ChecklistItem, error) {
	rows, err := s.db.Query(
		`SELECT `+checklistRowCols+` FROM checklist_items ci
		 JOIN items i ON i.id = ci.item_id
		 WHERE ci.checklist_id = ?
		 ORDER BY ci.id ASC`,
		checklistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checklist rows: %w", err)
	}
	defer rows.Close()

	var out []model.ChecklistItem
	for rows.Next() {
		row, err := scanChecklistRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist row: %w", err)
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func (s *ChecklistStore) Update(id int64, title, category string) (*model.Checklist, error) {
	_, err := s.db.Exec(
		`UPDATE checklists SET title = ?, category = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update checklist: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChecklistStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM checklists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}
	return nil
}

// NewRow is the input for AddRows: one item with a quantity.
type NewRow struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// AddRows inserts rows for the given items and returns them with item
// snapshots joined. An item already on the checklist is skipped.
func (s *ChecklistStore) AddRows(checklistID int64, newRows []NewRow) ([]model.ChecklistItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin add rows: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(newRows))
	for _, nr := range newRows {
		qty := nr.Quantity
		if qty <= 0 {
			qty = 1
		}
		result, err := tx.Exec(
			`INSERT INTO checklist_items (checklist_id, item_id, quantity)
			 VALUES (?, ?, ?)
			 ON CONFLICT(checklist_id, item_id) DO NOTHING`,
			checklistID, nr.ItemID, qty,
		)
		if err != nil {
			return nil, fmt.Errorf("insert checklist row: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			continue
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add rows: %w", err)
	}

	inserted := make([]model.ChecklistItem, 0, len(ids))
	for _, id := range ids {
		row, err := s.getRowByID(id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			inserted = append(inserted, *row)
		}
	}
	return inserted, nil
}

func (s *ChecklistStore) getRowByID(id int64) (*model.ChecklistItem, error) {
	row := s.db.QueryRow(
		`SELECT `+checklistRowCols+` FROM checklist_items ci
		 JOIN items i ON i.id = ci.item_id
		 WHERE ci.id = ?`,
		id,
	)
	r, err := scanChecklistRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist row: %w", err)
	}
	return r, nil
}

// GetRow returns the row linking an item to a checklist, or nil.
func (s *ChecklistStore) GetRow(checklistID, itemID int64) (*model.ChecklistItem, error) {
	row := s.db.QueryRow(
		`SELECT `+checklistRowCols+` FROM checklist_items ci
		 JOIN items i ON i.id = ci.item_id
		 WHERE ci.checklist_id = ? AND ci.item_id = ?`,
		checklistID, itemID,
	)
	r, err := scanChecklistRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checklist row: %w", err)
	}
	return r, nil
}

// SetCompleted sets one row's completed flag and returns the updated row.
func (s *ChecklistStore) SetCompleted(checklistID, itemID int64, completed bool) (*model.ChecklistItem, error) {
	val := 0
	if completed {
		val = 1
	}
	_, err := s.db.Exec(
		`UPDATE checklist_items SET completed = ? WHERE checklist_id = ? AND item_id = ?`,
		val, checklistID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("set completed: %w", err)
	}
	return s.GetRow(checklistID, itemID)
}

// RemoveRow deletes the row and returns it as it existed, or nil.
func (s *ChecklistStore) RemoveRow(checklistID, itemID int64) (*model.ChecklistItem, error) {
	row, err := s.GetRow(checklistID, itemID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	_, err = s.db.Exec(
		`DELETE FROM checklist_items WHERE checklist_id = ? AND item_id = ?`,
		checklistID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("remove checklist row: %w", err)
	}
	return row, nil
}

// RemoveRows deletes the rows for the given item ids and returns how many
// were removed.
func (s *ChecklistStore) RemoveRows(checklistID int64, itemIDs []int64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(itemIDs)), ", ")
	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, checklistID)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	result, err := s.db.Exec(
		`DELETE FROM checklist_items WHERE checklist_id = ? AND item_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk remove rows: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
