package store

import (
	"database/sql"
	"fmt"

	"github.com/calebquinn/packlist/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// --- Category methods ---

func scanItemCategory(scanner interface{ Scan(...any) error }) (*model.ItemCategory, error) {
	var c model.ItemCategory
	var userID sql.NullInt64
	err := scanner.Scan(&c.ID, &userID, &c.Name, &c.SortOrder, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		c.UserID = &userID.Int64
	}
	return &c, nil
}

const itemCategoryCols = `id, user_id, name, sort_order, created_at`

// ListCategories returns the global default categories plus the user's own.
func (s *ItemStore) ListCategories(userID int64) ([]model.ItemCategory, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCategoryCols+` FROM item_categories
		 WHERE user_id IS NULL OR user_id = ?
		 ORDER BY sort_order ASC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list item categories: %w", err)
	}
	defer rows.Close()

	var categories []model.ItemCategory
	for rows.Next() {
		c, err := scanItemCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *ItemStore) CreateCategory(userID int64, name string, sortOrder int) (*model.ItemCategory, error) {
	result, err := s.db.Exec(
		`INSERT INTO item_categories (user_id, name, sort_order) VALUES (?, ?, ?)`,
		userID, name, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+itemCategoryCols+` FROM item_categories WHERE id = ?`, id)
	return scanItemCategory(row)
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var categoryID sql.NullInt64
	err := scanner.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Quantity, &item.Weight,
		&item.Notes, &categoryID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	return &item, nil
}

const itemCols = `id, user_id, name, quantity, weight, notes, category_id, created_at, updated_at`

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) Create(userID int64, name string, quantity int, weight float64, notes string, categoryID *int64) (*model.Item, error) {
	var catID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO items (user_id, name, quantity, weight, notes, category_id) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, name, quantity, weight, notes, catID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// CreateBulk inserts a batch of items in one transaction and returns them in
// insertion order.
func (s *ItemStore) CreateBulk(userID int64, items []model.Item) ([]model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO items (user_id, name, quantity, weight, notes, category_id) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var catID sql.NullInt64
		if item.CategoryID != nil {
			catID = sql.NullInt64{Int64: *item.CategoryID, Valid: true}
		}
		result, err := stmt.Exec(userID, item.Name, item.Quantity, item.Weight, item.Notes, catID)
		if err != nil {
			return nil, fmt.Errorf("bulk insert item %q: %w", item.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk insert: %w", err)
	}

	created := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		created = append(created, *item)
	}
	return created, nil
}

func (s *ItemStore) ListByUser(userID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE user_id = ? ORDER BY name ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(id int64, name string, quantity int, weight float64, notes string, categoryID *int64) (*model.Item, error) {
	var catID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE items SET name = ?, quantity = ?, weight = ?, notes = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, quantity, weight, notes, catID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
