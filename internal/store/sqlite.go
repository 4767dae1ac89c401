// Package store persists the document collections behind the app: the bulk
// dataset, per-user custom and saved items, shared like tallies and feedback.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/enso-app/enso/internal/models"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			doc TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_position ON items(position)`,
		`CREATE TABLE IF NOT EXISTS custom_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			source TEXT,
			image_url TEXT NOT NULL,
			source_url TEXT,
			description TEXT,
			tags TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_custom_items_user ON custom_items(user_id)`,
		`CREATE TABLE IF NOT EXISTS saved_items (
			key TEXT NOT NULL,
			user_id TEXT NOT NULL,
			item TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS like_counts (
			key TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			message TEXT NOT NULL,
			section TEXT,
			query TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Bulk dataset ---

// ReplaceItems swaps the bulk dataset wholesale in one transaction,
// preserving upload order through the position column.
func (s *Store) ReplaceItems(records []models.RawRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO items (id, position, doc) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.ID, i, string(doc)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpsertItems merges records into the bulk dataset, appending new ones after
// the current tail.
func (s *Store) UpsertItems(records []models.RawRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM items`).Scan(&maxPos); err != nil {
		return err
	}
	next := int(maxPos.Int64) + 1

	stmt, err := tx.Prepare(`
		INSERT INTO items (id, position, doc) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(rec.ID, next, string(doc)); err != nil {
			return err
		}
		next++
	}

	return tx.Commit()
}

// GetItems returns the bulk dataset in upload order.
func (s *Store) GetItems() ([]models.RawRecord, error) {
	rows, err := s.db.Query(`SELECT doc FROM items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec models.RawRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountItems returns the bulk dataset size.
func (s *Store) CountItems() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// --- Custom items ---

// CreateCustomItem persists a user-submitted model link.
func (s *Store) CreateCustomItem(userID string, req *models.CustomItemRequest) (*models.CustomItem, error) {
	item := &models.CustomItem{
		ID:          "custom-" + uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Source:      req.Source,
		ImageURL:    req.ImageURL,
		SourceURL:   req.SourceURL,
		Description: req.Description,
		Tags:        req.Tags,
		CreatedAt:   time.Now(),
	}
	tags, _ := json.Marshal(item.Tags)

	_, err := s.db.Exec(`
		INSERT INTO custom_items (id, user_id, title, source, image_url, source_url, description, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.UserID, item.Title, item.Source, item.ImageURL, item.SourceURL,
		item.Description, string(tags), item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetCustomItems returns a user's custom items, newest first.
func (s *Store) GetCustomItems(userID string) ([]models.CustomItem, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, source, image_url, source_url, description, tags, created_at
		FROM custom_items WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CustomItem
	for rows.Next() {
		var item models.CustomItem
		var tags string
		err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Source, &item.ImageURL,
			&item.SourceURL, &item.Description, &tags, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(tags), &item.Tags)
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteCustomItem removes one of the user's custom items. Reports whether a
// row was deleted.
func (s *Store) DeleteCustomItem(userID, id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM custom_items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// --- Saved items ---

// SaveItem adds an item to the user's saved collection. Saving an already
// saved key overwrites the stored snapshot.
func (s *Store) SaveItem(userID string, item models.Item) (*models.SavedItem, error) {
	key := item.Key()
	if key == "" {
		return nil, fmt.Errorf("item has no usable key")
	}
	doc, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO saved_items (key, user_id, item, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET item = excluded.item
	`, key, userID, string(doc), now)
	if err != nil {
		return nil, err
	}
	return &models.SavedItem{Key: key, UserID: userID, Item: item, CreatedAt: now}, nil
}

// GetSavedItems returns a user's saved collection, newest first.
func (s *Store) GetSavedItems(userID string) ([]models.SavedItem, error) {
	rows, err := s.db.Query(`
		SELECT key, user_id, item, created_at
		FROM saved_items WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.SavedItem
	for rows.Next() {
		var saved models.SavedItem
		var doc string
		if err := rows.Scan(&saved.Key, &saved.UserID, &doc, &saved.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(doc), &saved.Item); err != nil {
			return nil, err
		}
		items = append(items, saved)
	}
	return items, rows.Err()
}

// DeleteSavedItem removes an item from the user's saved collection.
func (s *Store) DeleteSavedItem(userID, key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM saved_items WHERE user_id = ? AND key = ?`, userID, key)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// --- Like counts ---

// AdjustLikeCount applies a +1/-1 delta to a shared tally inside a
// transaction and returns the new value, clamped at zero.
func (s *Store) AdjustLikeCount(key string, delta int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`SELECT count FROM like_counts WHERE key = ?`, key).Scan(&count)
	if err == sql.ErrNoRows {
		count = 0
	} else if err != nil {
		return 0, err
	}

	count += delta
	if count < 0 {
		count = 0
	}

	_, err = tx.Exec(`
		INSERT INTO like_counts (key, count) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET count = excluded.count
	`, key, count)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// GetLikeCounts returns the tallies for the requested keys. Missing keys
// simply have no entry in the result.
func (s *Store) GetLikeCounts(keys []string) (map[string]int, error) {
	counts := make(map[string]int, len(keys))
	stmt, err := s.db.Prepare(`SELECT count FROM like_counts WHERE key = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, key := range keys {
		var count int
		err := stmt.QueryRow(key).Scan(&count)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, nil
}

// --- Feedback ---

// CreateFeedback persists a free-text submission.
func (s *Store) CreateFeedback(userID string, req *models.FeedbackRequest) (*models.Feedback, error) {
	fb := &models.Feedback{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   req.Message,
		Section:   req.Section,
		Query:     req.Query,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO feedback (id, user_id, message, section, query, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fb.ID, fb.UserID, fb.Message, fb.Section, fb.Query, fb.CreatedAt)
	if err != nil {
		return nil, err
	}
	return fb, nil
}
