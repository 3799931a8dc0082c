package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Capture is a journaled capture event.
type Capture struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Gesture   string    `json:"gesture"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CaptureRepository provides access to the capture journal.
type CaptureRepository struct {
	db *sql.DB
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{db: s.db}
}

// Create inserts c, assigning an ID and timestamp when they are unset.
func (r *CaptureRepository) Create(c *Capture) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO captures (id, mood, gesture, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Mood, c.Gesture, c.Message, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a capture by its ID.
func (r *CaptureRepository) GetByID(id string) (*Capture, error) {
	c := &Capture{}
	err := r.db.QueryRow(
		`SELECT id, mood, gesture, message, created_at FROM captures WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Mood, &c.Gesture, &c.Message, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns up to limit captures, newest first. A non-positive limit
// uses DefaultListLimit.
func (r *CaptureRepository) List(limit int) ([]*Capture, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, mood, gesture, message, created_at FROM captures
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		if err := rows.Scan(&c.ID, &c.Mood, &c.Gesture, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	return captures, rows.Err()
}

// Count returns the number of journaled captures.
func (r *CaptureRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM captures`).Scan(&n)
	return n, err
}

// Delete removes a capture and its deliveries.
func (r *CaptureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
