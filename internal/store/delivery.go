package store

import (
	"database/sql"
	"time"
)

// Delivery records how one capture hook handled a capture.
type Delivery struct {
	ID         int64     `json:"id"`
	CaptureID  string    `json:"capture_id"`
	PluginName string    `json:"plugin"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryRepository provides access to hook delivery results.
type DeliveryRepository struct {
	db *sql.DB
}

// Deliveries returns the delivery repository for this store.
func (s *Store) Deliveries() *DeliveryRepository {
	return &DeliveryRepository{db: s.db}
}

// Record inserts d and sets its ID.
func (r *DeliveryRepository) Record(d *Delivery) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(
		`INSERT INTO deliveries (capture_id, plugin_name, success, error, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.CaptureID, d.PluginName, d.Success, d.Error, d.CreatedAt,
	)
	if err != nil {
		return err
	}

	d.ID, err = result.LastInsertId()
	return err
}

// ListByCapture returns the deliveries of one capture in insertion order.
func (r *DeliveryRepository) ListByCapture(captureID string) ([]*Delivery, error) {
	rows, err := r.db.Query(
		`SELECT id, capture_id, plugin_name, success, error, created_at
		 FROM deliveries WHERE capture_id = ? ORDER BY id`,
		captureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Delivery
	for rows.Next() {
		d := &Delivery{}
		var success int
		if err := rows.Scan(&d.ID, &d.CaptureID, &d.PluginName, &success, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Success = success != 0
		out = append(out, d)
	}
	return out, rows.Err()
}
