package storage

import (
	"time"
)

// Link is a single row of the links table. LastClicked stays nil until the
// first redirect resolves the code, so it serializes as JSON null.
type Link struct {
	ID          int64      `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	TargetURL   string     `json:"target_url" db:"target_url"`
	Clicks      int        `json:"clicks" db:"clicks"`
	LastClicked *time.Time `json:"last_clicked" db:"last_clicked"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
