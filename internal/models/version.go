package models

import "time"

// Version is an immutable snapshot produced by a single solve. Once
// created, its committed events never change.
type Version struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
