package models

// Subject represents an academic subject. Name is the natural key.
type Subject struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
