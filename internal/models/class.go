package models

import "time"

// Class is long-lived reference data; the admission engine reads it and
// writes only the foreign-key assignment.
type Class struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"schoolId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Grades []Grade `db:"-" json:"grades,omitempty"`
}

// Grade belongs to exactly one class and carries a hard enrollment ceiling.
// Enrolled is derived (a live count of students bound to the grade), never
// stored or incremented.
type Grade struct {
	ID       string `db:"id" json:"id"`
	ClassID  string `db:"class_id" json:"classId"`
	Name     string `db:"name" json:"name"`
	Position int    `db:"position" json:"position"`
	Capacity int    `db:"capacity" json:"capacity"`
	Enrolled int    `db:"enrolled" json:"enrolled"`
}

// Available reports whether the grade can still take a student.
func (g Grade) Available() bool {
	return g.Enrolled < g.Capacity
}
